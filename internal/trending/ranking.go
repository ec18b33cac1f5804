package trending

import (
	"context"
	stderrors "errors"

	"github.com/djstage/backend/internal/content"
	"github.com/djstage/backend/internal/errors"
	"github.com/djstage/backend/internal/logger"
	"github.com/djstage/backend/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DefaultListLimit caps ranking queries when the caller gives no limit.
const DefaultListLimit = 10

// RankedEntry is a trending entry enriched for list responses: the resolved
// content merged into a single field plus the ledger counts.
type RankedEntry struct {
	models.TrendingEntry
	Content      interface{} `json:"content"`
	LikeCount    int64       `json:"like_count"`
	CommentCount int64       `json:"comment_count"`
}

// Ranking produces ordered, enriched read-side views over the registry.
// It never mutates.
type Ranking struct {
	db       *gorm.DB
	resolver content.Resolver
	ledger   *Ledger
}

// NewRanking creates a Ranking reading from db, resolving content through
// resolver and counts through ledger.
func NewRanking(db *gorm.DB, resolver content.Resolver, ledger *Ledger) *Ranking {
	return &Ranking{db: db, resolver: resolver, ledger: ledger}
}

// ListTop returns the top active entries for the period ordered by score
// descending (ties break on last_updated descending, so the ordering is
// stable for unchanged data). A non-nil contentType narrows to one store.
// Entries whose content no longer resolves are skipped, not errored.
func (r *Ranking) ListTop(ctx context.Context, period models.TrendingPeriod, limit int, contentType *models.ContentType) ([]RankedEntry, error) {
	if period == "" {
		period = models.PeriodDaily
	}
	if !period.Valid() {
		return nil, errors.ValidationError("period",
			"invalid trending period, must be 'daily', 'weekly' or 'monthly'")
	}
	if contentType != nil && !contentType.Valid() {
		return nil, errors.ValidationError("type",
			"invalid content type, must be either 'event' or 'mix'")
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}

	query := r.db.WithContext(ctx).
		Where("is_active = ? AND trending_period = ?", true, period)
	if contentType != nil {
		query = query.Where("content_type = ?", *contentType)
	}

	var entries []models.TrendingEntry
	if err := query.Order("score DESC, last_updated DESC").Limit(limit).Find(&entries).Error; err != nil {
		return nil, err
	}

	ranked := make([]RankedEntry, 0, len(entries))
	for _, entry := range entries {
		item, err := r.enrich(ctx, entry)
		if err != nil {
			return nil, err
		}
		if item == nil {
			// Referenced event/mix was deleted out from under the entry.
			logger.Log.Debug("skipping trending entry with unresolvable content",
				zap.String("trending_id", entry.ID),
				zap.String("content_type", string(entry.ContentType)),
				zap.String("content_id", entry.ContentID),
			)
			continue
		}
		ranked = append(ranked, *item)
	}
	return ranked, nil
}

// StatusFor returns the raw trending state of one content item across all
// periods, active or not.
func (r *Ranking) StatusFor(ctx context.Context, contentType models.ContentType, contentID string) ([]models.TrendingEntry, error) {
	if !contentType.Valid() {
		return nil, errors.ValidationError("content_type",
			"invalid content type, must be either 'event' or 'mix'")
	}
	var entries []models.TrendingEntry
	err := r.db.WithContext(ctx).
		Where("content_type = ? AND content_id = ?", contentType, contentID).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// EnrichEntry resolves content and attaches ledger counts for a single
// entry, as list responses do. A dangling content reference yields a
// NOT_FOUND error here rather than a skip.
func (r *Ranking) EnrichEntry(ctx context.Context, entry models.TrendingEntry) (*RankedEntry, error) {
	item, err := r.enrich(ctx, entry)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, errors.NotFound(string(entry.ContentType))
	}
	return item, nil
}

// enrich resolves content and attaches ledger counts. A nil result with nil
// error means the content reference is dangling.
func (r *Ranking) enrich(ctx context.Context, entry models.TrendingEntry) (*RankedEntry, error) {
	item, err := r.resolver.Resolve(ctx, entry.ContentType, entry.ContentID)
	if err != nil {
		var apiErr *errors.APIError
		if stderrors.As(err, &apiErr) && apiErr.Code == errors.ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	likeCount, err := r.ledger.CountLikes(ctx, entry.ID)
	if err != nil {
		return nil, err
	}
	commentCount, err := r.ledger.CountComments(ctx, entry.ID)
	if err != nil {
		return nil, err
	}
	return &RankedEntry{
		TrendingEntry: entry,
		Content:       item,
		LikeCount:     likeCount,
		CommentCount:  commentCount,
	}, nil
}
