package trending

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/djstage/backend/internal/errors"
	"github.com/djstage/backend/internal/models"
	"gorm.io/gorm"
)

// Ledger is the append-only record of likes and comments on trending
// entries. The ledger rows are the durable truth of what engaged; the
// entry's engagement counter is a denormalization kept in step inside the
// same transaction that writes the row.
type Ledger struct {
	db *gorm.DB
}

// NewLedger creates a Ledger backed by db.
func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// Like records an anonymous like and bumps the entry's engagement counter.
// Both writes commit or neither does.
func (l *Ledger) Like(ctx context.Context, trendingID string) (*models.TrendingLike, error) {
	var like models.TrendingLike
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entry, err := lockEntry(tx, trendingID)
		if err != nil {
			return err
		}
		like = models.TrendingLike{TrendingID: trendingID}
		if err := tx.Create(&like).Error; err != nil {
			return err
		}
		return bumpEngagement(tx, entry, entry.EngagementCount+1)
	})
	if err != nil {
		return nil, err
	}
	return &like, nil
}

// Unlike removes the most recent like for the entry and decrements the
// engagement counter, flooring at zero. Removing at most one row keeps a
// like/unlike pair net-neutral even when other likes exist.
func (l *Ledger) Unlike(ctx context.Context, trendingID string) error {
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entry, err := lockEntry(tx, trendingID)
		if err != nil {
			return err
		}
		var like models.TrendingLike
		err = tx.Where("trending_id = ?", trendingID).
			Order("created_at DESC, id DESC").
			First(&like).Error
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return errors.NotFound("like")
		}
		if err != nil {
			return err
		}
		if err := tx.Delete(&like).Error; err != nil {
			return err
		}
		next := entry.EngagementCount - 1
		if next < 0 {
			next = 0
		}
		return bumpEngagement(tx, entry, next)
	})
}

// AddComment records a comment and bumps the engagement counter. The text
// must be non-empty after trimming.
func (l *Ledger) AddComment(ctx context.Context, trendingID, text string) (*models.TrendingComment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.ValidationError("comment", "comment text is required")
	}
	var comment models.TrendingComment
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entry, err := lockEntry(tx, trendingID)
		if err != nil {
			return err
		}
		comment = models.TrendingComment{TrendingID: trendingID, Comment: text}
		if err := tx.Create(&comment).Error; err != nil {
			return err
		}
		return bumpEngagement(tx, entry, entry.EngagementCount+1)
	})
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListComments returns the entry's comments newest first.
func (l *Ledger) ListComments(ctx context.Context, trendingID string) ([]models.TrendingComment, error) {
	var comments []models.TrendingComment
	err := l.db.WithContext(ctx).
		Where("trending_id = ?", trendingID).
		Order("created_at DESC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// CountLikes returns the number of like rows for the entry.
func (l *Ledger) CountLikes(ctx context.Context, trendingID string) (int64, error) {
	var count int64
	err := l.db.WithContext(ctx).Model(&models.TrendingLike{}).
		Where("trending_id = ?", trendingID).
		Count(&count).Error
	return count, err
}

// CountComments returns the number of comment rows for the entry.
func (l *Ledger) CountComments(ctx context.Context, trendingID string) (int64, error) {
	var count int64
	err := l.db.WithContext(ctx).Model(&models.TrendingComment{}).
		Where("trending_id = ?", trendingID).
		Count(&count).Error
	return count, err
}

// lockEntry loads the trending entry under a row lock.
func lockEntry(tx *gorm.DB, trendingID string) (*models.TrendingEntry, error) {
	var entry models.TrendingEntry
	if err := lockForUpdate(tx).First(&entry, "id = ?", trendingID).Error; err != nil {
		return nil, translateEntryNotFound(err)
	}
	return &entry, nil
}

// bumpEngagement writes the new engagement count plus the recomputed score
// and timestamp.
func bumpEngagement(tx *gorm.DB, entry *models.TrendingEntry, engagementCount int) error {
	return tx.Model(entry).Updates(map[string]interface{}{
		"engagement_count": engagementCount,
		"score":            Score(entry.ViewCount, engagementCount),
		"last_updated":     time.Now().UTC(),
	}).Error
}
