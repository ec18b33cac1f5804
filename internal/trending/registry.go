package trending

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/djstage/backend/internal/content"
	"github.com/djstage/backend/internal/errors"
	"github.com/djstage/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Registry owns TrendingEntry rows: find-or-create upserts keyed on
// (content_type, content_id, trending_period), counter mutations with score
// recomputation, and lifecycle controls. Mutations against the same entry
// serialize on a row lock so concurrent increments never lose updates;
// entries with different ids mutate in parallel.
type Registry struct {
	db       *gorm.DB
	resolver content.Resolver
}

// NewRegistry creates a Registry backed by db, validating content
// references through resolver.
func NewRegistry(db *gorm.DB, resolver content.Resolver) *Registry {
	return &Registry{db: db, resolver: resolver}
}

// UpsertInput carries the admin-supplied metrics for Upsert. Pointer fields
// distinguish "omitted" from an explicit zero.
type UpsertInput struct {
	ContentType     models.ContentType
	ContentID       string
	Period          models.TrendingPeriod
	Score           *float64
	ViewCount       *int
	EngagementCount *int
	Metadata        models.JSONMap
}

// Upsert finds the entry for the natural key or creates it. The referenced
// content must exist. On create the given metrics are trusted as-is (score
// is not recomputed); on update only the provided fields overwrite and
// last_updated is stamped. The returned bool reports whether a row was
// created.
func (r *Registry) Upsert(ctx context.Context, in UpsertInput) (*models.TrendingEntry, bool, error) {
	if !in.ContentType.Valid() {
		return nil, false, errors.ValidationError("content_type",
			"invalid content type, must be either 'event' or 'mix'")
	}
	if in.Period == "" {
		in.Period = models.PeriodDaily
	}
	if !in.Period.Valid() {
		return nil, false, errors.ValidationError("trending_period",
			"invalid trending period, must be 'daily', 'weekly' or 'monthly'")
	}

	if _, err := r.resolver.Resolve(ctx, in.ContentType, in.ContentID); err != nil {
		return nil, false, err
	}

	var entry models.TrendingEntry
	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := lockForUpdate(tx).
			Where("content_type = ? AND content_id = ? AND trending_period = ?",
				in.ContentType, in.ContentID, in.Period).
			First(&entry).Error
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			entry = models.TrendingEntry{
				ContentType:    in.ContentType,
				ContentID:      in.ContentID,
				TrendingPeriod: in.Period,
				IsActive:       true,
				LastUpdated:    time.Now().UTC(),
				Metadata:       in.Metadata,
			}
			if in.Score != nil {
				entry.Score = *in.Score
			}
			if in.ViewCount != nil {
				entry.ViewCount = clampNonNegative(*in.ViewCount)
			}
			if in.EngagementCount != nil {
				entry.EngagementCount = clampNonNegative(*in.EngagementCount)
			}
			created = true
			return tx.Create(&entry).Error
		}
		if err != nil {
			return err
		}

		updates := map[string]interface{}{
			"last_updated": time.Now().UTC(),
		}
		if in.Score != nil {
			updates["score"] = *in.Score
		}
		if in.ViewCount != nil {
			updates["view_count"] = clampNonNegative(*in.ViewCount)
		}
		if in.EngagementCount != nil {
			updates["engagement_count"] = clampNonNegative(*in.EngagementCount)
		}
		if in.Metadata != nil {
			updates["metadata"] = in.Metadata
		}
		if err := tx.Model(&entry).Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(&entry, "id = ?", entry.ID).Error
	})
	if err != nil {
		// A concurrent create on the same natural key trips the unique
		// index; treat the race as an idempotent upsert and retry once.
		if created && isUniqueViolation(err) {
			created = false
			return r.Upsert(ctx, in)
		}
		return nil, false, err
	}
	return &entry, created, nil
}

// IncrementView adds one view to the entry and recomputes its score.
func (r *Registry) IncrementView(ctx context.Context, id string) (*models.TrendingEntry, error) {
	return r.mutateCounters(ctx, id, func(e *models.TrendingEntry) {
		e.ViewCount++
	})
}

// IncrementEngagement adds one engagement event and recomputes the score.
func (r *Registry) IncrementEngagement(ctx context.Context, id string) (*models.TrendingEntry, error) {
	return r.mutateCounters(ctx, id, func(e *models.TrendingEntry) {
		e.EngagementCount++
	})
}

// DecrementEngagement removes one engagement event, flooring at zero.
func (r *Registry) DecrementEngagement(ctx context.Context, id string) (*models.TrendingEntry, error) {
	return r.mutateCounters(ctx, id, func(e *models.TrendingEntry) {
		if e.EngagementCount > 0 {
			e.EngagementCount--
		}
	})
}

// UpdateMetrics replaces the counters where provided (nil keeps the current
// value; an explicit zero is honored) and recomputes the score from the
// resulting counters.
func (r *Registry) UpdateMetrics(ctx context.Context, id string, viewCount, engagementCount *int) (*models.TrendingEntry, error) {
	return r.mutateCounters(ctx, id, func(e *models.TrendingEntry) {
		if viewCount != nil {
			e.ViewCount = clampNonNegative(*viewCount)
		}
		if engagementCount != nil {
			e.EngagementCount = clampNonNegative(*engagementCount)
		}
	})
}

// SetActive toggles whether the entry participates in ranking queries.
func (r *Registry) SetActive(ctx context.Context, id string, active bool) (*models.TrendingEntry, error) {
	var entry models.TrendingEntry
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&entry, "id = ?", id).Error; err != nil {
			return translateEntryNotFound(err)
		}
		now := time.Now().UTC()
		entry.IsActive = active
		entry.LastUpdated = now
		return tx.Model(&entry).Updates(map[string]interface{}{
			"is_active":    active,
			"last_updated": now,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// Delete hard-deletes the entry and cascades its likes and comments so no
// ledger rows are left referencing a dead id.
func (r *Registry) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var entry models.TrendingEntry
		if err := lockForUpdate(tx).First(&entry, "id = ?", id).Error; err != nil {
			return translateEntryNotFound(err)
		}
		if err := tx.Where("trending_id = ?", id).Delete(&models.TrendingLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("trending_id = ?", id).Delete(&models.TrendingComment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&entry).Error
	})
}

// mutateCounters applies fn to the locked entry, then writes the counters,
// the recomputed score and the timestamp in the same transaction.
func (r *Registry) mutateCounters(ctx context.Context, id string, fn func(*models.TrendingEntry)) (*models.TrendingEntry, error) {
	var entry models.TrendingEntry
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&entry, "id = ?", id).Error; err != nil {
			return translateEntryNotFound(err)
		}
		fn(&entry)
		entry.Score = Score(entry.ViewCount, entry.EngagementCount)
		entry.LastUpdated = time.Now().UTC()
		return tx.Model(&entry).Updates(map[string]interface{}{
			"view_count":       entry.ViewCount,
			"engagement_count": entry.EngagementCount,
			"score":            entry.Score,
			"last_updated":     entry.LastUpdated,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// lockForUpdate takes a FOR UPDATE row lock where the dialect supports it.
// sqlite (used by the test suites) serializes writers on its own and
// rejects the clause.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

func translateEntryNotFound(err error) error {
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return errors.NotFound("trending entry")
	}
	return err
}

func clampNonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

func isUniqueViolation(err error) bool {
	return err != nil && stderrors.Is(err, gorm.ErrDuplicatedKey)
}
