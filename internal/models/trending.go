package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ContentType tags which content store a trending entry points into.
// The (ContentType, ContentID) pair stands in for a foreign key: the same
// UUID could exist in both stores, so the type tag is part of the identity.
type ContentType string

const (
	ContentTypeEvent ContentType = "event"
	ContentTypeMix   ContentType = "mix"
)

// Valid reports whether the content type is one of the known stores.
func (t ContentType) Valid() bool {
	return t == ContentTypeEvent || t == ContentTypeMix
}

// TrendingPeriod is the bucket a trending entry's metrics are scoped to.
type TrendingPeriod string

const (
	PeriodDaily   TrendingPeriod = "daily"
	PeriodWeekly  TrendingPeriod = "weekly"
	PeriodMonthly TrendingPeriod = "monthly"
)

// Valid reports whether the period is a known bucket.
func (p TrendingPeriod) Valid() bool {
	return p == PeriodDaily || p == PeriodWeekly || p == PeriodMonthly
}

// JSONMap stores an open key-value bag (category tags, trending reason)
// as jsonb. Opaque to the scoring algorithm.
type JSONMap map[string]interface{}

// TrendingEntry is the per-(content, period) aggregate holding the derived
// score and its input counters. At most one row exists per natural key
// (content_type, content_id, trending_period); the unique index backs the
// find-or-create upsert against concurrent creates.
type TrendingEntry struct {
	ID          string      `gorm:"primaryKey;type:uuid" json:"id"`
	ContentType ContentType `gorm:"type:varchar(16);not null;uniqueIndex:idx_trending_natural_key,priority:1" json:"content_type"`
	ContentID   string      `gorm:"type:uuid;not null;uniqueIndex:idx_trending_natural_key,priority:2" json:"content_id"`

	// Score is derived from the counters below; normal mutation paths never
	// set it independently (the admin upsert may).
	Score           float64 `gorm:"not null;default:0;index" json:"score"`
	ViewCount       int     `gorm:"not null;default:0" json:"view_count"`
	EngagementCount int     `gorm:"not null;default:0" json:"engagement_count"`

	TrendingPeriod TrendingPeriod `gorm:"type:varchar(16);not null;default:daily;uniqueIndex:idx_trending_natural_key,priority:3;index" json:"trending_period"`

	// Deactivated entries are excluded from ranking queries but kept.
	IsActive    bool      `gorm:"not null;default:true" json:"is_active"`
	LastUpdated time.Time `gorm:"not null" json:"last_updated"`

	Metadata JSONMap `gorm:"type:jsonb;serializer:json" json:"metadata,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate generates the UUID in Go so postgres and the sqlite test
// databases behave identically.
func (e *TrendingEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.LastUpdated.IsZero() {
		e.LastUpdated = time.Now().UTC()
	}
	return nil
}

// TrendingLike is one anonymous like on a trending entry. The ledger does
// not track who liked, only that a like happened.
type TrendingLike struct {
	ID         string    `gorm:"primaryKey;type:uuid" json:"id"`
	TrendingID string    `gorm:"type:uuid;not null;index" json:"trending_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (l *TrendingLike) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

// TrendingComment is one comment on a trending entry, listed newest first.
type TrendingComment struct {
	ID         string    `gorm:"primaryKey;type:uuid" json:"id"`
	TrendingID string    `gorm:"type:uuid;not null;index" json:"trending_id"`
	Comment    string    `gorm:"type:text;not null" json:"comment"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (c *TrendingComment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
