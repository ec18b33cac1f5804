package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Event is a DJ event published on the platform. Trending entries with
// ContentType "event" reference rows in this table.
type Event struct {
	ID           string    `gorm:"primaryKey;type:uuid" json:"id"`
	Name         string    `gorm:"not null" json:"name"`
	Description  string    `gorm:"type:text" json:"description,omitempty"`
	Venue        string    `gorm:"not null" json:"venue"`
	VenueAddress string    `gorm:"type:text" json:"venue_address,omitempty"`
	StartDate    time.Time `gorm:"not null" json:"start_date"`
	EndDate      time.Time `gorm:"not null" json:"end_date"`
	BannerURL    string    `json:"banner_url,omitempty"`
	TicketPrice  *float64  `json:"ticket_price,omitempty"`
	Currency     string    `gorm:"default:KES" json:"currency"`
	IsPublic     bool      `gorm:"default:true" json:"is_public"`
	Status       string    `gorm:"type:varchar(16);default:draft" json:"status"` // draft, published, cancelled, completed
	DJID         string    `gorm:"type:uuid;not null;index" json:"dj_id"`
	EventHosts   JSONMap   `gorm:"type:jsonb;serializer:json" json:"event_hosts,omitempty"`
	Tags         JSONMap   `gorm:"type:jsonb;serializer:json" json:"tags,omitempty"`
	SocialLinks  JSONMap   `gorm:"type:jsonb;serializer:json" json:"social_links,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (e *Event) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

// Mix is an uploaded DJ mix. Trending entries with ContentType "mix"
// reference rows in this table.
type Mix struct {
	ID            string    `gorm:"primaryKey;type:uuid" json:"id"`
	Title         string    `gorm:"not null" json:"title"`
	Description   string    `gorm:"type:text" json:"description,omitempty"`
	FileURL       string    `gorm:"not null" json:"file_url"`
	FileType      string    `gorm:"type:varchar(16);not null" json:"file_type"` // audio, video, mp4
	Duration      int       `json:"duration,omitempty"`                         // seconds
	Size          int64     `json:"size,omitempty"`                             // bytes
	DJID          string    `gorm:"type:uuid;not null;index" json:"dj_id"`
	IsPublic      bool      `gorm:"default:true" json:"is_public"`
	DownloadCount int       `gorm:"default:0" json:"download_count"`
	PlayCount     int       `gorm:"default:0" json:"play_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (m *Mix) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
