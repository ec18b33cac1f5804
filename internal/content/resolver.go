// Package content resolves the polymorphic (content type, content id)
// references held by trending entries against the event and mix stores.
package content

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/djstage/backend/internal/errors"
	"github.com/djstage/backend/internal/models"
	"gorm.io/gorm"
)

// Resolver looks up the content item a trending entry points at.
// Resolution dispatches on the type tag; a NOT_FOUND APIError is returned
// when the referenced row does not exist, a VALIDATION_ERROR when the type
// tag is unknown.
type Resolver interface {
	Resolve(ctx context.Context, contentType models.ContentType, contentID string) (interface{}, error)
}

// Store is the GORM-backed Resolver over the platform's own content tables.
type Store struct {
	db *gorm.DB
}

// NewStore creates a Resolver reading from db.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Resolve returns the *models.Event or *models.Mix the reference points at.
func (s *Store) Resolve(ctx context.Context, contentType models.ContentType, contentID string) (interface{}, error) {
	switch contentType {
	case models.ContentTypeEvent:
		var event models.Event
		if err := s.db.WithContext(ctx).First(&event, "id = ?", contentID).Error; err != nil {
			return nil, translateNotFound(err, contentType)
		}
		return &event, nil
	case models.ContentTypeMix:
		var mix models.Mix
		if err := s.db.WithContext(ctx).First(&mix, "id = ?", contentID).Error; err != nil {
			return nil, translateNotFound(err, contentType)
		}
		return &mix, nil
	default:
		return nil, errors.ValidationError("content_type",
			fmt.Sprintf("invalid content type %q, must be either 'event' or 'mix'", string(contentType)))
	}
}

func translateNotFound(err error, contentType models.ContentType) error {
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return errors.NotFound(string(contentType))
	}
	return err
}
