package contract

import (
	"context"

	"fun-writing-be/internal/entity"
	"fun-writing-be/internal/repository/specification"

	"github.com/google/uuid"
)

// MediaRepository persists generated media and enforces the forward-only
// status order on every write.
type MediaRepository interface {
	Create(ctx context.Context, media *entity.GeneratedMedia) error

	// UpdateStatus moves a record to the next status; a transition that is not
	// allowed by entity.GeneratedMedia.CanTransitionTo fails with
	// INVALID_MEDIA_TRANSITION. URL, prompt and error message are written
	// together with the terminal status.
	UpdateStatus(ctx context.Context, id uuid.UUID, next entity.MediaStatus, patch MediaPatch) error

	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.GeneratedMedia, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.GeneratedMedia, error)
}

// MediaPatch carries the optional fields written alongside a status change.
type MediaPatch struct {
	URL          *string
	Prompt       *string
	ErrorMessage *string
}
