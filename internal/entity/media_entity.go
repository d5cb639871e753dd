package entity

import (
	"time"

	"github.com/google/uuid"
)

type MediaType string
type MediaStatus string

const (
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"

	MediaStatusPending    MediaStatus = "pending"
	MediaStatusGenerating MediaStatus = "generating"
	MediaStatusCompleted  MediaStatus = "completed"
	MediaStatusFailed     MediaStatus = "failed"
)

// GeneratedMedia is one purchased generation attempt. Status only ever moves
// forward: pending -> generating -> completed|failed. Terminal records are
// immutable (deletable by the owner, never re-opened).
type GeneratedMedia struct {
	Id           uuid.UUID
	SubmissionId uuid.UUID
	UserId       uuid.UUID
	MediaType    MediaType
	Style        string
	Status       MediaStatus
	Cost         int
	URL          *string
	Prompt       *string
	ErrorMessage *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CanTransitionTo enforces the forward-only status order.
func (m *GeneratedMedia) CanTransitionTo(next MediaStatus) bool {
	switch m.Status {
	case MediaStatusPending:
		return next == MediaStatusGenerating
	case MediaStatusGenerating:
		return next == MediaStatusCompleted || next == MediaStatusFailed
	default:
		// completed / failed are terminal
		return false
	}
}

func (m *GeneratedMedia) IsTerminal() bool {
	return m.Status == MediaStatusCompleted || m.Status == MediaStatusFailed
}
