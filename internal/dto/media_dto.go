package dto

import (
	"time"

	"github.com/google/uuid"
)

type GenerateImageRequest struct {
	SubmissionId uuid.UUID `json:"submission_id" validate:"required"`
	Style        string    `json:"style" validate:"required,oneof=standard comic manga princess"`
	ImageIndex   int       `json:"image_index" validate:"gte=0,lte=3"`
}

type GenerateVideoRequest struct {
	SubmissionId uuid.UUID `json:"submission_id" validate:"required"`
	Style        string    `json:"style" validate:"required,oneof=animation cinematic"`
}

type MediaResponse struct {
	Id           uuid.UUID `json:"id"`
	SubmissionId uuid.UUID `json:"submission_id"`
	MediaType    string    `json:"media_type"`
	Style        string    `json:"style"`
	Status       string    `json:"status"`
	Cost         int       `json:"cost"`
	URL          *string   `json:"url"`
	ErrorMessage *string   `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// GenerationResponse is returned by both generation endpoints so the client
// can refresh the balance display without a second round trip.
type GenerationResponse struct {
	Media            MediaResponse `json:"media"`
	RemainingCredits int           `json:"remaining_credits"`
}

type GalleryResponse struct {
	Items []MediaResponse `json:"items"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}
