package dto

import (
	"time"

	"github.com/google/uuid"

	"fun-writing-be/internal/entity"
)

type SubmitWritingRequest struct {
	PromptId uuid.UUID `json:"prompt_id" validate:"required"`
	Content  string    `json:"content" validate:"required,min=10"`
}

type SubmitWritingResponse struct {
	Id     uuid.UUID `json:"id"`
	Status string    `json:"status"`
}

type SubmissionResponse struct {
	Id               uuid.UUID        `json:"id"`
	PromptId         uuid.UUID        `json:"prompt_id"`
	Content          string           `json:"content"`
	WordCount        int              `json:"word_count"`
	Status           string           `json:"status"`
	Score            *int             `json:"score"`
	Feedback         *entity.Feedback `json:"feedback,omitempty"`
	EligibleForMedia bool             `json:"eligible_for_media"`
	CreditsUsedTotal int              `json:"credits_used_total"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

type SubmissionListItem struct {
	Id        uuid.UUID `json:"id"`
	PromptId  uuid.UUID `json:"prompt_id"`
	WordCount int       `json:"word_count"`
	Status    string    `json:"status"`
	Score     *int      `json:"score"`
	CreatedAt time.Time `json:"created_at"`
}

type ListSubmissionsResponse struct {
	Items []SubmissionListItem `json:"items"`
	Page  int                  `json:"page"`
	Limit int                  `json:"limit"`
	Total int64                `json:"total"`
}

type PromptResponse struct {
	Id         uuid.UUID `json:"id"`
	Title      string    `json:"title"`
	PromptText string    `json:"prompt_text"`
	AgeGroup   string    `json:"age_group"`
}
