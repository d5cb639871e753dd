package contract

import (
	"context"

	"fun-writing-be/internal/entity"
	"fun-writing-be/internal/repository/specification"

	"github.com/google/uuid"
)

type SubmissionRepository interface {
	Create(ctx context.Context, submission *entity.WritingSubmission) error
	Update(ctx context.Context, submission *entity.WritingSubmission) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.WritingSubmission, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.WritingSubmission, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// IncrementCreditsUsed adds amount to credits_used_total without racing
	// concurrent generation requests against the same submission.
	IncrementCreditsUsed(ctx context.Context, id uuid.UUID, amount int) error
}

type PromptRepository interface {
	Create(ctx context.Context, prompt *entity.WritingPrompt) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.WritingPrompt, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.WritingPrompt, error)
}
