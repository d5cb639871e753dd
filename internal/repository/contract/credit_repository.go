package contract

import (
	"context"

	"fun-writing-be/internal/entity"
	"fun-writing-be/internal/repository/specification"

	"github.com/google/uuid"
)

type CreditTransactionRepository interface {
	Create(ctx context.Context, tx *entity.CreditTransaction) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.CreditTransaction, error)
}

type TopUpRepository interface {
	Create(ctx context.Context, order *entity.CreditTopUpOrder) error
	Update(ctx context.Context, order *entity.CreditTopUpOrder) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.CreditTopUpOrder, error)
	FindAllByUser(ctx context.Context, userId uuid.UUID) ([]*entity.CreditTopUpOrder, error)
}
