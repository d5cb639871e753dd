package contract

import (
	"context"

	"fun-writing-be/internal/entity"
	"fun-writing-be/internal/repository/specification"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	Update(ctx context.Context, user *entity.User) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.User, error)

	// CompareAndSwapBalance atomically replaces the user's balance iff the
	// stored credit_version still equals expectedVersion. Returns false when
	// another writer won the race; the caller re-reads and retries.
	CompareAndSwapBalance(ctx context.Context, userId uuid.UUID, newBalance, expectedVersion int) (bool, error)
}
