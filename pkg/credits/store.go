package credits

import (
	"context"

	"github.com/google/uuid"

	"fun-writing-be/internal/entity"
	"fun-writing-be/internal/pkg/apperrors"
	"fun-writing-be/internal/repository/specification"
	"fun-writing-be/internal/repository/unitofwork"
)

// UowBalanceStore backs the ledger with the user table. The version check in
// CompareAndSwapBalance makes an explicit transaction unnecessary.
type UowBalanceStore struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewUowBalanceStore(uowFactory unitofwork.RepositoryFactory) *UowBalanceStore {
	return &UowBalanceStore{uowFactory: uowFactory}
}

func (s *UowBalanceStore) Balance(ctx context.Context, userId uuid.UUID) (int, int, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return 0, 0, err
	}
	if user == nil {
		return 0, 0, apperrors.New(apperrors.CodeNotFound, "user not found")
	}
	return user.CreditBalance, user.CreditVersion, nil
}

func (s *UowBalanceStore) CompareAndSwapBalance(ctx context.Context, userId uuid.UUID, newBalance, expectedVersion int) (bool, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.UserRepository().CompareAndSwapBalance(ctx, userId, newBalance, expectedVersion)
}

// UowAuditSink appends credit transactions to the audit table.
type UowAuditSink struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewUowAuditSink(uowFactory unitofwork.RepositoryFactory) *UowAuditSink {
	return &UowAuditSink{uowFactory: uowFactory}
}

func (s *UowAuditSink) Append(ctx context.Context, tx *entity.CreditTransaction) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.CreditTransactionRepository().Create(ctx, tx)
}
