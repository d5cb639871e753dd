package unitofwork

import (
	"context"

	"fun-writing-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	PromptRepository() contract.PromptRepository
	SubmissionRepository() contract.SubmissionRepository
	MediaRepository() contract.MediaRepository
	CreditTransactionRepository() contract.CreditTransactionRepository
	TopUpRepository() contract.TopUpRepository
}
