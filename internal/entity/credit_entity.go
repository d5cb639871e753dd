package entity

import (
	"time"

	"github.com/google/uuid"
)

type CreditTransactionType string

const (
	CreditTxReserve CreditTransactionType = "reserve"
	CreditTxCommit  CreditTransactionType = "commit"
	CreditTxRefund  CreditTransactionType = "refund"
	CreditTxTopUp   CreditTransactionType = "topup"
	CreditTxGrant   CreditTransactionType = "grant"
)

// CreditTransaction is an immutable audit entry appended on every ledger
// mutation, kept for reconciliation.
type CreditTransaction struct {
	Id              uuid.UUID
	UserId          uuid.UUID
	TransactionType CreditTransactionType
	Amount          int
	ServiceUsed     *string
	RelatedId       *uuid.UUID
	Notes           *string
	CreatedAt       time.Time
}
