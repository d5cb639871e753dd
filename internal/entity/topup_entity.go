package entity

import (
	"time"

	"github.com/google/uuid"
)

type TopUpPaymentStatus string

const (
	TopUpPaymentPending  TopUpPaymentStatus = "pending"
	TopUpPaymentPaid     TopUpPaymentStatus = "paid"
	TopUpPaymentFailed   TopUpPaymentStatus = "failed"
	TopUpPaymentExpired  TopUpPaymentStatus = "expired"
	TopUpPaymentRefunded TopUpPaymentStatus = "refunded"
)

// CreditPackage is a purchasable credit bundle.
type CreditPackage struct {
	Slug    string
	Name    string
	Credits int
	PriceID int64 // gross amount in IDR
}

// CreditTopUpOrder tracks one checkout. Credits are granted to the ledger
// exactly once, when the payment webhook settles the order.
type CreditTopUpOrder struct {
	Id            uuid.UUID
	UserId        uuid.UUID
	PackageSlug   string
	Credits       int
	GrossAmount   int64
	PaymentStatus TopUpPaymentStatus
	SnapToken     *string
	CreditedAt    *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
