package dto

import (
	"time"

	"github.com/google/uuid"
)

type BalanceResponse struct {
	Balance     int        `json:"balance"`
	TrialActive bool       `json:"trial_active"`
	TrialEndsAt *time.Time `json:"trial_ends_at,omitempty"`
}

type CreditHistoryItem struct {
	Id              uuid.UUID  `json:"id"`
	TransactionType string     `json:"transaction_type"`
	Amount          int        `json:"amount"`
	ServiceUsed     *string    `json:"service_used,omitempty"`
	RelatedId       *uuid.UUID `json:"related_id,omitempty"`
	Notes           *string    `json:"notes,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

type CreditHistoryResponse struct {
	Items []CreditHistoryItem `json:"items"`
	Page  int                 `json:"page"`
	Limit int                 `json:"limit"`
}

type CreditPackageResponse struct {
	Slug    string `json:"slug"`
	Name    string `json:"name"`
	Credits int    `json:"credits"`
	Price   int64  `json:"price"`
}

type TopUpRequest struct {
	PackageSlug string `json:"package_slug" validate:"required"`
}

type TopUpResponse struct {
	OrderId         uuid.UUID `json:"order_id"`
	SnapToken       string    `json:"snap_token"`
	SnapRedirectUrl string    `json:"snap_redirect_url"`
}

// MidtransWebhookRequest mirrors the notification payload Midtrans posts to
// the webhook endpoint.
type MidtransWebhookRequest struct {
	OrderId           string `json:"order_id"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	SignatureKey      string `json:"signature_key"`
	TransactionStatus string `json:"transaction_status"`
	FraudStatus       string `json:"fraud_status"`
	PaymentType       string `json:"payment_type"`
}
