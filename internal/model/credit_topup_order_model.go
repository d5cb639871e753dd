package model

import (
	"time"

	"github.com/google/uuid"
)

type CreditTopUpOrder struct {
	Id            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId        uuid.UUID `gorm:"type:uuid;not null;index"`
	PackageSlug   string    `gorm:"type:varchar(50);not null"`
	Credits       int       `gorm:"not null"`
	GrossAmount   int64     `gorm:"not null"`
	PaymentStatus string    `gorm:"type:varchar(20);not null;default:'pending';index"`
	SnapToken     *string   `gorm:"type:text"`
	CreditedAt    *time.Time
	CreatedAt     time.Time `gorm:"autoCreateTime"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`
}

func (CreditTopUpOrder) TableName() string {
	return "credit_topup_orders"
}
