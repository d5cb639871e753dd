package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	Id            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Email         string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	FullName      string    `gorm:"type:varchar(255);not null"`
	Role          string    `gorm:"type:varchar(50);not null;default:'student'"`
	Status        string    `gorm:"type:varchar(50);not null;default:'active'"`
	AgeGroup      string    `gorm:"type:varchar(20);not null;default:'7-11'"`
	GuardianEmail *string   `gorm:"type:varchar(255)"`
	CreditBalance int       `gorm:"not null;default:0;check:credit_balance >= 0"`
	CreditVersion int       `gorm:"not null;default:0"`
	TrialActive   bool      `gorm:"default:false"`
	TrialEndsAt   *time.Time
	CreatedAt     time.Time      `gorm:"autoCreateTime"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime"`
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

func (User) TableName() string {
	return "users"
}
