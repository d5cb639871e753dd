package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GeneratedMedia struct {
	Id           uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SubmissionId uuid.UUID      `gorm:"type:uuid;not null;index"`
	UserId       uuid.UUID      `gorm:"type:uuid;not null;index"`
	MediaType    string         `gorm:"type:varchar(10);not null"`
	Style        string         `gorm:"type:varchar(50);not null"`
	Status       string         `gorm:"type:varchar(20);not null;default:'pending';index"`
	Cost         int            `gorm:"not null"`
	URL          *string        `gorm:"type:text"`
	Prompt       *string        `gorm:"type:text"`
	ErrorMessage *string        `gorm:"type:text"`
	CreatedAt    time.Time      `gorm:"autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime"`
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

func (GeneratedMedia) TableName() string {
	return "generated_media"
}
