package model

import (
	"time"

	"github.com/google/uuid"
)

type WritingPrompt struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Title      string    `gorm:"type:varchar(255);not null"`
	PromptText string    `gorm:"type:text;not null"`
	AgeGroup   string    `gorm:"type:varchar(20);not null;index"`
	Active     bool      `gorm:"default:true"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

func (WritingPrompt) TableName() string {
	return "writing_prompts"
}
