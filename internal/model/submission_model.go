package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type WritingSubmission struct {
	Id               uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId           uuid.UUID      `gorm:"type:uuid;not null;index"`
	PromptId         uuid.UUID      `gorm:"type:uuid;not null;index"`
	Content          string         `gorm:"type:text;not null"`
	WordCount        int            `gorm:"not null;default:0"`
	Status           string         `gorm:"type:varchar(20);not null;default:'submitted';index"`
	Score            *int           `gorm:"check:score >= 0 AND score <= 100"`
	SafetyPassed     bool           `gorm:"default:false"`
	Feedback         datatypes.JSON `gorm:"type:jsonb"`
	FeedbackDegraded bool           `gorm:"default:false"`
	CreditsUsedTotal int            `gorm:"not null;default:0"`
	CreatedAt        time.Time      `gorm:"autoCreateTime"`
	UpdatedAt        time.Time      `gorm:"autoUpdateTime"`
	DeletedAt        gorm.DeletedAt `gorm:"index"`
}

func (WritingSubmission) TableName() string {
	return "writing_submissions"
}
