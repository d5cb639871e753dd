package mapper

import (
	"encoding/json"

	"fun-writing-be/internal/entity"
	"fun-writing-be/internal/model"

	"gorm.io/datatypes"
)

type SubmissionMapper struct{}

func NewSubmissionMapper() *SubmissionMapper {
	return &SubmissionMapper{}
}

func (m *SubmissionMapper) ToEntity(s *model.WritingSubmission) *entity.WritingSubmission {
	if s == nil {
		return nil
	}

	var feedback *entity.Feedback
	if len(s.Feedback) > 0 {
		var fb entity.Feedback
		if err := json.Unmarshal(s.Feedback, &fb); err == nil {
			feedback = &fb
		}
	}

	return &entity.WritingSubmission{
		Id:               s.Id,
		UserId:           s.UserId,
		PromptId:         s.PromptId,
		Content:          s.Content,
		WordCount:        s.WordCount,
		Status:           entity.SubmissionStatus(s.Status),
		Score:            s.Score,
		SafetyPassed:     s.SafetyPassed,
		Feedback:         feedback,
		FeedbackDegraded: s.FeedbackDegraded,
		CreditsUsedTotal: s.CreditsUsedTotal,
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
	}
}

func (m *SubmissionMapper) ToModel(s *entity.WritingSubmission) *model.WritingSubmission {
	if s == nil {
		return nil
	}

	var feedback datatypes.JSON
	if s.Feedback != nil {
		if raw, err := json.Marshal(s.Feedback); err == nil {
			feedback = raw
		}
	}

	return &model.WritingSubmission{
		Id:               s.Id,
		UserId:           s.UserId,
		PromptId:         s.PromptId,
		Content:          s.Content,
		WordCount:        s.WordCount,
		Status:           string(s.Status),
		Score:            s.Score,
		SafetyPassed:     s.SafetyPassed,
		Feedback:         feedback,
		FeedbackDegraded: s.FeedbackDegraded,
		CreditsUsedTotal: s.CreditsUsedTotal,
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
	}
}

func (m *SubmissionMapper) PromptToEntity(p *model.WritingPrompt) *entity.WritingPrompt {
	if p == nil {
		return nil
	}
	return &entity.WritingPrompt{
		Id:         p.Id,
		Title:      p.Title,
		PromptText: p.PromptText,
		AgeGroup:   p.AgeGroup,
		Active:     p.Active,
		CreatedAt:  p.CreatedAt,
	}
}

func (m *SubmissionMapper) PromptToModel(p *entity.WritingPrompt) *model.WritingPrompt {
	if p == nil {
		return nil
	}
	return &model.WritingPrompt{
		Id:         p.Id,
		Title:      p.Title,
		PromptText: p.PromptText,
		AgeGroup:   p.AgeGroup,
		Active:     p.Active,
		CreatedAt:  p.CreatedAt,
	}
}
