package mapper

import (
	"fun-writing-be/internal/entity"
	"fun-writing-be/internal/model"
)

type MediaMapper struct{}

func NewMediaMapper() *MediaMapper {
	return &MediaMapper{}
}

func (m *MediaMapper) ToEntity(g *model.GeneratedMedia) *entity.GeneratedMedia {
	if g == nil {
		return nil
	}
	return &entity.GeneratedMedia{
		Id:           g.Id,
		SubmissionId: g.SubmissionId,
		UserId:       g.UserId,
		MediaType:    entity.MediaType(g.MediaType),
		Style:        g.Style,
		Status:       entity.MediaStatus(g.Status),
		Cost:         g.Cost,
		URL:          g.URL,
		Prompt:       g.Prompt,
		ErrorMessage: g.ErrorMessage,
		CreatedAt:    g.CreatedAt,
		UpdatedAt:    g.UpdatedAt,
	}
}

func (m *MediaMapper) ToModel(g *entity.GeneratedMedia) *model.GeneratedMedia {
	if g == nil {
		return nil
	}
	return &model.GeneratedMedia{
		Id:           g.Id,
		SubmissionId: g.SubmissionId,
		UserId:       g.UserId,
		MediaType:    string(g.MediaType),
		Style:        g.Style,
		Status:       string(g.Status),
		Cost:         g.Cost,
		URL:          g.URL,
		Prompt:       g.Prompt,
		ErrorMessage: g.ErrorMessage,
		CreatedAt:    g.CreatedAt,
		UpdatedAt:    g.UpdatedAt,
	}
}
