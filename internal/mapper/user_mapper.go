package mapper

import (
	"fun-writing-be/internal/entity"
	"fun-writing-be/internal/model"
)

type UserMapper struct{}

func NewUserMapper() *UserMapper {
	return &UserMapper{}
}

func (m *UserMapper) ToEntity(u *model.User) *entity.User {
	if u == nil {
		return nil
	}
	return &entity.User{
		Id:            u.Id,
		Email:         u.Email,
		FullName:      u.FullName,
		Role:          entity.UserRole(u.Role),
		Status:        entity.UserStatus(u.Status),
		AgeGroup:      u.AgeGroup,
		GuardianEmail: u.GuardianEmail,
		CreditBalance: u.CreditBalance,
		CreditVersion: u.CreditVersion,
		TrialActive:   u.TrialActive,
		TrialEndsAt:   u.TrialEndsAt,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

func (m *UserMapper) ToModel(u *entity.User) *model.User {
	if u == nil {
		return nil
	}
	return &model.User{
		Id:            u.Id,
		Email:         u.Email,
		FullName:      u.FullName,
		Role:          string(u.Role),
		Status:        string(u.Status),
		AgeGroup:      u.AgeGroup,
		GuardianEmail: u.GuardianEmail,
		CreditBalance: u.CreditBalance,
		CreditVersion: u.CreditVersion,
		TrialActive:   u.TrialActive,
		TrialEndsAt:   u.TrialEndsAt,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}
