package mapper

import (
	"fun-writing-be/internal/entity"
	"fun-writing-be/internal/model"
)

type CreditMapper struct{}

func NewCreditMapper() *CreditMapper {
	return &CreditMapper{}
}

func (m *CreditMapper) TxToEntity(t *model.AiCreditTransaction) *entity.CreditTransaction {
	if t == nil {
		return nil
	}
	return &entity.CreditTransaction{
		Id:              t.Id,
		UserId:          t.UserId,
		TransactionType: entity.CreditTransactionType(t.TransactionType),
		Amount:          t.Amount,
		ServiceUsed:     t.ServiceUsed,
		RelatedId:       t.RelatedId,
		Notes:           t.Notes,
		CreatedAt:       t.CreatedAt,
	}
}

func (m *CreditMapper) TxToModel(t *entity.CreditTransaction) *model.AiCreditTransaction {
	if t == nil {
		return nil
	}
	return &model.AiCreditTransaction{
		Id:              t.Id,
		UserId:          t.UserId,
		TransactionType: string(t.TransactionType),
		Amount:          t.Amount,
		ServiceUsed:     t.ServiceUsed,
		RelatedId:       t.RelatedId,
		Notes:           t.Notes,
		CreatedAt:       t.CreatedAt,
	}
}

func (m *CreditMapper) OrderToEntity(o *model.CreditTopUpOrder) *entity.CreditTopUpOrder {
	if o == nil {
		return nil
	}
	return &entity.CreditTopUpOrder{
		Id:            o.Id,
		UserId:        o.UserId,
		PackageSlug:   o.PackageSlug,
		Credits:       o.Credits,
		GrossAmount:   o.GrossAmount,
		PaymentStatus: entity.TopUpPaymentStatus(o.PaymentStatus),
		SnapToken:     o.SnapToken,
		CreditedAt:    o.CreditedAt,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}

func (m *CreditMapper) OrderToModel(o *entity.CreditTopUpOrder) *model.CreditTopUpOrder {
	if o == nil {
		return nil
	}
	return &model.CreditTopUpOrder{
		Id:            o.Id,
		UserId:        o.UserId,
		PackageSlug:   o.PackageSlug,
		Credits:       o.Credits,
		GrossAmount:   o.GrossAmount,
		PaymentStatus: string(o.PaymentStatus),
		SnapToken:     o.SnapToken,
		CreditedAt:    o.CreditedAt,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}
