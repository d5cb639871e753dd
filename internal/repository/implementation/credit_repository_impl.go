package implementation

import (
	"context"
	"errors"

	"fun-writing-be/internal/entity"
	"fun-writing-be/internal/mapper"
	"fun-writing-be/internal/model"
	"fun-writing-be/internal/repository/contract"
	"fun-writing-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreditTransactionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.CreditMapper
}

func NewCreditTransactionRepository(db *gorm.DB) contract.CreditTransactionRepository {
	return &CreditTransactionRepositoryImpl{
		db:     db,
		mapper: mapper.NewCreditMapper(),
	}
}

func (r *CreditTransactionRepositoryImpl) Create(ctx context.Context, tx *entity.CreditTransaction) error {
	m := r.mapper.TxToModel(tx)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*tx = *r.mapper.TxToEntity(m)
	return nil
}

func (r *CreditTransactionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.CreditTransaction, error) {
	var models []*model.AiCreditTransaction
	query := r.db.WithContext(ctx)
	for _, spec := range specs {
		query = spec.Apply(query)
	}
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.CreditTransaction, len(models))
	for i, m := range models {
		entities[i] = r.mapper.TxToEntity(m)
	}
	return entities, nil
}

type TopUpRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.CreditMapper
}

func NewTopUpRepository(db *gorm.DB) contract.TopUpRepository {
	return &TopUpRepositoryImpl{
		db:     db,
		mapper: mapper.NewCreditMapper(),
	}
}

func (r *TopUpRepositoryImpl) Create(ctx context.Context, order *entity.CreditTopUpOrder) error {
	m := r.mapper.OrderToModel(order)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*order = *r.mapper.OrderToEntity(m)
	return nil
}

func (r *TopUpRepositoryImpl) Update(ctx context.Context, order *entity.CreditTopUpOrder) error {
	m := r.mapper.OrderToModel(order)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*order = *r.mapper.OrderToEntity(m)
	return nil
}

func (r *TopUpRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.CreditTopUpOrder, error) {
	var m model.CreditTopUpOrder
	query := r.db.WithContext(ctx)
	for _, spec := range specs {
		query = spec.Apply(query)
	}
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.OrderToEntity(&m), nil
}

func (r *TopUpRepositoryImpl) FindAllByUser(ctx context.Context, userId uuid.UUID) ([]*entity.CreditTopUpOrder, error) {
	var models []*model.CreditTopUpOrder
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userId).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.CreditTopUpOrder, len(models))
	for i, m := range models {
		entities[i] = r.mapper.OrderToEntity(m)
	}
	return entities, nil
}
