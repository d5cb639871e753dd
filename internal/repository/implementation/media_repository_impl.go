package implementation

import (
	"context"
	"errors"
	"time"

	"fun-writing-be/internal/entity"
	"fun-writing-be/internal/mapper"
	"fun-writing-be/internal/model"
	"fun-writing-be/internal/pkg/apperrors"
	"fun-writing-be/internal/repository/contract"
	"fun-writing-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MediaRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.MediaMapper
}

func NewMediaRepository(db *gorm.DB) contract.MediaRepository {
	return &MediaRepositoryImpl{
		db:     db,
		mapper: mapper.NewMediaMapper(),
	}
}

func (r *MediaRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *MediaRepositoryImpl) Create(ctx context.Context, media *entity.GeneratedMedia) error {
	m := r.mapper.ToModel(media)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*media = *r.mapper.ToEntity(m)
	return nil
}

// UpdateStatus guards the forward-only status order. The current status is
// part of the UPDATE predicate so a stale in-memory read cannot clobber a
// record another writer already moved; zero rows affected means the
// transition was illegal at the time of the write.
func (r *MediaRepositoryImpl) UpdateStatus(ctx context.Context, id uuid.UUID, next entity.MediaStatus, patch contract.MediaPatch) error {
	var m model.GeneratedMedia
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.New(apperrors.CodeNotFound, "generated media not found")
		}
		return err
	}

	current := entity.GeneratedMedia{Status: entity.MediaStatus(m.Status)}
	if !current.CanTransitionTo(next) {
		return apperrors.New(apperrors.CodeInvalidMediaTransition,
			"illegal media status transition").
			WithDetail("from", m.Status).
			WithDetail("to", string(next))
	}

	updates := map[string]interface{}{
		"status":     string(next),
		"updated_at": time.Now(),
	}
	if patch.URL != nil {
		updates["url"] = *patch.URL
	}
	if patch.Prompt != nil {
		updates["prompt"] = *patch.Prompt
	}
	if patch.ErrorMessage != nil {
		updates["error_message"] = *patch.ErrorMessage
	}

	res := r.db.WithContext(ctx).
		Model(&model.GeneratedMedia{}).
		Where("id = ? AND status = ?", id, m.Status).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.New(apperrors.CodeInvalidMediaTransition,
			"media status changed concurrently").
			WithDetail("to", string(next))
	}
	return nil
}

func (r *MediaRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.GeneratedMedia{}, id).Error
}

func (r *MediaRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.GeneratedMedia, error) {
	var m model.GeneratedMedia
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *MediaRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.GeneratedMedia, error) {
	var models []*model.GeneratedMedia
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.GeneratedMedia, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}
