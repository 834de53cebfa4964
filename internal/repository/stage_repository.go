package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/sandeepkv93/crm-dashboard-backend/internal/domain"

	"gorm.io/gorm"
)

var (
	ErrStageNotFound  = fmt.Errorf("stage %w", ErrNotFound)
	ErrStageNameTaken = fmt.Errorf("stage name %w", ErrDuplicateKey)
)

type StageRepository interface {
	Create(ctx context.Context, stage *domain.Stage) error
	FindByID(ctx context.Context, id uint) (*domain.Stage, error)
	List(ctx context.Context) ([]domain.Stage, error)
	Update(ctx context.Context, id uint, updates map[string]any) error
	DeleteByID(ctx context.Context, id uint) error
}

type GormStageRepository struct{ store crudStore[domain.Stage] }

func NewStageRepository(db *gorm.DB) StageRepository {
	return &GormStageRepository{store: crudStore[domain.Stage]{db: db, name: "stage"}}
}

func (r *GormStageRepository) Create(ctx context.Context, stage *domain.Stage) error {
	return stageErr(r.store.create(ctx, stage))
}

func (r *GormStageRepository) FindByID(ctx context.Context, id uint) (*domain.Stage, error) {
	s, err := r.store.findByID(ctx, id)
	return s, stageErr(err)
}

func (r *GormStageRepository) List(ctx context.Context) ([]domain.Stage, error) {
	return r.store.list(ctx, "list", func(db *gorm.DB) *gorm.DB {
		return db.Order("position asc").Order("id asc")
	})
}

func (r *GormStageRepository) Update(ctx context.Context, id uint, updates map[string]any) error {
	return stageErr(r.store.update(ctx, id, updates))
}

func (r *GormStageRepository) DeleteByID(ctx context.Context, id uint) error {
	return stageErr(r.store.deleteByID(ctx, id))
}

func stageErr(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return ErrStageNotFound
	case errors.Is(err, ErrDuplicateKey):
		return ErrStageNameTaken
	default:
		return err
	}
}
