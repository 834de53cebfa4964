package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/sandeepkv93/crm-dashboard-backend/internal/domain"

	"gorm.io/gorm"
)

var ErrLeadNotFound = fmt.Errorf("lead %w", ErrNotFound)

type LeadFilter struct {
	CustomerID uint
	StageID    uint
	Status     string
}

type LeadRepository interface {
	Create(ctx context.Context, lead *domain.Lead) error
	FindByID(ctx context.Context, id uint) (*domain.Lead, error)
	ListPaged(ctx context.Context, filter LeadFilter, req PageRequest) (PageResult[domain.Lead], error)
	Update(ctx context.Context, id uint, updates map[string]any) error
	DeleteByID(ctx context.Context, id uint) error
}

type GormLeadRepository struct{ store crudStore[domain.Lead] }

func NewLeadRepository(db *gorm.DB) LeadRepository {
	return &GormLeadRepository{store: crudStore[domain.Lead]{db: db, name: "lead"}}
}

func (r *GormLeadRepository) Create(ctx context.Context, lead *domain.Lead) error {
	return r.store.create(ctx, lead)
}

func (r *GormLeadRepository) FindByID(ctx context.Context, id uint) (*domain.Lead, error) {
	l, err := r.store.findByID(ctx, id, "Customer", "Stage")
	if errors.Is(err, ErrNotFound) {
		return nil, ErrLeadNotFound
	}
	return l, err
}

func (r *GormLeadRepository) ListPaged(ctx context.Context, filter LeadFilter, req PageRequest) (PageResult[domain.Lead], error) {
	scope := func(db *gorm.DB) *gorm.DB {
		if filter.CustomerID != 0 {
			db = db.Where("customer_id = ?", filter.CustomerID)
		}
		if filter.StageID != 0 {
			db = db.Where("stage_id = ?", filter.StageID)
		}
		if filter.Status != "" {
			db = db.Where("status = ?", filter.Status)
		}
		return db
	}
	return r.store.listPaged(ctx, req, scope, "created_at desc, id desc", "Customer", "Stage")
}

func (r *GormLeadRepository) Update(ctx context.Context, id uint, updates map[string]any) error {
	err := r.store.update(ctx, id, updates)
	if errors.Is(err, ErrNotFound) {
		return ErrLeadNotFound
	}
	return err
}

func (r *GormLeadRepository) DeleteByID(ctx context.Context, id uint) error {
	err := r.store.deleteByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return ErrLeadNotFound
	}
	return err
}
