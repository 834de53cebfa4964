package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/sandeepkv93/crm-dashboard-backend/internal/domain"

	"gorm.io/gorm"
)

var ErrTaskNotFound = fmt.Errorf("task %w", ErrNotFound)

type TaskFilter struct {
	CustomerID uint
	Status     string
}

type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) error
	FindByID(ctx context.Context, id uint) (*domain.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
	Update(ctx context.Context, id uint, updates map[string]any) error
	DeleteByID(ctx context.Context, id uint) error
}

type GormTaskRepository struct{ store crudStore[domain.Task] }

func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{store: crudStore[domain.Task]{db: db, name: "task"}}
}

func (r *GormTaskRepository) Create(ctx context.Context, task *domain.Task) error {
	return r.store.create(ctx, task)
}

func (r *GormTaskRepository) FindByID(ctx context.Context, id uint) (*domain.Task, error) {
	t, err := r.store.findByID(ctx, id, "Customer")
	if errors.Is(err, ErrNotFound) {
		return nil, ErrTaskNotFound
	}
	return t, err
}

// List orders by due date ascending with undated tasks last.
func (r *GormTaskRepository) List(ctx context.Context, filter TaskFilter) ([]domain.Task, error) {
	return r.store.list(ctx, "list", func(db *gorm.DB) *gorm.DB {
		if filter.CustomerID != 0 {
			db = db.Where("customer_id = ?", filter.CustomerID)
		}
		if filter.Status != "" {
			db = db.Where("status = ?", filter.Status)
		}
		return db.Preload("Customer").
			Order("CASE WHEN due_date IS NULL THEN 1 ELSE 0 END").
			Order("due_date asc").
			Order("id asc")
	})
}

func (r *GormTaskRepository) Update(ctx context.Context, id uint, updates map[string]any) error {
	err := r.store.update(ctx, id, updates)
	if errors.Is(err, ErrNotFound) {
		return ErrTaskNotFound
	}
	return err
}

func (r *GormTaskRepository) DeleteByID(ctx context.Context, id uint) error {
	err := r.store.deleteByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return ErrTaskNotFound
	}
	return err
}
