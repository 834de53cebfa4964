package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/sandeepkv93/crm-dashboard-backend/internal/domain"

	"gorm.io/gorm"
)

var ErrContactNotFound = fmt.Errorf("contact %w", ErrNotFound)

type ContactRepository interface {
	Create(ctx context.Context, contact *domain.Contact) error
	FindByID(ctx context.Context, id uint) (*domain.Contact, error)
	List(ctx context.Context) ([]domain.Contact, error)
	ListByCustomer(ctx context.Context, customerID uint) ([]domain.Contact, error)
	ListByType(ctx context.Context, contactType string) ([]domain.Contact, error)
	Update(ctx context.Context, id uint, updates map[string]any) error
	DeleteByID(ctx context.Context, id uint) error
}

type GormContactRepository struct{ store crudStore[domain.Contact] }

func NewContactRepository(db *gorm.DB) ContactRepository {
	return &GormContactRepository{store: crudStore[domain.Contact]{db: db, name: "contact"}}
}

func (r *GormContactRepository) Create(ctx context.Context, contact *domain.Contact) error {
	return r.store.create(ctx, contact)
}

func (r *GormContactRepository) FindByID(ctx context.Context, id uint) (*domain.Contact, error) {
	c, err := r.store.findByID(ctx, id, "Customer")
	if errors.Is(err, ErrNotFound) {
		return nil, ErrContactNotFound
	}
	return c, err
}

func (r *GormContactRepository) List(ctx context.Context) ([]domain.Contact, error) {
	return r.store.list(ctx, "list", func(db *gorm.DB) *gorm.DB {
		return db.Preload("Customer").Order("created_at desc, id desc")
	})
}

// ListByCustomer returns primary contacts first.
func (r *GormContactRepository) ListByCustomer(ctx context.Context, customerID uint) ([]domain.Contact, error) {
	return r.store.list(ctx, "list_by_customer", func(db *gorm.DB) *gorm.DB {
		return db.Where("customer_id = ?", customerID).Order("is_primary desc, created_at desc, id desc")
	})
}

func (r *GormContactRepository) ListByType(ctx context.Context, contactType string) ([]domain.Contact, error) {
	return r.store.list(ctx, "list_by_type", func(db *gorm.DB) *gorm.DB {
		return db.Preload("Customer").Where("contact_type = ?", contactType).Order("created_at desc, id desc")
	})
}

func (r *GormContactRepository) Update(ctx context.Context, id uint, updates map[string]any) error {
	err := r.store.update(ctx, id, updates)
	if errors.Is(err, ErrNotFound) {
		return ErrContactNotFound
	}
	return err
}

func (r *GormContactRepository) DeleteByID(ctx context.Context, id uint) error {
	err := r.store.deleteByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return ErrContactNotFound
	}
	return err
}
