package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sandeepkv93/crm-dashboard-backend/internal/domain"

	"gorm.io/gorm"
)

var ErrCustomerNotFound = fmt.Errorf("customer %w", ErrNotFound)

type CustomerFilter struct {
	Search string
	Status string
}

type CustomerRepository interface {
	Create(ctx context.Context, customer *domain.Customer) error
	FindByID(ctx context.Context, id uint) (*domain.Customer, error)
	ListPaged(ctx context.Context, filter CustomerFilter, req PageRequest) (PageResult[domain.Customer], error)
	Update(ctx context.Context, id uint, updates map[string]any) error
	DeleteByID(ctx context.Context, id uint) error
}

type GormCustomerRepository struct{ store crudStore[domain.Customer] }

func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &GormCustomerRepository{store: crudStore[domain.Customer]{db: db, name: "customer"}}
}

func (r *GormCustomerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	return r.store.create(ctx, customer)
}

func (r *GormCustomerRepository) FindByID(ctx context.Context, id uint) (*domain.Customer, error) {
	c, err := r.store.findByID(ctx, id)
	return c, customerErr(err)
}

func (r *GormCustomerRepository) ListPaged(ctx context.Context, filter CustomerFilter, req PageRequest) (PageResult[domain.Customer], error) {
	scope := func(db *gorm.DB) *gorm.DB {
		if s := strings.ToLower(strings.TrimSpace(filter.Search)); s != "" {
			like := "%" + s + "%"
			db = db.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(company) LIKE ?", like, like, like)
		}
		if filter.Status != "" {
			db = db.Where("status = ?", filter.Status)
		}
		return db
	}
	return r.store.listPaged(ctx, req, scope, "id desc")
}

func (r *GormCustomerRepository) Update(ctx context.Context, id uint, updates map[string]any) error {
	return customerErr(r.store.update(ctx, id, updates))
}

func (r *GormCustomerRepository) DeleteByID(ctx context.Context, id uint) error {
	return customerErr(r.store.deleteByID(ctx, id))
}

func customerErr(err error) error {
	if errors.Is(err, ErrNotFound) {
		return ErrCustomerNotFound
	}
	return err
}
