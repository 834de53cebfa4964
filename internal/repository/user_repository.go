package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/sandeepkv93/crm-dashboard-backend/internal/domain"

	"gorm.io/gorm"
)

var (
	ErrUserNotFound = fmt.Errorf("user %w", ErrNotFound)
	ErrEmailTaken   = fmt.Errorf("email %w", ErrDuplicateKey)
)

type UserRepository interface {
	FindByID(ctx context.Context, id uint) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// Create inserts exactly one row. A concurrent or prior row with the
	// same email yields ErrEmailTaken from the unique index.
	Create(ctx context.Context, user *domain.User) error
}

type GormUserRepository struct{ store crudStore[domain.User] }

func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{store: crudStore[domain.User]{db: db, name: "user"}}
}

func (r *GormUserRepository) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	u, err := r.store.findByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.store.db.WithContext(ctx).Where("email = ?", email).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		r.store.record(ctx, "find_by_email", ErrNotFound)
		return nil, ErrUserNotFound
	}
	r.store.record(ctx, "find_by_email", err)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *GormUserRepository) Create(ctx context.Context, user *domain.User) error {
	err := r.store.create(ctx, user)
	if errors.Is(err, ErrDuplicateKey) {
		return ErrEmailTaken
	}
	return err
}
