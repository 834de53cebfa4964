package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/sandeepkv93/crm-dashboard-backend/internal/observability"

	"gorm.io/gorm"
)

//go:generate mockgen -destination=gomock/mocks.go -package=gomock github.com/sandeepkv93/crm-dashboard-backend/internal/repository CommunicationRepository,ContactRepository,CustomerRepository,LeadRepository,StageRepository,TaskRepository,UserRepository

var (
	ErrNotFound     = errors.New("not found")
	ErrDuplicateKey = errors.New("duplicate key")
)

// translateWriteError maps unique-constraint violations to ErrDuplicateKey.
// gorm translates them when TranslateError is on; the string match covers
// connections opened without it.
func translateWriteError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateKey
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint") || strings.Contains(msg, "23505") {
		return ErrDuplicateKey
	}
	return err
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrDuplicateKey):
		return "conflict"
	default:
		return "error"
	}
}

// crudStore implements the id-keyed operations shared by the CRM tables.
type crudStore[T any] struct {
	db   *gorm.DB
	name string
}

func (s crudStore[T]) record(ctx context.Context, op string, err error) {
	observability.RecordRepositoryOperation(ctx, s.name, op, outcomeOf(err))
}

func (s crudStore[T]) create(ctx context.Context, v *T) error {
	err := translateWriteError(s.db.WithContext(ctx).Create(v).Error)
	s.record(ctx, "create", err)
	return err
}

func (s crudStore[T]) findByID(ctx context.Context, id uint, preload ...string) (*T, error) {
	var v T
	q := s.db.WithContext(ctx)
	for _, p := range preload {
		q = q.Preload(p)
	}
	err := q.First(&v, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = ErrNotFound
	}
	s.record(ctx, "find_by_id", err)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (s crudStore[T]) update(ctx context.Context, id uint, updates map[string]any) error {
	var model T
	res := s.db.WithContext(ctx).Model(&model).Where("id = ?", id).Updates(updates)
	err := translateWriteError(res.Error)
	if err == nil && res.RowsAffected == 0 {
		err = ErrNotFound
	}
	s.record(ctx, "update", err)
	return err
}

func (s crudStore[T]) deleteByID(ctx context.Context, id uint) error {
	var model T
	res := s.db.WithContext(ctx).Delete(&model, id)
	err := res.Error
	if err == nil && res.RowsAffected == 0 {
		err = ErrNotFound
	}
	s.record(ctx, "delete_by_id", err)
	return err
}

func (s crudStore[T]) list(ctx context.Context, op string, scope func(*gorm.DB) *gorm.DB) ([]T, error) {
	items := make([]T, 0)
	err := scope(s.db.WithContext(ctx).Model(new(T))).Find(&items).Error
	s.record(ctx, op, err)
	return items, err
}

func (s crudStore[T]) listPaged(ctx context.Context, req PageRequest, scope func(*gorm.DB) *gorm.DB, order string, preload ...string) (PageResult[T], error) {
	normalized := normalizePageRequest(req)
	result := PageResult[T]{
		Items:    make([]T, 0),
		Page:     normalized.Page,
		PageSize: normalized.PageSize,
	}

	base := scope(s.db.WithContext(ctx).Model(new(T)))
	if err := base.Count(&result.Total).Error; err != nil {
		s.record(ctx, "list_paged", err)
		return PageResult[T]{}, err
	}
	q := scope(s.db.WithContext(ctx).Model(new(T)))
	for _, p := range preload {
		q = q.Preload(p)
	}
	offset := (normalized.Page - 1) * normalized.PageSize
	if err := q.Order(order).Offset(offset).Limit(normalized.PageSize).Find(&result.Items).Error; err != nil {
		s.record(ctx, "list_paged", err)
		return PageResult[T]{}, err
	}
	result.TotalPages = calcTotalPages(result.Total, normalized.PageSize)
	s.record(ctx, "list_paged", nil)
	return result, nil
}

