package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sandeepkv93/crm-dashboard-backend/internal/domain"
	"github.com/sandeepkv93/crm-dashboard-backend/internal/observability"
	"github.com/sandeepkv93/crm-dashboard-backend/internal/repository"
)

const customerCacheNamespace = "customers"

var (
	ErrCustomerNameRequired = invalid("name is required")
	ErrCustomerInvalidEmail = invalid("email is not valid")
	ErrCustomerInvalidState = invalid("status must be active or inactive")
)

type CustomerInput struct {
	Name    string
	Email   string
	Phone   string
	Company string
	Address string
	Status  string
}

type CustomerUpdate struct {
	Name    *string
	Email   *string
	Phone   *string
	Company *string
	Address *string
	Status  *string
}

type CustomerService struct {
	repo     repository.CustomerRepository
	cache    ListCacheStore
	cacheTTL time.Duration
	logger   *slog.Logger
}

func NewCustomerService(repo repository.CustomerRepository, cache ListCacheStore, cacheTTL time.Duration, logger *slog.Logger) *CustomerService {
	if cache == nil {
		cache = NewNoopListCacheStore()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CustomerService{repo: repo, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

func (s *CustomerService) Create(ctx context.Context, in CustomerInput) (c *domain.Customer, err error) {
	op := startOp(ctx, "customer", "create")
	defer func() { op.done(err) }()

	c = &domain.Customer{
		Name:    strings.TrimSpace(in.Name),
		Email:   strings.TrimSpace(in.Email),
		Phone:   strings.TrimSpace(in.Phone),
		Company: strings.TrimSpace(in.Company),
		Address: strings.TrimSpace(in.Address),
		Status:  strings.TrimSpace(in.Status),
	}
	if c.Status == "" {
		c.Status = domain.CustomerStatusActive
	}
	if err := validateCustomer(c); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, repoErr("create customer", err)
	}
	s.invalidate(ctx)
	return c, nil
}

func (s *CustomerService) Get(ctx context.Context, id uint) (c *domain.Customer, err error) {
	op := startOp(ctx, "customer", "get")
	defer func() { op.done(err) }()

	c, err = s.repo.FindByID(ctx, id)
	return c, repoErr("find customer", err)
}

// List serves pages from the list cache when possible. Cache failures only
// cost a database read.
func (s *CustomerService) List(ctx context.Context, filter repository.CustomerFilter, req repository.PageRequest) (res repository.PageResult[domain.Customer], err error) {
	op := startOp(ctx, "customer", "list")
	defer func() { op.done(err) }()

	key := fmt.Sprintf("search=%s|status=%s|page=%d|size=%d", strings.ToLower(strings.TrimSpace(filter.Search)), filter.Status, req.Page, req.PageSize)
	if payload, ok, cerr := s.cache.Get(ctx, customerCacheNamespace, key); cerr != nil {
		observability.RecordListCacheEvent(ctx, customerCacheNamespace, "error")
		s.logger.WarnContext(ctx, "list cache read failed", "namespace", customerCacheNamespace, "error", cerr.Error())
	} else if ok {
		var cached repository.PageResult[domain.Customer]
		if json.Unmarshal(payload, &cached) == nil {
			observability.RecordListCacheEvent(ctx, customerCacheNamespace, "hit")
			return cached, nil
		}
	}
	observability.RecordListCacheEvent(ctx, customerCacheNamespace, "miss")

	res, err = s.repo.ListPaged(ctx, filter, req)
	if err != nil {
		return repository.PageResult[domain.Customer]{}, repoErr("list customers", err)
	}
	if payload, merr := json.Marshal(res); merr == nil {
		if cerr := s.cache.Set(ctx, customerCacheNamespace, key, payload, s.cacheTTL); cerr != nil {
			s.logger.WarnContext(ctx, "list cache write failed", "namespace", customerCacheNamespace, "error", cerr.Error())
		}
	}
	return res, nil
}

func (s *CustomerService) Update(ctx context.Context, id uint, in CustomerUpdate) (c *domain.Customer, err error) {
	op := startOp(ctx, "customer", "update")
	defer func() { op.done(err) }()

	updates := map[string]any{}
	setTrimmed := func(col string, v *string) {
		if v != nil {
			updates[col] = strings.TrimSpace(*v)
		}
	}
	setTrimmed("name", in.Name)
	setTrimmed("email", in.Email)
	setTrimmed("phone", in.Phone)
	setTrimmed("company", in.Company)
	setTrimmed("address", in.Address)
	setTrimmed("status", in.Status)
	if len(updates) == 0 {
		return nil, ErrNoUpdates
	}
	if v, ok := updates["name"].(string); ok && v == "" {
		return nil, ErrCustomerNameRequired
	}
	if v, ok := updates["email"].(string); ok && v != "" && !validEmail(v) {
		return nil, ErrCustomerInvalidEmail
	}
	if v, ok := updates["status"].(string); ok && !validCustomerStatus(v) {
		return nil, ErrCustomerInvalidState
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, repoErr("update customer", err)
	}
	s.invalidate(ctx)
	c, err = s.repo.FindByID(ctx, id)
	return c, repoErr("find customer", err)
}

func (s *CustomerService) Delete(ctx context.Context, id uint) (err error) {
	op := startOp(ctx, "customer", "delete")
	defer func() { op.done(err) }()

	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return repoErr("delete customer", err)
	}
	s.invalidate(ctx)
	return nil
}

func (s *CustomerService) invalidate(ctx context.Context) {
	if err := s.cache.InvalidateNamespace(ctx, customerCacheNamespace); err != nil {
		observability.RecordListCacheEvent(ctx, customerCacheNamespace, "error")
		s.logger.WarnContext(ctx, "list cache invalidation failed", "namespace", customerCacheNamespace, "error", err.Error())
	}
}

func validateCustomer(c *domain.Customer) error {
	if c.Name == "" {
		return ErrCustomerNameRequired
	}
	if err := checkLen("name", c.Name, 255); err != nil {
		return err
	}
	if c.Email != "" && !validEmail(c.Email) {
		return ErrCustomerInvalidEmail
	}
	if err := checkLen("address", c.Address, 500); err != nil {
		return err
	}
	if !validCustomerStatus(c.Status) {
		return ErrCustomerInvalidState
	}
	return nil
}

func validCustomerStatus(v string) bool {
	return v == domain.CustomerStatusActive || v == domain.CustomerStatusInactive
}
