package service

import (
	"context"
	"strings"

	"github.com/sandeepkv93/crm-dashboard-backend/internal/domain"
	"github.com/sandeepkv93/crm-dashboard-backend/internal/repository"
)

var (
	ErrContactCustomerRequired = invalid("customer_id is required")
	ErrContactInvalidType      = invalid("contact_type must be one of email, phone, address, social")
	ErrContactValueRequired    = invalid("contact_value is required")
)

type ContactInput struct {
	CustomerID   uint
	ContactType  string
	ContactValue string
	IsPrimary    bool
}

type ContactUpdate struct {
	ContactType  *string
	ContactValue *string
	IsPrimary    *bool
}

type ContactService struct {
	contacts  repository.ContactRepository
	customers repository.CustomerRepository
}

func NewContactService(contacts repository.ContactRepository, customers repository.CustomerRepository) *ContactService {
	return &ContactService{contacts: contacts, customers: customers}
}

func (s *ContactService) Create(ctx context.Context, in ContactInput) (c *domain.Contact, err error) {
	op := startOp(ctx, "contact", "create")
	defer func() { op.done(err) }()

	if in.CustomerID == 0 {
		return nil, ErrContactCustomerRequired
	}
	contactType := strings.ToLower(strings.TrimSpace(in.ContactType))
	if !domain.IsValidContactType(contactType) {
		return nil, ErrContactInvalidType
	}
	value := strings.TrimSpace(in.ContactValue)
	if value == "" {
		return nil, ErrContactValueRequired
	}
	if err := checkLen("contact_value", value, 500); err != nil {
		return nil, err
	}
	if err := ensureCustomer(ctx, s.customers, in.CustomerID); err != nil {
		return nil, err
	}

	c = &domain.Contact{CustomerID: in.CustomerID, ContactType: contactType, ContactValue: value, IsPrimary: in.IsPrimary}
	if err := s.contacts.Create(ctx, c); err != nil {
		return nil, repoErr("create contact", err)
	}
	return c, nil
}

func (s *ContactService) Get(ctx context.Context, id uint) (c *domain.Contact, err error) {
	op := startOp(ctx, "contact", "get")
	defer func() { op.done(err) }()

	c, err = s.contacts.FindByID(ctx, id)
	return c, repoErr("find contact", err)
}

func (s *ContactService) List(ctx context.Context) (items []domain.Contact, err error) {
	op := startOp(ctx, "contact", "list")
	defer func() { op.done(err) }()

	items, err = s.contacts.List(ctx)
	return items, repoErr("list contacts", err)
}

func (s *ContactService) ListByCustomer(ctx context.Context, customerID uint) (items []domain.Contact, err error) {
	op := startOp(ctx, "contact", "list_by_customer")
	defer func() { op.done(err) }()

	items, err = s.contacts.ListByCustomer(ctx, customerID)
	return items, repoErr("list customer contacts", err)
}

func (s *ContactService) ListByType(ctx context.Context, contactType string) (items []domain.Contact, err error) {
	op := startOp(ctx, "contact", "list_by_type")
	defer func() { op.done(err) }()

	contactType = strings.ToLower(strings.TrimSpace(contactType))
	if !domain.IsValidContactType(contactType) {
		return nil, ErrContactInvalidType
	}
	items, err = s.contacts.ListByType(ctx, contactType)
	return items, repoErr("list contacts by type", err)
}

func (s *ContactService) Update(ctx context.Context, id uint, in ContactUpdate) (c *domain.Contact, err error) {
	op := startOp(ctx, "contact", "update")
	defer func() { op.done(err) }()

	updates := map[string]any{}
	if in.ContactType != nil {
		v := strings.ToLower(strings.TrimSpace(*in.ContactType))
		if !domain.IsValidContactType(v) {
			return nil, ErrContactInvalidType
		}
		updates["contact_type"] = v
	}
	if in.ContactValue != nil {
		v := strings.TrimSpace(*in.ContactValue)
		if v == "" {
			return nil, ErrContactValueRequired
		}
		if err := checkLen("contact_value", v, 500); err != nil {
			return nil, err
		}
		updates["contact_value"] = v
	}
	if in.IsPrimary != nil {
		updates["is_primary"] = *in.IsPrimary
	}
	if len(updates) == 0 {
		return nil, ErrNoUpdates
	}
	if err := s.contacts.Update(ctx, id, updates); err != nil {
		return nil, repoErr("update contact", err)
	}
	c, err = s.contacts.FindByID(ctx, id)
	return c, repoErr("find contact", err)
}

func (s *ContactService) Delete(ctx context.Context, id uint) (err error) {
	op := startOp(ctx, "contact", "delete")
	defer func() { op.done(err) }()

	return repoErr("delete contact", s.contacts.DeleteByID(ctx, id))
}
