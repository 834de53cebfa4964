package service

import (
	"context"
	"errors"
	"strings"

	"github.com/sandeepkv93/crm-dashboard-backend/internal/domain"
	"github.com/sandeepkv93/crm-dashboard-backend/internal/repository"
)

var (
	ErrLeadCustomerRequired = invalid("customer_id is required")
	ErrLeadUnknownStage     = invalid("stage does not exist")
	ErrLeadInvalidValue     = invalid("value must be >= 0")
)

type LeadInput struct {
	CustomerID  uint
	StageID     *uint
	LeadSource  string
	Status      string
	Value       float64
	Description string
}

type LeadUpdate struct {
	CustomerID  *uint
	StageID     *uint
	ClearStage  bool
	LeadSource  *string
	Status      *string
	Value       *float64
	Description *string
}

type LeadService struct {
	leads     repository.LeadRepository
	customers repository.CustomerRepository
	stages    repository.StageRepository
}

func NewLeadService(leads repository.LeadRepository, customers repository.CustomerRepository, stages repository.StageRepository) *LeadService {
	return &LeadService{leads: leads, customers: customers, stages: stages}
}

func (s *LeadService) Create(ctx context.Context, in LeadInput) (lead *domain.Lead, err error) {
	op := startOp(ctx, "lead", "create")
	defer func() { op.done(err) }()

	if in.CustomerID == 0 {
		return nil, ErrLeadCustomerRequired
	}
	if in.Value < 0 {
		return nil, ErrLeadInvalidValue
	}
	source := strings.TrimSpace(in.LeadSource)
	description := strings.TrimSpace(in.Description)
	if err := checkLen("lead_source", source, 120); err != nil {
		return nil, err
	}
	if err := checkLen("description", description, 2000); err != nil {
		return nil, err
	}
	if err := s.checkRefs(ctx, &in.CustomerID, in.StageID); err != nil {
		return nil, err
	}
	status := strings.TrimSpace(in.Status)
	if status == "" {
		status = domain.LeadStatusNew
	}

	lead = &domain.Lead{
		CustomerID:  in.CustomerID,
		StageID:     in.StageID,
		LeadSource:  source,
		Status:      status,
		Value:       in.Value,
		Description: description,
	}
	if err := s.leads.Create(ctx, lead); err != nil {
		return nil, repoErr("create lead", err)
	}
	lead, err = s.leads.FindByID(ctx, lead.ID)
	return lead, repoErr("find lead", err)
}

func (s *LeadService) Get(ctx context.Context, id uint) (lead *domain.Lead, err error) {
	op := startOp(ctx, "lead", "get")
	defer func() { op.done(err) }()

	lead, err = s.leads.FindByID(ctx, id)
	return lead, repoErr("find lead", err)
}

func (s *LeadService) List(ctx context.Context, filter repository.LeadFilter, req repository.PageRequest) (res repository.PageResult[domain.Lead], err error) {
	op := startOp(ctx, "lead", "list")
	defer func() { op.done(err) }()

	res, err = s.leads.ListPaged(ctx, filter, req)
	return res, repoErr("list leads", err)
}

func (s *LeadService) Update(ctx context.Context, id uint, in LeadUpdate) (lead *domain.Lead, err error) {
	op := startOp(ctx, "lead", "update")
	defer func() { op.done(err) }()

	updates := map[string]any{}
	if in.CustomerID != nil {
		if *in.CustomerID == 0 {
			return nil, ErrLeadCustomerRequired
		}
		updates["customer_id"] = *in.CustomerID
	}
	switch {
	case in.ClearStage:
		updates["stage_id"] = nil
	case in.StageID != nil:
		updates["stage_id"] = *in.StageID
	}
	if in.LeadSource != nil {
		v := strings.TrimSpace(*in.LeadSource)
		if err := checkLen("lead_source", v, 120); err != nil {
			return nil, err
		}
		updates["lead_source"] = v
	}
	if in.Status != nil {
		v := strings.TrimSpace(*in.Status)
		if v == "" {
			return nil, invalid("status must not be empty")
		}
		updates["status"] = v
	}
	if in.Value != nil {
		if *in.Value < 0 {
			return nil, ErrLeadInvalidValue
		}
		updates["value"] = *in.Value
	}
	if in.Description != nil {
		v := strings.TrimSpace(*in.Description)
		if err := checkLen("description", v, 2000); err != nil {
			return nil, err
		}
		updates["description"] = v
	}
	if len(updates) == 0 {
		return nil, ErrNoUpdates
	}
	stageID := in.StageID
	if in.ClearStage {
		stageID = nil
	}
	if err := s.checkRefs(ctx, in.CustomerID, stageID); err != nil {
		return nil, err
	}

	if err := s.leads.Update(ctx, id, updates); err != nil {
		return nil, repoErr("update lead", err)
	}
	lead, err = s.leads.FindByID(ctx, id)
	return lead, repoErr("find lead", err)
}

func (s *LeadService) Delete(ctx context.Context, id uint) (err error) {
	op := startOp(ctx, "lead", "delete")
	defer func() { op.done(err) }()

	return repoErr("delete lead", s.leads.DeleteByID(ctx, id))
}

// checkRefs turns dangling customer or stage references into validation
// errors instead of foreign key failures.
func (s *LeadService) checkRefs(ctx context.Context, customerID, stageID *uint) error {
	if customerID != nil {
		if err := ensureCustomer(ctx, s.customers, *customerID); err != nil {
			return err
		}
	}
	if stageID != nil {
		if _, err := s.stages.FindByID(ctx, *stageID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrLeadUnknownStage
			}
			return storageFailure("find stage", err)
		}
	}
	return nil
}
