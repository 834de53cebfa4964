package service

import (
	"context"
	"errors"
	"time"

	"github.com/sandeepkv93/crm-dashboard-backend/internal/observability"
	"github.com/sandeepkv93/crm-dashboard-backend/internal/repository"
)

// crmOp records one CRM operation on completion. Call done with the
// operation's final error.
type crmOp struct {
	ctx    context.Context
	entity string
	action string
	start  time.Time
}

func startOp(ctx context.Context, entity, action string) crmOp {
	return crmOp{ctx: ctx, entity: entity, action: action, start: time.Now()}
}

func (o crmOp) done(err error) {
	observability.RecordCRMOperation(o.ctx, o.entity, o.action, crmOutcome(err), time.Since(o.start))
}

func crmOutcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrInvalidInput):
		return "bad_request"
	case errors.Is(err, repository.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}

// repoErr passes not-found through and marks everything else as a storage
// failure.
func repoErr(op string, err error) error {
	if err == nil || errors.Is(err, repository.ErrNotFound) {
		return err
	}
	return storageFailure(op, err)
}

func checkLen(field, v string, max int) error {
	if len(v) > max {
		return invalid(field + " is too long")
	}
	return nil
}

var ErrUnknownCustomer = invalid("customer does not exist")

func ensureCustomer(ctx context.Context, customers repository.CustomerRepository, id uint) error {
	if _, err := customers.FindByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUnknownCustomer
		}
		return storageFailure("find customer", err)
	}
	return nil
}
