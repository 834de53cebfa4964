package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sandeepkv93/crm-dashboard-backend/internal/domain"
)

func TestCustomerRepositoryCRUDAndPagination(t *testing.T) {
	ctx := context.Background()
	repo := NewCustomerRepository(newRepositoryDBForTest(t))

	for i := 0; i < 3; i++ {
		c := &domain.Customer{Name: fmt.Sprintf("Customer %c", 'A'+i), Email: fmt.Sprintf("c%d@example.com", i), Company: "Acme"}
		if err := repo.Create(ctx, c); err != nil {
			t.Fatalf("create customer %d: %v", i, err)
		}
	}

	page, err := repo.ListPaged(ctx, CustomerFilter{}, PageRequest{Page: 1, PageSize: 2})
	if err != nil {
		t.Fatalf("list paged: %v", err)
	}
	if page.Total != 3 || page.TotalPages != 2 || len(page.Items) != 2 {
		t.Fatalf("unexpected page: total=%d pages=%d items=%d", page.Total, page.TotalPages, len(page.Items))
	}
	if page.Items[0].Name != "Customer C" {
		t.Fatalf("expected newest first, got %s", page.Items[0].Name)
	}

	filtered, err := repo.ListPaged(ctx, CustomerFilter{Search: "c1@"}, PageRequest{})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if filtered.Total != 1 || filtered.Items[0].Name != "Customer B" {
		t.Fatalf("unexpected search result: %+v", filtered)
	}

	target := page.Items[0].ID
	if err := repo.Update(ctx, target, map[string]any{"phone": "555-0100"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := repo.FindByID(ctx, target)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.Phone != "555-0100" || got.Status != domain.CustomerStatusActive {
		t.Fatalf("unexpected customer after update: %+v", got)
	}

	if err := repo.DeleteByID(ctx, target); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.FindByID(ctx, target); !errors.Is(err, ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound, got %v", err)
	}
	if err := repo.DeleteByID(ctx, target); !errors.Is(err, ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound on second delete, got %v", err)
	}
	if err := repo.Update(ctx, 9999, map[string]any{"name": "x"}); !errors.Is(err, ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound on update, got %v", err)
	}
}

func TestStageRepositoryOrdersByPositionAndRejectsDuplicateName(t *testing.T) {
	ctx := context.Background()
	repo := NewStageRepository(newRepositoryDBForTest(t))

	for _, s := range []domain.Stage{{Name: "Won", Position: 3}, {Name: "New", Position: 1}, {Name: "Qualified", Position: 2}} {
		s := s
		if err := repo.Create(ctx, &s); err != nil {
			t.Fatalf("create %s: %v", s.Name, err)
		}
	}
	if err := repo.Create(ctx, &domain.Stage{Name: "New", Position: 9}); !errors.Is(err, ErrStageNameTaken) {
		t.Fatalf("expected ErrStageNameTaken, got %v", err)
	}

	stages, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(stages) != 3 || stages[0].Name != "New" || stages[2].Name != "Won" {
		t.Fatalf("unexpected order: %+v", stages)
	}
}

func TestLeadRepositoryPreloadsCustomer(t *testing.T) {
	ctx := context.Background()
	db := newRepositoryDBForTest(t)
	customers := NewCustomerRepository(db)
	leads := NewLeadRepository(db)

	c := &domain.Customer{Name: "Globex", Email: "hq@globex.test"}
	if err := customers.Create(ctx, c); err != nil {
		t.Fatalf("create customer: %v", err)
	}
	l := &domain.Lead{CustomerID: c.ID, LeadSource: "referral", Value: 1200}
	if err := leads.Create(ctx, l); err != nil {
		t.Fatalf("create lead: %v", err)
	}

	got, err := leads.FindByID(ctx, l.ID)
	if err != nil {
		t.Fatalf("find lead: %v", err)
	}
	if got.Customer == nil || got.Customer.Email != "hq@globex.test" {
		t.Fatalf("expected preloaded customer, got %+v", got.Customer)
	}
	if got.Status != domain.LeadStatusNew {
		t.Fatalf("expected default status new, got %q", got.Status)
	}

	page, err := leads.ListPaged(ctx, LeadFilter{CustomerID: c.ID}, PageRequest{})
	if err != nil {
		t.Fatalf("list leads: %v", err)
	}
	if page.Total != 1 || page.Items[0].Customer == nil {
		t.Fatalf("unexpected lead page: %+v", page)
	}
	if _, err := leads.FindByID(ctx, 404); !errors.Is(err, ErrLeadNotFound) {
		t.Fatalf("expected ErrLeadNotFound, got %v", err)
	}
}

func TestContactRepositoryFilters(t *testing.T) {
	ctx := context.Background()
	db := newRepositoryDBForTest(t)
	c := &domain.Customer{Name: "Initech"}
	if err := NewCustomerRepository(db).Create(ctx, c); err != nil {
		t.Fatalf("create customer: %v", err)
	}
	repo := NewContactRepository(db)
	for _, ct := range []domain.Contact{
		{CustomerID: c.ID, ContactType: domain.ContactTypeEmail, ContactValue: "a@initech.test"},
		{CustomerID: c.ID, ContactType: domain.ContactTypePhone, ContactValue: "555-0101", IsPrimary: true},
		{CustomerID: c.ID, ContactType: domain.ContactTypeEmail, ContactValue: "b@initech.test"},
	} {
		ct := ct
		if err := repo.Create(ctx, &ct); err != nil {
			t.Fatalf("create contact: %v", err)
		}
	}

	byCustomer, err := repo.ListByCustomer(ctx, c.ID)
	if err != nil {
		t.Fatalf("list by customer: %v", err)
	}
	if len(byCustomer) != 3 || !byCustomer[0].IsPrimary {
		t.Fatalf("expected primary first, got %+v", byCustomer)
	}

	emails, err := repo.ListByType(ctx, domain.ContactTypeEmail)
	if err != nil {
		t.Fatalf("list by type: %v", err)
	}
	if len(emails) != 2 {
		t.Fatalf("expected 2 email contacts, got %d", len(emails))
	}
}

func TestTaskRepositoryOrdersByDueDateNullsLast(t *testing.T) {
	ctx := context.Background()
	repo := NewTaskRepository(newRepositoryDBForTest(t))

	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	later := base.Add(48 * time.Hour)
	sooner := base.Add(24 * time.Hour)
	for _, task := range []domain.Task{
		{Title: "undated"},
		{Title: "later", DueDate: &later},
		{Title: "sooner", DueDate: &sooner},
	} {
		task := task
		if err := repo.Create(ctx, &task); err != nil {
			t.Fatalf("create task: %v", err)
		}
	}

	tasks, err := repo.List(ctx, TaskFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	order := []string{tasks[0].Title, tasks[1].Title, tasks[2].Title}
	if order[0] != "sooner" || order[1] != "later" || order[2] != "undated" {
		t.Fatalf("unexpected order: %v", order)
	}
	if tasks[0].Priority != domain.TaskPriorityMedium || tasks[0].Status != domain.TaskStatusPending {
		t.Fatalf("expected defaults, got %+v", tasks[0])
	}
}

func TestCommunicationRepositoryHistoryNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewCommunicationRepository(newRepositoryDBForTest(t))

	for i, customerID := range []uint{1, 2, 1} {
		rec := &domain.CommunicationRecord{
			CustomerID:        customerID,
			CommunicationType: domain.CommunicationEmail,
			Recipient:         fmt.Sprintf("r%d@example.com", i),
			Status:            domain.CommunicationStatusSent,
		}
		if err := repo.Create(ctx, rec); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	all, err := repo.ListHistory(ctx, 0, 0)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 || all[0].Recipient != "r2@example.com" {
		t.Fatalf("unexpected history: %+v", all)
	}
	mine, err := repo.ListHistory(ctx, 1, 10)
	if err != nil {
		t.Fatalf("list for customer: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("expected 2 rows for customer 1, got %d", len(mine))
	}
}
