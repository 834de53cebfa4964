package service

import (
	"context"
	"strings"
	"time"

	"github.com/sandeepkv93/crm-dashboard-backend/internal/domain"
	"github.com/sandeepkv93/crm-dashboard-backend/internal/repository"
)

var (
	ErrTaskTitleRequired   = invalid("title is required")
	ErrTaskInvalidPriority = invalid("priority must be one of low, medium, high")
	ErrTaskInvalidStatus   = invalid("status must be one of pending, in_progress, completed")
)

type TaskInput struct {
	CustomerID  *uint
	Title       string
	Description string
	DueDate     *time.Time
	Priority    string
	Status      string
}

type TaskUpdate struct {
	CustomerID    *uint
	ClearCustomer bool
	Title         *string
	Description   *string
	DueDate       *time.Time
	ClearDueDate  bool
	Priority      *string
	Status        *string
}

type TaskService struct {
	tasks     repository.TaskRepository
	customers repository.CustomerRepository
}

func NewTaskService(tasks repository.TaskRepository, customers repository.CustomerRepository) *TaskService {
	return &TaskService{tasks: tasks, customers: customers}
}

func (s *TaskService) Create(ctx context.Context, in TaskInput) (t *domain.Task, err error) {
	op := startOp(ctx, "task", "create")
	defer func() { op.done(err) }()

	t = &domain.Task{
		CustomerID:  in.CustomerID,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		DueDate:     in.DueDate,
		Priority:    strings.TrimSpace(in.Priority),
		Status:      strings.TrimSpace(in.Status),
	}
	if t.Priority == "" {
		t.Priority = domain.TaskPriorityMedium
	}
	if t.Status == "" {
		t.Status = domain.TaskStatusPending
	}
	if t.Title == "" {
		return nil, ErrTaskTitleRequired
	}
	if err := checkLen("title", t.Title, 255); err != nil {
		return nil, err
	}
	if err := checkLen("description", t.Description, 2000); err != nil {
		return nil, err
	}
	if !domain.IsValidTaskPriority(t.Priority) {
		return nil, ErrTaskInvalidPriority
	}
	if !domain.IsValidTaskStatus(t.Status) {
		return nil, ErrTaskInvalidStatus
	}
	if t.CustomerID != nil {
		if err := ensureCustomer(ctx, s.customers, *t.CustomerID); err != nil {
			return nil, err
		}
	}
	if err := s.tasks.Create(ctx, t); err != nil {
		return nil, repoErr("create task", err)
	}
	return t, nil
}

func (s *TaskService) Get(ctx context.Context, id uint) (t *domain.Task, err error) {
	op := startOp(ctx, "task", "get")
	defer func() { op.done(err) }()

	t, err = s.tasks.FindByID(ctx, id)
	return t, repoErr("find task", err)
}

func (s *TaskService) List(ctx context.Context, filter repository.TaskFilter) (items []domain.Task, err error) {
	op := startOp(ctx, "task", "list")
	defer func() { op.done(err) }()

	if filter.Status != "" && !domain.IsValidTaskStatus(filter.Status) {
		return nil, ErrTaskInvalidStatus
	}
	items, err = s.tasks.List(ctx, filter)
	return items, repoErr("list tasks", err)
}

func (s *TaskService) Update(ctx context.Context, id uint, in TaskUpdate) (t *domain.Task, err error) {
	op := startOp(ctx, "task", "update")
	defer func() { op.done(err) }()

	updates := map[string]any{}
	switch {
	case in.ClearCustomer:
		updates["customer_id"] = nil
	case in.CustomerID != nil:
		if err := ensureCustomer(ctx, s.customers, *in.CustomerID); err != nil {
			return nil, err
		}
		updates["customer_id"] = *in.CustomerID
	}
	if in.Title != nil {
		v := strings.TrimSpace(*in.Title)
		if v == "" {
			return nil, ErrTaskTitleRequired
		}
		if err := checkLen("title", v, 255); err != nil {
			return nil, err
		}
		updates["title"] = v
	}
	if in.Description != nil {
		v := strings.TrimSpace(*in.Description)
		if err := checkLen("description", v, 2000); err != nil {
			return nil, err
		}
		updates["description"] = v
	}
	switch {
	case in.ClearDueDate:
		updates["due_date"] = nil
	case in.DueDate != nil:
		updates["due_date"] = *in.DueDate
	}
	if in.Priority != nil {
		v := strings.TrimSpace(*in.Priority)
		if !domain.IsValidTaskPriority(v) {
			return nil, ErrTaskInvalidPriority
		}
		updates["priority"] = v
	}
	if in.Status != nil {
		v := strings.TrimSpace(*in.Status)
		if !domain.IsValidTaskStatus(v) {
			return nil, ErrTaskInvalidStatus
		}
		updates["status"] = v
	}
	if len(updates) == 0 {
		return nil, ErrNoUpdates
	}
	if err := s.tasks.Update(ctx, id, updates); err != nil {
		return nil, repoErr("update task", err)
	}
	t, err = s.tasks.FindByID(ctx, id)
	return t, repoErr("find task", err)
}

func (s *TaskService) Delete(ctx context.Context, id uint) (err error) {
	op := startOp(ctx, "task", "delete")
	defer func() { op.done(err) }()

	return repoErr("delete task", s.tasks.DeleteByID(ctx, id))
}
