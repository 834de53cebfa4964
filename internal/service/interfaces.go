package service

import (
	"context"

	"github.com/sandeepkv93/crm-dashboard-backend/internal/domain"
	"github.com/sandeepkv93/crm-dashboard-backend/internal/repository"
)

//go:generate mockgen -destination=gomock/mocks.go -package=gomock github.com/sandeepkv93/crm-dashboard-backend/internal/service AuthServiceInterface,CommunicationServiceInterface,ContactServiceInterface,CustomerServiceInterface,LeadServiceInterface,StageServiceInterface,TaskServiceInterface

type AuthServiceInterface interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, in LoginInput) (*LoginResult, error)
}

type CustomerServiceInterface interface {
	Create(ctx context.Context, in CustomerInput) (*domain.Customer, error)
	Get(ctx context.Context, id uint) (*domain.Customer, error)
	List(ctx context.Context, filter repository.CustomerFilter, req repository.PageRequest) (repository.PageResult[domain.Customer], error)
	Update(ctx context.Context, id uint, in CustomerUpdate) (*domain.Customer, error)
	Delete(ctx context.Context, id uint) error
}

type StageServiceInterface interface {
	List(ctx context.Context) ([]domain.Stage, error)
	Create(ctx context.Context, in StageInput) (*domain.Stage, error)
	Update(ctx context.Context, id uint, in StageUpdate) (*domain.Stage, error)
	Delete(ctx context.Context, id uint) error
}

type LeadServiceInterface interface {
	Create(ctx context.Context, in LeadInput) (*domain.Lead, error)
	Get(ctx context.Context, id uint) (*domain.Lead, error)
	List(ctx context.Context, filter repository.LeadFilter, req repository.PageRequest) (repository.PageResult[domain.Lead], error)
	Update(ctx context.Context, id uint, in LeadUpdate) (*domain.Lead, error)
	Delete(ctx context.Context, id uint) error
}

type ContactServiceInterface interface {
	Create(ctx context.Context, in ContactInput) (*domain.Contact, error)
	Get(ctx context.Context, id uint) (*domain.Contact, error)
	List(ctx context.Context) ([]domain.Contact, error)
	ListByCustomer(ctx context.Context, customerID uint) ([]domain.Contact, error)
	ListByType(ctx context.Context, contactType string) ([]domain.Contact, error)
	Update(ctx context.Context, id uint, in ContactUpdate) (*domain.Contact, error)
	Delete(ctx context.Context, id uint) error
}

type TaskServiceInterface interface {
	Create(ctx context.Context, in TaskInput) (*domain.Task, error)
	Get(ctx context.Context, id uint) (*domain.Task, error)
	List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error)
	Update(ctx context.Context, id uint, in TaskUpdate) (*domain.Task, error)
	Delete(ctx context.Context, id uint) error
}

type CommunicationServiceInterface interface {
	SendEmail(ctx context.Context, in DispatchInput) (*domain.CommunicationRecord, error)
	SendSMS(ctx context.Context, in DispatchInput) (*domain.CommunicationRecord, error)
	MakeCall(ctx context.Context, in DispatchInput) (*domain.CommunicationRecord, error)
	History(ctx context.Context, customerID uint, limit int) ([]domain.CommunicationRecord, error)
	ContactBook(ctx context.Context, customerID uint) (*domain.CustomerContactBook, error)
}

var (
	_ AuthServiceInterface          = (*AuthService)(nil)
	_ CustomerServiceInterface      = (*CustomerService)(nil)
	_ StageServiceInterface         = (*StageService)(nil)
	_ LeadServiceInterface          = (*LeadService)(nil)
	_ ContactServiceInterface       = (*ContactService)(nil)
	_ TaskServiceInterface          = (*TaskService)(nil)
	_ CommunicationServiceInterface = (*CommunicationService)(nil)
)
