package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/sandeepkv93/crm-dashboard-backend/internal/channel"
	"github.com/sandeepkv93/crm-dashboard-backend/internal/domain"
	"github.com/sandeepkv93/crm-dashboard-backend/internal/observability"
	"github.com/sandeepkv93/crm-dashboard-backend/internal/repository"
)

const defaultCallGreeting = "Hello, this is a call from your account team."

var (
	// ErrDispatchFailed means the provider rejected or never received the
	// message. The attempt is still recorded in history.
	ErrDispatchFailed = errors.New("communication dispatch failed")

	ErrRecipientRequired = invalid("recipient is required")
	ErrMessageRequired   = invalid("message is required")
	ErrSubjectRequired   = invalid("subject is required")
)

type DispatchInput struct {
	CustomerID uint
	Recipient  string
	Subject    string
	Message    string
}

type CommunicationService struct {
	history   repository.CommunicationRepository
	customers repository.CustomerRepository
	contacts  repository.ContactRepository
	senders   channel.Senders
	logger    *slog.Logger
}

func NewCommunicationService(
	history repository.CommunicationRepository,
	customers repository.CustomerRepository,
	contacts repository.ContactRepository,
	senders channel.Senders,
	logger *slog.Logger,
) *CommunicationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CommunicationService{history: history, customers: customers, contacts: contacts, senders: senders, logger: logger}
}

func (s *CommunicationService) SendEmail(ctx context.Context, in DispatchInput) (*domain.CommunicationRecord, error) {
	if strings.TrimSpace(in.Subject) == "" {
		return nil, ErrSubjectRequired
	}
	if strings.TrimSpace(in.Message) == "" {
		return nil, ErrMessageRequired
	}
	return s.dispatch(ctx, s.senders.Email, channel.KindEmail, in)
}

func (s *CommunicationService) SendSMS(ctx context.Context, in DispatchInput) (*domain.CommunicationRecord, error) {
	if strings.TrimSpace(in.Message) == "" {
		return nil, ErrMessageRequired
	}
	in.Subject = ""
	return s.dispatch(ctx, s.senders.SMS, channel.KindSMS, in)
}

func (s *CommunicationService) MakeCall(ctx context.Context, in DispatchInput) (*domain.CommunicationRecord, error) {
	if strings.TrimSpace(in.Message) == "" {
		in.Message = defaultCallGreeting
	}
	in.Subject = ""
	return s.dispatch(ctx, s.senders.Call, channel.KindCall, in)
}

// dispatch writes exactly one history row per attempt that reaches a
// sender, whatever the provider outcome.
func (s *CommunicationService) dispatch(ctx context.Context, sender channel.Sender, kind channel.Kind, in DispatchInput) (rec *domain.CommunicationRecord, err error) {
	op := startOp(ctx, "communication", string(kind))
	defer func() { op.done(err) }()

	if in.CustomerID == 0 {
		return nil, invalid("customer_id is required")
	}
	recipient := strings.TrimSpace(in.Recipient)
	if recipient == "" {
		return nil, ErrRecipientRequired
	}
	if kind == channel.KindEmail && !validEmail(recipient) {
		return nil, invalid("recipient must be a valid email")
	}
	if err := ensureCustomer(ctx, s.customers, in.CustomerID); err != nil {
		return nil, err
	}

	mode := channel.Mode(sender)
	msg := channel.Message{Kind: kind, Recipient: recipient, Subject: strings.TrimSpace(in.Subject), Body: strings.TrimSpace(in.Message)}
	sendCtx, span := observability.StartSpan(ctx, "communication.send",
		attribute.String("channel", string(kind)),
		attribute.String("mode", mode),
	)
	res, sendErr := sender.Send(sendCtx, msg)
	observability.EndSpan(span, sendErr)

	rec = &domain.CommunicationRecord{
		CustomerID:        in.CustomerID,
		CommunicationType: string(kind),
		Recipient:         recipient,
		Subject:           msg.Subject,
		Message:           msg.Body,
	}
	if sendErr != nil {
		observability.RecordCommunicationDispatch(ctx, string(kind), mode, "failed")
		s.logger.WarnContext(ctx, "communication dispatch failed", "channel", string(kind), "mode", mode, "customer_id", in.CustomerID, "error", sendErr.Error())
		rec.Status = domain.CommunicationStatusFailed
		rec.Response = sendErr.Error()
	} else {
		observability.RecordCommunicationDispatch(ctx, string(kind), mode, "success")
		rec.Status = res.Status
		if rec.Status == "" {
			rec.Status = domain.CommunicationStatusSent
		}
		rec.ExternalID = res.ExternalID
		rec.Response = res.Detail
	}

	if err := s.history.Create(ctx, rec); err != nil {
		return nil, storageFailure("record communication", err)
	}
	if sendErr != nil {
		return rec, ErrDispatchFailed
	}
	return rec, nil
}

func (s *CommunicationService) History(ctx context.Context, customerID uint, limit int) (items []domain.CommunicationRecord, err error) {
	op := startOp(ctx, "communication", "history")
	defer func() { op.done(err) }()

	items, err = s.history.ListHistory(ctx, customerID, limit)
	return items, repoErr("list communication history", err)
}

// ContactBook groups a customer's stored contact points by channel, with the
// customer's own email and phone first.
func (s *CommunicationService) ContactBook(ctx context.Context, customerID uint) (book *domain.CustomerContactBook, err error) {
	op := startOp(ctx, "communication", "contacts")
	defer func() { op.done(err) }()

	customer, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		return nil, repoErr("find customer", err)
	}
	contacts, err := s.contacts.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, repoErr("list customer contacts", err)
	}

	book = &domain.CustomerContactBook{
		Customer:  *customer,
		Emails:    []string{},
		Phones:    []string{},
		Addresses: []string{},
		Social:    []string{},
	}
	seen := map[string]bool{}
	add := func(dst *[]string, kind, v string) {
		v = strings.TrimSpace(v)
		if v == "" || seen[kind+"|"+v] {
			return
		}
		seen[kind+"|"+v] = true
		*dst = append(*dst, v)
	}
	add(&book.Emails, domain.ContactTypeEmail, customer.Email)
	add(&book.Phones, domain.ContactTypePhone, customer.Phone)
	for _, c := range contacts {
		switch c.ContactType {
		case domain.ContactTypeEmail:
			add(&book.Emails, c.ContactType, c.ContactValue)
		case domain.ContactTypePhone:
			add(&book.Phones, c.ContactType, c.ContactValue)
		case domain.ContactTypeAddress:
			add(&book.Addresses, c.ContactType, c.ContactValue)
		case domain.ContactTypeSocial:
			add(&book.Social, c.ContactType, c.ContactValue)
		}
	}
	return book, nil
}
