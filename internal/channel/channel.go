// Package channel delivers outbound customer communications over email,
// SMS and voice.
package channel

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

type Kind string

const (
	KindEmail Kind = "email"
	KindSMS   Kind = "sms"
	KindCall  Kind = "call"
)

var ErrUnsupportedMode = errors.New("unsupported channel mode")

type Message struct {
	Kind      Kind
	Recipient string
	Subject   string
	Body      string
}

// Result describes an accepted dispatch. ExternalID is the provider's
// identifier for the message or call.
type Result struct {
	ExternalID string
	Status     string
	Detail     string
}

type Sender interface {
	Send(ctx context.Context, msg Message) (Result, error)
}

// Mode returns a short label for metrics.
func Mode(s Sender) string {
	switch s.(type) {
	case *RecordingSender:
		return "mock"
	case *SMTPEmailSender:
		return "smtp"
	case *TwilioSMSSender, *TwilioCallSender:
		return "twilio"
	default:
		return "custom"
	}
}

type Settings struct {
	EmailMode string
	SMSMode   string
	CallMode  string
	SMTP      SMTPSettings
	Twilio    TwilioSettings
}

type Senders struct {
	Email Sender
	SMS   Sender
	Call  Sender
}

// NewSenders picks one sender per channel. Mock channels share a single
// RecordingSender.
func NewSenders(s Settings, client *http.Client, logger *slog.Logger) (Senders, error) {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	recorder := NewRecordingSender(logger)

	var out Senders
	switch s.EmailMode {
	case "mock":
		out.Email = recorder
	case "smtp":
		out.Email = NewSMTPEmailSender(s.SMTP)
	default:
		return Senders{}, ErrUnsupportedMode
	}
	switch s.SMSMode {
	case "mock":
		out.SMS = recorder
	case "twilio":
		out.SMS = NewTwilioSMSSender(client, s.Twilio)
	default:
		return Senders{}, ErrUnsupportedMode
	}
	switch s.CallMode {
	case "mock":
		out.Call = recorder
	case "twilio":
		out.Call = NewTwilioCallSender(client, s.Twilio)
	default:
		return Senders{}, ErrUnsupportedMode
	}
	return out, nil
}
