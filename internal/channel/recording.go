package channel

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

const recordingCapacity = 100

// RecordingSender accepts every message without contacting a provider and
// keeps the most recent ones in memory. Only the channel and recipient are
// logged.
type RecordingSender struct {
	logger *slog.Logger

	mu   sync.Mutex
	sent []Message
}

func NewRecordingSender(logger *slog.Logger) *RecordingSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecordingSender{logger: logger}
}

func (s *RecordingSender) Send(ctx context.Context, msg Message) (Result, error) {
	id := "mock-" + uuid.NewString()

	s.mu.Lock()
	s.sent = append(s.sent, msg)
	if len(s.sent) > recordingCapacity {
		s.sent = s.sent[len(s.sent)-recordingCapacity:]
	}
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "mock dispatch", "channel", string(msg.Kind), "recipient", msg.Recipient, "external_id", id)
	status := "sent"
	if msg.Kind == KindCall {
		status = "completed"
	}
	return Result{ExternalID: id, Status: status, Detail: "mock " + string(msg.Kind) + " accepted"}, nil
}

func (s *RecordingSender) Sent() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.sent...)
}
