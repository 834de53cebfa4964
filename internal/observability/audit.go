package observability

import (
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/trace"
)

const auditEventVersion = 1

// AuditInput describes a security-relevant outcome. Fields must never carry
// passwords, hashes or tokens.
type AuditInput struct {
	EventName   string
	ActorUserID string
	TargetType  string
	TargetID    string
	Action      string
	Outcome     string
	Reason      string
}

type AuditEvent struct {
	EventVersion int    `json:"event_version"`
	EventName    string `json:"event_name"`
	ActorUserID  string `json:"actor_user_id"`
	ActorIP      string `json:"actor_ip"`
	TargetType   string `json:"target_type"`
	TargetID     string `json:"target_id"`
	Action       string `json:"action"`
	Outcome      string `json:"outcome"`
	Reason       string `json:"reason"`
	RequestID    string `json:"request_id"`
	TraceID      string `json:"trace_id,omitempty"`
	TS           string `json:"ts"`
}

func BuildAuditEvent(r *http.Request, in AuditInput) AuditEvent {
	ev := AuditEvent{
		EventVersion: auditEventVersion,
		EventName:    in.EventName,
		ActorUserID:  orUnknown(in.ActorUserID),
		ActorIP:      clientIP(r),
		TargetType:   orUnknown(in.TargetType),
		TargetID:     orUnknown(in.TargetID),
		Action:       in.Action,
		Outcome:      in.Outcome,
		Reason:       orUnknown(in.Reason),
		RequestID:    orUnknown(chimiddleware.GetReqID(r.Context())),
		TS:           time.Now().UTC().Format(time.RFC3339),
	}
	if sc := trace.SpanContextFromContext(r.Context()); sc.IsValid() {
		ev.TraceID = sc.TraceID().String()
	}
	return ev
}

func (e AuditEvent) Validate() error {
	var missing []string
	check := func(name, v string) {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	check("event_name", e.EventName)
	check("actor_user_id", e.ActorUserID)
	check("actor_ip", e.ActorIP)
	check("target_type", e.TargetType)
	check("target_id", e.TargetID)
	check("action", e.Action)
	check("outcome", e.Outcome)
	check("reason", e.Reason)
	check("request_id", e.RequestID)
	check("ts", e.TS)
	if e.EventVersion != auditEventVersion {
		missing = append(missing, "event_version")
	}
	if len(missing) > 0 {
		return errors.New("audit event missing fields: " + strings.Join(missing, ", "))
	}
	return nil
}

// EmitAudit logs an audit event at info level through the default logger.
// Extra key/value pairs are appended after the event fields.
func EmitAudit(r *http.Request, in AuditInput, kv ...any) {
	ev := BuildAuditEvent(r, in)
	if err := ev.Validate(); err != nil {
		slog.WarnContext(r.Context(), "invalid audit event", "event_name", ev.EventName, "error", err.Error())
	}
	attrs := []any{
		"event_version", ev.EventVersion,
		"event_name", ev.EventName,
		"actor_user_id", ev.ActorUserID,
		"actor_ip", ev.ActorIP,
		"target_type", ev.TargetType,
		"target_id", ev.TargetID,
		"action", ev.Action,
		"outcome", ev.Outcome,
		"reason", ev.Reason,
		"request_id", ev.RequestID,
		"method", r.Method,
		"path", r.URL.Path,
		"ts", ev.TS,
	}
	attrs = append(attrs, kv...)
	slog.InfoContext(r.Context(), "audit", attrs...)
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return orUnknown(r.RemoteAddr)
	}
	return host
}

func orUnknown(v string) string {
	if strings.TrimSpace(v) == "" {
		return "unknown"
	}
	return v
}
