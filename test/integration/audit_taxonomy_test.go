package integration

import (
	"bufio"
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"testing"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestAuditTaxonomySchemaAndKeyEndpointEvents(t *testing.T) {
	var logBuf syncBuffer
	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&logBuf, &slog.HandlerOptions{Level: slog.LevelInfo})))
	t.Cleanup(func() {
		slog.SetDefault(previous)
	})

	s := newCRMTestServer(t)
	token := s.registerAndLogin(t, "audit", "audit@example.com", "Valid#Pass1234")

	resp, _ := s.doJSON(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "audit@example.com",
		"password": "wrong-password",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected rejected login, got %d", resp.StatusCode)
	}

	resp, env := s.doJSON(t, http.MethodPost, "/api/customers", token, map[string]string{"name": "Initech"})
	if resp.StatusCode != http.StatusCreated || !env.Success {
		t.Fatalf("create customer failed: status=%d success=%v", resp.StatusCode, env.Success)
	}

	if resp, _ := s.doJSON(t, http.MethodGet, "/api/customers", "", nil); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}

	logs := logBuf.String()
	for _, secret := range []string{"Valid#Pass1234", "wrong-password", token, "$argon2id$"} {
		if strings.Contains(logs, secret) {
			t.Fatalf("logs leaked credential material %q", secret)
		}
	}

	events := parseAuditEvents(t, logs)
	if len(events) == 0 {
		t.Fatal("expected audit events, found none")
	}
	for _, event := range events {
		assertAuditRequiredFields(t, event)
	}

	assertAuditEventOutcome(t, events, "auth.register", "success")
	assertAuditEventOutcome(t, events, "auth.login", "success")
	assertAuditEventOutcome(t, events, "auth.login", "failure")
	assertAuditEventOutcome(t, events, "customer.create", "success")
	assertAuditEventOutcome(t, events, "auth.gate.denied", "rejected")
}

func parseAuditEvents(t *testing.T, logs string) []map[string]any {
	t.Helper()
	events := make([]map[string]any, 0)
	scanner := bufio.NewScanner(strings.NewReader(logs))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			continue
		}
		if msg, _ := entry["msg"].(string); msg == "audit" {
			events = append(events, entry)
		}
	}
	return events
}

func assertAuditRequiredFields(t *testing.T, event map[string]any) {
	t.Helper()
	required := []string{
		"event_name", "event_version", "actor_user_id", "actor_ip", "target_type", "target_id",
		"action", "outcome", "reason", "request_id", "ts",
	}
	for _, key := range required {
		v, ok := event[key]
		if !ok {
			t.Fatalf("missing required audit field %q in event %#v", key, event)
		}
		if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
			t.Fatalf("empty required audit field %q in event %#v", key, event)
		}
	}
}

func assertAuditEventOutcome(t *testing.T, events []map[string]any, eventName, outcome string) {
	t.Helper()
	for _, event := range events {
		gotEventName, _ := event["event_name"].(string)
		gotOutcome, _ := event["outcome"].(string)
		if gotEventName == eventName && gotOutcome == outcome {
			return
		}
	}
	t.Fatalf("expected audit event_name=%q outcome=%q, got events=%#v", eventName, outcome, events)
}
