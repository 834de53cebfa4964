package observability

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestRedactingHandlerMasksSecretKeys(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(&redactingHandler{next: slog.NewJSONHandler(&buf, nil)})

	logger.Info("login", "email", "alice@example.com", "password", "hunter2", slog.Group("req", "Authorization", "Bearer abc"))

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if line["password"] != redactedValue {
		t.Fatalf("expected password redacted, got %v", line["password"])
	}
	if line["email"] != "alice@example.com" {
		t.Fatalf("expected email preserved, got %v", line["email"])
	}
	group, ok := line["req"].(map[string]any)
	if !ok || group["Authorization"] != redactedValue {
		t.Fatalf("expected nested authorization redacted, got %v", line["req"])
	}
	if bytes.Contains(buf.Bytes(), []byte("hunter2")) {
		t.Fatal("secret leaked into log output")
	}
}

func TestRedactingHandlerAppliesToWithAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(&redactingHandler{next: slog.NewJSONHandler(&buf, nil)}).With("password_hash", "$argon2id$...")
	logger.Info("x")
	if bytes.Contains(buf.Bytes(), []byte("argon2id")) {
		t.Fatalf("hash leaked: %s", buf.String())
	}
}

func TestParseLogLevel(t *testing.T) {
	cases := map[string]slog.Level{"debug": slog.LevelDebug, "warn": slog.LevelWarn, "error": slog.LevelError, "": slog.LevelInfo}
	for in, want := range cases {
		if got := parseLogLevel(in); got != want {
			t.Fatalf("parseLogLevel(%q)=%v want %v", in, got, want)
		}
	}
}
