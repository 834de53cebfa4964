package ui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

func TestModelReportsActionResult(t *testing.T) {
	m := model{title: "migrate up", started: time.Now()}

	next, cmd := m.Update(actionMsg{details: []string{"tables: 7"}})
	if cmd == nil {
		t.Fatal("expected quit command after action completes")
	}
	view := next.(model).View()
	if !strings.Contains(view, "OK") || !strings.Contains(view, "- tables: 7") {
		t.Fatalf("unexpected view: %q", view)
	}

	next, _ = m.Update(actionMsg{err: errors.New("db ping: refused")})
	view = next.(model).View()
	if !strings.Contains(view, "FAILED") || !strings.Contains(view, "db ping: refused") {
		t.Fatalf("unexpected failure view: %q", view)
	}
}

func TestModelTicksUntilDone(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m := model{title: "seed apply", started: start}

	next, cmd := m.Update(tickMsg(start.Add(3 * time.Second)))
	if cmd == nil {
		t.Fatal("expected another tick while running")
	}
	if view := next.(model).View(); !strings.Contains(view, "Running... 3s") {
		t.Fatalf("unexpected running view: %q", view)
	}

	done := next.(model)
	done.done = true
	if _, cmd := done.Update(tickMsg(start.Add(4 * time.Second))); cmd != nil {
		t.Fatal("expected ticks to stop once done")
	}
}

func TestModelCtrlCCancels(t *testing.T) {
	m := model{title: "seed apply"}
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("expected quit")
	}
	if !errors.Is(next.(model).err, context.Canceled) {
		t.Fatalf("expected canceled error, got %v", next.(model).err)
	}
}
