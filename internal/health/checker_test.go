package health

import (
	"context"
	"errors"
	"testing"
	"time"
)

type mockChecker struct {
	result CheckResult
}

func (m mockChecker) Check(context.Context) CheckResult {
	return m.result
}

func TestProbeRunnerReady(t *testing.T) {
	runner := NewProbeRunner(200*time.Millisecond, 0,
		mockChecker{result: CheckResult{Name: "db", Healthy: true}},
		mockChecker{result: CheckResult{Name: "redis", Healthy: true}},
	)
	ready, results := runner.Ready(context.Background())
	if !ready {
		t.Fatal("expected ready")
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
}

func TestProbeRunnerUnready(t *testing.T) {
	runner := NewProbeRunner(200*time.Millisecond, 0,
		mockChecker{result: CheckResult{Name: "db", Healthy: true}},
		mockChecker{result: CheckResult{Name: "redis", Healthy: false, Error: errors.New("down").Error()}},
	)
	ready, results := runner.Ready(context.Background())
	if ready {
		t.Fatal("expected unready")
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
}

func TestProbeRunnerStartupGrace(t *testing.T) {
	runner := NewProbeRunner(200*time.Millisecond, 2*time.Second,
		mockChecker{result: CheckResult{Name: "db", Healthy: true}},
	)
	ready, results := runner.Ready(context.Background())
	if ready {
		t.Fatal("expected unready during grace period")
	}
	if len(results) != 1 || results[0].Name != "startup_grace" {
		t.Fatalf("unexpected grace results: %+v", results)
	}
}

type slowChecker struct {
	name string
}

func (s slowChecker) Check(ctx context.Context) CheckResult {
	<-ctx.Done()
	return CheckResult{Name: s.name, Healthy: false, Error: ctx.Err().Error()}
}

func TestProbeRunnerTimesOutEachCheckAndKeepsOrder(t *testing.T) {
	runner := NewProbeRunner(50*time.Millisecond, 0,
		slowChecker{name: "db"},
		nil,
		mockChecker{result: CheckResult{Name: "redis", Healthy: true}},
		slowChecker{name: "schema"},
	)
	start := time.Now()
	ready, results := runner.Ready(context.Background())
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("checks did not run under the per-check timeout: %v", elapsed)
	}
	if ready {
		t.Fatal("expected unready")
	}
	if len(results) != 3 {
		t.Fatalf("expected nil checker to be skipped, got %+v", results)
	}
	names := []string{results[0].Name, results[1].Name, results[2].Name}
	if names[0] != "db" || names[1] != "redis" || names[2] != "schema" {
		t.Fatalf("unexpected order: %v", names)
	}
	if results[0].Error != context.DeadlineExceeded.Error() {
		t.Fatalf("expected deadline error, got %q", results[0].Error)
	}
}

func TestNilProbeRunnerIsReady(t *testing.T) {
	var runner *ProbeRunner
	ready, results := runner.Ready(context.Background())
	if !ready || results != nil {
		t.Fatalf("expected ready with no results, got %v %+v", ready, results)
	}
}
