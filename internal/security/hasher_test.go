package security

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestPasswordHasherRoundTrip(t *testing.T) {
	h := NewPasswordHasher(2)
	ctx := context.Background()

	encoded, err := h.Hash(ctx, "pw123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	ok, err := h.Verify(ctx, encoded, "pw123")
	if err != nil || !ok {
		t.Fatalf("expected verify success, ok=%v err=%v", ok, err)
	}
}

func TestPasswordHasherBoundsConcurrency(t *testing.T) {
	const workers = 2
	h := NewPasswordHasher(workers)

	var inFlight, peak atomic.Int32
	h.hash = func(string) (string, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		inFlight.Add(-1)
		return "h", nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := h.Hash(context.Background(), "pw"); err != nil {
				t.Errorf("hash: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := peak.Load(); got > workers {
		t.Fatalf("expected at most %d concurrent hashes, saw %d", workers, got)
	}
}

func TestPasswordHasherHonoursContextWhileWaiting(t *testing.T) {
	h := NewPasswordHasher(1)
	release := make(chan struct{})
	started := make(chan struct{})
	h.hash = func(string) (string, error) {
		close(started)
		<-release
		return "h", nil
	}

	go func() { _, _ = h.Hash(context.Background(), "pw") }()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := h.Verify(ctx, "h", "pw"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded while waiting for slot, got %v", err)
	}
	close(release)
}
