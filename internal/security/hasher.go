package security

import (
	"context"
	"time"

	"github.com/sandeepkv93/crm-dashboard-backend/internal/observability"

	"golang.org/x/sync/semaphore"
)

// PasswordHasher runs hashing and verification on a bounded number of
// concurrent slots so key derivation cannot monopolise every CPU while
// requests queue up behind it.
type PasswordHasher struct {
	slots *semaphore.Weighted
	hash  func(string) (string, error)
	check func(string, string) (bool, error)
}

func NewPasswordHasher(workers int) *PasswordHasher {
	if workers <= 0 {
		workers = 1
	}
	return &PasswordHasher{
		slots: semaphore.NewWeighted(int64(workers)),
		hash:  HashPassword,
		check: VerifyPassword,
	}
}

// Hash blocks until a slot is free or ctx is done.
func (h *PasswordHasher) Hash(ctx context.Context, password string) (string, error) {
	if err := h.slots.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer h.slots.Release(1)

	start := time.Now()
	defer func() { observability.RecordPasswordHashDuration(ctx, "hash", time.Since(start)) }()
	return h.hash(password)
}

func (h *PasswordHasher) Verify(ctx context.Context, encoded, password string) (bool, error) {
	if err := h.slots.Acquire(ctx, 1); err != nil {
		return false, err
	}
	defer h.slots.Release(1)

	start := time.Now()
	defer func() { observability.RecordPasswordHashDuration(ctx, "verify", time.Since(start)) }()
	return h.check(encoded, password)
}
