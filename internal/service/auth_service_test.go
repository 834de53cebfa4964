package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sandeepkv93/crm-dashboard-backend/internal/domain"
	"github.com/sandeepkv93/crm-dashboard-backend/internal/repository"
	repogomock "github.com/sandeepkv93/crm-dashboard-backend/internal/repository/gomock"
	"github.com/sandeepkv93/crm-dashboard-backend/internal/security"

	"go.uber.org/mock/gomock"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestAuthServiceRegisterMatrix(t *testing.T) {
	t.Run("stores hash and never plaintext", func(t *testing.T) {
		fx := newAuthFixture(t)
		user, err := fx.auth.Register(context.Background(), RegisterInput{Username: "alice", Email: "alice@example.com", Password: "s3cret-pass"})
		if err != nil {
			t.Fatalf("register: %v", err)
		}
		if user.ID == 0 || user.Email != "alice@example.com" || user.Username != "alice" {
			t.Fatalf("unexpected user %+v", user)
		}
		stored := fx.users.byEmail["alice@example.com"]
		if stored == nil || stored.PasswordHash == "" || strings.Contains(stored.PasswordHash, "s3cret-pass") {
			t.Fatalf("expected an opaque hash, got %+v", stored)
		}
		if fx.users.creates != 1 {
			t.Fatalf("expected exactly one insert, got %d", fx.users.creates)
		}
	})

	t.Run("duplicate email", func(t *testing.T) {
		fx := newAuthFixture(t)
		fx.seed("dupe@example.com", "pw")
		_, err := fx.auth.Register(context.Background(), RegisterInput{Username: "dupe", Email: "dupe@example.com", Password: "other"})
		if !errors.Is(err, ErrDuplicateIdentity) {
			t.Fatalf("expected ErrDuplicateIdentity, got %v", err)
		}
		if fx.users.creates != 1 {
			t.Fatalf("expected no second insert, got %d inserts", fx.users.creates)
		}
	})

	t.Run("duplicate detected by unique index", func(t *testing.T) {
		fx := newAuthFixture(t)
		fx.users.createErr = repository.ErrEmailTaken
		_, err := fx.auth.Register(context.Background(), RegisterInput{Username: "late", Email: "late@example.com", Password: "pw"})
		if !errors.Is(err, ErrDuplicateIdentity) {
			t.Fatalf("expected ErrDuplicateIdentity, got %v", err)
		}
	})

	t.Run("storage failure", func(t *testing.T) {
		fx := newAuthFixture(t)
		fx.users.findErr = errors.New("connection refused")
		_, err := fx.auth.Register(context.Background(), RegisterInput{Username: "bob", Email: "bob@example.com", Password: "pw"})
		if !errors.Is(err, ErrStorageFailure) {
			t.Fatalf("expected ErrStorageFailure, got %v", err)
		}
	})

	invalidCases := []struct {
		name string
		in   RegisterInput
		want error
	}{
		{"missing username", RegisterInput{Username: "  ", Email: "a@example.com", Password: "pw"}, ErrInvalidUsername},
		{"malformed email", RegisterInput{Username: "a", Email: "not-an-email", Password: "pw"}, ErrInvalidEmail},
		{"display name email", RegisterInput{Username: "a", Email: "Alice <a@example.com>", Password: "pw"}, ErrInvalidEmail},
		{"empty password", RegisterInput{Username: "a", Email: "a@example.com", Password: ""}, ErrInvalidPassword},
		{"oversized password", RegisterInput{Username: "a", Email: "a@example.com", Password: strings.Repeat("x", security.MaxPasswordBytes+1)}, ErrInvalidPassword},
	}
	for _, tc := range invalidCases {
		t.Run(tc.name, func(t *testing.T) {
			fx := newAuthFixture(t)
			_, err := fx.auth.Register(context.Background(), tc.in)
			if !errors.Is(err, tc.want) || !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if fx.users.creates != 0 {
				t.Fatal("expected no insert for invalid input")
			}
		})
	}
}

func TestAuthServiceLoginMatrix(t *testing.T) {
	t.Run("success issues token", func(t *testing.T) {
		fx := newAuthFixture(t)
		id := fx.seed("alice@example.com", "right")
		res, err := fx.auth.Login(context.Background(), LoginInput{Email: "alice@example.com", Password: "right"})
		if err != nil {
			t.Fatalf("login: %v", err)
		}
		if res.User.ID != id || res.Token != fmt.Sprintf("token-%d", id) {
			t.Fatalf("unexpected login result %+v", res)
		}
		if !res.ExpiresAt.Equal(fx.tokens.now.Add(security.SessionTokenTTL)) {
			t.Fatalf("unexpected expiry %s", res.ExpiresAt)
		}
	})

	t.Run("unknown email and wrong password are indistinguishable", func(t *testing.T) {
		fx := newAuthFixture(t)
		fx.seed("alice@example.com", "right")

		_, errUnknown := fx.auth.Login(context.Background(), LoginInput{Email: "nobody@example.com", Password: "right"})
		_, errWrong := fx.auth.Login(context.Background(), LoginInput{Email: "alice@example.com", Password: "wrong"})
		if errUnknown != ErrInvalidCredentials || errWrong != ErrInvalidCredentials {
			t.Fatalf("expected identical ErrInvalidCredentials, got %v / %v", errUnknown, errWrong)
		}
		if got := fx.hasher.verifies.Load(); got != 2 {
			t.Fatalf("expected a hash comparison on both paths, got %d", got)
		}
		if strings.Contains(fx.logs.String(), "nobody@example.com") || strings.Contains(fx.logs.String(), "wrong") {
			t.Fatalf("login failure details leaked into logs: %s", fx.logs.String())
		}
	})

	t.Run("storage failure", func(t *testing.T) {
		fx := newAuthFixture(t)
		fx.users.findErr = errors.New("db down")
		_, err := fx.auth.Login(context.Background(), LoginInput{Email: "a@example.com", Password: "pw"})
		if !errors.Is(err, ErrStorageFailure) {
			t.Fatalf("expected ErrStorageFailure, got %v", err)
		}
	})
}

func TestAuthServiceConcurrentRegistrationWritesOneRow(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:auth_concurrent?mode=memory&cache=shared"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := db.AutoMigrate(&domain.User{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	auth := NewAuthService(repository.NewUserRepository(db), &fakeHasher{}, &fakeTokens{now: time.Now()}, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))

	const workers = 16
	var (
		wg        sync.WaitGroup
		successes atomic.Int32
		dupes     atomic.Int32
	)
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, err := auth.Register(context.Background(), RegisterInput{Username: fmt.Sprintf("racer%d", i), Email: "race@example.com", Password: "pw"})
			switch {
			case err == nil:
				successes.Add(1)
			case errors.Is(err, ErrDuplicateIdentity):
				dupes.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	close(start)
	wg.Wait()

	if successes.Load() != 1 || dupes.Load() != workers-1 {
		t.Fatalf("expected 1 success and %d duplicates, got %d/%d", workers-1, successes.Load(), dupes.Load())
	}
	var count int64
	if err := db.Model(&domain.User{}).Where("email = ?", "race@example.com").Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly one row, got %d", count)
	}
}

func TestAuthServiceWithRealHasher(t *testing.T) {
	fx := newAuthFixture(t)
	fx.auth.hasher = security.NewPasswordHasher(2)

	if _, err := fx.auth.Register(context.Background(), RegisterInput{Username: "alice", Email: "alice@example.com", Password: "correct horse"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if !strings.HasPrefix(fx.users.byEmail["alice@example.com"].PasswordHash, "$argon2id$") {
		t.Fatal("expected argon2id hash")
	}
	if _, err := fx.auth.Login(context.Background(), LoginInput{Email: "alice@example.com", Password: "correct horse"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := fx.auth.Login(context.Background(), LoginInput{Email: "alice@example.com", Password: "wrong horse"}); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthServiceDecoySurvivesCancelledFirstCaller(t *testing.T) {
	fx := newAuthFixture(t)
	fx.auth.hasher = security.NewPasswordHasher(1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := fx.auth.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "pw"}); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if !strings.HasPrefix(fx.auth.decoyHash, "$argon2id$") {
		t.Fatalf("expected decoy hash derived despite cancelled ctx, got %q", fx.auth.decoyHash)
	}

	if _, err := fx.auth.Login(context.Background(), LoginInput{Email: "ghost@example.com", Password: "pw"}); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

type authFixture struct {
	auth   *AuthService
	users  *userRepoState
	hasher *fakeHasher
	tokens *fakeTokens
	logs   *bytes.Buffer
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	users := &userRepoState{nextID: 1, byEmail: map[string]*domain.User{}}
	repo := repogomock.NewMockUserRepository(ctrl)
	repo.EXPECT().FindByEmail(gomock.Any(), gomock.Any()).AnyTimes().DoAndReturn(users.FindByEmail)
	repo.EXPECT().Create(gomock.Any(), gomock.Any()).AnyTimes().DoAndReturn(users.Create)

	hasher := &fakeHasher{}
	tokens := &fakeTokens{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	logs := &bytes.Buffer{}
	return &authFixture{
		auth:   NewAuthService(repo, hasher, tokens, slog.New(slog.NewJSONHandler(logs, nil))),
		users:  users,
		hasher: hasher,
		tokens: tokens,
		logs:   logs,
	}
}

func (fx *authFixture) seed(email, password string) uint {
	hash, _ := fx.hasher.Hash(context.Background(), password)
	u := &domain.User{Username: "seed", Email: email, PasswordHash: hash}
	if err := fx.users.Create(context.Background(), u); err != nil {
		panic(err)
	}
	return u.ID
}

type userRepoState struct {
	mu        sync.Mutex
	nextID    uint
	byEmail   map[string]*domain.User
	creates   int
	findErr   error
	createErr error
}

func (r *userRepoState) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.byEmail[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *userRepoState) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	if _, ok := r.byEmail[user.Email]; ok {
		return repository.ErrEmailTaken
	}
	user.ID = r.nextID
	r.nextID++
	r.creates++
	cp := *user
	r.byEmail[user.Email] = &cp
	return nil
}

type fakeHasher struct {
	verifies atomic.Int32
}

func (h *fakeHasher) Hash(_ context.Context, password string) (string, error) {
	return fmt.Sprintf("fake$%x", []byte(password)), nil
}

func (h *fakeHasher) Verify(_ context.Context, encoded, password string) (bool, error) {
	h.verifies.Add(1)
	return encoded == fmt.Sprintf("fake$%x", []byte(password)), nil
}

type fakeTokens struct {
	now time.Time
}

func (f *fakeTokens) SignSessionToken(userID uint) (string, time.Time, error) {
	return fmt.Sprintf("token-%d", userID), f.now.Add(security.SessionTokenTTL), nil
}
