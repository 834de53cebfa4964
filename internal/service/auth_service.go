package service

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/sandeepkv93/crm-dashboard-backend/internal/domain"
	"github.com/sandeepkv93/crm-dashboard-backend/internal/observability"
	"github.com/sandeepkv93/crm-dashboard-backend/internal/repository"
	"github.com/sandeepkv93/crm-dashboard-backend/internal/security"
)

var (
	ErrInvalidUsername = invalid("username is required")
	ErrInvalidEmail    = invalid("a valid email is required")
	ErrInvalidPassword = invalid("password is required and must be at most 72 bytes")
)

type PasswordHasher interface {
	Hash(ctx context.Context, password string) (string, error)
	Verify(ctx context.Context, encoded, password string) (bool, error)
}

type SessionTokenIssuer interface {
	SignSessionToken(userID uint) (string, time.Time, error)
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

type LoginResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

type AuthService struct {
	users  repository.UserRepository
	hasher PasswordHasher
	tokens SessionTokenIssuer
	logger *slog.Logger

	decoyMu   sync.Mutex
	decoyHash string
}

func NewAuthService(users repository.UserRepository, hasher PasswordHasher, tokens SessionTokenIssuer, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{users: users, hasher: hasher, tokens: tokens, logger: logger}
}

// Register stores a new user with a salted password hash. The pre-insert
// lookup gives the common case a clean answer; the unique index on email
// settles races between concurrent registrations.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	start := time.Now()
	outcome := "success"
	defer func() {
		observability.RecordAuthRegister(ctx, outcome)
		observability.RecordAuthRequestDuration(ctx, "register", outcome, time.Since(start))
	}()

	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)
	switch {
	case username == "":
		outcome = "bad_request"
		return nil, ErrInvalidUsername
	case !validEmail(email):
		outcome = "bad_request"
		return nil, ErrInvalidEmail
	case in.Password == "" || len(in.Password) > security.MaxPasswordBytes:
		outcome = "bad_request"
		return nil, ErrInvalidPassword
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		outcome = "duplicate"
		return nil, ErrDuplicateIdentity
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		outcome = "error"
		return nil, storageFailure("find user", err)
	}

	hash, err := s.hasher.Hash(ctx, in.Password)
	if err != nil {
		outcome = "error"
		return nil, storageFailure("hash password", err)
	}

	user := &domain.User{Username: username, Email: email, PasswordHash: hash}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			outcome = "duplicate"
			return nil, ErrDuplicateIdentity
		}
		outcome = "error"
		return nil, storageFailure("create user", err)
	}
	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID)
	return user, nil
}

// Login verifies credentials and issues a session token. Unknown email and
// wrong password return the same error, and unknown emails still pay for a
// hash comparison.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	start := time.Now()
	outcome := "success"
	defer func() {
		observability.RecordAuthLogin(ctx, outcome)
		observability.RecordAuthRequestDuration(ctx, "login", outcome, time.Since(start))
	}()

	email := strings.TrimSpace(in.Email)
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			outcome = "error"
			return nil, storageFailure("find user", err)
		}
		_, _ = s.hasher.Verify(ctx, s.decoy(ctx), in.Password)
		outcome = "rejected"
		return nil, ErrInvalidCredentials
	}

	ok, err := s.hasher.Verify(ctx, user.PasswordHash, in.Password)
	if err != nil {
		outcome = "error"
		return nil, storageFailure("verify password", err)
	}
	if !ok {
		outcome = "rejected"
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.SignSessionToken(user.ID)
	if err != nil {
		outcome = "error"
		return nil, err
	}
	return &LoginResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// decoy lazily derives the hash compared against on unknown emails. It is
// detached from the caller's cancellation and a failure is retried on the
// next call rather than cached.
func (s *AuthService) decoy(ctx context.Context) string {
	s.decoyMu.Lock()
	defer s.decoyMu.Unlock()
	if s.decoyHash != "" {
		return s.decoyHash
	}
	h, err := s.hasher.Hash(context.WithoutCancel(ctx), "decoy-password-for-timing")
	if err != nil {
		s.logger.WarnContext(ctx, "decoy hash unavailable", "error", err.Error())
		return ""
	}
	s.decoyHash = h
	return h
}

func validEmail(email string) bool {
	if email == "" || len(email) > 255 {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
