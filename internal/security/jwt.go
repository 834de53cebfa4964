package security

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionTokenTTL is the fixed lifetime of a session token.
const SessionTokenTTL = 24 * time.Hour

var (
	ErrMissingSigningKey = errors.New("jwt signing key is required")
	ErrMissingToken      = errors.New("missing bearer token")
	ErrInvalidToken      = errors.New("invalid or expired token")
)

// Claims carries the subject both as the registered "sub" string and as a
// numeric user id for clients that read it directly.
type Claims struct {
	jwt.RegisteredClaims
	UserID uint `json:"userId"`
}

type JWTManager struct {
	issuer string
	secret []byte
	now    func() time.Time
}

type JWTOption func(*JWTManager)

// WithClock overrides the time source used for issuing and validating.
func WithClock(now func() time.Time) JWTOption {
	return func(m *JWTManager) {
		m.now = now
	}
}

func NewJWTManager(issuer, secret string, opts ...JWTOption) (*JWTManager, error) {
	if secret == "" {
		return nil, ErrMissingSigningKey
	}
	m := &JWTManager{issuer: issuer, secret: []byte(secret), now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// SignSessionToken mints an HS256 token for userID valid for exactly
// SessionTokenTTL. Issuance is truncated to whole seconds, the resolution of
// the iat and exp claims.
func (m *JWTManager) SignSessionToken(userID uint) (string, time.Time, error) {
	issuedAt := m.now().UTC().Truncate(time.Second)
	expiresAt := issuedAt.Add(SessionTokenTTL)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID: userID,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}
	return signed, expiresAt, nil
}

// ParseSessionToken validates signature, algorithm, issuer and expiry. A
// token is expired once now reaches exp. Every failure is ErrInvalidToken.
func (m *JWTManager) ParseSessionToken(token string) (*Claims, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrMissingToken
	}
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	sub, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || uint(sub) != claims.UserID || claims.UserID == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Verify returns the subject id carried by a valid token.
func (m *JWTManager) Verify(token string) (uint, error) {
	claims, err := m.ParseSessionToken(token)
	if err != nil {
		return 0, err
	}
	return claims.UserID, nil
}
