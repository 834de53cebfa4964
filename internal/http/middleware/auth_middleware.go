package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/sandeepkv93/crm-dashboard-backend/internal/http/response"
	"github.com/sandeepkv93/crm-dashboard-backend/internal/observability"
	"github.com/sandeepkv93/crm-dashboard-backend/internal/security"
)

type contextKey string

const subjectContextKey contextKey = "subject"

type TokenVerifier interface {
	Verify(token string) (uint, error)
}

// AuthMiddleware admits a request only with a valid bearer token in the
// Authorization header. A missing credential is 401, anything else that
// fails verification is 403. Downstream handlers read the caller with
// SubjectFromContext.
func AuthMiddleware(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject, err := verifier.Verify(bearerToken(r))
			switch {
			case err == nil:
			case errors.Is(err, security.ErrMissingToken):
				observability.RecordTokenValidation(r.Context(), "missing", "header")
				auditGate(r, "", "missing_token")
				response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Access token required", nil)
				return
			default:
				observability.RecordTokenValidation(r.Context(), "invalid", "header")
				auditGate(r, "", "invalid_token")
				response.Error(w, r, http.StatusForbidden, "FORBIDDEN", "Invalid or expired token", nil)
				return
			}

			observability.RecordTokenValidation(r.Context(), "valid", "header")
			if slot, ok := r.Context().Value(logSlotKey).(*logSlot); ok {
				slot.subject = subject
			}
			ctx := context.WithValue(r.Context(), subjectContextKey, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func SubjectFromContext(ctx context.Context) (uint, bool) {
	id, ok := ctx.Value(subjectContextKey).(uint)
	return id, ok && id != 0
}

func bearerToken(r *http.Request) string {
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(auth) < 7 || !strings.EqualFold(auth[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(auth[7:])
}

func auditGate(r *http.Request, actor, reason string) {
	observability.EmitAudit(r, observability.AuditInput{
		EventName:   "auth.gate.denied",
		ActorUserID: actor,
		TargetType:  "route",
		TargetID:    r.URL.Path,
		Action:      "access",
		Outcome:     "rejected",
		Reason:      reason,
	})
}

func subjectString(id uint) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatUint(uint64(id), 10)
}
