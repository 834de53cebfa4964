package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/sandeepkv93/crm-dashboard-backend/internal/http/response"
	"github.com/sandeepkv93/crm-dashboard-backend/internal/observability"
	"github.com/sandeepkv93/crm-dashboard-backend/internal/service"
)

type AuthHandler struct {
	authSvc service.AuthServiceInterface
}

func NewAuthHandler(authSvc service.AuthServiceInterface) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

type registeredUser struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type registerResponse struct {
	Message string         `json:"message"`
	User    registeredUser `json:"user"`
}

type loginResponse struct {
	Message   string    `json:"message"`
	Token     string    `json:"token"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &body); err != nil {
		badRequest(w, r, err.Error())
		return
	}

	user, err := h.authSvc.Register(r.Context(), service.RegisterInput{
		Username: body.Username,
		Email:    body.Email,
		Password: body.Password,
	})
	if err != nil {
		observability.EmitAudit(r, observability.AuditInput{
			EventName:  "auth.register",
			TargetType: "user",
			Action:     "register",
			Outcome:    "failure",
			Reason:     authFailureReason(err),
		})
		writeServiceError(w, r, "user", err)
		return
	}

	observability.EmitAudit(r, observability.AuditInput{
		EventName:   "auth.register",
		ActorUserID: strconv.FormatUint(uint64(user.ID), 10),
		TargetType:  "user",
		TargetID:    strconv.FormatUint(uint64(user.ID), 10),
		Action:      "register",
		Outcome:     "success",
		Reason:      "user_registered",
	})
	response.Write(w, r, http.StatusCreated, registerResponse{
		Message: "User registered successfully",
		User: registeredUser{
			ID:        user.ID,
			Username:  user.Username,
			Email:     user.Email,
			CreatedAt: user.CreatedAt,
		},
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &body); err != nil {
		badRequest(w, r, err.Error())
		return
	}

	result, err := h.authSvc.Login(r.Context(), service.LoginInput{Email: body.Email, Password: body.Password})
	if err != nil {
		observability.EmitAudit(r, observability.AuditInput{
			EventName:  "auth.login",
			TargetType: "session",
			Action:     "login",
			Outcome:    "failure",
			Reason:     authFailureReason(err),
		})
		writeServiceError(w, r, "user", err)
		return
	}

	uid := strconv.FormatUint(uint64(result.User.ID), 10)
	observability.EmitAudit(r, observability.AuditInput{
		EventName:   "auth.login",
		ActorUserID: uid,
		TargetType:  "session",
		TargetID:    uid,
		Action:      "login",
		Outcome:     "success",
		Reason:      "token_issued",
	})
	response.Write(w, r, http.StatusOK, loginResponse{
		Message:   "Login successful",
		Token:     result.Token,
		Email:     result.User.Email,
		ExpiresAt: result.ExpiresAt,
	})
}

func authFailureReason(err error) string {
	switch {
	case errors.Is(err, service.ErrDuplicateIdentity):
		return "email_taken"
	case errors.Is(err, service.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, service.ErrInvalidInput):
		return "invalid_input"
	default:
		return "internal_error"
	}
}
