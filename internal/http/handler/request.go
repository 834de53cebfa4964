package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/sandeepkv93/crm-dashboard-backend/internal/http/middleware"
	"github.com/sandeepkv93/crm-dashboard-backend/internal/http/response"
	"github.com/sandeepkv93/crm-dashboard-backend/internal/observability"
	"github.com/sandeepkv93/crm-dashboard-backend/internal/repository"
	"github.com/sandeepkv93/crm-dashboard-backend/internal/service"
)

var errInvalidPayload = errors.New("invalid payload")

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errInvalidPayload
	}
	return nil
}

func parsePathID(input string) (uint, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(input), 10, 64)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("invalid id %q", input)
	}
	return uint(n), nil
}

// parseOptionalID reads a positive id from the query string; an empty value
// means no filter.
func parseOptionalID(r *http.Request, key string) (uint, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return 0, nil
	}
	id, err := parsePathID(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a positive integer", key)
	}
	return id, nil
}

func parsePageRequest(r *http.Request) (repository.PageRequest, error) {
	page := repository.DefaultPage
	pageSize := repository.DefaultPageSize
	if raw := strings.TrimSpace(r.URL.Query().Get("page")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			return repository.PageRequest{}, errors.New("page must be a positive integer")
		}
		page = v
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("page_size")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			return repository.PageRequest{}, errors.New("page_size must be a positive integer")
		}
		if v > repository.MaxPageSize {
			return repository.PageRequest{}, fmt.Errorf("page_size must be <= %d", repository.MaxPageSize)
		}
		pageSize = v
	}
	return repository.PageRequest{Page: page, PageSize: pageSize}, nil
}

// nullable distinguishes an absent JSON field from an explicit null.
type nullable[T any] struct {
	Set   bool
	Null  bool
	Value T
}

func (n *nullable[T]) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.Null = true
		return nil
	}
	return json.Unmarshal(data, &n.Value)
}

// ptr returns the value when present and non-null.
func (n nullable[T]) ptr() *T {
	if !n.Set || n.Null {
		return nil
	}
	v := n.Value
	return &v
}

func actorID(r *http.Request) string {
	id, ok := middleware.SubjectFromContext(r.Context())
	if !ok {
		return ""
	}
	return strconv.FormatUint(uint64(id), 10)
}

func auditWrite(r *http.Request, entity, action string, id uint) {
	observability.EmitAudit(r, observability.AuditInput{
		EventName:   entity + "." + action,
		ActorUserID: actorID(r),
		TargetType:  entity,
		TargetID:    strconv.FormatUint(uint64(id), 10),
		Action:      action,
		Outcome:     "success",
		Reason:      entity + "_" + action + "d",
	})
}

func badRequest(w http.ResponseWriter, r *http.Request, message string) {
	response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", message, nil)
}

// writeServiceError maps service and repository errors onto the public
// taxonomy. Storage detail is logged, never returned.
func writeServiceError(w http.ResponseWriter, r *http.Request, entity string, err error) {
	switch {
	case errors.Is(err, service.ErrDuplicateIdentity):
		response.Error(w, r, http.StatusBadRequest, "EMAIL_TAKEN", "Email already registered", nil)
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Error(w, r, http.StatusBadRequest, "INVALID_CREDENTIALS", "Invalid credentials", nil)
	case errors.Is(err, service.ErrInvalidInput):
		badRequest(w, r, err.Error())
	case errors.Is(err, repository.ErrNotFound):
		response.Error(w, r, http.StatusNotFound, "NOT_FOUND", entity+" not found", nil)
	case errors.Is(err, service.ErrDispatchFailed):
		response.Error(w, r, http.StatusBadGateway, "DISPATCH_FAILED", "message could not be delivered", nil)
	default:
		slog.ErrorContext(r.Context(), "request failed", "entity", entity, "error", err.Error())
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "Server error", nil)
	}
}
