package response

import (
	"encoding/json"
	"log/slog"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type Envelope struct {
	Success    bool       `json:"success"`
	Message    string     `json:"message,omitempty"`
	Data       any        `json:"data,omitempty"`
	Error      *ErrorBody `json:"error,omitempty"`
	Page       int        `json:"page,omitempty"`
	PageSize   int        `json:"page_size,omitempty"`
	Total      *int64     `json:"total,omitempty"`
	TotalPages *int       `json:"total_pages,omitempty"`
	RequestID  string     `json:"request_id,omitempty"`
}

// JSON writes a success envelope around data.
func JSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	Write(w, r, status, Envelope{Success: true, Data: data, RequestID: chimiddleware.GetReqID(r.Context())})
}

// List writes a success envelope with paging fields next to data.
func List[T any](w http.ResponseWriter, r *http.Request, items []T, page, pageSize int, total int64, totalPages int) {
	if items == nil {
		items = []T{}
	}
	Write(w, r, http.StatusOK, Envelope{
		Success:    true,
		Data:       items,
		Page:       page,
		PageSize:   pageSize,
		Total:      &total,
		TotalPages: &totalPages,
		RequestID:  chimiddleware.GetReqID(r.Context()),
	})
}

// Error writes a failure envelope. message must be safe to show clients.
func Error(w http.ResponseWriter, r *http.Request, status int, code, message string, details any) {
	Write(w, r, status, Envelope{
		Success:   false,
		Message:   message,
		Error:     &ErrorBody{Code: code, Message: message, Details: details},
		RequestID: chimiddleware.GetReqID(r.Context()),
	})
}

// Write encodes v as-is, for endpoints with a fixed body shape.
func Write(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.WarnContext(r.Context(), "write response failed", "error", err.Error())
	}
}
