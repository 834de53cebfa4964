package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sandeepkv93/crm-dashboard-backend/internal/http/response"
	"github.com/sandeepkv93/crm-dashboard-backend/internal/repository"
	"github.com/sandeepkv93/crm-dashboard-backend/internal/service"
)

var errInvalidDueDate = errors.New("due_date must be RFC3339 or YYYY-MM-DD")

type TaskHandler struct {
	svc service.TaskServiceInterface
}

func NewTaskHandler(svc service.TaskServiceInterface) *TaskHandler {
	return &TaskHandler{svc: svc}
}

// parseDueDate accepts a full timestamp or a bare calendar date (UTC).
func parseDueDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		t = t.UTC()
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, errInvalidDueDate
	}
	return &t, nil
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	customerID, err := parseOptionalID(r, "customer_id")
	if err != nil {
		badRequest(w, r, err.Error())
		return
	}
	tasks, err := h.svc.List(r.Context(), repository.TaskFilter{
		CustomerID: customerID,
		Status:     strings.ToLower(strings.TrimSpace(r.URL.Query().Get("status"))),
	})
	if err != nil {
		writeServiceError(w, r, "task", err)
		return
	}
	response.JSON(w, r, http.StatusOK, tasks)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, r, "invalid task id")
		return
	}
	task, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, "task", err)
		return
	}
	response.JSON(w, r, http.StatusOK, task)
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CustomerID  *uint  `json:"customer_id"`
		Title       string `json:"title"`
		Description string `json:"description"`
		DueDate     string `json:"due_date"`
		Priority    string `json:"priority"`
		Status      string `json:"status"`
	}
	if err := decodeJSON(r, &body); err != nil {
		badRequest(w, r, err.Error())
		return
	}
	due, err := parseDueDate(body.DueDate)
	if err != nil {
		badRequest(w, r, err.Error())
		return
	}
	created, err := h.svc.Create(r.Context(), service.TaskInput{
		CustomerID:  body.CustomerID,
		Title:       body.Title,
		Description: body.Description,
		DueDate:     due,
		Priority:    body.Priority,
		Status:      body.Status,
	})
	if err != nil {
		writeServiceError(w, r, "task", err)
		return
	}
	auditWrite(r, "task", "create", created.ID)
	response.JSON(w, r, http.StatusCreated, created)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, r, "invalid task id")
		return
	}
	var body struct {
		CustomerID  nullable[uint]   `json:"customer_id"`
		Title       *string          `json:"title"`
		Description *string          `json:"description"`
		DueDate     nullable[string] `json:"due_date"`
		Priority    *string          `json:"priority"`
		Status      *string          `json:"status"`
	}
	if err := decodeJSON(r, &body); err != nil {
		badRequest(w, r, err.Error())
		return
	}
	upd := service.TaskUpdate{
		CustomerID:    body.CustomerID.ptr(),
		ClearCustomer: body.CustomerID.Null,
		Title:         body.Title,
		Description:   body.Description,
		Priority:      body.Priority,
		Status:        body.Status,
	}
	if raw := body.DueDate.ptr(); raw != nil {
		due, err := parseDueDate(*raw)
		if err != nil {
			badRequest(w, r, err.Error())
			return
		}
		upd.DueDate = due
		upd.ClearDueDate = due == nil
	}
	upd.ClearDueDate = upd.ClearDueDate || body.DueDate.Null

	updated, err := h.svc.Update(r.Context(), id, upd)
	if err != nil {
		writeServiceError(w, r, "task", err)
		return
	}
	auditWrite(r, "task", "update", id)
	response.JSON(w, r, http.StatusOK, updated)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, r, "invalid task id")
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, "task", err)
		return
	}
	auditWrite(r, "task", "delete", id)
	response.JSON(w, r, http.StatusOK, map[string]any{"id": id, "deleted": true})
}
