package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sandeepkv93/crm-dashboard-backend/internal/http/response"
	"github.com/sandeepkv93/crm-dashboard-backend/internal/service"
)

type ContactHandler struct {
	svc service.ContactServiceInterface
}

func NewContactHandler(svc service.ContactServiceInterface) *ContactHandler {
	return &ContactHandler{svc: svc}
}

func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.svc.List(r.Context())
	if err != nil {
		writeServiceError(w, r, "contact", err)
		return
	}
	response.JSON(w, r, http.StatusOK, contacts)
}

func (h *ContactHandler) ListByCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, err := parsePathID(chi.URLParam(r, "customer_id"))
	if err != nil {
		badRequest(w, r, "invalid customer id")
		return
	}
	contacts, err := h.svc.ListByCustomer(r.Context(), customerID)
	if err != nil {
		writeServiceError(w, r, "contact", err)
		return
	}
	response.JSON(w, r, http.StatusOK, contacts)
}

func (h *ContactHandler) ListByType(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.svc.ListByType(r.Context(), strings.ToLower(strings.TrimSpace(chi.URLParam(r, "type"))))
	if err != nil {
		writeServiceError(w, r, "contact", err)
		return
	}
	response.JSON(w, r, http.StatusOK, contacts)
}

func (h *ContactHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, r, "invalid contact id")
		return
	}
	contact, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, "contact", err)
		return
	}
	response.JSON(w, r, http.StatusOK, contact)
}

func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CustomerID   uint   `json:"customer_id"`
		ContactType  string `json:"contact_type"`
		ContactValue string `json:"contact_value"`
		IsPrimary    bool   `json:"is_primary"`
	}
	if err := decodeJSON(r, &body); err != nil {
		badRequest(w, r, err.Error())
		return
	}
	created, err := h.svc.Create(r.Context(), service.ContactInput{
		CustomerID:   body.CustomerID,
		ContactType:  body.ContactType,
		ContactValue: body.ContactValue,
		IsPrimary:    body.IsPrimary,
	})
	if err != nil {
		writeServiceError(w, r, "contact", err)
		return
	}
	auditWrite(r, "contact", "create", created.ID)
	response.JSON(w, r, http.StatusCreated, created)
}

func (h *ContactHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, r, "invalid contact id")
		return
	}
	var body struct {
		ContactType  *string `json:"contact_type"`
		ContactValue *string `json:"contact_value"`
		IsPrimary    *bool   `json:"is_primary"`
	}
	if err := decodeJSON(r, &body); err != nil {
		badRequest(w, r, err.Error())
		return
	}
	updated, err := h.svc.Update(r.Context(), id, service.ContactUpdate{
		ContactType:  body.ContactType,
		ContactValue: body.ContactValue,
		IsPrimary:    body.IsPrimary,
	})
	if err != nil {
		writeServiceError(w, r, "contact", err)
		return
	}
	auditWrite(r, "contact", "update", id)
	response.JSON(w, r, http.StatusOK, updated)
}

func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, r, "invalid contact id")
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, "contact", err)
		return
	}
	auditWrite(r, "contact", "delete", id)
	response.JSON(w, r, http.StatusOK, map[string]any{"id": id, "deleted": true})
}
