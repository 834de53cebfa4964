package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sandeepkv93/crm-dashboard-backend/internal/http/response"
	"github.com/sandeepkv93/crm-dashboard-backend/internal/repository"
	"github.com/sandeepkv93/crm-dashboard-backend/internal/service"
)

type LeadHandler struct {
	svc service.LeadServiceInterface
}

func NewLeadHandler(svc service.LeadServiceInterface) *LeadHandler {
	return &LeadHandler{svc: svc}
}

func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	pageReq, err := parsePageRequest(r)
	if err != nil {
		badRequest(w, r, err.Error())
		return
	}
	customerID, err := parseOptionalID(r, "customer_id")
	if err != nil {
		badRequest(w, r, err.Error())
		return
	}
	stageID, err := parseOptionalID(r, "stage_id")
	if err != nil {
		badRequest(w, r, err.Error())
		return
	}
	filter := repository.LeadFilter{
		CustomerID: customerID,
		StageID:    stageID,
		Status:     strings.ToLower(strings.TrimSpace(r.URL.Query().Get("status"))),
	}
	res, err := h.svc.List(r.Context(), filter, pageReq)
	if err != nil {
		writeServiceError(w, r, "lead", err)
		return
	}
	response.List(w, r, res.Items, res.Page, res.PageSize, res.Total, res.TotalPages)
}

func (h *LeadHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, r, "invalid lead id")
		return
	}
	lead, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, "lead", err)
		return
	}
	response.JSON(w, r, http.StatusOK, lead)
}

func (h *LeadHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CustomerID  uint    `json:"customer_id"`
		StageID     *uint   `json:"stage_id"`
		LeadSource  string  `json:"lead_source"`
		Status      string  `json:"status"`
		Value       float64 `json:"value"`
		Description string  `json:"description"`
	}
	if err := decodeJSON(r, &body); err != nil {
		badRequest(w, r, err.Error())
		return
	}
	created, err := h.svc.Create(r.Context(), service.LeadInput{
		CustomerID:  body.CustomerID,
		StageID:     body.StageID,
		LeadSource:  body.LeadSource,
		Status:      body.Status,
		Value:       body.Value,
		Description: body.Description,
	})
	if err != nil {
		writeServiceError(w, r, "lead", err)
		return
	}
	auditWrite(r, "lead", "create", created.ID)
	response.JSON(w, r, http.StatusCreated, created)
}

func (h *LeadHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, r, "invalid lead id")
		return
	}
	var body struct {
		CustomerID  *uint          `json:"customer_id"`
		StageID     nullable[uint] `json:"stage_id"`
		LeadSource  *string        `json:"lead_source"`
		Status      *string        `json:"status"`
		Value       *float64       `json:"value"`
		Description *string        `json:"description"`
	}
	if err := decodeJSON(r, &body); err != nil {
		badRequest(w, r, err.Error())
		return
	}
	updated, err := h.svc.Update(r.Context(), id, service.LeadUpdate{
		CustomerID:  body.CustomerID,
		StageID:     body.StageID.ptr(),
		ClearStage:  body.StageID.Null,
		LeadSource:  body.LeadSource,
		Status:      body.Status,
		Value:       body.Value,
		Description: body.Description,
	})
	if err != nil {
		writeServiceError(w, r, "lead", err)
		return
	}
	auditWrite(r, "lead", "update", id)
	response.JSON(w, r, http.StatusOK, updated)
}

func (h *LeadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, r, "invalid lead id")
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, "lead", err)
		return
	}
	auditWrite(r, "lead", "delete", id)
	response.JSON(w, r, http.StatusOK, map[string]any{"id": id, "deleted": true})
}
