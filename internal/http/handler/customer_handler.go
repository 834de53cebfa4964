package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sandeepkv93/crm-dashboard-backend/internal/http/response"
	"github.com/sandeepkv93/crm-dashboard-backend/internal/repository"
	"github.com/sandeepkv93/crm-dashboard-backend/internal/service"
)

type CustomerHandler struct {
	svc service.CustomerServiceInterface
}

func NewCustomerHandler(svc service.CustomerServiceInterface) *CustomerHandler {
	return &CustomerHandler{svc: svc}
}

func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	pageReq, err := parsePageRequest(r)
	if err != nil {
		badRequest(w, r, err.Error())
		return
	}
	filter := repository.CustomerFilter{
		Search: strings.TrimSpace(r.URL.Query().Get("search")),
		Status: strings.ToLower(strings.TrimSpace(r.URL.Query().Get("status"))),
	}
	res, err := h.svc.List(r.Context(), filter, pageReq)
	if err != nil {
		writeServiceError(w, r, "customer", err)
		return
	}
	response.List(w, r, res.Items, res.Page, res.PageSize, res.Total, res.TotalPages)
}

func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, r, "invalid customer id")
		return
	}
	customer, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, "customer", err)
		return
	}
	response.JSON(w, r, http.StatusOK, customer)
}

func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Phone   string `json:"phone"`
		Company string `json:"company"`
		Address string `json:"address"`
		Status  string `json:"status"`
	}
	if err := decodeJSON(r, &body); err != nil {
		badRequest(w, r, err.Error())
		return
	}
	created, err := h.svc.Create(r.Context(), service.CustomerInput{
		Name:    body.Name,
		Email:   body.Email,
		Phone:   body.Phone,
		Company: body.Company,
		Address: body.Address,
		Status:  body.Status,
	})
	if err != nil {
		writeServiceError(w, r, "customer", err)
		return
	}
	auditWrite(r, "customer", "create", created.ID)
	response.JSON(w, r, http.StatusCreated, created)
}

func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, r, "invalid customer id")
		return
	}
	var body struct {
		Name    *string `json:"name"`
		Email   *string `json:"email"`
		Phone   *string `json:"phone"`
		Company *string `json:"company"`
		Address *string `json:"address"`
		Status  *string `json:"status"`
	}
	if err := decodeJSON(r, &body); err != nil {
		badRequest(w, r, err.Error())
		return
	}
	updated, err := h.svc.Update(r.Context(), id, service.CustomerUpdate{
		Name:    body.Name,
		Email:   body.Email,
		Phone:   body.Phone,
		Company: body.Company,
		Address: body.Address,
		Status:  body.Status,
	})
	if err != nil {
		writeServiceError(w, r, "customer", err)
		return
	}
	auditWrite(r, "customer", "update", id)
	response.JSON(w, r, http.StatusOK, updated)
}

func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, r, "invalid customer id")
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, "customer", err)
		return
	}
	auditWrite(r, "customer", "delete", id)
	response.JSON(w, r, http.StatusOK, map[string]any{"id": id, "deleted": true})
}
