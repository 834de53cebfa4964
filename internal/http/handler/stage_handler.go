package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sandeepkv93/crm-dashboard-backend/internal/http/response"
	"github.com/sandeepkv93/crm-dashboard-backend/internal/service"
)

type StageHandler struct {
	svc service.StageServiceInterface
}

func NewStageHandler(svc service.StageServiceInterface) *StageHandler {
	return &StageHandler{svc: svc}
}

func (h *StageHandler) List(w http.ResponseWriter, r *http.Request) {
	stages, err := h.svc.List(r.Context())
	if err != nil {
		writeServiceError(w, r, "stage", err)
		return
	}
	response.JSON(w, r, http.StatusOK, stages)
}

func (h *StageHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name     string `json:"name"`
		Position int    `json:"position"`
	}
	if err := decodeJSON(r, &body); err != nil {
		badRequest(w, r, err.Error())
		return
	}
	created, err := h.svc.Create(r.Context(), service.StageInput{Name: body.Name, Position: body.Position})
	if err != nil {
		writeServiceError(w, r, "stage", err)
		return
	}
	auditWrite(r, "stage", "create", created.ID)
	response.JSON(w, r, http.StatusCreated, created)
}

func (h *StageHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, r, "invalid stage id")
		return
	}
	var body struct {
		Name     *string `json:"name"`
		Position *int    `json:"position"`
	}
	if err := decodeJSON(r, &body); err != nil {
		badRequest(w, r, err.Error())
		return
	}
	updated, err := h.svc.Update(r.Context(), id, service.StageUpdate{Name: body.Name, Position: body.Position})
	if err != nil {
		writeServiceError(w, r, "stage", err)
		return
	}
	auditWrite(r, "stage", "update", id)
	response.JSON(w, r, http.StatusOK, updated)
}

func (h *StageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, r, "invalid stage id")
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, "stage", err)
		return
	}
	auditWrite(r, "stage", "delete", id)
	response.JSON(w, r, http.StatusOK, map[string]any{"id": id, "deleted": true})
}
