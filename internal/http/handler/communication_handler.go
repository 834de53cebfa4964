package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sandeepkv93/crm-dashboard-backend/internal/domain"
	"github.com/sandeepkv93/crm-dashboard-backend/internal/http/response"
	"github.com/sandeepkv93/crm-dashboard-backend/internal/observability"
	"github.com/sandeepkv93/crm-dashboard-backend/internal/service"
)

type CommunicationHandler struct {
	svc service.CommunicationServiceInterface
}

func NewCommunicationHandler(svc service.CommunicationServiceInterface) *CommunicationHandler {
	return &CommunicationHandler{svc: svc}
}

type dispatchFunc func(ctx context.Context, in service.DispatchInput) (*domain.CommunicationRecord, error)

func (h *CommunicationHandler) SendEmail(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, domain.CommunicationEmail, h.svc.SendEmail)
}

func (h *CommunicationHandler) SendSMS(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, domain.CommunicationSMS, h.svc.SendSMS)
}

func (h *CommunicationHandler) MakeCall(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, domain.CommunicationCall, h.svc.MakeCall)
}

func (h *CommunicationHandler) dispatch(w http.ResponseWriter, r *http.Request, kind string, send dispatchFunc) {
	var body struct {
		CustomerID uint   `json:"customer_id"`
		Recipient  string `json:"recipient"`
		Subject    string `json:"subject"`
		Message    string `json:"message"`
	}
	if err := decodeJSON(r, &body); err != nil {
		badRequest(w, r, err.Error())
		return
	}
	rec, err := send(r.Context(), service.DispatchInput{
		CustomerID: body.CustomerID,
		Recipient:  body.Recipient,
		Subject:    body.Subject,
		Message:    body.Message,
	})
	in := observability.AuditInput{
		EventName:   "communication." + kind,
		ActorUserID: actorID(r),
		TargetType:  "customer",
		TargetID:    strconv.FormatUint(uint64(body.CustomerID), 10),
		Action:      "dispatch",
		Outcome:     "success",
		Reason:      "message_dispatched",
	}
	if err != nil {
		in.Outcome = "failure"
		in.Reason = "dispatch_error"
		if rec != nil {
			observability.EmitAudit(r, in, "record_id", rec.ID)
		}
		writeServiceError(w, r, "customer", err)
		return
	}
	observability.EmitAudit(r, in, "record_id", rec.ID)
	response.JSON(w, r, http.StatusOK, rec)
}

func (h *CommunicationHandler) History(w http.ResponseWriter, r *http.Request) {
	var customerID uint
	if raw := chi.URLParam(r, "customer_id"); raw != "" {
		id, err := parsePathID(raw)
		if err != nil {
			badRequest(w, r, "invalid customer id")
			return
		}
		customerID = id
	}
	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			badRequest(w, r, "limit must be a positive integer")
			return
		}
		limit = v
	}
	items, err := h.svc.History(r.Context(), customerID, limit)
	if err != nil {
		writeServiceError(w, r, "customer", err)
		return
	}
	if items == nil {
		items = []domain.CommunicationRecord{}
	}
	response.JSON(w, r, http.StatusOK, items)
}

func (h *CommunicationHandler) ContactBook(w http.ResponseWriter, r *http.Request) {
	customerID, err := parsePathID(chi.URLParam(r, "customer_id"))
	if err != nil {
		badRequest(w, r, "invalid customer id")
		return
	}
	book, err := h.svc.ContactBook(r.Context(), customerID)
	if err != nil {
		writeServiceError(w, r, "customer", err)
		return
	}
	response.JSON(w, r, http.StatusOK, book)
}
