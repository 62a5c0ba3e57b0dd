package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"timebill/internal/models"
	"timebill/internal/service"
)

type InvoiceHandler struct {
	service *service.InvoiceService
	logger  *zap.Logger
}

func NewInvoiceHandler(service *service.InvoiceService, logger *zap.Logger) *InvoiceHandler {
	return &InvoiceHandler{
		service: service,
		logger:  logger,
	}
}

func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var req models.CreateInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	invoice, err := h.service.Create(uid, &req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, invoice)
}

// invoiceView adds the derived display status to the stored invoice.
type invoiceView struct {
	*models.Invoice
	EffectiveStatus models.InvoiceStatus `json:"effective_status"`
}

func newInvoiceView(inv *models.Invoice, now time.Time) invoiceView {
	return invoiceView{Invoice: inv, EffectiveStatus: inv.EffectiveStatus(now)}
}

func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	invoice, err := h.service.Get(uid, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newInvoiceView(invoice, time.Now()))
}

func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	invoices, err := h.service.List(uid)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	now := time.Now()
	views := make([]invoiceView, 0, len(invoices))
	for _, inv := range invoices {
		views = append(views, newInvoiceView(inv, now))
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *InvoiceHandler) Send(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	invoice, err := h.service.Send(uid, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newInvoiceView(invoice, time.Now()))
}

func (h *InvoiceHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	invoice, err := h.service.MarkPaid(uid, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newInvoiceView(invoice, time.Now()))
}

func (h *InvoiceHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	invoice, err := h.service.Cancel(uid, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newInvoiceView(invoice, time.Now()))
}

func (h *InvoiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(uid, chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
