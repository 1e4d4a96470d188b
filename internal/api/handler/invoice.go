package handler

import (
	"context"
	"net/http"
	"runtime/debug"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/Rrens/chat-with-data/internal/api/response"
	"github.com/Rrens/chat-with-data/internal/domain"
)

// InvoiceLookup reads single invoice attributes
type InvoiceLookup interface {
	GetInvoiceName(ctx context.Context, invoiceID string) string
	GetInvoiceUpdateHistory(ctx context.Context, invoiceID string) string
}

// InvoiceHandler handles invoice lookup endpoints
type InvoiceHandler struct {
	invoices InvoiceLookup
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(invoices InvoiceLookup) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices}
}

// GetName handles GET /get_invoice_name/{invoice_id}
func (h *InvoiceHandler) GetName(w http.ResponseWriter, r *http.Request) {
	defer recoverInternal(w, r)

	name := h.invoices.GetInvoiceName(r.Context(), chi.URLParam(r, "invoice_id"))
	response.OK(w, domain.InvoiceNameResponse{InvoiceName: name})
}

// GetHistory handles GET /get_invoice_history/{invoice_id}
func (h *InvoiceHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	defer recoverInternal(w, r)

	history := h.invoices.GetInvoiceUpdateHistory(r.Context(), chi.URLParam(r, "invoice_id"))
	response.OK(w, domain.InvoiceHistoryResponse{InvoiceHistory: history})
}

// recoverInternal hides unexpected failures behind a generic 500
func recoverInternal(w http.ResponseWriter, r *http.Request) {
	if err := recover(); err != nil {
		log.Error().
			Interface("panic", err).
			Str("path", r.URL.Path).
			Bytes("stack", debug.Stack()).
			Msg("Invoice lookup failed")
		response.InternalError(w)
	}
}
