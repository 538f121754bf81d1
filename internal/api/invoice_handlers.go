package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/jchavez-2023107/api-ventas/internal/auth"
	"github.com/jchavez-2023107/api-ventas/internal/models"
	"github.com/jchavez-2023107/api-ventas/internal/store"
)

// commitTimeout bounds the whole cart-to-invoice commitment, retries
// included. Past the deadline the caller gets an error and nothing has been
// mutated; a commit that already happened is not rolled back.
const commitTimeout = 10 * time.Second

func (h *Handler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), commitTimeout)
	defer cancel()

	invoice, err := store.CreateInvoice(ctx, h.db, identity.UserID)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Invoice created",
		"invoice": invoice,
	})
}

func (h *Handler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())

	id, err := parseIDParam(r, "id")
	if err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid invoice ID")
		return
	}

	invoice, err := store.GetInvoice(r.Context(), h.db, id)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	if identity.Role != models.RoleAdmin && invoice.UserID != identity.UserID {
		respondMessage(w, http.StatusForbidden, "Access denied")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"invoice": invoice})
}

func (h *Handler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)

	result, err := store.ListInvoices(r.Context(), h.db, page, pageSize)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (h *Handler) UpdateInvoiceStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid invoice ID")
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	status, ok := models.ParseInvoiceStatus(req.Status)
	if !ok {
		respondMessage(w, http.StatusBadRequest, "Invalid status")
		return
	}

	invoice, err := store.UpdateInvoiceStatus(r.Context(), h.db, id, status, h.cfg.Invoice.RestockOnCancel)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Invoice updated",
		"invoice": invoice,
	})
}

func (h *Handler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := store.ListAuditLogs(r.Context(), h.db)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"auditLogs": logs})
}
