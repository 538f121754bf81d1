package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/jchavez-2023107/api-ventas/internal/database"
	"github.com/jchavez-2023107/api-ventas/internal/store"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

func respondMessage(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"message": message})
}

// respondStoreError maps the store's sentinel errors onto the wire
// responses the original API produced.
func respondStoreError(w http.ResponseWriter, err error) {
	var stockErr *store.InsufficientStockError
	if errors.As(err, &stockErr) {
		respondMessage(w, http.StatusBadRequest, "Not enough stock for product "+stockErr.ProductName)
		return
	}

	switch {
	case errors.Is(err, database.ErrEmptyCart):
		respondMessage(w, http.StatusBadRequest, "Cart is empty")
	case errors.Is(err, database.ErrInvalidStatus),
		errors.Is(err, database.ErrInvalidTransition):
		respondMessage(w, http.StatusBadRequest, "Invalid status")
	case errors.Is(err, database.ErrAccessDenied):
		respondMessage(w, http.StatusForbidden, "Access denied")
	case errors.Is(err, database.ErrUserNotFound),
		errors.Is(err, database.ErrCategoryNotFound),
		errors.Is(err, database.ErrProductNotFound),
		errors.Is(err, database.ErrCartNotFound),
		errors.Is(err, database.ErrCartItemNotFound),
		errors.Is(err, database.ErrInvoiceNotFound):
		respondMessage(w, http.StatusNotFound, capitalizeSentence(err.Error()))
	case errors.Is(err, database.ErrDuplicateUser),
		errors.Is(err, database.ErrDuplicateName),
		errors.Is(err, database.ErrProductInUse),
		errors.Is(err, database.ErrUserInUse):
		respondMessage(w, http.StatusBadRequest, capitalizeSentence(err.Error()))
	default:
		log.Printf("Internal error: %v", err)
		respondMessage(w, http.StatusInternalServerError, "Internal server error")
	}
}

func capitalizeSentence(s string) string {
	if s == "" {
		return s
	}
	if s[0] >= 'a' && s[0] <= 'z' {
		return string(s[0]-('a'-'A')) + s[1:]
	}
	return s
}

func parseIDParam(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

func parsePagination(r *http.Request) (page, pageSize int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ = strconv.Atoi(r.URL.Query().Get("page_size"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}
