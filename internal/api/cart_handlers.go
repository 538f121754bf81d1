package api

import (
	"encoding/json"
	"net/http"

	"github.com/jchavez-2023107/api-ventas/internal/auth"
	"github.com/jchavez-2023107/api-ventas/internal/store"
)

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())

	cart, err := store.GetOrCreateCart(r.Context(), h.db, identity.UserID)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"cart": cart})
}

func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())

	var req struct {
		ProductID int64 `json:"productId"`
		Quantity  int   `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Quantity <= 0 {
		respondMessage(w, http.StatusBadRequest, "Quantity must be positive")
		return
	}

	cart, err := store.AddCartItem(r.Context(), h.db, identity.UserID, req.ProductID, req.Quantity)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Item added to cart",
		"cart":    cart,
	})
}

func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())

	var req struct {
		ProductID int64 `json:"productId"`
		Quantity  int   `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	cart, err := store.UpdateCartItemQuantity(r.Context(), h.db, identity.UserID, req.ProductID, req.Quantity)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Cart updated",
		"cart":    cart,
	})
}

func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())

	var req struct {
		ProductID int64 `json:"productId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	cart, err := store.RemoveCartItem(r.Context(), h.db, identity.UserID, req.ProductID)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Item removed from cart",
		"cart":    cart,
	})
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())

	cart, err := store.ClearCart(r.Context(), h.db, identity.UserID)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Cart cleared",
		"cart":    cart,
	})
}
