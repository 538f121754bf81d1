package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/jchavez-2023107/api-ventas/internal/store"
	"github.com/shopspring/decimal"
)

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string  `json:"name"`
		Description string  `json:"description"`
		Price       float64 `json:"price"`
		Stock       int     `json:"stock"`
		CategoryID  int64   `json:"category_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" || req.CategoryID == 0 {
		respondMessage(w, http.StatusBadRequest, "Missing required fields")
		return
	}
	if req.Price < 0 || req.Stock < 0 {
		respondMessage(w, http.StatusBadRequest, "Price and stock must be non-negative")
		return
	}

	price := decimal.NewFromFloat(req.Price)
	product, err := store.CreateProduct(r.Context(), h.db, req.Name, req.Description, price, req.Stock, req.CategoryID)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Product created",
		"product": product,
	})
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)

	filter := store.ProductFilter{Name: r.URL.Query().Get("name")}
	if category := r.URL.Query().Get("category"); category != "" {
		id, err := strconv.ParseInt(category, 10, 64)
		if err != nil {
			respondMessage(w, http.StatusBadRequest, "Invalid category filter")
			return
		}
		filter.CategoryID = id
	}

	result, err := store.ListProducts(r.Context(), h.db, filter, page, pageSize)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	product, err := store.GetProduct(r.Context(), h.db, id)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"product": product})
}

func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	var req struct {
		Name        string  `json:"name"`
		Description string  `json:"description"`
		Price       float64 `json:"price"`
		Stock       int     `json:"stock"`
		CategoryID  int64   `json:"category_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Price < 0 || req.Stock < 0 {
		respondMessage(w, http.StatusBadRequest, "Price and stock must be non-negative")
		return
	}

	price := decimal.NewFromFloat(req.Price)
	product, err := store.UpdateProduct(r.Context(), h.db, id, req.Name, req.Description, price, req.Stock, req.CategoryID)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Product updated",
		"product": product,
	})
}

func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	if err := store.DeleteProduct(r.Context(), h.db, id); err != nil {
		respondStoreError(w, err)
		return
	}

	respondMessage(w, http.StatusOK, "Product deleted")
}

func (h *Handler) ListOutOfStockProducts(w http.ResponseWriter, r *http.Request) {
	products, err := store.ListOutOfStockProducts(r.Context(), h.db)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Out-of-stock products",
		"products": products,
	})
}

func (h *Handler) ListTopSellingProducts(w http.ResponseWriter, r *http.Request) {
	products, err := store.ListTopSellingProducts(r.Context(), h.db, 10)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Top selling products",
		"products": products,
	})
}
