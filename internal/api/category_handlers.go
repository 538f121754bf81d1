package api

import (
	"encoding/json"
	"net/http"

	"github.com/jchavez-2023107/api-ventas/internal/store"
)

func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		respondMessage(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	category, err := store.CreateCategory(r.Context(), h.db, req.Name, req.Description)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message":  "Category created",
		"category": category,
	})
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := store.ListCategories(r.Context(), h.db)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"categories": categories})
}

func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid category ID")
		return
	}

	category, err := store.GetCategory(r.Context(), h.db, id)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"category": category})
}

func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid category ID")
		return
	}

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	category, err := store.UpdateCategory(r.Context(), h.db, id, req.Name, req.Description)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Category updated",
		"category": category,
	})
}

func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid category ID")
		return
	}

	if err := store.DeleteCategory(r.Context(), h.db, id); err != nil {
		respondStoreError(w, err)
		return
	}

	respondMessage(w, http.StatusOK, "Category deleted and products moved to default category")
}
