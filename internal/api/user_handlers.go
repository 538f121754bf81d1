package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/jchavez-2023107/api-ventas/internal/auth"
	"github.com/jchavez-2023107/api-ventas/internal/models"
	"github.com/jchavez-2023107/api-ventas/internal/store"
)

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())

	user, err := store.GetUser(r.Context(), h.db, identity.UserID)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())

	var req struct {
		Name     string `json:"name"`
		Surname  string `json:"surname"`
		Username string `json:"username"`
		Email    string `json:"email"`
		Phone    string `json:"phone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// Role is deliberately not accepted on the profile path.
	user, err := store.UpdateUser(r.Context(), h.db, identity.UserID, store.UpdateUserRequest{
		Name:     req.Name,
		Surname:  req.Surname,
		Username: req.Username,
		Email:    req.Email,
		Phone:    req.Phone,
	})
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Profile updated successfully",
		"user":    user,
	})
}

// DeleteProfile disables the account (soft delete) and records the request
// in the audit log, including the caller's IP.
func (h *Handler) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())

	if err := store.SoftDeleteUser(r.Context(), h.db, identity.UserID, time.Now()); err != nil {
		respondStoreError(w, err)
		return
	}

	if err := store.RecordAuditLog(r.Context(), h.db, identity.UserID,
		"Account Deletion Request (Soft Delete)", r.RemoteAddr, ""); err != nil {
		respondStoreError(w, err)
		return
	}

	respondMessage(w, http.StatusOK, "Account disabled successfully")
}

func (h *Handler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())

	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.NewPassword == "" {
		respondMessage(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	user, err := store.GetUser(r.Context(), h.db, identity.UserID)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	if !auth.CheckPassword(user.PasswordHash, req.CurrentPassword) {
		respondMessage(w, http.StatusBadRequest, "Current password is incorrect")
		return
	}

	hash, err := auth.HashPassword(req.NewPassword, h.cfg.Auth.BcryptCost)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	if err := store.UpdatePassword(r.Context(), h.db, identity.UserID, hash); err != nil {
		respondStoreError(w, err)
		return
	}

	respondMessage(w, http.StatusOK, "Password updated successfully")
}

func (h *Handler) ListMyInvoices(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())

	cursor := r.URL.Query().Get("cursor")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 20
	}

	page, err := store.ListUserInvoicesCursor(r.Context(), h.db, identity.UserID, cursor, limit)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, page)
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Surname  string `json:"surname"`
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Phone    string `json:"phone"`
		Role     string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Role != "" && req.Role != models.RoleClient && req.Role != models.RoleAdmin {
		respondMessage(w, http.StatusBadRequest, "Invalid role")
		return
	}
	if req.Name == "" || req.Surname == "" || req.Username == "" || req.Email == "" || req.Password == "" {
		respondMessage(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	hash, err := auth.HashPassword(req.Password, h.cfg.Auth.BcryptCost)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	user, err := store.CreateUser(r.Context(), h.db, store.CreateUserRequest{
		Name:         req.Name,
		Surname:      req.Surname,
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Phone:        req.Phone,
		Role:         req.Role,
	})
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "User created",
		"user":    user,
	})
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)

	result, err := store.ListUsers(r.Context(), h.db, page, pageSize)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	user, err := store.GetUser(r.Context(), h.db, id)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	var req struct {
		Name     string `json:"name"`
		Surname  string `json:"surname"`
		Username string `json:"username"`
		Email    string `json:"email"`
		Phone    string `json:"phone"`
		Role     string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Role != "" && req.Role != models.RoleClient && req.Role != models.RoleAdmin {
		respondMessage(w, http.StatusBadRequest, "Invalid role")
		return
	}

	user, err := store.UpdateUser(r.Context(), h.db, id, store.UpdateUserRequest{
		Name:     req.Name,
		Surname:  req.Surname,
		Username: req.Username,
		Email:    req.Email,
		Phone:    req.Phone,
		Role:     req.Role,
	})
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "User updated",
		"user":    user,
	})
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())

	id, err := parseIDParam(r, "id")
	if err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid user ID")
		return
	}
	if identity.UserID == id {
		respondMessage(w, http.StatusForbidden, "Admins cannot delete their own accounts")
		return
	}

	if err := store.DeleteUser(r.Context(), h.db, id); err != nil {
		respondStoreError(w, err)
		return
	}

	respondMessage(w, http.StatusOK, "User deleted successfully")
}
