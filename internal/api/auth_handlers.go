package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jchavez-2023107/api-ventas/internal/auth"
	"github.com/jchavez-2023107/api-ventas/internal/database"
	"github.com/jchavez-2023107/api-ventas/internal/models"
	"github.com/jchavez-2023107/api-ventas/internal/store"
)

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.db.PingContext(r.Context()); err != nil {
		respondMessage(w, http.StatusServiceUnavailable, "Database unavailable")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Surname  string `json:"surname"`
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Phone    string `json:"phone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request body")
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
		Role:         models.RoleClient,
	})
	if err != nil {
		if errors.Is(err, database.ErrDuplicateUser) {
			respondMessage(w, http.StatusBadRequest, "Username or Email already taken")
			return
		}
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "User registered successfully",
		"user":    user,
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserLogin string `json:"userlogin"`
		Password  string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := store.GetUserByLogin(r.Context(), h.db, req.UserLogin)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			respondMessage(w, http.StatusBadRequest, "Invalid credentials")
			return
		}
		respondStoreError(w, err)
		return
	}

	if !user.Active || !auth.CheckPassword(user.PasswordHash, req.Password) {
		respondMessage(w, http.StatusBadRequest, "Invalid credentials")
		return
	}

	token, err := h.tokens.Issue(user.ID, user.Username, user.Role)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"token": token})
}
