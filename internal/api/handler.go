package api

import (
	"database/sql"

	"github.com/jchavez-2023107/api-ventas/internal/auth"
	"github.com/jchavez-2023107/api-ventas/internal/config"
)

type Handler struct {
	db     *sql.DB
	cfg    *config.Config
	tokens *auth.TokenIssuer
}

func NewHandler(db *sql.DB, cfg *config.Config, tokens *auth.TokenIssuer) *Handler {
	return &Handler{db: db, cfg: cfg, tokens: tokens}
}
