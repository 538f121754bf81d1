package main

import (
	"context"
	"log"
	"net/http"

	"github.com/jchavez-2023107/api-ventas/internal/api"
	"github.com/jchavez-2023107/api-ventas/internal/auth"
	"github.com/jchavez-2023107/api-ventas/internal/bootstrap"
	"github.com/jchavez-2023107/api-ventas/internal/config"
	"github.com/jchavez-2023107/api-ventas/internal/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Load config: %v", err)
	}

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		log.Fatalf("Connect to database: %v", err)
	}
	defer db.Close()

	log.Printf("Connected to database successfully")

	if err := bootstrap.Seed(context.Background(), db, &cfg.Auth); err != nil {
		log.Fatalf("Seed default data: %v", err)
	}

	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	handler := api.NewHandler(db, cfg, tokens)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      api.NewRouter(handler),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	log.Printf("Server starting on port %s", cfg.Server.Port)
	if err := server.ListenAndServe(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
