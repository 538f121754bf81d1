package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jchavez-2023107/api-ventas/internal/api"
	"github.com/jchavez-2023107/api-ventas/internal/auth"
	"github.com/jchavez-2023107/api-ventas/internal/config"
	"github.com/jchavez-2023107/api-ventas/internal/models"
	"github.com/jchavez-2023107/api-ventas/internal/store"
)

func newAPIRouter(db *sql.DB) (http.Handler, *auth.TokenIssuer) {
	cfg := &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:  "integration-secret",
			TokenTTL:   time.Hour,
			BcryptCost: 4,
		},
	}
	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	return api.NewRouter(api.NewHandler(db, cfg, tokens)), tokens
}

func TestGetInvoiceOwnership(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	router, tokens := newAPIRouter(db)

	owner := createTestUser(t, db, "owner")
	other := createTestUser(t, db, "other")
	admin, err := store.CreateUser(ctx, db, store.CreateUserRequest{
		Name:         "Admin",
		Surname:      "User",
		Username:     "admin",
		Email:        "admin@example.com",
		PasswordHash: "not-a-real-hash",
		Role:         models.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("Create admin: %v", err)
	}

	category := createTestCategory(t, db, "Gadgets")
	product := createTestProduct(t, db, "Drone", 350, 5, category.ID)
	addToCart(t, db, owner.ID, product.ID, 1)

	invoice, err := store.CreateInvoice(ctx, db, owner.ID)
	if err != nil {
		t.Fatalf("Create invoice: %v", err)
	}

	getInvoice := func(userID int64, username, role string) *httptest.ResponseRecorder {
		token, err := tokens.Issue(userID, username, role)
		if err != nil {
			t.Fatalf("Issue token for %s: %v", username, err)
		}

		req := httptest.NewRequest(http.MethodGet,
			fmt.Sprintf("/api/invoices/%d", invoice.ID), nil)
		req.Header.Set("Authorization", "Bearer "+token)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	// The owner and an admin can read the invoice.
	if rec := getInvoice(owner.ID, "owner", models.RoleClient); rec.Code != http.StatusOK {
		t.Errorf("Owner expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec := getInvoice(admin.ID, "admin", models.RoleAdmin); rec.Code != http.StatusOK {
		t.Errorf("Admin expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	// Another client is turned away without leaking the invoice.
	rec := getInvoice(other.ID, "other", models.RoleClient)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("Other client expected 403, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Decode response: %v", err)
	}
	if resp["message"] != "Access denied" {
		t.Errorf("Expected message %q, got %q", "Access denied", resp["message"])
	}
}
