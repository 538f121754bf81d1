package integration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jchavez-2023107/api-ventas/internal/database"
	"github.com/jchavez-2023107/api-ventas/internal/models"
	"github.com/jchavez-2023107/api-ventas/internal/store"
)

func TestCreateAndLoginLookup(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	user, err := store.CreateUser(ctx, db, store.CreateUserRequest{
		Name:         "Ana",
		Surname:      "Lopez",
		Username:     "alopez",
		Email:        "alopez@example.com",
		PasswordHash: "hash",
		Phone:        "55512345",
		Role:         models.RoleClient,
	})
	if err != nil {
		t.Fatalf("Create user: %v", err)
	}
	if !user.Active {
		t.Error("Expected new user to be active")
	}

	byUsername, err := store.GetUserByLogin(ctx, db, "alopez")
	if err != nil {
		t.Fatalf("Lookup by username: %v", err)
	}
	byEmail, err := store.GetUserByLogin(ctx, db, "alopez@example.com")
	if err != nil {
		t.Fatalf("Lookup by email: %v", err)
	}
	if byUsername.ID != user.ID || byEmail.ID != user.ID {
		t.Errorf("Lookups resolved different users: %d, %d, want %d", byUsername.ID, byEmail.ID, user.ID)
	}

	_, err = store.GetUserByLogin(ctx, db, "nobody")
	if !errors.Is(err, database.ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound, got: %v", err)
	}

	_, err = store.CreateUser(ctx, db, store.CreateUserRequest{
		Name:         "Ana",
		Surname:      "Lopez",
		Username:     "alopez",
		Email:        "other@example.com",
		PasswordHash: "hash",
	})
	if !errors.Is(err, database.ErrDuplicateUser) {
		t.Errorf("Expected ErrDuplicateUser, got: %v", err)
	}
}

func TestUpdateUserPartialFields(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	user := createTestUser(t, db, "partial")

	updated, err := store.UpdateUser(ctx, db, user.ID, store.UpdateUserRequest{
		Name: "Renamed",
	})
	if err != nil {
		t.Fatalf("Update user: %v", err)
	}
	if updated.Name != "Renamed" {
		t.Errorf("Expected name Renamed, got %q", updated.Name)
	}
	if updated.Username != user.Username || updated.Email != user.Email {
		t.Errorf("Blank fields should be untouched: %+v", updated)
	}
	if updated.Role != models.RoleClient {
		t.Errorf("Blank role should be untouched, got %q", updated.Role)
	}

	promoted, err := store.UpdateUser(ctx, db, user.ID, store.UpdateUserRequest{
		Role: models.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("Promote user: %v", err)
	}
	if promoted.Role != models.RoleAdmin {
		t.Errorf("Expected role %q, got %q", models.RoleAdmin, promoted.Role)
	}
}

func TestSoftDeleteUserWithAudit(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	user := createTestUser(t, db, "leaving")

	if err := store.SoftDeleteUser(ctx, db, user.ID, time.Now()); err != nil {
		t.Fatalf("Soft delete: %v", err)
	}
	if err := store.RecordAuditLog(ctx, db, user.ID, "Account Deletion Request (Soft Delete)", "127.0.0.1", "requested by user"); err != nil {
		t.Fatalf("Record audit log: %v", err)
	}

	// The row survives, flagged inactive.
	got, err := store.GetUser(ctx, db, user.ID)
	if err != nil {
		t.Fatalf("Get user: %v", err)
	}
	if got.Active {
		t.Error("Expected user to be inactive")
	}
	if got.DeletedAt == nil {
		t.Error("Expected deleted_at to be set")
	}

	// Second soft delete finds no active row.
	err = store.SoftDeleteUser(ctx, db, user.ID, time.Now())
	if !errors.Is(err, database.ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound, got: %v", err)
	}

	logs, err := store.ListAuditLogs(ctx, db)
	if err != nil {
		t.Fatalf("List audit logs: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("Expected 1 audit entry, got %d", len(logs))
	}
	if logs[0].UserID != user.ID || logs[0].Username != "leaving" {
		t.Errorf("Audit entry not linked to user: %+v", logs[0])
	}
	if logs[0].IP != "127.0.0.1" {
		t.Errorf("Expected IP 127.0.0.1, got %q", logs[0].IP)
	}
}

func TestDeleteUserWithHistory(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	user := createTestUser(t, db, "veteran")
	category := createTestCategory(t, db, "History")
	product := createTestProduct(t, db, "Charger", 20, 5, category.ID)

	addToCart(t, db, user.ID, product.ID, 1)
	if _, err := store.CreateInvoice(ctx, db, user.ID); err != nil {
		t.Fatalf("Create invoice: %v", err)
	}

	// The invoice keeps a reference to its owner; a hard delete is refused
	// and the soft delete is the supported path.
	err := store.DeleteUser(ctx, db, user.ID)
	if !errors.Is(err, database.ErrUserInUse) {
		t.Errorf("Expected ErrUserInUse, got: %v", err)
	}

	if err := store.SoftDeleteUser(ctx, db, user.ID, time.Now()); err != nil {
		t.Errorf("Soft delete should still work: %v", err)
	}

	// A user with no history can be hard-deleted.
	fresh := createTestUser(t, db, "fresh")
	if err := store.DeleteUser(ctx, db, fresh.ID); err != nil {
		t.Errorf("Delete fresh user: %v", err)
	}
}

func TestCategoryDeleteMovesProducts(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	defaultCat, err := store.CreateCategory(ctx, db, store.DefaultCategoryName, "fallback")
	if err != nil {
		t.Fatalf("Create default category: %v", err)
	}
	doomed := createTestCategory(t, db, "Doomed")
	product := createTestProduct(t, db, "Orphan", 10, 1, doomed.ID)

	if err := store.DeleteCategory(ctx, db, doomed.ID); err != nil {
		t.Fatalf("Delete category: %v", err)
	}

	moved, err := store.GetProduct(ctx, db, product.ID)
	if err != nil {
		t.Fatalf("Get product: %v", err)
	}
	if moved.CategoryID != defaultCat.ID {
		t.Errorf("Expected product moved to category %d, got %d", defaultCat.ID, moved.CategoryID)
	}

	// The fallback category itself cannot be deleted.
	if err := store.DeleteCategory(ctx, db, defaultCat.ID); err == nil {
		t.Error("Expected deleting the default category to fail")
	}
}
