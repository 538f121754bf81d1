package integration

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"

	"github.com/jchavez-2023107/api-ventas/internal/database"
	"github.com/jchavez-2023107/api-ventas/internal/models"
	"github.com/jchavez-2023107/api-ventas/internal/store"
	"github.com/shopspring/decimal"
)

func TestConcurrentStockDecrement(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	category := createTestCategory(t, db, "Stock")
	product := createTestProduct(t, db, "Contended Product", 100, 10, category.ID)

	concurrency := 7
	var wg sync.WaitGroup
	results := make(chan error, concurrency)

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			results <- database.WithRetry(ctx, db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
				return store.DecrementStockAndIncrementSales(ctx, tx, product.ID, 2)
			})
		}()
	}

	wg.Wait()
	close(results)

	successCount := 0
	for err := range results {
		if err == nil {
			successCount++
			continue
		}
		if !errors.Is(err, database.ErrInsufficientStock) {
			t.Errorf("Unexpected error: %v", err)
		}
	}

	if successCount != 5 {
		t.Errorf("Expected exactly 5 successful decrements, got %d", successCount)
	}

	final, err := store.GetProduct(ctx, db, product.ID)
	if err != nil {
		t.Fatalf("Get product: %v", err)
	}
	if final.Stock != 0 {
		t.Errorf("Expected stock 0, got %d", final.Stock)
	}
	if final.SalesCount != 10 {
		t.Errorf("Expected sales count 10, got %d", final.SalesCount)
	}
}

func TestProductCRUD(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	category := createTestCategory(t, db, "CRUD")

	product, err := store.CreateProduct(ctx, db, "Keyboard", "mechanical", decimal.NewFromInt(75), 12, category.ID)
	if err != nil {
		t.Fatalf("Create product: %v", err)
	}
	if !product.Price.Equal(decimal.NewFromInt(75)) {
		t.Errorf("Expected price 75, got %s", product.Price)
	}

	_, err = store.CreateProduct(ctx, db, "Keyboard", "duplicate", decimal.NewFromInt(80), 1, category.ID)
	if !errors.Is(err, database.ErrDuplicateName) {
		t.Errorf("Expected ErrDuplicateName, got: %v", err)
	}

	updated, err := store.UpdateProduct(ctx, db, product.ID, "Keyboard Pro", "mechanical", decimal.NewFromInt(90), 8, category.ID)
	if err != nil {
		t.Fatalf("Update product: %v", err)
	}
	if updated.Name != "Keyboard Pro" || updated.Stock != 8 {
		t.Errorf("Update not applied: %+v", updated)
	}
	if updated.Version != product.Version+1 {
		t.Errorf("Expected version %d, got %d", product.Version+1, updated.Version)
	}

	if err := store.DeleteProduct(ctx, db, product.ID); err != nil {
		t.Fatalf("Delete product: %v", err)
	}
	if err := store.DeleteProduct(ctx, db, product.ID); !errors.Is(err, database.ErrProductNotFound) {
		t.Errorf("Expected ErrProductNotFound, got: %v", err)
	}
	if _, err := store.GetProduct(ctx, db, product.ID); !errors.Is(err, database.ErrProductNotFound) {
		t.Errorf("Expected ErrProductNotFound, got: %v", err)
	}
}

func TestDeleteReferencedProduct(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	user := createTestUser(t, db, "shopper")
	category := createTestCategory(t, db, "Referenced")
	product := createTestProduct(t, db, "Popular Item", 60, 10, category.ID)

	// In a cart: the delete must be refused, not blow up.
	addToCart(t, db, user.ID, product.ID, 1)
	if err := store.DeleteProduct(ctx, db, product.ID); !errors.Is(err, database.ErrProductInUse) {
		t.Errorf("Expected ErrProductInUse for carted product, got: %v", err)
	}

	// Sold: the invoice item snapshot keeps the reference alive.
	if _, err := store.CreateInvoice(ctx, db, user.ID); err != nil {
		t.Fatalf("Create invoice: %v", err)
	}
	if err := store.DeleteProduct(ctx, db, product.ID); !errors.Is(err, database.ErrProductInUse) {
		t.Errorf("Expected ErrProductInUse for sold product, got: %v", err)
	}

	if _, err := store.GetProduct(ctx, db, product.ID); err != nil {
		t.Errorf("Product should still exist after refused deletes: %v", err)
	}
}

func TestListProductsFilters(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	phones := createTestCategory(t, db, "Phones")
	audio := createTestCategory(t, db, "Audio")

	createTestProduct(t, db, "Phone Alpha", 300, 5, phones.ID)
	createTestProduct(t, db, "Phone Beta", 400, 5, phones.ID)
	createTestProduct(t, db, "Headphones", 80, 5, audio.ID)

	page, err := store.ListProducts(ctx, db, store.ProductFilter{Name: "phone"}, 1, 20)
	if err != nil {
		t.Fatalf("List by name: %v", err)
	}
	if page.Total != 3 {
		t.Errorf("Expected 3 matches for 'phone', got %d", page.Total)
	}

	page, err = store.ListProducts(ctx, db, store.ProductFilter{CategoryID: phones.ID}, 1, 20)
	if err != nil {
		t.Fatalf("List by category: %v", err)
	}
	if page.Total != 2 {
		t.Errorf("Expected 2 products in category, got %d", page.Total)
	}

	page, err = store.ListProducts(ctx, db, store.ProductFilter{}, 1, 2)
	if err != nil {
		t.Fatalf("List paginated: %v", err)
	}
	if page.TotalPages != 2 {
		t.Errorf("Expected 2 pages, got %d", page.TotalPages)
	}
	items, ok := page.Items.([]models.Product)
	if !ok {
		t.Fatalf("Expected page items to be []models.Product, got %T", page.Items)
	}
	if len(items) != 2 {
		t.Errorf("Expected 2 items on first page, got %d", len(items))
	}
}

func TestStockReports(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	category := createTestCategory(t, db, "Reports")

	createTestProduct(t, db, "Sold Out A", 10, 0, category.ID)
	createTestProduct(t, db, "Sold Out B", 10, 0, category.ID)
	inStock := createTestProduct(t, db, "In Stock", 10, 4, category.ID)

	outOfStock, err := store.ListOutOfStockProducts(ctx, db)
	if err != nil {
		t.Fatalf("List out-of-stock: %v", err)
	}
	if len(outOfStock) != 2 {
		t.Fatalf("Expected 2 out-of-stock products, got %d", len(outOfStock))
	}
	for _, p := range outOfStock {
		if p.ID == inStock.ID {
			t.Errorf("In-stock product %d listed as out of stock", p.ID)
		}
	}

	// Drive sales counters through the guarded decrement.
	err = database.WithTransaction(ctx, db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		return store.DecrementStockAndIncrementSales(ctx, tx, inStock.ID, 3)
	})
	if err != nil {
		t.Fatalf("Decrement stock: %v", err)
	}

	top, err := store.ListTopSellingProducts(ctx, db, 2)
	if err != nil {
		t.Fatalf("List top selling: %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("Expected 2 top sellers, got %d", len(top))
	}
	if top[0].ID != inStock.ID {
		t.Errorf("Expected product %d as top seller, got %d", inStock.ID, top[0].ID)
	}
	if top[0].SalesCount != 3 {
		t.Errorf("Expected sales count 3, got %d", top[0].SalesCount)
	}
	if top[0].Version != inStock.Version+1 {
		t.Errorf("Expected version %d after decrement, got %d", inStock.Version+1, top[0].Version)
	}
}
