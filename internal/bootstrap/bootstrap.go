package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/jchavez-2023107/api-ventas/internal/auth"
	"github.com/jchavez-2023107/api-ventas/internal/config"
	"github.com/jchavez-2023107/api-ventas/internal/models"
	"github.com/jchavez-2023107/api-ventas/internal/store"
	"github.com/shopspring/decimal"
)

// Seed populates an empty database with the default categories, products
// and users. Each step checks for existing rows first, so running it on
// every startup is safe.
func Seed(ctx context.Context, db *sql.DB, cfg *config.AuthConfig) error {
	if err := seedCategories(ctx, db); err != nil {
		return err
	}
	if err := seedProducts(ctx, db); err != nil {
		return err
	}
	if err := seedUsers(ctx, db, cfg); err != nil {
		return err
	}
	return nil
}

func seedCategories(ctx context.Context, db *sql.DB) error {
	var count int64
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM categories").Scan(&count); err != nil {
		return fmt.Errorf("count categories: %w", err)
	}
	if count > 0 {
		return nil
	}

	defaults := []struct {
		name        string
		description string
	}{
		{store.DefaultCategoryName, "Fallback category for uncategorized products"},
		{"Electronics", "Electronic devices and accessories"},
	}

	for _, c := range defaults {
		if _, err := store.CreateCategory(ctx, db, c.name, c.description); err != nil {
			return fmt.Errorf("seed category %s: %w", c.name, err)
		}
	}

	log.Printf("Seeded %d default categories", len(defaults))
	return nil
}

func seedProducts(ctx context.Context, db *sql.DB) error {
	var count int64
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products").Scan(&count); err != nil {
		return fmt.Errorf("count products: %w", err)
	}
	if count > 0 {
		return nil
	}

	var categoryID int64
	err := db.QueryRowContext(ctx,
		"SELECT id FROM categories WHERE name = $1", "Electronics").Scan(&categoryID)
	if err != nil {
		return fmt.Errorf("find electronics category: %w", err)
	}

	defaults := []struct {
		name        string
		description string
		price       string
		stock       int
		salesCount  int
	}{
		{"5G Smartphone", "Smartphone with 5G connectivity and a 108MP camera", "799.99", 10, 100},
		{"RTX 4070 Gaming Laptop", "High-end laptop with an RTX 4070 graphics card", "1499.99", 0, 80},
		{"Noise Cancelling Headphones", "Wireless headphones with active noise cancellation", "199.99", 20, 60},
		{"Sports Smartwatch", "Smartwatch with health monitoring and built-in GPS", "129.99", 15, 90},
		{"32-inch 4K Monitor", "UHD 4K monitor with an IPS panel at 144Hz", "499.99", 7, 50},
		{"RGB Mechanical Keyboard", "Mechanical keyboard with hot-swappable switches", "89.99", 30, 70},
		{"Smart Security Camera", "Security camera with motion detection and night vision", "159.99", 0, 40},
		{"Fast Wireless Charger", "Qi wireless charging pad with fast charge", "39.99", 50, 55},
	}

	for _, p := range defaults {
		price, err := decimal.NewFromString(p.price)
		if err != nil {
			return fmt.Errorf("parse price for %s: %w", p.name, err)
		}

		product, err := store.CreateProduct(ctx, db, p.name, p.description, price, p.stock, categoryID)
		if err != nil {
			return fmt.Errorf("seed product %s: %w", p.name, err)
		}

		if p.salesCount > 0 {
			_, err = db.ExecContext(ctx,
				"UPDATE products SET sales_count = $1 WHERE id = $2",
				p.salesCount, product.ID)
			if err != nil {
				return fmt.Errorf("seed sales count for %s: %w", p.name, err)
			}
		}
	}

	log.Printf("Seeded %d default products", len(defaults))
	return nil
}

func seedUsers(ctx context.Context, db *sql.DB, cfg *config.AuthConfig) error {
	var count int64
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := auth.HashPassword("12345678Aa!", cfg.BcryptCost)
	if err != nil {
		return err
	}

	defaults := []store.CreateUserRequest{
		{
			Name:         "Marla",
			Surname:      "Perez",
			Username:     "mperez",
			Email:        "mperez@gmail.com",
			PasswordHash: hash,
			Phone:        "55986458",
			Role:         models.RoleAdmin,
		},
		{
			Name:         "Alberto",
			Surname:      "Perez",
			Username:     "aperez",
			Email:        "aperez@gmail.com",
			PasswordHash: hash,
			Phone:        "55986458",
			Role:         models.RoleClient,
		},
	}

	for _, u := range defaults {
		if _, err := store.CreateUser(ctx, db, u); err != nil {
			return fmt.Errorf("seed user %s: %w", u.Username, err)
		}
	}

	log.Printf("Seeded %d default users", len(defaults))
	return nil
}
