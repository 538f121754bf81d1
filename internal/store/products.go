package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jchavez-2023107/api-ventas/internal/database"
	"github.com/jchavez-2023107/api-ventas/internal/models"
	"github.com/shopspring/decimal"
)

const productColumns = `id, name, description, price, stock, sales_count, category_id, created_at, updated_at, version`

func scanProduct(row interface{ Scan(...any) error }) (*models.Product, error) {
	product := &models.Product{}
	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&product.Price,
		&product.Stock,
		&product.SalesCount,
		&product.CategoryID,
		&product.CreatedAt,
		&product.UpdatedAt,
		&product.Version,
	)
	if err != nil {
		return nil, err
	}
	return product, nil
}

func CreateProduct(ctx context.Context, db *sql.DB, name, description string, price decimal.Decimal, stock int, categoryID int64) (*models.Product, error) {
	query := `
		INSERT INTO products (name, description, price, stock, sales_count, category_id, created_at, updated_at, version)
		VALUES ($1, $2, $3, $4, 0, $5, NOW(), NOW(), 1)
		RETURNING ` + productColumns

	product, err := scanProduct(db.QueryRowContext(ctx, query, name, description, price, stock, categoryID))
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, database.ErrDuplicateName
		}
		return nil, fmt.Errorf("create product: %w", err)
	}

	return product, nil
}

func GetProduct(ctx context.Context, db *sql.DB, id int64) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	product, err := scanProduct(db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	return product, nil
}

type ProductFilter struct {
	Name       string
	CategoryID int64
}

func ListProducts(ctx context.Context, db *sql.DB, filter ProductFilter, page, pageSize int) (*OffsetPage, error) {
	where := "WHERE 1=1"
	args := []any{}

	if filter.Name != "" {
		args = append(args, "%"+filter.Name+"%")
		where += fmt.Sprintf(" AND name ILIKE $%d", len(args))
	}
	if filter.CategoryID != 0 {
		args = append(args, filter.CategoryID)
		where += fmt.Sprintf(" AND category_id = $%d", len(args))
	}

	var total int64
	err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products "+where, args...).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}

	offset := (page - 1) * pageSize
	args = append(args, pageSize, offset)
	query := fmt.Sprintf(
		"SELECT %s FROM products %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		productColumns, where, len(args)-1, len(args))

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products, err := collectProducts(rows)
	if err != nil {
		return nil, err
	}

	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}

	return &OffsetPage{
		Items:      products,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

func UpdateProduct(ctx context.Context, db *sql.DB, id int64, name, description string, price decimal.Decimal, stock int, categoryID int64) (*models.Product, error) {
	query := `
		UPDATE products
		SET name = $1, description = $2, price = $3, stock = $4, category_id = $5,
		    updated_at = NOW(), version = version + 1
		WHERE id = $6
		RETURNING ` + productColumns

	product, err := scanProduct(db.QueryRowContext(ctx, query, name, description, price, stock, categoryID, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrProductNotFound
		}
		if database.IsUniqueViolation(err) {
			return nil, database.ErrDuplicateName
		}
		return nil, fmt.Errorf("update product: %w", err)
	}

	return product, nil
}

// DeleteProduct removes a product that is not referenced by any cart or
// invoice. Sold products keep their rows so stored invoices stay intact.
func DeleteProduct(ctx context.Context, db *sql.DB, id int64) error {
	result, err := db.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return database.ErrProductInUse
		}
		return fmt.Errorf("delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return database.ErrProductNotFound
	}

	return nil
}

func ListOutOfStockProducts(ctx context.Context, db *sql.DB) ([]models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE stock <= 0 ORDER BY name`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list out-of-stock products: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

func ListTopSellingProducts(ctx context.Context, db *sql.DB, limit int) ([]models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY sales_count DESC LIMIT $1`

	rows, err := db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list top selling products: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

// DecrementStockAndIncrementSales is the stock-mutation contract used by the
// invoice commitment. The guard in the WHERE clause keeps stock from going
// negative regardless of interleaving; zero rows affected means the product
// cannot cover the quantity.
func DecrementStockAndIncrementSales(ctx context.Context, tx *sql.Tx, productID int64, quantity int) error {
	result, err := tx.ExecContext(ctx,
		`UPDATE products
		 SET stock = stock - $1,
		     sales_count = sales_count + $1,
		     updated_at = NOW(),
		     version = version + 1
		 WHERE id = $2
		   AND stock >= $1`,
		quantity, productID)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return database.ErrInsufficientStock
	}

	return nil
}

func collectProducts(rows *sql.Rows) ([]models.Product, error) {
	var products []models.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return products, nil
}
