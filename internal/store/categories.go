package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jchavez-2023107/api-ventas/internal/database"
	"github.com/jchavez-2023107/api-ventas/internal/models"
)

// DefaultCategoryName is the category products fall back to when theirs is
// deleted.
const DefaultCategoryName = "Default"

func CreateCategory(ctx context.Context, db *sql.DB, name, description string) (*models.Category, error) {
	category := &models.Category{}

	query := `
		INSERT INTO categories (name, description, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		RETURNING id, name, description, created_at, updated_at`

	err := db.QueryRowContext(ctx, query, name, description).Scan(
		&category.ID,
		&category.Name,
		&category.Description,
		&category.CreatedAt,
		&category.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, database.ErrDuplicateName
		}
		return nil, fmt.Errorf("create category: %w", err)
	}

	return category, nil
}

func GetCategory(ctx context.Context, db *sql.DB, id int64) (*models.Category, error) {
	category := &models.Category{}

	err := db.QueryRowContext(ctx,
		"SELECT id, name, description, created_at, updated_at FROM categories WHERE id = $1",
		id).Scan(
		&category.ID,
		&category.Name,
		&category.Description,
		&category.CreatedAt,
		&category.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("get category: %w", err)
	}

	return category, nil
}

func ListCategories(ctx context.Context, db *sql.DB) ([]models.Category, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT id, name, description, created_at, updated_at FROM categories ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var category models.Category
		err := rows.Scan(
			&category.ID,
			&category.Name,
			&category.Description,
			&category.CreatedAt,
			&category.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, category)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return categories, nil
}

func UpdateCategory(ctx context.Context, db *sql.DB, id int64, name, description string) (*models.Category, error) {
	category := &models.Category{}

	query := `
		UPDATE categories
		SET name = $1, description = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING id, name, description, created_at, updated_at`

	err := db.QueryRowContext(ctx, query, name, description, id).Scan(
		&category.ID,
		&category.Name,
		&category.Description,
		&category.CreatedAt,
		&category.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrCategoryNotFound
		}
		if database.IsUniqueViolation(err) {
			return nil, database.ErrDuplicateName
		}
		return nil, fmt.Errorf("update category: %w", err)
	}

	return category, nil
}

// DeleteCategory removes a category after moving its products to the
// Default category, which must exist.
func DeleteCategory(ctx context.Context, db *sql.DB, id int64) error {
	return database.WithTransaction(ctx, db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		var defaultID int64
		err := tx.QueryRowContext(ctx,
			"SELECT id FROM categories WHERE name = $1",
			DefaultCategoryName).Scan(&defaultID)
		if err != nil {
			if err == sql.ErrNoRows {
				return database.ErrCategoryNotFound
			}
			return fmt.Errorf("find default category: %w", err)
		}

		if defaultID == id {
			return fmt.Errorf("cannot delete the default category")
		}

		_, err = tx.ExecContext(ctx,
			"UPDATE products SET category_id = $1, updated_at = NOW() WHERE category_id = $2",
			defaultID, id)
		if err != nil {
			return fmt.Errorf("reassign products: %w", err)
		}

		result, err := tx.ExecContext(ctx, "DELETE FROM categories WHERE id = $1", id)
		if err != nil {
			return fmt.Errorf("delete category: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return database.ErrCategoryNotFound
		}

		return nil
	})
}
