package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jchavez-2023107/api-ventas/internal/database"
	"github.com/jchavez-2023107/api-ventas/internal/models"
)

// GetOrCreateCart lazily creates the user's cart on first access. Each user
// owns exactly one cart; the unique constraint on user_id makes the upsert
// race-safe.
func GetOrCreateCart(ctx context.Context, db *sql.DB, userID int64) (*models.Cart, error) {
	cart := &models.Cart{}

	query := `
		INSERT INTO carts (user_id, created_at, updated_at)
		VALUES ($1, NOW(), NOW())
		ON CONFLICT (user_id) DO UPDATE SET updated_at = carts.updated_at
		RETURNING id, user_id, created_at, updated_at`

	err := db.QueryRowContext(ctx, query, userID).Scan(
		&cart.ID,
		&cart.UserID,
		&cart.CreatedAt,
		&cart.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("get or create cart: %w", err)
	}

	items, err := getCartItems(ctx, db, cart.ID)
	if err != nil {
		return nil, err
	}
	cart.Items = items

	return cart, nil
}

// AddCartItem adds a product to the user's cart, accumulating the quantity
// if the product is already present.
func AddCartItem(ctx context.Context, db *sql.DB, userID, productID int64, quantity int) (*models.Cart, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive")
	}

	if _, err := GetProduct(ctx, db, productID); err != nil {
		return nil, err
	}

	cart, err := GetOrCreateCart(ctx, db, userID)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO cart_items (cart_id, product_id, quantity, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (cart_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = NOW()`

	if _, err := db.ExecContext(ctx, query, cart.ID, productID, quantity); err != nil {
		return nil, fmt.Errorf("add cart item: %w", err)
	}

	return GetOrCreateCart(ctx, db, userID)
}

// UpdateCartItemQuantity sets the quantity of an existing line. A quantity
// of zero or less removes the line, matching the original behavior.
func UpdateCartItemQuantity(ctx context.Context, db *sql.DB, userID, productID int64, quantity int) (*models.Cart, error) {
	cart, err := getCart(ctx, db, userID)
	if err != nil {
		return nil, err
	}

	var result sql.Result
	if quantity <= 0 {
		result, err = db.ExecContext(ctx,
			"DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2",
			cart.ID, productID)
	} else {
		result, err = db.ExecContext(ctx,
			`UPDATE cart_items SET quantity = $1, updated_at = NOW()
			 WHERE cart_id = $2 AND product_id = $3`,
			quantity, cart.ID, productID)
	}
	if err != nil {
		return nil, fmt.Errorf("update cart item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, database.ErrCartItemNotFound
	}

	return GetOrCreateCart(ctx, db, userID)
}

func RemoveCartItem(ctx context.Context, db *sql.DB, userID, productID int64) (*models.Cart, error) {
	cart, err := getCart(ctx, db, userID)
	if err != nil {
		return nil, err
	}

	_, err = db.ExecContext(ctx,
		"DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2",
		cart.ID, productID)
	if err != nil {
		return nil, fmt.Errorf("remove cart item: %w", err)
	}

	return GetOrCreateCart(ctx, db, userID)
}

func ClearCart(ctx context.Context, db *sql.DB, userID int64) (*models.Cart, error) {
	cart, err := getCart(ctx, db, userID)
	if err != nil {
		return nil, err
	}

	_, err = db.ExecContext(ctx, "DELETE FROM cart_items WHERE cart_id = $1", cart.ID)
	if err != nil {
		return nil, fmt.Errorf("clear cart: %w", err)
	}

	return GetOrCreateCart(ctx, db, userID)
}

func getCart(ctx context.Context, db *sql.DB, userID int64) (*models.Cart, error) {
	cart := &models.Cart{}

	err := db.QueryRowContext(ctx,
		"SELECT id, user_id, created_at, updated_at FROM carts WHERE user_id = $1",
		userID).Scan(
		&cart.ID,
		&cart.UserID,
		&cart.CreatedAt,
		&cart.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrCartNotFound
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}

	return cart, nil
}

func getCartItems(ctx context.Context, db *sql.DB, cartID int64) ([]models.CartItem, error) {
	query := `
		SELECT ci.id, ci.cart_id, ci.product_id, p.name, ci.quantity
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.id`

	rows, err := db.QueryContext(ctx, query, cartID)
	if err != nil {
		return nil, fmt.Errorf("get cart items: %w", err)
	}
	defer rows.Close()

	var items []models.CartItem
	for rows.Next() {
		var item models.CartItem
		err := rows.Scan(
			&item.ID,
			&item.CartID,
			&item.ProductID,
			&item.ProductName,
			&item.Quantity,
		)
		if err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return items, nil
}
