package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jchavez-2023107/api-ventas/internal/database"
	"github.com/jchavez-2023107/api-ventas/internal/models"
	"github.com/shopspring/decimal"
)

// InsufficientStockError identifies which product could not cover the
// requested quantity. It unwraps to database.ErrInsufficientStock.
type InsufficientStockError struct {
	ProductID   int64
	ProductName string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("not enough stock for product %s", e.ProductName)
}

func (e *InsufficientStockError) Unwrap() error {
	return database.ErrInsufficientStock
}

func generateInvoiceNumber() string {
	return "INV-" + uuid.NewString()
}

// CreateInvoice converts the user's cart into an invoice. The whole
// commitment runs in one transaction: stock validation, the invoice insert
// with price snapshots, the guarded stock decrement and the cart emptying
// either all commit or all roll back. Product rows are locked in product_id
// order, so concurrent commitments for the same product serialize on the
// row lock and each one validates against the stock level the previous one
// left behind. Because the cart is emptied in the same transaction,
// retrying after a successful commit finds an empty cart and fails with
// ErrEmptyCart instead of double-charging.
func CreateInvoice(ctx context.Context, db *sql.DB, userID int64) (*models.Invoice, error) {
	var invoice *models.Invoice

	err := database.WithRetry(ctx, db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		var cartID int64
		err := tx.QueryRowContext(ctx,
			"SELECT id FROM carts WHERE user_id = $1",
			userID).Scan(&cartID)
		if err != nil {
			if err == sql.ErrNoRows {
				return database.ErrEmptyCart
			}
			return fmt.Errorf("load cart: %w", err)
		}

		rows, err := tx.QueryContext(ctx,
			`SELECT product_id, quantity
			 FROM cart_items
			 WHERE cart_id = $1
			 ORDER BY product_id`,
			cartID)
		if err != nil {
			return fmt.Errorf("load cart items: %w", err)
		}
		defer rows.Close()

		type cartLine struct {
			productID int64
			quantity  int
		}
		var lines []cartLine
		for rows.Next() {
			var line cartLine
			if err := rows.Scan(&line.productID, &line.quantity); err != nil {
				return fmt.Errorf("scan cart item: %w", err)
			}
			lines = append(lines, line)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("rows error: %w", err)
		}
		if len(lines) == 0 {
			return database.ErrEmptyCart
		}

		type snapshot struct {
			name  string
			price decimal.Decimal
		}
		products := make(map[int64]snapshot)
		var total decimal.Decimal

		for _, line := range lines {
			var name string
			var price decimal.Decimal
			var stock int

			err := tx.QueryRowContext(ctx,
				`SELECT name, price, stock
				 FROM products
				 WHERE id = $1
				 FOR UPDATE`,
				line.productID).Scan(&name, &price, &stock)
			if err != nil {
				if err == sql.ErrNoRows {
					return database.ErrProductNotFound
				}
				return fmt.Errorf("lock product %d: %w", line.productID, err)
			}

			if stock < line.quantity {
				return &InsufficientStockError{ProductID: line.productID, ProductName: name}
			}

			products[line.productID] = snapshot{name: name, price: price}
			total = total.Add(price.Mul(decimal.NewFromInt(int64(line.quantity))))
		}

		inv := &models.Invoice{UserID: userID, Total: total, Status: models.InvoiceStatusCreated}
		err = tx.QueryRowContext(ctx,
			`INSERT INTO invoices (invoice_number, user_id, total, status, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, NOW(), NOW())
			 RETURNING id, invoice_number, created_at, updated_at`,
			generateInvoiceNumber(), userID, total, models.InvoiceStatusCreated).Scan(
			&inv.ID,
			&inv.InvoiceNumber,
			&inv.CreatedAt,
			&inv.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("create invoice: %w", err)
		}

		for _, line := range lines {
			snap := products[line.productID]
			subtotal := snap.price.Mul(decimal.NewFromInt(int64(line.quantity)))

			item := models.InvoiceItem{
				InvoiceID:   inv.ID,
				ProductID:   line.productID,
				ProductName: snap.name,
				Quantity:    line.quantity,
				UnitPrice:   snap.price,
				Subtotal:    subtotal,
			}
			err = tx.QueryRowContext(ctx,
				`INSERT INTO invoice_items (invoice_id, product_id, quantity, unit_price, subtotal, created_at)
				 VALUES ($1, $2, $3, $4, $5, NOW())
				 RETURNING id`,
				inv.ID, line.productID, line.quantity, snap.price, subtotal).Scan(&item.ID)
			if err != nil {
				return fmt.Errorf("create invoice item: %w", err)
			}
			inv.Items = append(inv.Items, item)
		}

		for _, line := range lines {
			if err := DecrementStockAndIncrementSales(ctx, tx, line.productID, line.quantity); err != nil {
				if err == database.ErrInsufficientStock {
					snap := products[line.productID]
					return &InsufficientStockError{ProductID: line.productID, ProductName: snap.name}
				}
				return err
			}
		}

		_, err = tx.ExecContext(ctx,
			"DELETE FROM cart_items WHERE cart_id = $1",
			cartID)
		if err != nil {
			return fmt.Errorf("empty cart: %w", err)
		}

		invoice = inv
		return nil
	})

	if err != nil {
		return nil, err
	}

	return invoice, nil
}

func GetInvoice(ctx context.Context, db *sql.DB, id int64) (*models.Invoice, error) {
	invoice := &models.Invoice{}

	query := `
		SELECT id, invoice_number, user_id, total, status, created_at, updated_at
		FROM invoices
		WHERE id = $1`

	err := db.QueryRowContext(ctx, query, id).Scan(
		&invoice.ID,
		&invoice.InvoiceNumber,
		&invoice.UserID,
		&invoice.Total,
		&invoice.Status,
		&invoice.CreatedAt,
		&invoice.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}

	items, err := getInvoiceItems(ctx, db, id)
	if err != nil {
		return nil, err
	}
	invoice.Items = items

	return invoice, nil
}

func getInvoiceItems(ctx context.Context, db *sql.DB, invoiceID int64) ([]models.InvoiceItem, error) {
	query := `
		SELECT ii.id, ii.invoice_id, ii.product_id, p.name, ii.quantity, ii.unit_price, ii.subtotal
		FROM invoice_items ii
		JOIN products p ON p.id = ii.product_id
		WHERE ii.invoice_id = $1
		ORDER BY ii.id`

	rows, err := db.QueryContext(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("get invoice items: %w", err)
	}
	defer rows.Close()

	var items []models.InvoiceItem
	for rows.Next() {
		var item models.InvoiceItem
		err := rows.Scan(
			&item.ID,
			&item.InvoiceID,
			&item.ProductID,
			&item.ProductName,
			&item.Quantity,
			&item.UnitPrice,
			&item.Subtotal,
		)
		if err != nil {
			return nil, fmt.Errorf("scan invoice item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return items, nil
}

func ListInvoices(ctx context.Context, db *sql.DB, page, pageSize int) (*OffsetPage, error) {
	var total int64
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM invoices`).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count invoices: %w", err)
	}

	offset := (page - 1) * pageSize
	query := `
		SELECT id, invoice_number, user_id, total, status, created_at, updated_at
		FROM invoices
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2`

	rows, err := db.QueryContext(ctx, query, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	invoices, err := scanInvoices(rows)
	if err != nil {
		return nil, err
	}

	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}

	return &OffsetPage{
		Items:      invoices,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// ListUserInvoicesCursor pages through a user's purchase history with a
// keyset cursor on (created_at, id).
func ListUserInvoicesCursor(ctx context.Context, db *sql.DB, userID int64, cursor string, limit int) (*CursorPage, error) {
	cursorData, err := DecodeCursor(cursor)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}

	query := `
		SELECT id, invoice_number, user_id, total, status, created_at, updated_at
		FROM invoices
		WHERE user_id = $1
		  AND (created_at, id) < ($2, $3)
		ORDER BY created_at DESC, id DESC
		LIMIT $4`

	rows, err := db.QueryContext(ctx, query, userID, cursorData.CreatedAt, cursorData.ID, limit+1)
	if err != nil {
		return nil, fmt.Errorf("list user invoices: %w", err)
	}
	defer rows.Close()

	invoices, err := scanInvoices(rows)
	if err != nil {
		return nil, err
	}

	hasMore := len(invoices) > limit
	if hasMore {
		invoices = invoices[:limit]
	}

	var nextCursor string
	if hasMore && len(invoices) > 0 {
		last := invoices[len(invoices)-1]
		nextCursor = EncodeCursor(InvoiceCursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}

	return &CursorPage{
		Items:      invoices,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}

func scanInvoices(rows *sql.Rows) ([]models.Invoice, error) {
	var invoices []models.Invoice
	for rows.Next() {
		var invoice models.Invoice
		err := rows.Scan(
			&invoice.ID,
			&invoice.InvoiceNumber,
			&invoice.UserID,
			&invoice.Total,
			&invoice.Status,
			&invoice.CreatedAt,
			&invoice.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		invoices = append(invoices, invoice)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return invoices, nil
}

// UpdateInvoiceStatus applies an administrative status transition. Only the
// transitions allowed by models.InvoiceStatus.CanTransitionTo succeed. With
// restock enabled, a CREATED -> CANCELLED transition returns each item's
// quantity to product stock and reverses the sales counters in the same
// transaction.
func UpdateInvoiceStatus(ctx context.Context, db *sql.DB, id int64, newStatus models.InvoiceStatus, restock bool) (*models.Invoice, error) {
	err := database.WithTransaction(ctx, db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		var current models.InvoiceStatus
		err := tx.QueryRowContext(ctx,
			"SELECT status FROM invoices WHERE id = $1 FOR UPDATE",
			id).Scan(&current)
		if err != nil {
			if err == sql.ErrNoRows {
				return database.ErrInvoiceNotFound
			}
			return fmt.Errorf("lock invoice: %w", err)
		}

		if current == newStatus {
			return nil
		}
		if !current.CanTransitionTo(newStatus) {
			return database.ErrInvalidTransition
		}

		if restock && newStatus == models.InvoiceStatusCancelled {
			_, err = tx.ExecContext(ctx,
				`UPDATE products p
				 SET stock = p.stock + ii.quantity,
				     sales_count = p.sales_count - ii.quantity,
				     updated_at = NOW(),
				     version = p.version + 1
				 FROM invoice_items ii
				 WHERE ii.invoice_id = $1
				   AND ii.product_id = p.id`,
				id)
			if err != nil {
				return fmt.Errorf("restock cancelled invoice: %w", err)
			}
		}

		_, err = tx.ExecContext(ctx,
			"UPDATE invoices SET status = $1, updated_at = NOW() WHERE id = $2",
			newStatus, id)
		if err != nil {
			return fmt.Errorf("update invoice status: %w", err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return GetInvoice(ctx, db, id)
}
