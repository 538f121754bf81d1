package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jchavez-2023107/api-ventas/internal/database"
	"github.com/jchavez-2023107/api-ventas/internal/models"
)

const userColumns = `id, name, surname, username, email, password_hash, phone, role, active, deleted_at, created_at, updated_at, version`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	user := &models.User{}
	var phone sql.NullString
	var deletedAt sql.NullTime

	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Surname,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&phone,
		&user.Role,
		&user.Active,
		&deletedAt,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.Version,
	)
	if err != nil {
		return nil, err
	}

	user.Phone = phone.String
	if deletedAt.Valid {
		t := deletedAt.Time
		user.DeletedAt = &t
	}
	return user, nil
}

type CreateUserRequest struct {
	Name         string
	Surname      string
	Username     string
	Email        string
	PasswordHash string
	Phone        string
	Role         string
}

func CreateUser(ctx context.Context, db *sql.DB, req CreateUserRequest) (*models.User, error) {
	if req.Role == "" {
		req.Role = models.RoleClient
	}

	query := `
		INSERT INTO users (name, surname, username, email, password_hash, phone, role, active, created_at, updated_at, version)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, TRUE, NOW(), NOW(), 1)
		RETURNING ` + userColumns

	user, err := scanUser(db.QueryRowContext(ctx, query,
		req.Name, req.Surname, req.Username, req.Email, req.PasswordHash, req.Phone, req.Role))
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, database.ErrDuplicateUser
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

func GetUser(ctx context.Context, db *sql.DB, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return user, nil
}

// GetUserByLogin resolves a username or an email, matching the original
// single-field login form.
func GetUserByLogin(ctx context.Context, db *sql.DB, login string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1 OR email = $1`

	user, err := scanUser(db.QueryRowContext(ctx, query, login))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by login: %w", err)
	}

	return user, nil
}

func ListUsers(ctx context.Context, db *sql.DB, page, pageSize int) (*OffsetPage, error) {
	var total int64
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}

	offset := (page - 1) * pageSize
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := db.QueryContext(ctx, query, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}

	return &OffsetPage{
		Items:      users,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

type UpdateUserRequest struct {
	Name     string
	Surname  string
	Username string
	Email    string
	Phone    string
	Role     string
}

// UpdateUser applies the non-empty fields. Role changes are only honored
// when the caller passes one (admin path); the profile handler leaves it
// blank.
func UpdateUser(ctx context.Context, db *sql.DB, id int64, req UpdateUserRequest) (*models.User, error) {
	query := `
		UPDATE users
		SET name = COALESCE(NULLIF($1, ''), name),
		    surname = COALESCE(NULLIF($2, ''), surname),
		    username = COALESCE(NULLIF($3, ''), username),
		    email = COALESCE(NULLIF($4, ''), email),
		    phone = COALESCE(NULLIF($5, ''), phone),
		    role = COALESCE(NULLIF($6, ''), role),
		    updated_at = NOW(),
		    version = version + 1
		WHERE id = $7
		RETURNING ` + userColumns

	user, err := scanUser(db.QueryRowContext(ctx, query,
		req.Name, req.Surname, req.Username, req.Email, req.Phone, req.Role, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrUserNotFound
		}
		if database.IsUniqueViolation(err) {
			return nil, database.ErrDuplicateUser
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	return user, nil
}

func UpdatePassword(ctx context.Context, db *sql.DB, id int64, passwordHash string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE users
		 SET password_hash = $1, updated_at = NOW(), version = version + 1
		 WHERE id = $2`,
		passwordHash, id)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return database.ErrUserNotFound
	}

	return nil
}

// SoftDeleteUser disables the account instead of removing the row, so the
// user's invoices keep a valid owner.
func SoftDeleteUser(ctx context.Context, db *sql.DB, id int64, now time.Time) error {
	result, err := db.ExecContext(ctx,
		`UPDATE users
		 SET active = FALSE, deleted_at = $1, updated_at = NOW(), version = version + 1
		 WHERE id = $2 AND active`,
		now, id)
	if err != nil {
		return fmt.Errorf("soft delete user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return database.ErrUserNotFound
	}

	return nil
}

// DeleteUser removes a user with no cart, invoices or audit entries. Users
// with history should be soft-deleted instead.
func DeleteUser(ctx context.Context, db *sql.DB, id int64) error {
	result, err := db.ExecContext(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return database.ErrUserInUse
		}
		return fmt.Errorf("delete user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return database.ErrUserNotFound
	}

	return nil
}
