package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jchavez-2023107/api-ventas/internal/models"
)

func RecordAuditLog(ctx context.Context, db *sql.DB, userID int64, action, ip, details string) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO audit_logs (user_id, action, ip, details, created_at)
		 VALUES ($1, $2, NULLIF($3, ''), $4, NOW())`,
		userID, action, ip, details)
	if err != nil {
		return fmt.Errorf("record audit log: %w", err)
	}
	return nil
}

func ListAuditLogs(ctx context.Context, db *sql.DB) ([]models.AuditLog, error) {
	query := `
		SELECT a.id, a.user_id, u.username, u.email, a.action, COALESCE(a.ip, ''), a.details, a.created_at
		FROM audit_logs a
		JOIN users u ON u.id = a.user_id
		ORDER BY a.created_at DESC`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	defer rows.Close()

	var logs []models.AuditLog
	for rows.Next() {
		var entry models.AuditLog
		err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.Username,
			&entry.Email,
			&entry.Action,
			&entry.IP,
			&entry.Details,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		logs = append(logs, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return logs, nil
}
