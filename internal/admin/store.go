// Package admin serves the back-office dashboard: database stats, the
// audit trail and system settings.
package admin

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type Stats struct {
	Users            int64 `json:"users"`
	Products         int64 `json:"products"`
	Rentals          int64 `json:"rentals"`
	PendingRentals   int64 `json:"pending_rentals"`
	ActiveRentals    int64 `json:"active_rentals"`
	Payments         int64 `json:"payments"`
	PendingPayments  int64 `json:"pending_payments"`
	Orders           int64 `json:"orders"`
	PendingIDCards   int64 `json:"pending_id_cards"`
	Notifications    int64 `json:"notifications"`
	ActivePushTokens int64 `json:"active_push_tokens"`
}

type AuditLog struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Action    string    `json:"action"`
	Detail    string    `json:"detail"`
	CreatedAt time.Time `json:"created_at"`
}

type AdminStore interface {
	Stats(ctx context.Context) (*Stats, error)
	AuditLogs(ctx context.Context, limit int) ([]AuditLog, error)
	AuditLogsByUser(ctx context.Context, userID int64, limit int) ([]AuditLog, error)
	// GetSetting returns ("", false, nil) when the key is unset.
	GetSetting(ctx context.Context, key string) (string, bool, error)
	SetSetting(ctx context.Context, key, value string) error
}

type Store struct{ db *sql.DB }

func NewStore(conn *sql.DB) AdminStore { return &Store{db: conn} }

func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	var st Stats
	counts := []struct {
		q    string
		dest *int64
	}{
		{`SELECT COUNT(*) FROM users`, &st.Users},
		{`SELECT COUNT(*) FROM products`, &st.Products},
		{`SELECT COUNT(*) FROM rentals`, &st.Rentals},
		{`SELECT COUNT(*) FROM rentals WHERE status = 'pending'`, &st.PendingRentals},
		{`SELECT COUNT(*) FROM rentals WHERE status = 'active'`, &st.ActiveRentals},
		{`SELECT COUNT(*) FROM payments`, &st.Payments},
		{`SELECT COUNT(*) FROM payments WHERE status = 'pending'`, &st.PendingPayments},
		{`SELECT COUNT(*) FROM orders`, &st.Orders},
		{`SELECT COUNT(*) FROM id_cards WHERE status = 'pending'`, &st.PendingIDCards},
		{`SELECT COUNT(*) FROM notifications`, &st.Notifications},
		{`SELECT COUNT(*) FROM push_tokens WHERE is_active = 1`, &st.ActivePushTokens},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.q).Scan(c.dest); err != nil {
			return nil, err
		}
	}
	return &st, nil
}

const auditCols = `id, user_id, action, detail, created_at`

func (s *Store) AuditLogs(ctx context.Context, limit int) ([]AuditLog, error) {
	const q = `SELECT ` + auditCols + ` FROM audit_logs ORDER BY created_at DESC LIMIT ?`
	return s.queryLogs(ctx, q, limit)
}

func (s *Store) AuditLogsByUser(ctx context.Context, userID int64, limit int) ([]AuditLog, error) {
	const q = `SELECT ` + auditCols + ` FROM audit_logs WHERE user_id = ? ORDER BY created_at DESC LIMIT ?`
	return s.queryLogs(ctx, q, userID, limit)
}

func (s *Store) queryLogs(ctx context.Context, q string, args ...any) ([]AuditLog, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AuditLog
	for rows.Next() {
		var l AuditLog
		if err := rows.Scan(&l.ID, &l.UserID, &l.Action, &l.Detail, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *Store) GetSetting(ctx context.Context, key string) (string, bool, error) {
	const q = `SELECT value FROM system_settings WHERE ` + "`key`" + ` = ? LIMIT 1`
	var value string
	err := s.db.QueryRowContext(ctx, q, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	const q = `
INSERT INTO system_settings (` + "`key`" + `, value, updated_at)
VALUES (?, ?, NOW(6))
ON DUPLICATE KEY UPDATE value = VALUES(value), updated_at = NOW(6)
`
	_, err := s.db.ExecContext(ctx, q, key, value)
	return err
}
