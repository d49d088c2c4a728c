package notifications

import (
	"context"
	"database/sql"
	"errors"

	"mirin-backend/internal/platform/apierr"
)

type NotificationStore interface {
	InsertFor(ctx context.Context, userID int64, title, message, typ string) error
	// InsertForAdmins fans one notification out to every admin account.
	InsertForAdmins(ctx context.Context, title, message, typ string) error
	ListByUser(ctx context.Context, userID int64) ([]Notification, error)
	// MarkRead is owner-guarded: marking someone else's row is NOT_FOUND.
	MarkRead(ctx context.Context, id, userID int64) error
}

type Store struct{ db *sql.DB }

func NewStore(conn *sql.DB) NotificationStore { return &Store{db: conn} }

func (s *Store) InsertFor(ctx context.Context, userID int64, title, message, typ string) error {
	const q = `
INSERT INTO notifications (user_id, title, message, type, is_read, created_at)
VALUES (?, ?, ?, ?, 0, NOW(6))
`
	_, err := s.db.ExecContext(ctx, q, userID, title, message, typ)
	return err
}

func (s *Store) InsertForAdmins(ctx context.Context, title, message, typ string) error {
	const q = `
INSERT INTO notifications (user_id, title, message, type, is_read, created_at)
SELECT id, ?, ?, ?, 0, NOW(6) FROM users WHERE role = 'admin'
`
	_, err := s.db.ExecContext(ctx, q, title, message, typ)
	return err
}

func (s *Store) ListByUser(ctx context.Context, userID int64) ([]Notification, error) {
	const q = `
SELECT id, user_id, title, message, type, is_read, created_at
FROM notifications WHERE user_id = ? ORDER BY created_at DESC
`
	rows, err := s.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Type, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *Store) MarkRead(ctx context.Context, id, userID int64) error {
	const q = `UPDATE notifications SET is_read = 1 WHERE id = ? AND user_id = ?`
	res, err := s.db.ExecContext(ctx, q, id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	// RowsAffected is 0 both for a missing row and an already-read one.
	const check = `SELECT 1 FROM notifications WHERE id = ? AND user_id = ? LIMIT 1`
	var one int
	if err := s.db.QueryRowContext(ctx, check, id, userID).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apierr.ErrNotFound("notification not found")
		}
		return err
	}
	return nil
}
