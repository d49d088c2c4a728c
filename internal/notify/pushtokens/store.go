// Package pushtokens keeps the registry of web-push subscriptions.
package pushtokens

import (
	"context"
	"database/sql"
	"time"
)

const (
	PlatformIOS     = "ios"
	PlatformAndroid = "android"
	PlatformWeb     = "web"
)

type PushToken struct {
	ID        int64
	UserID    int64
	Token     string
	Platform  string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type TokenStore interface {
	// Upsert re-activates a known token or records a new one.
	Upsert(ctx context.Context, userID int64, token, platform string) error
	Deactivate(ctx context.Context, token string) error
	ActiveTokens(ctx context.Context, userID int64) ([]string, error)
}

type Store struct{ db *sql.DB }

func NewStore(conn *sql.DB) TokenStore { return &Store{db: conn} }

func (s *Store) Upsert(ctx context.Context, userID int64, token, platform string) error {
	const q = `
INSERT INTO push_tokens (user_id, token, platform, is_active, created_at, updated_at)
VALUES (?, ?, ?, 1, NOW(6), NOW(6))
ON DUPLICATE KEY UPDATE
  user_id = VALUES(user_id), platform = VALUES(platform), is_active = 1, updated_at = NOW(6)
`
	_, err := s.db.ExecContext(ctx, q, userID, token, platform)
	return err
}

func (s *Store) Deactivate(ctx context.Context, token string) error {
	const q = `UPDATE push_tokens SET is_active = 0, updated_at = NOW(6) WHERE token = ?`
	_, err := s.db.ExecContext(ctx, q, token)
	return err
}

func (s *Store) ActiveTokens(ctx context.Context, userID int64) ([]string, error) {
	const q = `SELECT token FROM push_tokens WHERE user_id = ? AND is_active = 1`
	rows, err := s.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
