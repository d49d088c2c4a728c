package accounts

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"mirin-backend/internal/platform/apierr"
)

type Account struct {
	ID         int64
	Username   string
	Name       sql.NullString
	Email      sql.NullString
	Role       string
	Balance    float64
	LastIP     sql.NullString
	LastSignIn sql.NullTime
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type AccountStore interface {
	GetByID(ctx context.Context, id int64) (*Account, error)
	ListAll(ctx context.Context) ([]Account, error)
	SetRole(ctx context.Context, id int64, role string) error
	// InsertAudit never blocks the caller; failures are the caller's to log.
	InsertAudit(ctx context.Context, actorID int64, action, detail string) error
}

type Store struct{ db *sql.DB }

func NewStore(conn *sql.DB) AccountStore { return &Store{db: conn} }

const accountCols = `id, username, name, email, role, balance, last_ip, last_signed_in, created_at, updated_at`

func scanAccount(sc interface{ Scan(...any) error }) (*Account, error) {
	var a Account
	err := sc.Scan(
		&a.ID, &a.Username, &a.Name, &a.Email, &a.Role, &a.Balance,
		&a.LastIP, &a.LastSignIn, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) GetByID(ctx context.Context, id int64) (*Account, error) {
	const q = `SELECT ` + accountCols + ` FROM users WHERE id = ? LIMIT 1`
	a, err := scanAccount(s.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apierr.ErrNotFound("user not found")
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Store) ListAll(ctx context.Context) ([]Account, error) {
	const q = `SELECT ` + accountCols + ` FROM users ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (s *Store) SetRole(ctx context.Context, id int64, role string) error {
	const q = `UPDATE users SET role = ?, updated_at = NOW(6) WHERE id = ?`
	res, err := s.db.ExecContext(ctx, q, role, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apierr.ErrNotFound("user not found")
	}
	return nil
}

func (s *Store) InsertAudit(ctx context.Context, actorID int64, action, detail string) error {
	const q = `
INSERT INTO audit_logs (user_id, action, detail, created_at)
VALUES (?, ?, ?, NOW(6))
`
	_, err := s.db.ExecContext(ctx, q, actorID, action, detail)
	return err
}
