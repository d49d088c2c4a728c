package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Name         sql.NullString
	Email        sql.NullString
	Role         string
	Balance      float64
	LastIP       sql.NullString
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastSignedIn time.Time
}

type UserStore interface {
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	Create(ctx context.Context, u *User) error
	TouchSignIn(ctx context.Context, id int64, ip string) error
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) UserStore { return &Store{db: db} }

const userCols = `id, username, password_hash, name, email, role, balance, last_ip, created_at, updated_at, last_signed_in`

func scanUser(row *sql.Row) (*User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.Username, &u.PasswordHash, &u.Name, &u.Email,
		&u.Role, &u.Balance, &u.LastIP, &u.CreatedAt, &u.UpdatedAt, &u.LastSignedIn,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) GetByUsername(ctx context.Context, username string) (*User, error) {
	const q = `SELECT ` + userCols + ` FROM users WHERE username = ? LIMIT 1`
	return scanUser(s.db.QueryRowContext(ctx, q, username))
}

func (s *Store) GetByID(ctx context.Context, id int64) (*User, error) {
	const q = `SELECT ` + userCols + ` FROM users WHERE id = ? LIMIT 1`
	return scanUser(s.db.QueryRowContext(ctx, q, id))
}

func (s *Store) Create(ctx context.Context, u *User) error {
	const q = `
INSERT INTO users (username, password_hash, name, email, role, balance, created_at, updated_at, last_signed_in)
VALUES (?, ?, ?, ?, ?, ?, NOW(6), NOW(6), NOW(6))
`
	res, err := s.db.ExecContext(ctx, q, u.Username, u.PasswordHash, u.Name, u.Email, u.Role, u.Balance)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = id
	return nil
}

func (s *Store) TouchSignIn(ctx context.Context, id int64, ip string) error {
	const q = `UPDATE users SET last_signed_in = NOW(6), updated_at = NOW(6), last_ip = ? WHERE id = ?`
	_, err := s.db.ExecContext(ctx, q, ip, id)
	return err
}
