package idcards

import (
	"context"
	"database/sql"
	"errors"

	"mirin-backend/internal/platform/apierr"
)

type IDCardStore interface {
	// GetByUser returns (nil, nil) when the user has no card on file.
	GetByUser(ctx context.Context, userID int64) (*IDCard, error)
	GetByID(ctx context.Context, id int64) (*IDCard, error)
	ListPending(ctx context.Context) ([]IDCard, error)
	ListAll(ctx context.Context) ([]IDCard, error)

	// Upsert replaces the user's card image and resets its status to
	// pending; one card per user.
	Upsert(ctx context.Context, userID int64, imageURL string) (*IDCard, error)
	SetVerdict(ctx context.Context, id, adminID int64, status string, notes *string) error
}

type Store struct{ db *sql.DB }

func NewStore(conn *sql.DB) IDCardStore { return &Store{db: conn} }

const cardCols = `id, user_id, image_url, status, notes, verified_by, verified_at, created_at, updated_at`

func scanCard(sc interface{ Scan(...any) error }) (*IDCard, error) {
	var c IDCard
	err := sc.Scan(
		&c.ID, &c.UserID, &c.ImageURL, &c.Status, &c.Notes,
		&c.VerifiedBy, &c.VerifiedAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) GetByUser(ctx context.Context, userID int64) (*IDCard, error) {
	const q = `SELECT ` + cardCols + ` FROM id_cards WHERE user_id = ? LIMIT 1`
	c, err := scanCard(s.db.QueryRowContext(ctx, q, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Store) GetByID(ctx context.Context, id int64) (*IDCard, error) {
	const q = `SELECT ` + cardCols + ` FROM id_cards WHERE id = ? LIMIT 1`
	c, err := scanCard(s.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apierr.ErrNotFound("id card not found")
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Store) ListPending(ctx context.Context) ([]IDCard, error) {
	const q = `SELECT ` + cardCols + ` FROM id_cards WHERE status = 'pending' ORDER BY created_at ASC`
	return s.queryCards(ctx, q)
}

func (s *Store) ListAll(ctx context.Context) ([]IDCard, error) {
	const q = `SELECT ` + cardCols + ` FROM id_cards ORDER BY created_at DESC`
	return s.queryCards(ctx, q)
}

func (s *Store) queryCards(ctx context.Context, q string, args ...any) ([]IDCard, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []IDCard
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (s *Store) Upsert(ctx context.Context, userID int64, imageURL string) (*IDCard, error) {
	const q = `
INSERT INTO id_cards (user_id, image_url, status, created_at, updated_at)
VALUES (?, ?, 'pending', NOW(6), NOW(6))
ON DUPLICATE KEY UPDATE
  image_url = VALUES(image_url), status = 'pending', notes = NULL,
  verified_by = NULL, verified_at = NULL, updated_at = NOW(6)
`
	if _, err := s.db.ExecContext(ctx, q, userID, imageURL); err != nil {
		return nil, err
	}
	return s.GetByUser(ctx, userID)
}

func (s *Store) SetVerdict(ctx context.Context, id, adminID int64, status string, notes *string) error {
	const q = `
UPDATE id_cards SET status = ?, notes = ?, verified_by = ?, verified_at = NOW(6), updated_at = NOW(6)
WHERE id = ?
`
	res, err := s.db.ExecContext(ctx, q, status, notes, adminID, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apierr.ErrNotFound("id card not found")
	}
	return nil
}
