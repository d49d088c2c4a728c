package rentals

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"mirin-backend/internal/platform/apierr"
	"mirin-backend/internal/platform/db"
)

// ProductInfo is the slice of the products row rental booking needs.
type ProductInfo struct {
	ID         int64
	Name       string
	Status     string
	DailyRate  float64
	HourlyRate *float64
}

// PendingCharge is the linked rental_charge payment written with a new
// rental.
type PendingCharge struct {
	UserID      int64
	Amount      float64
	ReferenceID string
}

type RentalStore interface {
	GetByID(ctx context.Context, id int64) (*Rental, error)
	ListByUser(ctx context.Context, userID int64) ([]Rental, error)
	ActiveByUser(ctx context.Context, userID int64) (*Rental, error)
	ListAll(ctx context.Context) ([]Rental, error)

	GetProduct(ctx context.Context, id int64) (*ProductInfo, error)
	HasVerifiedIDCard(ctx context.Context, userID int64) (bool, error)

	// ExecCreate inserts the rental and its pending charge in one
	// transaction, re-checking availability under a row lock.
	ExecCreate(ctx context.Context, r *Rental, charge *PendingCharge) error

	ExecApprove(ctx context.Context, id int64) error
	ExecCancel(ctx context.Context, id int64) error
	ExecComplete(ctx context.Context, id int64) error
}

type Store struct{ db *sql.DB }

func NewStore(conn *sql.DB) RentalStore { return &Store{db: conn} }

const rentalCols = `id, user_id, product_id, start_date, end_date, actual_return_date, status, total_cost, created_at, updated_at`

func scanRental(sc interface{ Scan(...any) error }) (*Rental, error) {
	var r Rental
	err := sc.Scan(
		&r.ID, &r.UserID, &r.ProductID, &r.StartDate, &r.EndDate,
		&r.ActualReturnDate, &r.Status, &r.TotalCost, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Store) GetByID(ctx context.Context, id int64) (*Rental, error) {
	const q = `SELECT ` + rentalCols + ` FROM rentals WHERE id = ? LIMIT 1`
	r, err := scanRental(s.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apierr.ErrNotFound("rental not found")
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Store) ListByUser(ctx context.Context, userID int64) ([]Rental, error) {
	const q = `SELECT ` + rentalCols + ` FROM rentals WHERE user_id = ? ORDER BY created_at DESC`
	return s.queryRentals(ctx, q, userID)
}

func (s *Store) ActiveByUser(ctx context.Context, userID int64) (*Rental, error) {
	const q = `SELECT ` + rentalCols + ` FROM rentals WHERE user_id = ? AND status = ? ORDER BY created_at DESC LIMIT 1`
	r, err := scanRental(s.db.QueryRowContext(ctx, q, userID, StatusActive))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Store) ListAll(ctx context.Context) ([]Rental, error) {
	const q = `SELECT ` + rentalCols + ` FROM rentals ORDER BY created_at DESC`
	return s.queryRentals(ctx, q)
}

func (s *Store) queryRentals(ctx context.Context, q string, args ...any) ([]Rental, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Rental
	for rows.Next() {
		r, err := scanRental(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

func (s *Store) GetProduct(ctx context.Context, id int64) (*ProductInfo, error) {
	const q = `SELECT id, name, status, daily_rate, hourly_rate FROM products WHERE id = ? LIMIT 1`
	return scanProductInfo(s.db.QueryRowContext(ctx, q, id))
}

func scanProductInfo(row *sql.Row) (*ProductInfo, error) {
	var p ProductInfo
	var hourly sql.NullFloat64
	err := row.Scan(&p.ID, &p.Name, &p.Status, &p.DailyRate, &hourly)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apierr.ErrNotFound("product not found")
	}
	if err != nil {
		return nil, err
	}
	if hourly.Valid {
		v := hourly.Float64
		p.HourlyRate = &v
	}
	return &p, nil
}

func (s *Store) HasVerifiedIDCard(ctx context.Context, userID int64) (bool, error) {
	const q = `SELECT COUNT(*) FROM id_cards WHERE user_id = ? AND status = 'verified'`
	var n int
	if err := s.db.QueryRowContext(ctx, q, userID).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) ExecCreate(ctx context.Context, r *Rental, charge *PendingCharge) error {
	return db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		// Re-check availability under a row lock so two concurrent
		// bookings cannot both pass.
		const lockQ = `SELECT status FROM products WHERE id = ? LIMIT 1 FOR UPDATE`
		var status string
		if err := tx.QueryRowContext(ctx, lockQ, r.ProductID).Scan(&status); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apierr.ErrNotFound("product not found")
			}
			return err
		}
		if status != "available" {
			return apierr.ErrInvalidState("product is not available")
		}

		const activeQ = `SELECT COUNT(*) FROM rentals WHERE product_id = ? AND status IN ('pending', 'active')`
		var n int
		if err := tx.QueryRowContext(ctx, activeQ, r.ProductID).Scan(&n); err != nil {
			return err
		}
		if n > 0 {
			return apierr.ErrConflict("product already has a pending or active rental")
		}

		const insRental = `
INSERT INTO rentals (user_id, product_id, start_date, end_date, status, total_cost, created_at, updated_at)
VALUES (?, ?, ?, ?, 'pending', ?, NOW(6), NOW(6))
`
		res, err := tx.ExecContext(ctx, insRental, r.UserID, r.ProductID, r.StartDate, r.EndDate, r.TotalCost)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		r.ID = id
		r.Status = StatusPending

		const insPayment = `
INSERT INTO payments (user_id, rental_id, amount, type, status, promptpay_ref, created_at, updated_at)
VALUES (?, ?, ?, 'rental_charge', 'pending', ?, NOW(6), NOW(6))
`
		_, err = tx.ExecContext(ctx, insPayment, charge.UserID, id, charge.Amount, charge.ReferenceID)
		return err
	})
}

// transition applies a guarded rental status change plus the matching
// product status inside one transaction.
func (s *Store) transition(ctx context.Context, id int64, rentalSet, productStatus string, fromStatuses []any) error {
	return db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		const getQ = `SELECT product_id FROM rentals WHERE id = ? LIMIT 1 FOR UPDATE`
		var productID int64
		if err := tx.QueryRowContext(ctx, getQ, id).Scan(&productID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apierr.ErrNotFound("rental not found")
			}
			return err
		}

		args := append([]any{id}, fromStatuses...)
		q := `UPDATE rentals SET ` + rentalSet + `, updated_at = NOW(6) WHERE id = ? AND status IN (?` +
			strings.Repeat(",?", len(fromStatuses)-1) + `)`
		res, err := tx.ExecContext(ctx, q, args...)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return apierr.ErrInvalidState("rental is already in a terminal state")
		}

		const prodQ = `UPDATE products SET status = ?, updated_at = NOW(6) WHERE id = ?`
		_, err = tx.ExecContext(ctx, prodQ, productStatus, productID)
		return err
	})
}

func (s *Store) ExecApprove(ctx context.Context, id int64) error {
	return s.transition(ctx, id, `status = 'active'`, "rented", []any{StatusPending, StatusActive})
}

func (s *Store) ExecCancel(ctx context.Context, id int64) error {
	return s.transition(ctx, id, `status = 'cancelled'`, "available", []any{StatusPending, StatusActive})
}

func (s *Store) ExecComplete(ctx context.Context, id int64) error {
	return s.transition(ctx, id, `status = 'completed', actual_return_date = NOW(6)`, "available", []any{StatusPending, StatusActive})
}
