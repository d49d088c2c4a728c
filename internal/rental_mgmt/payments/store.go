package payments

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"time"

	"mirin-backend/internal/platform/apierr"
	"mirin-backend/internal/platform/db"
)

// ExtensionInfo is what the extend flow needs to price extra days.
type ExtensionInfo struct {
	RentalID  int64
	UserID    int64
	ProductID int64
	DailyRate float64
}

type PaymentStore interface {
	GetByID(ctx context.Context, id int64) (*Payment, error)
	ListByUser(ctx context.Context, userID int64) ([]Payment, error)
	ListAll(ctx context.Context) ([]Payment, error)
	ListPending(ctx context.Context) ([]Payment, error)

	InsertPending(ctx context.Context, p *Payment) error
	RentalForExtension(ctx context.Context, rentalID int64) (*ExtensionInfo, error)

	// ExecConfirm applies a payment and all of its effects in one
	// transaction; confirming a non-pending payment is INVALID_STATE.
	ExecConfirm(ctx context.Context, paymentID, adminID int64) (*Payment, error)
	// ExecReject fails a payment; a pending rental_charge cascades to
	// cancel the linked rental.
	ExecReject(ctx context.Context, paymentID int64) (*Payment, error)

	// ExpirePending fails payments pending since before the cutoff and
	// cancels rentals waiting on them.
	ExpirePending(ctx context.Context, cutoff time.Time) (int64, error)
}

type Store struct{ db *sql.DB }

func NewStore(conn *sql.DB) PaymentStore { return &Store{db: conn} }

const paymentCols = `id, user_id, rental_id, amount, type, status, promptpay_ref, extension_days, confirmed_by, confirmed_at, created_at, updated_at`

func scanPayment(sc interface{ Scan(...any) error }) (*Payment, error) {
	var p Payment
	err := sc.Scan(
		&p.ID, &p.UserID, &p.RentalID, &p.Amount, &p.Type, &p.Status,
		&p.PromptPayRef, &p.ExtensionDays, &p.ConfirmedBy, &p.ConfirmedAt,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) GetByID(ctx context.Context, id int64) (*Payment, error) {
	const q = `SELECT ` + paymentCols + ` FROM payments WHERE id = ? LIMIT 1`
	p, err := scanPayment(s.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apierr.ErrNotFound("payment not found")
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Store) ListByUser(ctx context.Context, userID int64) ([]Payment, error) {
	const q = `SELECT ` + paymentCols + ` FROM payments WHERE user_id = ? ORDER BY created_at DESC`
	return s.queryPayments(ctx, q, userID)
}

func (s *Store) ListAll(ctx context.Context) ([]Payment, error) {
	const q = `SELECT ` + paymentCols + ` FROM payments ORDER BY created_at DESC`
	return s.queryPayments(ctx, q)
}

func (s *Store) ListPending(ctx context.Context) ([]Payment, error) {
	const q = `SELECT ` + paymentCols + ` FROM payments WHERE status = 'pending' ORDER BY created_at ASC`
	return s.queryPayments(ctx, q)
}

func (s *Store) queryPayments(ctx context.Context, q string, args ...any) ([]Payment, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (s *Store) InsertPending(ctx context.Context, p *Payment) error {
	const q = `
INSERT INTO payments (user_id, rental_id, amount, type, status, promptpay_ref, extension_days, created_at, updated_at)
VALUES (?, ?, ?, ?, 'pending', ?, ?, NOW(6), NOW(6))
`
	res, err := s.db.ExecContext(ctx, q, p.UserID, p.RentalID, p.Amount, p.Type, p.PromptPayRef, p.ExtensionDays)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = id
	p.Status = StatusPending
	return nil
}

func (s *Store) RentalForExtension(ctx context.Context, rentalID int64) (*ExtensionInfo, error) {
	const q = `
SELECT r.id, r.user_id, r.product_id, p.daily_rate
FROM rentals r
JOIN products p ON p.id = r.product_id
WHERE r.id = ?
LIMIT 1
`
	var info ExtensionInfo
	err := s.db.QueryRowContext(ctx, q, rentalID).Scan(&info.RentalID, &info.UserID, &info.ProductID, &info.DailyRate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apierr.ErrNotFound("rental not found")
	}
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// lockPending loads a payment under a row lock and checks the idempotency
// guard.
func lockPending(ctx context.Context, tx db.DBTX, paymentID int64) (*Payment, error) {
	const q = `SELECT ` + paymentCols + ` FROM payments WHERE id = ? LIMIT 1 FOR UPDATE`
	p, err := scanPayment(tx.QueryRowContext(ctx, q, paymentID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apierr.ErrNotFound("payment not found")
	}
	if err != nil {
		return nil, err
	}
	if p.Status != StatusPending {
		return nil, apierr.ErrInvalidState("payment is not pending")
	}
	return p, nil
}

func (s *Store) ExecConfirm(ctx context.Context, paymentID, adminID int64) (*Payment, error) {
	var confirmed *Payment
	err := db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		p, err := lockPending(ctx, tx, paymentID)
		if err != nil {
			return err
		}

		const upd = `
UPDATE payments SET status = 'completed', confirmed_by = ?, confirmed_at = NOW(6), updated_at = NOW(6)
WHERE id = ? AND status = 'pending'
`
		res, err := tx.ExecContext(ctx, upd, adminID, paymentID)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return apierr.ErrInvalidState("payment is not pending")
		}

		switch p.Type {
		case TypeTopUp:
			const credit = `UPDATE users SET balance = balance + ?, updated_at = NOW(6) WHERE id = ?`
			if _, err := tx.ExecContext(ctx, credit, p.Amount, p.UserID); err != nil {
				return err
			}

		case TypeRentalCharge:
			if !p.RentalID.Valid {
				break
			}
			const getRental = `SELECT product_id FROM rentals WHERE id = ? LIMIT 1`
			var productID int64
			if err := tx.QueryRowContext(ctx, getRental, p.RentalID.Int64).Scan(&productID); err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return apierr.ErrNotFound("rental not found")
				}
				return err
			}
			const activate = `UPDATE rentals SET status = 'active', updated_at = NOW(6) WHERE id = ?`
			if _, err := tx.ExecContext(ctx, activate, p.RentalID.Int64); err != nil {
				return err
			}
			const rent = `UPDATE products SET status = 'rented', updated_at = NOW(6) WHERE id = ?`
			if _, err := tx.ExecContext(ctx, rent, productID); err != nil {
				return err
			}

		case TypeExtension:
			if !p.RentalID.Valid {
				break
			}
			days := int64(0)
			if p.ExtensionDays.Valid {
				days = p.ExtensionDays.Int64
			} else {
				// legacy rows: derive from the amount, satang noise and all
				const rateQ = `
SELECT pr.daily_rate FROM rentals r JOIN products pr ON pr.id = r.product_id WHERE r.id = ? LIMIT 1
`
				var rate float64
				if err := tx.QueryRowContext(ctx, rateQ, p.RentalID.Int64).Scan(&rate); err != nil {
					if errors.Is(err, sql.ErrNoRows) {
						return apierr.ErrNotFound("rental not found")
					}
					return err
				}
				if rate > 0 {
					days = int64(math.Round(p.Amount / rate))
				}
			}
			if days > 0 {
				const extendQ = `UPDATE rentals SET end_date = DATE_ADD(end_date, INTERVAL ? DAY), updated_at = NOW(6) WHERE id = ?`
				if _, err := tx.ExecContext(ctx, extendQ, days, p.RentalID.Int64); err != nil {
					return err
				}
			}
		}

		p.Status = StatusCompleted
		p.ConfirmedBy = sql.NullInt64{Int64: adminID, Valid: true}
		p.ConfirmedAt = sql.NullTime{Time: time.Now(), Valid: true}
		confirmed = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return confirmed, nil
}

func (s *Store) ExecReject(ctx context.Context, paymentID int64) (*Payment, error) {
	var rejected *Payment
	err := db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		p, err := lockPending(ctx, tx, paymentID)
		if err != nil {
			return err
		}

		const upd = `UPDATE payments SET status = 'failed', updated_at = NOW(6) WHERE id = ? AND status = 'pending'`
		if _, err := tx.ExecContext(ctx, upd, paymentID); err != nil {
			return err
		}

		// The product was never marked rented for a pending charge, so
		// only the rental needs cancelling.
		if p.Type == TypeRentalCharge && p.RentalID.Valid {
			const cancel = `UPDATE rentals SET status = 'cancelled', updated_at = NOW(6) WHERE id = ? AND status = 'pending'`
			if _, err := tx.ExecContext(ctx, cancel, p.RentalID.Int64); err != nil {
				return err
			}
		}

		p.Status = StatusFailed
		rejected = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rejected, nil
}

func (s *Store) ExpirePending(ctx context.Context, cutoff time.Time) (int64, error) {
	var n int64
	err := db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		const cancelRentals = `
UPDATE rentals r
JOIN payments p ON p.rental_id = r.id
SET r.status = 'cancelled', r.updated_at = NOW(6)
WHERE p.status = 'pending' AND p.type = 'rental_charge' AND p.created_at < ? AND r.status = 'pending'
`
		if _, err := tx.ExecContext(ctx, cancelRentals, cutoff); err != nil {
			return err
		}

		const failPayments = `UPDATE payments SET status = 'failed', updated_at = NOW(6) WHERE status = 'pending' AND created_at < ?`
		res, err := tx.ExecContext(ctx, failPayments, cutoff)
		if err != nil {
			return err
		}
		n, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}
