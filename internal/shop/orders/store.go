package orders

import (
	"context"
	"database/sql"
	"errors"
	"math"

	"mirin-backend/internal/platform/apierr"
	"mirin-backend/internal/platform/db"
)

type OrderStore interface {
	GetByID(ctx context.Context, id int64) (*Order, error)
	ListByUser(ctx context.Context, userID int64) ([]Order, error)
	ListAll(ctx context.Context) ([]Order, error)

	// ExecCreate resolves unit prices from the catalog and writes the
	// order with its items in one transaction.
	ExecCreate(ctx context.Context, userID int64, items []CreateOrderItem, shippingAddress *string) (int64, error)
	// ExecPay debits the buyer's balance and marks the order paid in one
	// transaction. Insufficient balance is CONFLICT.
	ExecPay(ctx context.Context, orderID, userID int64) error
	SetStatus(ctx context.Context, orderID int64, status string) error
}

type Store struct{ db *sql.DB }

func NewStore(conn *sql.DB) OrderStore { return &Store{db: conn} }

const orderCols = `id, user_id, total_amount, status, shipping_address, created_at, updated_at`

func scanOrder(sc interface{ Scan(...any) error }) (*Order, error) {
	var o Order
	err := sc.Scan(&o.ID, &o.UserID, &o.TotalAmount, &o.Status, &o.ShippingAddress, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *Store) GetByID(ctx context.Context, id int64) (*Order, error) {
	const q = `SELECT ` + orderCols + ` FROM orders WHERE id = ? LIMIT 1`
	o, err := scanOrder(s.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apierr.ErrNotFound("order not found")
	}
	if err != nil {
		return nil, err
	}
	if err := s.loadItems(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *Store) loadItems(ctx context.Context, o *Order) error {
	const q = `
SELECT id, order_id, product_id, product_name, quantity, unit_price
FROM order_items WHERE order_id = ? ORDER BY id ASC
`
	rows, err := s.db.QueryContext(ctx, q, o.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.Quantity, &it.UnitPrice); err != nil {
			return err
		}
		o.Items = append(o.Items, it)
	}
	return rows.Err()
}

func (s *Store) ListByUser(ctx context.Context, userID int64) ([]Order, error) {
	const q = `SELECT ` + orderCols + ` FROM orders WHERE user_id = ? ORDER BY created_at DESC`
	return s.queryOrders(ctx, q, userID)
}

func (s *Store) ListAll(ctx context.Context) ([]Order, error) {
	const q = `SELECT ` + orderCols + ` FROM orders ORDER BY created_at DESC`
	return s.queryOrders(ctx, q)
}

func (s *Store) queryOrders(ctx context.Context, q string, args ...any) ([]Order, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if err := s.loadItems(ctx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *Store) ExecCreate(ctx context.Context, userID int64, items []CreateOrderItem, shippingAddress *string) (int64, error) {
	var orderID int64
	err := db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		type priced struct {
			name  string
			price float64
		}
		const prodQ = `SELECT name, daily_rate FROM products WHERE id = ? LIMIT 1`

		total := 0.0
		lines := make([]priced, 0, len(items))
		for _, it := range items {
			var p priced
			var rate sql.NullFloat64
			if err := tx.QueryRowContext(ctx, prodQ, it.ProductID).Scan(&p.name, &rate); err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return apierr.ErrNotFound("product not found")
				}
				return err
			}
			if !rate.Valid || rate.Float64 <= 0 {
				return apierr.ErrInvalidState("product has no price")
			}
			p.price = rate.Float64
			lines = append(lines, p)
			total += p.price * float64(it.Quantity)
		}
		total = math.Round(total*100) / 100

		const insOrder = `
INSERT INTO orders (user_id, total_amount, status, shipping_address, created_at, updated_at)
VALUES (?, ?, 'pending', ?, NOW(6), NOW(6))
`
		res, err := tx.ExecContext(ctx, insOrder, userID, total, shippingAddress)
		if err != nil {
			return err
		}
		orderID, err = res.LastInsertId()
		if err != nil {
			return err
		}

		const insItem = `
INSERT INTO order_items (order_id, product_id, product_name, quantity, unit_price)
VALUES (?, ?, ?, ?, ?)
`
		for i, it := range items {
			if _, err := tx.ExecContext(ctx, insItem, orderID, it.ProductID, lines[i].name, it.Quantity, lines[i].price); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return orderID, nil
}

func (s *Store) ExecPay(ctx context.Context, orderID, userID int64) error {
	return db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		const lockOrder = `SELECT user_id, total_amount, status FROM orders WHERE id = ? LIMIT 1 FOR UPDATE`
		var (
			ownerID int64
			total   float64
			status  string
		)
		if err := tx.QueryRowContext(ctx, lockOrder, orderID).Scan(&ownerID, &total, &status); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apierr.ErrNotFound("order not found")
			}
			return err
		}
		if ownerID != userID {
			return apierr.ErrForbidden("not your order")
		}
		if status != StatusPending {
			return apierr.ErrInvalidState("order is not pending")
		}

		const lockBalance = `SELECT balance FROM users WHERE id = ? LIMIT 1 FOR UPDATE`
		var balance float64
		if err := tx.QueryRowContext(ctx, lockBalance, userID).Scan(&balance); err != nil {
			return err
		}
		if balance < total {
			return apierr.ErrConflict("insufficient balance")
		}

		const debit = `UPDATE users SET balance = balance - ?, updated_at = NOW(6) WHERE id = ?`
		if _, err := tx.ExecContext(ctx, debit, total, userID); err != nil {
			return err
		}
		const markPaid = `UPDATE orders SET status = 'paid', updated_at = NOW(6) WHERE id = ?`
		if _, err := tx.ExecContext(ctx, markPaid, orderID); err != nil {
			return err
		}

		// The debit shows up in the payment ledger as a completed charge.
		const record = `
INSERT INTO payments (user_id, amount, type, status, confirmed_at, created_at, updated_at)
VALUES (?, ?, 'order_charge', 'completed', NOW(6), NOW(6), NOW(6))
`
		_, err := tx.ExecContext(ctx, record, userID, total)
		return err
	})
}

func (s *Store) SetStatus(ctx context.Context, orderID int64, status string) error {
	const q = `UPDATE orders SET status = ?, updated_at = NOW(6) WHERE id = ?`
	res, err := s.db.ExecContext(ctx, q, status, orderID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apierr.ErrNotFound("order not found")
	}
	return nil
}
