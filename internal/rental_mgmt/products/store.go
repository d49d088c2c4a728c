package products

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"mirin-backend/internal/platform/apierr"
)

type ProductStore interface {
	List(ctx context.Context) ([]Product, error)
	ListByStatus(ctx context.Context, status string) ([]Product, error)
	GetByID(ctx context.Context, id int64) (*Product, error)
	Insert(ctx context.Context, p *Product) error
	Update(ctx context.Context, id int64, req UpdateProductRequest) (int64, error)
	Delete(ctx context.Context, id int64) (int64, error)
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) ProductStore { return &Store{db: db} }

const productCols = `id, name, category, license_plate, hourly_rate, daily_rate, description, image_url, status, metadata, created_at, updated_at`

func scanProduct(sc interface{ Scan(...any) error }) (*Product, error) {
	var p Product
	err := sc.Scan(
		&p.ID, &p.Name, &p.Category, &p.LicensePlate, &p.HourlyRate, &p.DailyRate,
		&p.Description, &p.ImageURL, &p.Status, &p.Metadata, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) List(ctx context.Context) ([]Product, error) {
	const q = `SELECT ` + productCols + ` FROM products ORDER BY created_at ASC`
	return s.queryProducts(ctx, q)
}

func (s *Store) ListByStatus(ctx context.Context, status string) ([]Product, error) {
	const q = `SELECT ` + productCols + ` FROM products WHERE status = ? ORDER BY created_at ASC`
	return s.queryProducts(ctx, q, status)
}

func (s *Store) queryProducts(ctx context.Context, q string, args ...any) ([]Product, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (s *Store) GetByID(ctx context.Context, id int64) (*Product, error) {
	const q = `SELECT ` + productCols + ` FROM products WHERE id = ? LIMIT 1`
	p, err := scanProduct(s.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apierr.ErrNotFound("product not found")
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Store) Insert(ctx context.Context, p *Product) error {
	const q = `
INSERT INTO products (name, category, license_plate, hourly_rate, daily_rate, description, image_url, status, metadata, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, NOW(6), NOW(6))
`
	res, err := s.db.ExecContext(ctx, q,
		p.Name, p.Category, p.LicensePlate, p.HourlyRate, p.DailyRate,
		p.Description, p.ImageURL, p.Status, p.Metadata,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = id
	return nil
}

func (s *Store) Update(ctx context.Context, id int64, req UpdateProductRequest) (int64, error) {
	sets := []string{}
	args := []any{}

	if req.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *req.Name)
	}
	if req.Category != nil {
		sets = append(sets, "category = ?")
		args = append(args, *req.Category)
	}
	if req.LicensePlate != nil {
		sets = append(sets, "license_plate = ?")
		args = append(args, *req.LicensePlate)
	}
	if req.HourlyRate != nil {
		sets = append(sets, "hourly_rate = ?")
		args = append(args, *req.HourlyRate)
	}
	if req.DailyRate != nil {
		sets = append(sets, "daily_rate = ?")
		args = append(args, *req.DailyRate)
	}
	if req.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *req.Description)
	}
	if req.ImageURL != nil {
		sets = append(sets, "image_url = ?")
		args = append(args, *req.ImageURL)
	}
	if req.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *req.Status)
	}
	if len(req.Metadata) > 0 {
		sets = append(sets, "metadata = ?")
		args = append(args, string(req.Metadata))
	}
	if len(sets) == 0 {
		return 0, apierr.ErrInvalid("no fields to update")
	}

	sets = append(sets, "updated_at = NOW(6)")
	q := "UPDATE products SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	args = append(args, id)

	res, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) Delete(ctx context.Context, id int64) (int64, error) {
	const q = `DELETE FROM products WHERE id = ?`
	res, err := s.db.ExecContext(ctx, q, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
