package products

import (
	"context"
	"database/sql"

	"mirin-backend/internal/platform/apierr"
)

type Service struct {
	store ProductStore
}

func NewService(db *sql.DB) *Service { return &Service{store: NewStore(db)} }

// NewServiceWithStore is used by tests.
func NewServiceWithStore(store ProductStore) *Service { return &Service{store: store} }

func (s *Service) List(ctx context.Context) ([]ProductResponse, error) {
	items, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	return toResponses(items), nil
}

func (s *Service) Available(ctx context.Context) ([]ProductResponse, error) {
	items, err := s.store.ListByStatus(ctx, StatusAvailable)
	if err != nil {
		return nil, err
	}
	return toResponses(items), nil
}

func (s *Service) Get(ctx context.Context, id int64) (*ProductResponse, error) {
	p, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toResponse(p)
	return &resp, nil
}

func (s *Service) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	if !ValidCategory(req.Category) {
		return nil, apierr.ErrInvalid("unknown category")
	}
	if req.DailyRate <= 0 {
		return nil, apierr.ErrInvalid("daily_rate must be > 0")
	}

	p := &Product{
		Name:      req.Name,
		Category:  req.Category,
		DailyRate: req.DailyRate,
		Status:    StatusAvailable,
	}
	if req.LicensePlate != nil {
		p.LicensePlate = sql.NullString{String: *req.LicensePlate, Valid: true}
	}
	if req.HourlyRate != nil {
		p.HourlyRate = sql.NullFloat64{Float64: *req.HourlyRate, Valid: true}
	}
	if req.Description != nil {
		p.Description = sql.NullString{String: *req.Description, Valid: true}
	}
	if req.ImageURL != nil {
		p.ImageURL = sql.NullString{String: *req.ImageURL, Valid: true}
	}
	if len(req.Metadata) > 0 {
		p.Metadata = sql.NullString{String: string(req.Metadata), Valid: true}
	}

	if err := s.store.Insert(ctx, p); err != nil {
		return nil, err
	}
	return s.Get(ctx, p.ID)
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateProductRequest) (*ProductResponse, error) {
	if req.Category != nil && !ValidCategory(*req.Category) {
		return nil, apierr.ErrInvalid("unknown category")
	}
	if req.Status != nil && !ValidStatus(*req.Status) {
		return nil, apierr.ErrInvalid("unknown status")
	}
	if req.DailyRate != nil && *req.DailyRate <= 0 {
		return nil, apierr.ErrInvalid("daily_rate must be > 0")
	}

	n, err := s.store.Update(ctx, id, req)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		// Either absent or a no-op write; distinguish with a read.
		if _, err := s.store.GetByID(ctx, id); err != nil {
			return nil, err
		}
	}
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	n, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return apierr.ErrNotFound("product not found")
	}
	return nil
}

func toResponses(items []Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(items))
	for i := range items {
		out = append(out, toResponse(&items[i]))
	}
	return out
}
