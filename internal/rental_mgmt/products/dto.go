package products

import (
	"encoding/json"
	"time"
)

type CreateProductRequest struct {
	Name         string          `json:"name" binding:"required"`
	Category     string          `json:"category" binding:"required"`
	LicensePlate *string         `json:"license_plate,omitempty"`
	HourlyRate   *float64        `json:"hourly_rate,omitempty"`
	DailyRate    float64         `json:"daily_rate" binding:"required"`
	Description  *string         `json:"description,omitempty"`
	ImageURL     *string         `json:"image_url,omitempty"`
	Metadata     json.RawMessage `json:"metadata,omitempty"`
}

type UpdateProductRequest struct {
	Name         *string         `json:"name,omitempty"`
	Category     *string         `json:"category,omitempty"`
	LicensePlate *string         `json:"license_plate,omitempty"`
	HourlyRate   *float64        `json:"hourly_rate,omitempty"`
	DailyRate    *float64        `json:"daily_rate,omitempty"`
	Description  *string         `json:"description,omitempty"`
	ImageURL     *string         `json:"image_url,omitempty"`
	Status       *string         `json:"status,omitempty"`
	Metadata     json.RawMessage `json:"metadata,omitempty"`
}

type ProductResponse struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	LicensePlate *string         `json:"license_plate,omitempty"`
	HourlyRate   *float64        `json:"hourly_rate,omitempty"`
	DailyRate    float64         `json:"daily_rate"`
	Description  *string         `json:"description,omitempty"`
	ImageURL     *string         `json:"image_url,omitempty"`
	Status       string          `json:"status"`
	Metadata     json.RawMessage `json:"metadata,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func toResponse(p *Product) ProductResponse {
	r := ProductResponse{
		ID:        p.ID,
		Name:      p.Name,
		Category:  p.Category,
		DailyRate: p.DailyRate,
		Status:    p.Status,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	if p.LicensePlate.Valid {
		v := p.LicensePlate.String
		r.LicensePlate = &v
	}
	if p.HourlyRate.Valid {
		v := p.HourlyRate.Float64
		r.HourlyRate = &v
	}
	if p.Description.Valid {
		v := p.Description.String
		r.Description = &v
	}
	if p.ImageURL.Valid {
		v := p.ImageURL.String
		r.ImageURL = &v
	}
	if p.Metadata.Valid {
		r.Metadata = json.RawMessage(p.Metadata.String)
	}
	return r
}
