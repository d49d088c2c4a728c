package payments

import (
	"time"

	"mirin-backend/internal/platform/promptpay"
)

type TopUpRequest struct {
	Amount float64 `json:"amount" binding:"required"`
}

type ExtendRequest struct {
	RentalID int64 `json:"rental_id" binding:"required"`
	Days     int   `json:"days" binding:"required"`
}

// QRResponse is the PromptPay leg handed back for a new payment request.
type QRResponse struct {
	Payload         string  `json:"payload"`
	Amount          float64 `json:"amount"`
	AmountFormatted string  `json:"amount_formatted"`
	ReferenceID     string  `json:"reference_id"`
	Days            int     `json:"days,omitempty"`
}

type PaymentResponse struct {
	ID            int64      `json:"id"`
	UserID        int64      `json:"user_id"`
	RentalID      *int64     `json:"rental_id,omitempty"`
	Amount        float64    `json:"amount"`
	Type          string     `json:"type"`
	Status        string     `json:"status"`
	PromptPayRef  *string    `json:"promptpay_ref,omitempty"`
	ExtensionDays *int64     `json:"extension_days,omitempty"`
	ConfirmedBy   *int64     `json:"confirmed_by,omitempty"`
	ConfirmedAt   *time.Time `json:"confirmed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func toResponse(p *Payment) PaymentResponse {
	r := PaymentResponse{
		ID:        p.ID,
		UserID:    p.UserID,
		Amount:    p.Amount,
		Type:      p.Type,
		Status:    p.Status,
		CreatedAt: p.CreatedAt,
	}
	if p.RentalID.Valid {
		v := p.RentalID.Int64
		r.RentalID = &v
	}
	if p.PromptPayRef.Valid {
		v := p.PromptPayRef.String
		r.PromptPayRef = &v
	}
	if p.ExtensionDays.Valid {
		v := p.ExtensionDays.Int64
		r.ExtensionDays = &v
	}
	if p.ConfirmedBy.Valid {
		v := p.ConfirmedBy.Int64
		r.ConfirmedBy = &v
	}
	if p.ConfirmedAt.Valid {
		v := p.ConfirmedAt.Time
		r.ConfirmedAt = &v
	}
	return r
}

func toQRResponse(req promptpay.Request, days int) QRResponse {
	return QRResponse{
		Payload:         req.Payload,
		Amount:          req.Amount,
		AmountFormatted: promptpay.FormatTHB(req.Amount),
		ReferenceID:     req.ReferenceID,
		Days:            days,
	}
}
