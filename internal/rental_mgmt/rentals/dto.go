package rentals

import (
	"time"

	"mirin-backend/internal/platform/promptpay"
)

type CreateRentalRequest struct {
	ProductID int64     `json:"product_id" binding:"required"`
	StartDate time.Time `json:"start_date" binding:"required"`
	EndDate   time.Time `json:"end_date" binding:"required"`
}

type RentalResponse struct {
	ID               int64      `json:"id"`
	UserID           int64      `json:"user_id"`
	ProductID        int64      `json:"product_id"`
	StartDate        time.Time  `json:"start_date"`
	EndDate          time.Time  `json:"end_date"`
	ActualReturnDate *time.Time `json:"actual_return_date,omitempty"`
	Status           string     `json:"status"`
	TotalCost        float64    `json:"total_cost"`
	CreatedAt        time.Time  `json:"created_at"`
}

// PaymentRequestDTO is the PromptPay leg returned alongside a new rental.
type PaymentRequestDTO struct {
	Payload         string  `json:"payload"`
	Amount          float64 `json:"amount"`
	AmountFormatted string  `json:"amount_formatted"`
	ReferenceID     string  `json:"reference_id"`
}

type CreatedRentalResponse struct {
	Rental  RentalResponse    `json:"rental"`
	Payment PaymentRequestDTO `json:"payment"`
}

func toResponse(r *Rental) RentalResponse {
	resp := RentalResponse{
		ID:        r.ID,
		UserID:    r.UserID,
		ProductID: r.ProductID,
		StartDate: r.StartDate,
		EndDate:   r.EndDate,
		Status:    r.Status,
		TotalCost: r.TotalCost,
		CreatedAt: r.CreatedAt,
	}
	if r.ActualReturnDate.Valid {
		v := r.ActualReturnDate.Time
		resp.ActualReturnDate = &v
	}
	return resp
}

func toPaymentDTO(req promptpay.Request) PaymentRequestDTO {
	return PaymentRequestDTO{
		Payload:         req.Payload,
		Amount:          req.Amount,
		AmountFormatted: promptpay.FormatTHB(req.Amount),
		ReferenceID:     req.ReferenceID,
	}
}
