package rentals

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"mirin-backend/internal/platform/apierr"
	"mirin-backend/internal/platform/promptpay"
)

// Notifier posts in-app notifications. Implemented by the notifications
// service; failures there must never fail the rental flow.
type Notifier interface {
	NotifyAdmins(ctx context.Context, title, message, typ string) error
}

type Service struct {
	store       RentalStore
	notifier    Notifier
	promptPayID string
}

func NewService(conn *sql.DB, notifier Notifier, promptPayID string) *Service {
	return &Service{store: NewStore(conn), notifier: notifier, promptPayID: promptPayID}
}

// NewServiceWithStore is used by tests.
func NewServiceWithStore(store RentalStore, notifier Notifier, promptPayID string) *Service {
	return &Service{store: store, notifier: notifier, promptPayID: promptPayID}
}

// Create books a product for a verified user: rental goes in as pending with
// a linked pending rental_charge payment. The product stays available until
// an admin confirms the payment.
func (s *Service) Create(ctx context.Context, userID int64, username string, req CreateRentalRequest) (*CreatedRentalResponse, error) {
	if !req.EndDate.After(req.StartDate) {
		return nil, apierr.ErrInvalid("end_date must be after start_date")
	}

	verified, err := s.store.HasVerifiedIDCard(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !verified {
		return nil, apierr.ErrForbidden("id verification required before booking")
	}

	product, err := s.store.GetProduct(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if product.Status != "available" {
		return nil, apierr.ErrInvalidState("product is not available")
	}

	totalCost := Cost(req.StartDate, req.EndDate, product.DailyRate, product.HourlyRate)
	if totalCost <= 0 {
		return nil, apierr.ErrInvalid("rental period is too short")
	}

	preciseAmount := promptpay.AddRandomSatang(totalCost)
	ppReq := promptpay.Generate(s.promptPayID, preciseAmount)

	rental := &Rental{
		UserID:    userID,
		ProductID: req.ProductID,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		TotalCost: totalCost,
	}
	charge := &PendingCharge{
		UserID:      userID,
		Amount:      preciseAmount,
		ReferenceID: ppReq.ReferenceID,
	}
	if err := s.store.ExecCreate(ctx, rental, charge); err != nil {
		return nil, err
	}

	msg := fmt.Sprintf("User %s requested %s. Payment: %s", username, product.Name, promptpay.FormatTHB(preciseAmount))
	if err := s.notifier.NotifyAdmins(ctx, "New Rental Request", msg, "rental"); err != nil {
		log.Printf("[WARN] rentals: notify admins: %v", err)
	}

	return &CreatedRentalResponse{
		Rental:  toResponse(rental),
		Payment: toPaymentDTO(ppReq),
	}, nil
}

func (s *Service) Get(ctx context.Context, callerID int64, isAdmin bool, id int64) (*RentalResponse, error) {
	r, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.UserID != callerID && !isAdmin {
		return nil, apierr.ErrForbidden("not authorized")
	}
	resp := toResponse(r)
	return &resp, nil
}

func (s *Service) MyRentals(ctx context.Context, userID int64) ([]RentalResponse, error) {
	items, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toResponses(items), nil
}

// ActiveRental returns the caller's active rental, or nil.
func (s *Service) ActiveRental(ctx context.Context, userID int64) (*RentalResponse, error) {
	r, err := s.store.ActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, nil
	}
	resp := toResponse(r)
	return &resp, nil
}

func (s *Service) All(ctx context.Context) ([]RentalResponse, error) {
	items, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return toResponses(items), nil
}

// Approve is the admin override: activates the rental and marks the product
// rented regardless of payment state.
func (s *Service) Approve(ctx context.Context, id int64) error {
	return s.store.ExecApprove(ctx, id)
}

func (s *Service) Cancel(ctx context.Context, id int64) error {
	return s.store.ExecCancel(ctx, id)
}

// Complete closes out a rental. Owner or admin only.
func (s *Service) Complete(ctx context.Context, callerID int64, isAdmin bool, id int64) error {
	r, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if r.UserID != callerID && !isAdmin {
		return apierr.ErrForbidden("not authorized")
	}
	return s.store.ExecComplete(ctx, id)
}

func toResponses(items []Rental) []RentalResponse {
	out := make([]RentalResponse, 0, len(items))
	for i := range items {
		out = append(out, toResponse(&items[i]))
	}
	return out
}
