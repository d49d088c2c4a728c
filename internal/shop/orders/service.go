package orders

import (
	"context"
	"database/sql"
	"log"

	"mirin-backend/internal/platform/apierr"
	"mirin-backend/internal/platform/promptpay"
)

type Notifier interface {
	Notify(ctx context.Context, userID int64, title, message, typ string) error
	NotifyAdmins(ctx context.Context, title, message, typ string) error
}

type Service struct {
	store    OrderStore
	notifier Notifier
}

func NewService(conn *sql.DB, notifier Notifier) *Service {
	return &Service{store: NewStore(conn), notifier: notifier}
}

func NewServiceWithStore(store OrderStore, notifier Notifier) *Service {
	return &Service{store: store, notifier: notifier}
}

func (s *Service) Create(ctx context.Context, userID int64, req CreateOrderRequest) (*OrderResponse, error) {
	if len(req.Items) == 0 {
		return nil, apierr.ErrInvalid("order needs at least one item")
	}
	for _, it := range req.Items {
		if it.Quantity <= 0 {
			return nil, apierr.ErrInvalid("quantity must be positive")
		}
	}

	orderID, err := s.store.ExecCreate(ctx, userID, req.Items, req.ShippingAddress)
	if err != nil {
		return nil, err
	}
	order, err := s.store.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		if err := s.notifier.NotifyAdmins(ctx, "New Order",
			"Order for "+promptpay.FormatTHB(order.TotalAmount)+" was placed.", "order"); err != nil {
			log.Printf("[WARN] order %d: admin notification failed: %v", orderID, err)
		}
	}

	resp := toResponse(order)
	return &resp, nil
}

// Pay settles a pending order from the buyer's balance.
func (s *Service) Pay(ctx context.Context, orderID, userID int64) (*OrderResponse, error) {
	if err := s.store.ExecPay(ctx, orderID, userID); err != nil {
		return nil, err
	}
	order, err := s.store.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, userID, "Order Paid",
			"Your order of "+promptpay.FormatTHB(order.TotalAmount)+" is paid.", "order"); err != nil {
			log.Printf("[WARN] order %d: user notification failed: %v", orderID, err)
		}
	}

	resp := toResponse(order)
	return &resp, nil
}

func (s *Service) Get(ctx context.Context, orderID, callerID int64, callerAdmin bool) (*OrderResponse, error) {
	order, err := s.store.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != callerID && !callerAdmin {
		return nil, apierr.ErrForbidden("not your order")
	}
	resp := toResponse(order)
	return &resp, nil
}

func (s *Service) My(ctx context.Context, userID int64) ([]OrderResponse, error) {
	rows, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toResponses(rows), nil
}

func (s *Service) All(ctx context.Context) ([]OrderResponse, error) {
	rows, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return toResponses(rows), nil
}

func (s *Service) SetStatus(ctx context.Context, orderID int64, status string) (*OrderResponse, error) {
	switch status {
	case StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
	default:
		return nil, apierr.ErrInvalid("status must be processing, shipped, delivered or cancelled")
	}
	if err := s.store.SetStatus(ctx, orderID, status); err != nil {
		return nil, err
	}
	order, err := s.store.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	resp := toResponse(order)
	return &resp, nil
}

func toResponses(rows []Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(rows))
	for i := range rows {
		out = append(out, toResponse(&rows[i]))
	}
	return out
}
