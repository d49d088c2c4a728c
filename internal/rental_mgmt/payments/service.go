package payments

import (
	"context"
	"database/sql"
	"log"

	"mirin-backend/internal/platform/apierr"
	"mirin-backend/internal/platform/promptpay"
	"mirin-backend/internal/platform/webpush"
)

// Notifier posts in-app notifications. Satisfied by the notifications
// service.
type Notifier interface {
	Notify(ctx context.Context, userID int64, title, message, typ string) error
	NotifyAdmins(ctx context.Context, title, message, typ string) error
}

// Pusher delivers web push; failures are logged, never surfaced.
type Pusher interface {
	Send(ctx context.Context, userID int64, p webpush.Payload)
}

type Service struct {
	store       PaymentStore
	notifier    Notifier
	pusher      Pusher
	promptPayID string
}

func NewService(conn *sql.DB, notifier Notifier, pusher Pusher, promptPayID string) *Service {
	return &Service{store: NewStore(conn), notifier: notifier, pusher: pusher, promptPayID: promptPayID}
}

func NewServiceWithStore(store PaymentStore, notifier Notifier, pusher Pusher, promptPayID string) *Service {
	return &Service{store: store, notifier: notifier, pusher: pusher, promptPayID: promptPayID}
}

// TopUp issues a PromptPay QR for a balance top-up and records the
// pending payment. A random satang is mixed in so the admin can match
// the incoming transfer to the request.
func (s *Service) TopUp(ctx context.Context, userID int64, req TopUpRequest) (*QRResponse, error) {
	if req.Amount <= 0 {
		return nil, apierr.ErrInvalid("amount must be positive")
	}
	amount := promptpay.AddRandomSatang(req.Amount)
	qr := promptpay.Generate(s.promptPayID, amount)

	p := &Payment{
		UserID:       userID,
		Amount:       amount,
		Type:         TypeTopUp,
		PromptPayRef: sql.NullString{String: qr.ReferenceID, Valid: true},
	}
	if err := s.store.InsertPending(ctx, p); err != nil {
		return nil, err
	}

	s.notifyAdmins(ctx, "New Top-up Request",
		"A top-up of "+promptpay.FormatTHB(amount)+" is waiting for confirmation. Ref: "+qr.ReferenceID)
	resp := toQRResponse(qr, 0)
	return &resp, nil
}

// Extend issues a PromptPay QR for extending a rental by whole days at
// the product's daily rate. The day count is stored on the payment so
// confirmation never has to reverse it out of the amount.
func (s *Service) Extend(ctx context.Context, userID int64, req ExtendRequest) (*QRResponse, error) {
	if req.Days <= 0 {
		return nil, apierr.ErrInvalid("days must be positive")
	}
	info, err := s.store.RentalForExtension(ctx, req.RentalID)
	if err != nil {
		return nil, err
	}
	if info.UserID != userID {
		return nil, apierr.ErrForbidden("not your rental")
	}
	if info.DailyRate <= 0 {
		return nil, apierr.ErrInvalidState("product has no daily rate")
	}

	amount := promptpay.AddRandomSatang(float64(req.Days) * info.DailyRate)
	qr := promptpay.Generate(s.promptPayID, amount)

	p := &Payment{
		UserID:        userID,
		RentalID:      sql.NullInt64{Int64: req.RentalID, Valid: true},
		Amount:        amount,
		Type:          TypeExtension,
		PromptPayRef:  sql.NullString{String: qr.ReferenceID, Valid: true},
		ExtensionDays: sql.NullInt64{Int64: int64(req.Days), Valid: true},
	}
	if err := s.store.InsertPending(ctx, p); err != nil {
		return nil, err
	}

	s.notifyAdmins(ctx, "New Extension Request",
		"An extension payment of "+promptpay.FormatTHB(amount)+" is waiting for confirmation. Ref: "+qr.ReferenceID)
	resp := toQRResponse(qr, req.Days)
	return &resp, nil
}

// Confirm marks a pending payment as completed and applies its effect:
// top-ups credit the balance, rental charges activate the rental,
// extensions push the end date out.
func (s *Service) Confirm(ctx context.Context, paymentID, adminID int64) (*PaymentResponse, error) {
	p, err := s.store.ExecConfirm(ctx, paymentID, adminID)
	if err != nil {
		return nil, err
	}

	msg := "Your payment of " + promptpay.FormatTHB(p.Amount) + " has been confirmed."
	s.notifyUser(ctx, p, "Payment Confirmed", msg, "payment_received")

	resp := toResponse(p)
	return &resp, nil
}

// Reject fails a pending payment; a rental charge also cancels its
// still-pending rental.
func (s *Service) Reject(ctx context.Context, paymentID int64) (*PaymentResponse, error) {
	p, err := s.store.ExecReject(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	msg := "Your payment of " + promptpay.FormatTHB(p.Amount) + " was rejected."
	s.notifyUser(ctx, p, "Payment Rejected", msg, "payment_rejected")

	resp := toResponse(p)
	return &resp, nil
}

func (s *Service) My(ctx context.Context, userID int64) ([]PaymentResponse, error) {
	rows, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toResponses(rows), nil
}

func (s *Service) Pending(ctx context.Context) ([]PaymentResponse, error) {
	rows, err := s.store.ListPending(ctx)
	if err != nil {
		return nil, err
	}
	return toResponses(rows), nil
}

func (s *Service) All(ctx context.Context) ([]PaymentResponse, error) {
	rows, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return toResponses(rows), nil
}

func (s *Service) notifyUser(ctx context.Context, p *Payment, title, msg, typ string) {
	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, p.UserID, title, msg, typ); err != nil {
			log.Printf("[WARN] payment %d: user notification failed: %v", p.ID, err)
		}
	}
	if s.pusher != nil {
		s.pusher.Send(ctx, p.UserID, webpush.Payload{Title: title, Body: msg})
	}
}

func (s *Service) notifyAdmins(ctx context.Context, title, message string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyAdmins(ctx, title, message, "payment"); err != nil {
		log.Printf("[WARN] admin notification failed: %v", err)
	}
}

func toResponses(rows []Payment) []PaymentResponse {
	out := make([]PaymentResponse, 0, len(rows))
	for i := range rows {
		out = append(out, toResponse(&rows[i]))
	}
	return out
}
