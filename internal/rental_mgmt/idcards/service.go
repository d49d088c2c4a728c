package idcards

import (
	"context"
	"database/sql"
	"log"
	"strings"

	"mirin-backend/internal/platform/apierr"
	"mirin-backend/internal/platform/storage"
	"mirin-backend/internal/platform/webpush"
)

// FileStore abstracts the upload backend.
type FileStore interface {
	PutBase64(data, folder string) (*storage.Stored, error)
	Delete(key string) error
}

type Notifier interface {
	Notify(ctx context.Context, userID int64, title, message, typ string) error
	NotifyAdmins(ctx context.Context, title, message, typ string) error
}

type Pusher interface {
	Send(ctx context.Context, userID int64, p webpush.Payload)
}

type Service struct {
	store    IDCardStore
	files    FileStore
	notifier Notifier
	pusher   Pusher
}

func NewService(conn *sql.DB, files FileStore, notifier Notifier, pusher Pusher) *Service {
	return &Service{store: NewStore(conn), files: files, notifier: notifier, pusher: pusher}
}

func NewServiceWithStore(store IDCardStore, files FileStore, notifier Notifier, pusher Pusher) *Service {
	return &Service{store: store, files: files, notifier: notifier, pusher: pusher}
}

// Upload stores the caller's ID image and queues it for review. A card
// that already passed review cannot be replaced.
func (s *Service) Upload(ctx context.Context, userID int64, req UploadRequest) (*IDCardResponse, error) {
	existing, err := s.store.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.Status == StatusVerified {
		return nil, apierr.ErrInvalid("id card already verified")
	}

	stored, err := s.files.PutBase64(req.Image, "id_cards")
	if err != nil {
		return nil, err
	}

	card, err := s.store.Upsert(ctx, userID, stored.URL)
	if err != nil {
		return nil, err
	}

	// The upsert replaced the row, so the previous image is orphaned.
	if existing != nil && existing.ImageURL != "" && existing.ImageURL != stored.URL {
		if err := s.files.Delete(strings.TrimPrefix(existing.ImageURL, "/uploads/")); err != nil {
			log.Printf("[WARN] id card %d: removing superseded image failed: %v", card.ID, err)
		}
	}

	if s.notifier != nil {
		if err := s.notifier.NotifyAdmins(ctx, "New ID Verification",
			"An ID card is waiting for review.", "id_verification"); err != nil {
			log.Printf("[WARN] id card %d: admin notification failed: %v", card.ID, err)
		}
	}

	resp := toResponse(card)
	return &resp, nil
}

// Status returns the card of userID. Only the owner or an admin may look.
func (s *Service) Status(ctx context.Context, userID, callerID int64, callerAdmin bool) (*IDCardResponse, error) {
	if userID != callerID && !callerAdmin {
		return nil, apierr.ErrForbidden("not your id card")
	}
	card, err := s.store.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if card == nil {
		return nil, nil
	}
	resp := toResponse(card)
	return &resp, nil
}

// Verify records the admin's verdict and tells the owner.
func (s *Service) Verify(ctx context.Context, cardID, adminID int64, req VerifyRequest) (*IDCardResponse, error) {
	if req.Status != StatusVerified && req.Status != StatusRejected {
		return nil, apierr.ErrInvalid("status must be verified or rejected")
	}

	card, err := s.store.GetByID(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if err := s.store.SetVerdict(ctx, cardID, adminID, req.Status, req.Notes); err != nil {
		return nil, err
	}

	title, msg := "ID Verified", "Your ID has been verified. You can now make bookings."
	if req.Status == StatusRejected {
		title, msg = "ID Rejected", "Your ID was rejected. Please upload a clearer photo."
	}
	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, card.UserID, title, msg, "id_verification"); err != nil {
			log.Printf("[WARN] id card %d: user notification failed: %v", cardID, err)
		}
	}
	if s.pusher != nil {
		s.pusher.Send(ctx, card.UserID, webpush.Payload{Title: title, Body: msg})
	}

	updated, err := s.store.GetByID(ctx, cardID)
	if err != nil {
		return nil, err
	}
	resp := toResponse(updated)
	return &resp, nil
}

func (s *Service) Pending(ctx context.Context) ([]IDCardResponse, error) {
	rows, err := s.store.ListPending(ctx)
	if err != nil {
		return nil, err
	}
	return toResponses(rows), nil
}

func (s *Service) All(ctx context.Context) ([]IDCardResponse, error) {
	rows, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return toResponses(rows), nil
}

func toResponses(rows []IDCard) []IDCardResponse {
	out := make([]IDCardResponse, 0, len(rows))
	for i := range rows {
		out = append(out, toResponse(&rows[i]))
	}
	return out
}
