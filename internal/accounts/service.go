package accounts

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"mirin-backend/internal/platform/apierr"
	"mirin-backend/internal/platform/auth"
)

type Service struct{ store AccountStore }

func NewService(conn *sql.DB) *Service { return &Service{store: NewStore(conn)} }

func NewServiceWithStore(store AccountStore) *Service { return &Service{store: store} }

func (s *Service) Profile(ctx context.Context, userID int64) (*AccountResponse, error) {
	a, err := s.store.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := toResponse(a)
	return &resp, nil
}

func (s *Service) All(ctx context.Context) ([]AccountResponse, error) {
	rows, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]AccountResponse, 0, len(rows))
	for i := range rows {
		out = append(out, toResponse(&rows[i]))
	}
	return out, nil
}

// MakeAdmin promotes a user and records the action in the audit trail.
func (s *Service) MakeAdmin(ctx context.Context, targetID, actorID int64) (*AccountResponse, error) {
	if _, err := s.store.GetByID(ctx, targetID); err != nil {
		return nil, err
	}
	if err := s.store.SetRole(ctx, targetID, auth.RoleAdmin); err != nil {
		return nil, err
	}
	s.audit(ctx, actorID, "make_admin", fmt.Sprintf("user %d promoted to admin", targetID))

	a, err := s.store.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	resp := toResponse(a)
	return &resp, nil
}

// RemoveAdmin demotes a user. Demoting yourself is refused.
func (s *Service) RemoveAdmin(ctx context.Context, targetID, actorID int64) (*AccountResponse, error) {
	if targetID == actorID {
		return nil, apierr.ErrInvalid("cannot remove your own admin role")
	}
	if _, err := s.store.GetByID(ctx, targetID); err != nil {
		return nil, err
	}
	if err := s.store.SetRole(ctx, targetID, auth.RoleUser); err != nil {
		return nil, err
	}
	s.audit(ctx, actorID, "remove_admin", fmt.Sprintf("user %d demoted to user", targetID))

	a, err := s.store.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	resp := toResponse(a)
	return &resp, nil
}

// Audit writes must never fail the request.
func (s *Service) audit(ctx context.Context, actorID int64, action, detail string) {
	if err := s.store.InsertAudit(ctx, actorID, action, detail); err != nil {
		log.Printf("[WARN] audit write failed (%s): %v", action, err)
	}
}
