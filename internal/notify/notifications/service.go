// Package notifications delivers in-app notifications and fans events out
// to admin accounts.
package notifications

import (
	"context"
	"database/sql"
)

type Service struct{ store NotificationStore }

func NewService(conn *sql.DB) *Service { return &Service{store: NewStore(conn)} }

func NewServiceWithStore(store NotificationStore) *Service { return &Service{store: store} }

func (s *Service) Notify(ctx context.Context, userID int64, title, message, typ string) error {
	return s.store.InsertFor(ctx, userID, title, message, typ)
}

func (s *Service) NotifyAdmins(ctx context.Context, title, message, typ string) error {
	return s.store.InsertForAdmins(ctx, title, message, typ)
}

func (s *Service) My(ctx context.Context, userID int64) ([]NotificationResponse, error) {
	rows, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]NotificationResponse, 0, len(rows))
	for i := range rows {
		out = append(out, toResponse(&rows[i]))
	}
	return out, nil
}

func (s *Service) MarkRead(ctx context.Context, id, userID int64) error {
	return s.store.MarkRead(ctx, id, userID)
}
