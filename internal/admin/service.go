package admin

import (
	"context"
	"database/sql"

	"mirin-backend/internal/platform/apierr"
)

const (
	defaultAuditLimit = 100
	userAuditLimit    = 50
)

type Service struct{ store AdminStore }

func NewService(conn *sql.DB) *Service { return &Service{store: NewStore(conn)} }

func NewServiceWithStore(store AdminStore) *Service { return &Service{store: store} }

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	return s.store.Stats(ctx)
}

func (s *Service) AuditLogs(ctx context.Context) ([]AuditLog, error) {
	return s.store.AuditLogs(ctx, defaultAuditLimit)
}

func (s *Service) AuditLogsByUser(ctx context.Context, userID int64) ([]AuditLog, error) {
	return s.store.AuditLogsByUser(ctx, userID, userAuditLimit)
}

func (s *Service) GetSetting(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", apierr.ErrInvalid("key is required")
	}
	value, ok, err := s.store.GetSetting(ctx, key)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", apierr.ErrNotFound("setting not found")
	}
	return value, nil
}

func (s *Service) SetSetting(ctx context.Context, key, value string) error {
	if key == "" {
		return apierr.ErrInvalid("key is required")
	}
	return s.store.SetSetting(ctx, key, value)
}
