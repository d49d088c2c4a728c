package pushtokens

import (
	"context"
	"database/sql"

	"mirin-backend/internal/platform/apierr"
)

// Service registers and retires push subscriptions. It also serves as
// the webpush sender's subscription source.
type Service struct{ store TokenStore }

func NewService(conn *sql.DB) *Service { return &Service{store: NewStore(conn)} }

func NewServiceWithStore(store TokenStore) *Service { return &Service{store: store} }

func validPlatform(p string) bool {
	return p == PlatformIOS || p == PlatformAndroid || p == PlatformWeb
}

func (s *Service) Register(ctx context.Context, userID int64, token, platform string) error {
	if token == "" {
		return apierr.ErrInvalid("token is required")
	}
	if !validPlatform(platform) {
		return apierr.ErrInvalid("platform must be ios, android or web")
	}
	return s.store.Upsert(ctx, userID, token, platform)
}

func (s *Service) Deactivate(ctx context.Context, token string) error {
	if token == "" {
		return apierr.ErrInvalid("token is required")
	}
	return s.store.Deactivate(ctx, token)
}

func (s *Service) ActiveTokens(ctx context.Context, userID int64) ([]string, error) {
	return s.store.ActiveTokens(ctx, userID)
}
