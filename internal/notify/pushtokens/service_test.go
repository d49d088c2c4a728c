package pushtokens

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mirin-backend/internal/platform/apierr"
)

type mockTokenStore struct {
	active map[int64][]string
}

func (m *mockTokenStore) Upsert(ctx context.Context, userID int64, token, platform string) error {
	m.active[userID] = append(m.active[userID], token)
	return nil
}

func (m *mockTokenStore) Deactivate(ctx context.Context, token string) error {
	for uid, toks := range m.active {
		out := toks[:0]
		for _, t := range toks {
			if t != token {
				out = append(out, t)
			}
		}
		m.active[uid] = out
	}
	return nil
}

func (m *mockTokenStore) ActiveTokens(ctx context.Context, userID int64) ([]string, error) {
	return m.active[userID], nil
}

func TestRegisterValidatesPlatform(t *testing.T) {
	svc := NewServiceWithStore(&mockTokenStore{active: map[int64][]string{}})

	err := svc.Register(context.Background(), 5, "tok", "blackberry")
	assert.Equal(t, apierr.CodeInvalidArgument, apierr.CodeOf(err))

	err = svc.Register(context.Background(), 5, "", PlatformWeb)
	assert.Equal(t, apierr.CodeInvalidArgument, apierr.CodeOf(err))
}

func TestRegisterAndDeactivate(t *testing.T) {
	store := &mockTokenStore{active: map[int64][]string{}}
	svc := NewServiceWithStore(store)

	require.NoError(t, svc.Register(context.Background(), 5, "tok-1", PlatformWeb))
	require.NoError(t, svc.Register(context.Background(), 5, "tok-2", PlatformAndroid))

	toks, err := svc.ActiveTokens(context.Background(), 5)
	require.NoError(t, err)
	assert.Len(t, toks, 2)

	require.NoError(t, svc.Deactivate(context.Background(), "tok-1"))
	toks, err = svc.ActiveTokens(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"tok-2"}, toks)
}
