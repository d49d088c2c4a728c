package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"mirin-backend/internal/platform/apierr"
)

type mockUserStore struct {
	users  map[string]*User
	nextID int64
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{users: map[string]*User{}, nextID: 1}
}

func (m *mockUserStore) GetByUsername(ctx context.Context, username string) (*User, error) {
	return m.users[username], nil
}

func (m *mockUserStore) GetByID(ctx context.Context, id int64) (*User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (m *mockUserStore) Create(ctx context.Context, u *User) error {
	u.ID = m.nextID
	m.nextID++
	m.users[u.Username] = u
	return nil
}

func (m *mockUserStore) TouchSignIn(ctx context.Context, id int64, ip string) error {
	return nil
}

func newTestService(store UserStore) *Service {
	return NewServiceWithStore(store, "test-secret", time.Hour)
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService(newMockUserStore())

	_, _, err := svc.Register(context.Background(), "ab", "password", "", "")
	assert.Equal(t, apierr.CodeInvalidArgument, apierr.CodeOf(err))

	_, _, err = svc.Register(context.Background(), "alice", "short", "", "")
	assert.Equal(t, apierr.CodeInvalidArgument, apierr.CodeOf(err))
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc := newTestService(newMockUserStore())

	_, _, err := svc.Register(context.Background(), "alice", "password", "", "")
	require.NoError(t, err)

	_, _, err = svc.Register(context.Background(), "alice", "password2", "", "")
	assert.Equal(t, apierr.CodeConflict, apierr.CodeOf(err))
}

func TestRegisterDefaultsAndToken(t *testing.T) {
	svc := newTestService(newMockUserStore())

	u, token, err := svc.Register(context.Background(), "alice", "password", "Alice", "a@example.com")
	require.NoError(t, err)

	assert.Equal(t, RoleUser, u.Role)
	assert.Equal(t, 0.0, u.Balance)
	assert.NotEqual(t, "password", u.PasswordHash)

	id, err := ParseToken(svc.Secret(), token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, id.UserID)
	assert.Equal(t, "alice", id.Username)
	assert.Equal(t, RoleUser, id.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	store := newMockUserStore()
	svc := newTestService(store)
	_, _, err := svc.Register(context.Background(), "alice", "password", "", "")
	require.NoError(t, err)

	_, _, err = svc.Login(context.Background(), "alice", "wrong", "127.0.0.1")
	assert.Equal(t, apierr.CodeUnauthorized, apierr.CodeOf(err))

	_, _, err = svc.Login(context.Background(), "nobody", "password", "127.0.0.1")
	assert.Equal(t, apierr.CodeUnauthorized, apierr.CodeOf(err))
}

func TestLoginHappyPath(t *testing.T) {
	store := newMockUserStore()
	svc := newTestService(store)

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	require.NoError(t, err)
	store.users["admin"] = &User{ID: 9, Username: "admin", PasswordHash: string(hash), Role: RoleAdmin}

	u, token, err := svc.Login(context.Background(), "admin", "password", "127.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, int64(9), u.ID)

	id, err := ParseToken(svc.Secret(), token)
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, id.Role)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	svc := newTestService(newMockUserStore())
	_, token, err := svc.Register(context.Background(), "alice", "password", "", "")
	require.NoError(t, err)

	_, err = ParseToken([]byte("other-secret"), token)
	assert.Equal(t, apierr.CodeUnauthorized, apierr.CodeOf(err))

	_, err = ParseToken(svc.Secret(), "not-a-token")
	assert.Equal(t, apierr.CodeUnauthorized, apierr.CodeOf(err))
}

func TestTokenExpiry(t *testing.T) {
	svc := NewServiceWithStore(newMockUserStore(), "test-secret", -time.Hour)
	_, token, err := svc.Register(context.Background(), "alice", "password", "", "")
	require.NoError(t, err)

	_, err = ParseToken(svc.Secret(), token)
	assert.Equal(t, apierr.CodeUnauthorized, apierr.CodeOf(err))
}
