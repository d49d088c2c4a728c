package auth

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"mirin-backend/internal/platform/apierr"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Identity is the authenticated caller carried in the request context.
type Identity struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type Service struct {
	store  UserStore
	secret []byte
	ttl    time.Duration
}

func NewService(conn *sql.DB, secret string, ttl time.Duration) *Service {
	return &Service{store: NewStore(conn), secret: []byte(secret), ttl: ttl}
}

// NewServiceWithStore is used by tests to swap the store.
func NewServiceWithStore(store UserStore, secret string, ttl time.Duration) *Service {
	return &Service{store: store, secret: []byte(secret), ttl: ttl}
}

func (s *Service) Secret() []byte     { return s.secret }
func (s *Service) TTL() time.Duration { return s.ttl }

// Register creates a user with role "user" and zero balance, then issues a
// session token.
func (s *Service) Register(ctx context.Context, username, password, name, email string) (*User, string, error) {
	username = strings.TrimSpace(username)
	if len(username) < 3 || len(username) > 50 {
		return nil, "", apierr.ErrInvalid("username must be 3-50 characters")
	}
	if len(password) < 6 {
		return nil, "", apierr.ErrInvalid("password must be at least 6 characters")
	}

	existing, err := s.store.GetByUsername(ctx, username)
	if err != nil {
		return nil, "", err
	}
	if existing != nil {
		return nil, "", apierr.ErrConflict("username already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	u := &User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         RoleUser,
		Balance:      0,
	}
	if name != "" {
		u.Name = sql.NullString{String: name, Valid: true}
	}
	if email != "" {
		u.Email = sql.NullString{String: email, Valid: true}
	}
	if err := s.store.Create(ctx, u); err != nil {
		return nil, "", err
	}

	token, err := s.IssueToken(Identity{UserID: u.ID, Username: u.Username, Role: u.Role})
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func (s *Service) Login(ctx context.Context, username, password, ip string) (*User, string, error) {
	u, err := s.store.GetByUsername(ctx, username)
	if err != nil {
		return nil, "", err
	}
	if u == nil {
		return nil, "", apierr.ErrUnauthorized("invalid username or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, "", apierr.ErrUnauthorized("invalid username or password")
	}

	if err := s.store.TouchSignIn(ctx, u.ID, ip); err != nil {
		return nil, "", err
	}

	token, err := s.IssueToken(Identity{UserID: u.ID, Username: u.Username, Role: u.Role})
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func (s *Service) IssueToken(id Identity) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      strconv.FormatInt(id.UserID, 10),
		"username": id.Username,
		"role":     id.Role,
		"iat":      now.Unix(),
		"exp":      now.Add(s.ttl).Unix(),
	})
	return token.SignedString(s.secret)
}

// ParseToken validates a session token and recovers the caller identity.
func ParseToken(secret []byte, tokenStr string) (*Identity, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		// alg pinned to HS256
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || token == nil || !token.Valid {
		return nil, apierr.ErrUnauthorized("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apierr.ErrUnauthorized("invalid claims")
	}

	sub, _ := claims["sub"].(string)
	userID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil || userID <= 0 {
		return nil, apierr.ErrUnauthorized("invalid sub")
	}

	username, _ := claims["username"].(string)
	role, _ := claims["role"].(string)
	return &Identity{UserID: userID, Username: username, Role: role}, nil
}
