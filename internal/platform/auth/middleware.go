package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"mirin-backend/internal/platform/apierr"
)

const (
	CtxUserIDKey   = "user_id"
	CtxUsernameKey = "username"
	CtxRoleKey     = "role"
)

func tokenFromRequest(c *gin.Context, cookieName string) string {
	if tok, err := c.Cookie(cookieName); err == nil && tok != "" {
		return tok
	}
	h := c.GetHeader("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// RequireAuth validates the session cookie (or a Bearer token) and stores
// the caller identity on the gin context.
func RequireAuth(secret []byte, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok := tokenFromRequest(c, cookieName)
		if tok == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierr.Body(apierr.CodeUnauthorized, "authentication required"))
			return
		}

		id, err := ParseToken(secret, tok)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierr.BodyFrom(err))
			return
		}

		c.Set(CtxUserIDKey, id.UserID)
		c.Set(CtxUsernameKey, id.Username)
		c.Set(CtxRoleKey, id.Role)
		c.Next()
	}
}

// OptionalAuth fills the identity when a valid token is present but never
// rejects the request. Used for public endpoints like /auth/me.
func OptionalAuth(secret []byte, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tok := tokenFromRequest(c, cookieName); tok != "" {
			if id, err := ParseToken(secret, tok); err == nil {
				c.Set(CtxUserIDKey, id.UserID)
				c.Set(CtxUsernameKey, id.Username)
				c.Set(CtxRoleKey, id.Role)
			}
		}
		c.Next()
	}
}

// RequireRole gates an endpoint to the given roles. Must run after
// RequireAuth.
func RequireRole(roles ...string) gin.HandlerFunc {
	roleSet := make(map[string]struct{})
	for _, r := range roles {
		if r == "" {
			continue
		}
		roleSet[r] = struct{}{}
	}

	return func(c *gin.Context) {
		role := CurrentRole(c)
		if role == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, apierr.Body(apierr.CodeForbidden, "missing role"))
			return
		}
		if _, allowed := roleSet[role]; !allowed {
			c.AbortWithStatusJSON(http.StatusForbidden, apierr.Body(apierr.CodeForbidden, "admin access required"))
			return
		}
		c.Next()
	}
}

func CurrentUserID(c *gin.Context) int64 {
	v, ok := c.Get(CtxUserIDKey)
	if !ok {
		return 0
	}
	id, _ := v.(int64)
	return id
}

func CurrentUsername(c *gin.Context) string {
	v, ok := c.Get(CtxUsernameKey)
	if !ok {
		return ""
	}
	name, _ := v.(string)
	return name
}

func CurrentRole(c *gin.Context) string {
	v, ok := c.Get(CtxRoleKey)
	if !ok {
		return ""
	}
	role, _ := v.(string)
	return role
}

func IsAdmin(c *gin.Context) bool { return CurrentRole(c) == RoleAdmin }
