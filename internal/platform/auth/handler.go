package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mirin-backend/internal/platform/apierr"
)

type Handler struct {
	svc        *Service
	cookieName string
	secure     bool
}

// RegisterRoutes mounts the public auth endpoints. secure controls the
// cookie Secure flag (off in dev, on behind TLS).
func RegisterRoutes(r gin.IRoutes, svc *Service, cookieName string, secure bool) {
	h := &Handler{svc: svc, cookieName: cookieName, secure: secure}
	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)
	r.POST("/auth/logout", h.Logout)
	r.GET("/auth/me", OptionalAuth(svc.Secret(), cookieName), h.Me)
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
}

type userDTO struct {
	ID       int64   `json:"id"`
	Username string  `json:"username"`
	Name     *string `json:"name,omitempty"`
	Role     string  `json:"role"`
}

func toUserDTO(u *User) userDTO {
	d := userDTO{ID: u.ID, Username: u.Username, Role: u.Role}
	if u.Name.Valid {
		v := u.Name.String
		d.Name = &v
	}
	return d
}

func (h *Handler) setCookie(c *gin.Context, token string) {
	maxAge := int(h.svc.TTL().Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookieName, token, maxAge, "/", "", h.secure, true)
}

func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierr.Body(apierr.CodeInvalidArgument, "invalid json"))
		return
	}

	u, token, err := h.svc.Register(c.Request.Context(), req.Username, req.Password, req.Name, req.Email)
	if err != nil {
		c.JSON(apierr.ToHTTPStatus(err), apierr.BodyFrom(err))
		return
	}

	h.setCookie(c, token)
	c.JSON(http.StatusCreated, gin.H{"success": true, "user": toUserDTO(u)})
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierr.Body(apierr.CodeInvalidArgument, "invalid json"))
		return
	}

	u, token, err := h.svc.Login(c.Request.Context(), req.Username, req.Password, c.ClientIP())
	if err != nil {
		c.JSON(apierr.ToHTTPStatus(err), apierr.BodyFrom(err))
		return
	}

	h.setCookie(c, token)
	c.JSON(http.StatusOK, gin.H{"success": true, "user": toUserDTO(u)})
}

func (h *Handler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookieName, "", -1, "/", "", h.secure, true)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Me returns the caller identity, or null when anonymous.
func (h *Handler) Me(c *gin.Context) {
	id := CurrentUserID(c)
	if id == 0 {
		c.JSON(http.StatusOK, nil)
		return
	}
	c.JSON(http.StatusOK, Identity{
		UserID:   id,
		Username: CurrentUsername(c),
		Role:     CurrentRole(c),
	})
}
