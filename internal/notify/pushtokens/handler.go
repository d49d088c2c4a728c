package pushtokens

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mirin-backend/internal/platform/apierr"
	"mirin-backend/internal/platform/auth"
)

type registerRequest struct {
	Token    string `json:"token" binding:"required"`
	Platform string `json:"platform" binding:"required"`
}

type deactivateRequest struct {
	Token string `json:"token" binding:"required"`
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func RegisterRoutes(authed *gin.RouterGroup, svc *Service) {
	h := NewHandler(svc)

	authed.POST("/push-tokens", h.Register)
	authed.POST("/push-tokens/deactivate", h.Deactivate)
}

func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierr.Body(apierr.CodeInvalidArgument, "invalid request body"))
		return
	}
	if err := h.svc.Register(c.Request.Context(), auth.CurrentUserID(c), req.Token, req.Platform); err != nil {
		c.JSON(apierr.ToHTTPStatus(err), apierr.BodyFrom(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) Deactivate(c *gin.Context) {
	var req deactivateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierr.Body(apierr.CodeInvalidArgument, "invalid request body"))
		return
	}
	if err := h.svc.Deactivate(c.Request.Context(), req.Token); err != nil {
		c.JSON(apierr.ToHTTPStatus(err), apierr.BodyFrom(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
