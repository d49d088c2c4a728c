package notifications

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"mirin-backend/internal/platform/apierr"
	"mirin-backend/internal/platform/auth"
)

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func RegisterRoutes(authed *gin.RouterGroup, svc *Service) {
	h := NewHandler(svc)

	authed.GET("/notifications", h.My)
	authed.POST("/notifications/:notification_id/read", h.MarkRead)
}

func (h *Handler) My(c *gin.Context) {
	resp, err := h.svc.My(c.Request.Context(), auth.CurrentUserID(c))
	if err != nil {
		c.JSON(apierr.ToHTTPStatus(err), apierr.BodyFrom(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) MarkRead(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("notification_id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, apierr.Body(apierr.CodeInvalidArgument, "invalid notification_id"))
		return
	}
	if err := h.svc.MarkRead(c.Request.Context(), id, auth.CurrentUserID(c)); err != nil {
		c.JSON(apierr.ToHTTPStatus(err), apierr.BodyFrom(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
