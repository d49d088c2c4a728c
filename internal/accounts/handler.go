package accounts

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"mirin-backend/internal/platform/apierr"
	"mirin-backend/internal/platform/auth"
)

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func RegisterRoutes(authed, admin *gin.RouterGroup, svc *Service) {
	h := NewHandler(svc)

	authed.GET("/profile", h.Profile)

	admin.GET("/users", h.All)
	admin.POST("/users/:user_id/make-admin", h.MakeAdmin)
	admin.POST("/users/:user_id/remove-admin", h.RemoveAdmin)
}

func (h *Handler) Profile(c *gin.Context) {
	resp, err := h.svc.Profile(c.Request.Context(), auth.CurrentUserID(c))
	if err != nil {
		c.JSON(apierr.ToHTTPStatus(err), apierr.BodyFrom(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) All(c *gin.Context) {
	resp, err := h.svc.All(c.Request.Context())
	if err != nil {
		c.JSON(apierr.ToHTTPStatus(err), apierr.BodyFrom(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) MakeAdmin(c *gin.Context) {
	id, ok := pathUserID(c)
	if !ok {
		return
	}
	resp, err := h.svc.MakeAdmin(c.Request.Context(), id, auth.CurrentUserID(c))
	if err != nil {
		c.JSON(apierr.ToHTTPStatus(err), apierr.BodyFrom(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) RemoveAdmin(c *gin.Context) {
	id, ok := pathUserID(c)
	if !ok {
		return
	}
	resp, err := h.svc.RemoveAdmin(c.Request.Context(), id, auth.CurrentUserID(c))
	if err != nil {
		c.JSON(apierr.ToHTTPStatus(err), apierr.BodyFrom(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func pathUserID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, apierr.Body(apierr.CodeInvalidArgument, "invalid user_id"))
		return 0, false
	}
	return id, true
}
