package payments

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

	authed.POST("/payments/topup", h.TopUp)
	authed.POST("/payments/extend", h.Extend)
	authed.GET("/payments", h.My)

	admin.GET("/payments", h.All)
	admin.GET("/payments/pending", h.Pending)
	admin.POST("/payments/:payment_id/confirm", h.Confirm)
	admin.POST("/payments/:payment_id/reject", h.Reject)
}

func (h *Handler) TopUp(c *gin.Context) {
	var req TopUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierr.Body(apierr.CodeInvalidArgument, "invalid request body"))
		return
	}
	resp, err := h.svc.TopUp(c.Request.Context(), auth.CurrentUserID(c), req)
	if err != nil {
		c.JSON(apierr.ToHTTPStatus(err), apierr.BodyFrom(err))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) Extend(c *gin.Context) {
	var req ExtendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierr.Body(apierr.CodeInvalidArgument, "invalid request body"))
		return
	}
	resp, err := h.svc.Extend(c.Request.Context(), auth.CurrentUserID(c), req)
	if err != nil {
		c.JSON(apierr.ToHTTPStatus(err), apierr.BodyFrom(err))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) My(c *gin.Context) {
	resp, err := h.svc.My(c.Request.Context(), auth.CurrentUserID(c))
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

func (h *Handler) Pending(c *gin.Context) {
	resp, err := h.svc.Pending(c.Request.Context())
	if err != nil {
		c.JSON(apierr.ToHTTPStatus(err), apierr.BodyFrom(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) Confirm(c *gin.Context) {
	id, ok := pathID(c, "payment_id")
	if !ok {
		return
	}
	resp, err := h.svc.Confirm(c.Request.Context(), id, auth.CurrentUserID(c))
	if err != nil {
		c.JSON(apierr.ToHTTPStatus(err), apierr.BodyFrom(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) Reject(c *gin.Context) {
	id, ok := pathID(c, "payment_id")
	if !ok {
		return
	}
	resp, err := h.svc.Reject(c.Request.Context(), id)
	if err != nil {
		c.JSON(apierr.ToHTTPStatus(err), apierr.BodyFrom(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, apierr.Body(apierr.CodeInvalidArgument, "invalid "+name))
		return 0, false
	}
	return id, true
}
