package admin

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"mirin-backend/internal/platform/apierr"
)

type settingRequest struct {
	Value string `json:"value" binding:"required"`
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func RegisterRoutes(admin *gin.RouterGroup, svc *Service) {
	h := NewHandler(svc)

	admin.GET("/stats", h.Stats)
	admin.GET("/audit-logs", h.AuditLogs)
	admin.GET("/audit-logs/users/:user_id", h.AuditLogsByUser)
	admin.GET("/settings/:key", h.GetSetting)
	admin.PUT("/settings/:key", h.SetSetting)
}

func (h *Handler) Stats(c *gin.Context) {
	resp, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		c.JSON(apierr.ToHTTPStatus(err), apierr.BodyFrom(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) AuditLogs(c *gin.Context) {
	resp, err := h.svc.AuditLogs(c.Request.Context())
	if err != nil {
		c.JSON(apierr.ToHTTPStatus(err), apierr.BodyFrom(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) AuditLogsByUser(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil || userID <= 0 {
		c.JSON(http.StatusBadRequest, apierr.Body(apierr.CodeInvalidArgument, "invalid user_id"))
		return
	}
	resp, svcErr := h.svc.AuditLogsByUser(c.Request.Context(), userID)
	if svcErr != nil {
		c.JSON(apierr.ToHTTPStatus(svcErr), apierr.BodyFrom(svcErr))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) GetSetting(c *gin.Context) {
	value, err := h.svc.GetSetting(c.Request.Context(), c.Param("key"))
	if err != nil {
		c.JSON(apierr.ToHTTPStatus(err), apierr.BodyFrom(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": c.Param("key"), "value": value})
}

func (h *Handler) SetSetting(c *gin.Context) {
	var req settingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierr.Body(apierr.CodeInvalidArgument, "invalid request body"))
		return
	}
	if err := h.svc.SetSetting(c.Request.Context(), c.Param("key"), req.Value); err != nil {
		c.JSON(apierr.ToHTTPStatus(err), apierr.BodyFrom(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": c.Param("key"), "value": req.Value})
}
