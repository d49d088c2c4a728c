package idcards

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

	authed.POST("/id-cards", h.Upload)
	authed.GET("/id-cards/me", h.Mine)
	authed.GET("/id-cards/users/:user_id", h.Status)

	admin.GET("/id-cards", h.All)
	admin.GET("/id-cards/pending", h.Pending)
	admin.POST("/id-cards/:card_id/verify", h.Verify)
}

func (h *Handler) Upload(c *gin.Context) {
	var req UploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierr.Body(apierr.CodeInvalidArgument, "invalid request body"))
		return
	}
	resp, err := h.svc.Upload(c.Request.Context(), auth.CurrentUserID(c), req)
	if err != nil {
		c.JSON(apierr.ToHTTPStatus(err), apierr.BodyFrom(err))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) Mine(c *gin.Context) {
	uid := auth.CurrentUserID(c)
	resp, err := h.svc.Status(c.Request.Context(), uid, uid, auth.IsAdmin(c))
	if err != nil {
		c.JSON(apierr.ToHTTPStatus(err), apierr.BodyFrom(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) Status(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil || userID <= 0 {
		c.JSON(http.StatusBadRequest, apierr.Body(apierr.CodeInvalidArgument, "invalid user_id"))
		return
	}
	resp, svcErr := h.svc.Status(c.Request.Context(), userID, auth.CurrentUserID(c), auth.IsAdmin(c))
	if svcErr != nil {
		c.JSON(apierr.ToHTTPStatus(svcErr), apierr.BodyFrom(svcErr))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) Verify(c *gin.Context) {
	cardID, err := strconv.ParseInt(c.Param("card_id"), 10, 64)
	if err != nil || cardID <= 0 {
		c.JSON(http.StatusBadRequest, apierr.Body(apierr.CodeInvalidArgument, "invalid card_id"))
		return
	}
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierr.Body(apierr.CodeInvalidArgument, "invalid request body"))
		return
	}
	resp, svcErr := h.svc.Verify(c.Request.Context(), cardID, auth.CurrentUserID(c), req)
	if svcErr != nil {
		c.JSON(apierr.ToHTTPStatus(svcErr), apierr.BodyFrom(svcErr))
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

func (h *Handler) All(c *gin.Context) {
	resp, err := h.svc.All(c.Request.Context())
	if err != nil {
		c.JSON(apierr.ToHTTPStatus(err), apierr.BodyFrom(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}
