package rentals

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"mirin-backend/internal/platform/apierr"
	"mirin-backend/internal/platform/auth"
)

type Handler struct{ svc *Service }

// RegisterRoutes mounts user-facing rental endpoints on the authenticated
// group and lifecycle overrides on the admin group.
func RegisterRoutes(authed, admin gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	authed.POST("/rentals", h.Create)
	authed.GET("/rentals", h.MyRentals)
	authed.GET("/rentals/active", h.ActiveRental)
	authed.GET("/rentals/:id", h.Get)
	authed.POST("/rentals/:id/complete", h.Complete)

	admin.GET("/rentals", h.All)
	admin.POST("/rentals/:id/approve", h.Approve)
	admin.POST("/rentals/:id/cancel", h.Cancel)
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, apierr.Body(apierr.CodeInvalidArgument, "id must be a number"))
		return 0, false
	}
	return id, true
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateRentalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierr.Body(apierr.CodeInvalidArgument, "invalid json or missing required fields"))
		return
	}

	res, err := h.svc.Create(c.Request.Context(), auth.CurrentUserID(c), auth.CurrentUsername(c), req)
	if err != nil {
		c.JSON(apierr.ToHTTPStatus(err), apierr.BodyFrom(err))
		return
	}
	c.Header("Location", "/rentals/"+strconv.FormatInt(res.Rental.ID, 10))
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) MyRentals(c *gin.Context) {
	res, err := h.svc.MyRentals(c.Request.Context(), auth.CurrentUserID(c))
	if err != nil {
		c.JSON(apierr.ToHTTPStatus(err), apierr.BodyFrom(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) ActiveRental(c *gin.Context) {
	res, err := h.svc.ActiveRental(c.Request.Context(), auth.CurrentUserID(c))
	if err != nil {
		c.JSON(apierr.ToHTTPStatus(err), apierr.BodyFrom(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	res, err := h.svc.Get(c.Request.Context(), auth.CurrentUserID(c), auth.IsAdmin(c), id)
	if err != nil {
		c.JSON(apierr.ToHTTPStatus(err), apierr.BodyFrom(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Complete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.Complete(c.Request.Context(), auth.CurrentUserID(c), auth.IsAdmin(c), id); err != nil {
		c.JSON(apierr.ToHTTPStatus(err), apierr.BodyFrom(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) All(c *gin.Context) {
	res, err := h.svc.All(c.Request.Context())
	if err != nil {
		c.JSON(apierr.ToHTTPStatus(err), apierr.BodyFrom(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Approve(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.Approve(c.Request.Context(), id); err != nil {
		c.JSON(apierr.ToHTTPStatus(err), apierr.BodyFrom(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) Cancel(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.Cancel(c.Request.Context(), id); err != nil {
		c.JSON(apierr.ToHTTPStatus(err), apierr.BodyFrom(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
