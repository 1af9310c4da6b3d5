package volunteer

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/naijasafe/emergency-api/internal/handler"
	"github.com/naijasafe/emergency-api/internal/middleware"
	"github.com/naijasafe/emergency-api/internal/model"
	"github.com/naijasafe/emergency-api/internal/service/volunteer"
)

type Handler struct {
	service volunteer.Service
}

func NewHandler(service volunteer.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.PUT("/volunteer", h.Signup)
	r.GET("/volunteer", h.GetProfile)
}

// Signup is an idempotent upsert: re-submitting replaces the existing
// profile rather than erroring.
func (h *Handler) Signup(c *gin.Context) {
	var req model.VolunteerSignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	v, err := h.service.Signup(c.Request.Context(), middleware.CallerID(c), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(v))
}

func (h *Handler) GetProfile(c *gin.Context) {
	v, err := h.service.GetProfile(c.Request.Context(), middleware.CallerID(c))
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(v))
}
