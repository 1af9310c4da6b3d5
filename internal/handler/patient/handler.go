package patient

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/naijasafe/emergency-api/internal/handler"
	"github.com/naijasafe/emergency-api/internal/middleware"
	"github.com/naijasafe/emergency-api/internal/model"
	"github.com/naijasafe/emergency-api/internal/repository"
	"github.com/naijasafe/emergency-api/internal/service/patient"
	"github.com/naijasafe/emergency-api/internal/session"
	apperrors "github.com/naijasafe/emergency-api/pkg/errors"
)

type Handler struct {
	service  patient.Service
	users    repository.UserRepository
	sessions *session.Store
}

func NewHandler(service patient.Service, users repository.UserRepository, sessions *session.Store) *Handler {
	return &Handler{service: service, users: users, sessions: sessions}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/medical-id", h.GetProfile)
	r.PUT("/medical-id", h.SaveProfile)
}

// GetProfile returns the caller's medical record, flagging freshly
// registered users so the client can prompt for first-time setup.
func (h *Handler) GetProfile(c *gin.Context) {
	userID := middleware.CallerID(c)

	p, err := h.service.GetProfile(c.Request.Context(), userID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(&model.MedicalProfileResponse{
		Patient: p,
		IsNew:   h.sessions.IsNewUser(userID),
	}))
}

func (h *Handler) SaveProfile(c *gin.Context) {
	var req model.MedicalProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	userID := middleware.CallerID(c)
	user, err := h.users.Get(c.Request.Context(), userID)
	if err != nil {
		handler.RespondError(c, apperrors.Internal(fmt.Errorf("failed to load account: %w", err)))
		return
	}

	p, created, err := h.service.SaveProfile(c.Request.Context(), userID, user.FullName, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	// The first completed profile ends the new-user onboarding state.
	h.sessions.ClearNewUser(userID)

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, handler.NewSuccessResponse(p))
}
