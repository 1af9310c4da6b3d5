package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/naijasafe/emergency-api/internal/handler"
	"github.com/naijasafe/emergency-api/internal/middleware"
	"github.com/naijasafe/emergency-api/internal/model"
	"github.com/naijasafe/emergency-api/internal/service/auth"
	"github.com/naijasafe/emergency-api/internal/session"
)

type Handler struct {
	service  auth.Service
	sessions *session.Store
}

func NewHandler(service auth.Service, sessions *session.Store) *Handler {
	return &Handler{service: service, sessions: sessions}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
		authGroup.POST("/refresh", h.Refresh)
	}
}

// RegisterProtectedRoutes wires the routes that need an authenticated caller.
func (h *Handler) RegisterProtectedRoutes(r *gin.RouterGroup) {
	r.POST("/auth/logout", h.Logout)
}

func (h *Handler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	user, tokens, err := h.service.Register(c.Request.Context(), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	// New accounts are prompted to complete a medical profile until the
	// session record expires or the profile is saved.
	h.sessions.Put(session.Record{UserID: user.ID, NewUser: true})

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(gin.H{
		"user":   user,
		"tokens": tokens,
	}))
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	tokens, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(tokens))
}

func (h *Handler) Refresh(c *gin.Context) {
	var req model.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	tokens, err := h.service.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(tokens))
}

func (h *Handler) Logout(c *gin.Context) {
	h.sessions.Delete(middleware.CallerID(c))
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"message": "signed out"}))
}
