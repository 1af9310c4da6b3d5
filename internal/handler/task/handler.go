package task

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/naijasafe/emergency-api/internal/handler"
	"github.com/naijasafe/emergency-api/internal/middleware"
	"github.com/naijasafe/emergency-api/internal/model"
	"github.com/naijasafe/emergency-api/internal/service/task"
	apperrors "github.com/naijasafe/emergency-api/pkg/errors"
)

type Handler struct {
	service task.Service
}

func NewHandler(service task.Service) *Handler {
	return &Handler{service: service}
}

// RegisterStaffRoutes wires the management surface under /staff/tasks.
func (h *Handler) RegisterStaffRoutes(r *gin.RouterGroup) {
	tasks := r.Group("/tasks")
	{
		tasks.POST("", h.Create)
		tasks.GET("", h.List)
		tasks.GET("/:id", h.Get)
		tasks.PUT("/:id", h.Update)
		tasks.PUT("/:id/toggle", h.Toggle)
		tasks.DELETE("/:id", h.Delete)
	}
}

// RegisterVolunteerRoutes wires the read/worker surface open to
// volunteers and staff alike.
func (h *Handler) RegisterVolunteerRoutes(r *gin.RouterGroup) {
	r.GET("/tasks", h.ListActive)
}

// RegisterProtectedRoutes wires status updates, open to any
// authenticated identity.
func (h *Handler) RegisterProtectedRoutes(r *gin.RouterGroup) {
	r.PUT("/tasks/:id/status", h.UpdateStatus)
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	created, err := h.service.Create(c.Request.Context(), &req, middleware.CallerID(c))
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(created))
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	t, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(t))
}

func (h *Handler) List(c *gin.Context) {
	// Active-only by default; pass active=false to include
	// deactivated tasks.
	filter := &model.TaskFilter{
		Urgency:    model.TaskUrgency(c.Query("urgency")),
		ActiveOnly: c.Query("active") != "false",
	}

	tasks, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(tasks))
}

func (h *Handler) ListActive(c *gin.Context) {
	tasks, err := h.service.ListActive(c.Request.Context())
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(tasks))
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	var req model.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	updated, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(updated))
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	var req model.UpdateTaskStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	updated, err := h.service.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(updated))
}

func (h *Handler) Toggle(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	// Body is optional: absent means flip, {"active": bool} pins.
	var req model.ToggleTaskRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
			return
		}
	}

	updated, err := h.service.Toggle(c.Request.Context(), id, req.Active)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(updated))
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"message": "task deleted"}))
}

func taskID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		handler.RespondError(c, apperrors.Validation("invalid task ID", err))
		return 0, false
	}
	return id, true
}
