package alert

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/naijasafe/emergency-api/internal/handler"
	"github.com/naijasafe/emergency-api/internal/middleware"
	"github.com/naijasafe/emergency-api/internal/model"
	"github.com/naijasafe/emergency-api/internal/service/alert"
	apperrors "github.com/naijasafe/emergency-api/pkg/errors"
)

type Handler struct {
	service      alert.Service
	monitorLimit int
}

func NewHandler(service alert.Service, monitorLimit int) *Handler {
	if monitorLimit <= 0 {
		monitorLimit = 200
	}
	return &Handler{service: service, monitorLimit: monitorLimit}
}

// RegisterPublicRoutes wires the ingest endpoint. It runs behind
// OptionalAuthenticate so anonymous callers pass through.
func (h *Handler) RegisterPublicRoutes(r *gin.RouterGroup) {
	r.POST("/sos-alert", h.Ingest)
}

func (h *Handler) RegisterProtectedRoutes(r *gin.RouterGroup) {
	r.POST("/sos/notify", h.Notify)
}

func (h *Handler) RegisterStaffRoutes(r *gin.RouterGroup) {
	sos := r.Group("/sos")
	{
		sos.GET("/alerts", h.List)
		sos.GET("/monitor", h.Monitor)
		sos.PUT("/alerts/:id/status", h.UpdateStatus)
	}
}

func (h *Handler) Ingest(c *gin.Context) {
	var req model.IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	created, err := h.service.Ingest(c.Request.Context(), &req, middleware.CallerID(c))
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Alert received",
		"id":      created.ID,
	})
}

func (h *Handler) Notify(c *gin.Context) {
	var req model.NotifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	recipient, err := h.service.Notify(c.Request.Context(), &req, middleware.CallerID(c))
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "emergency email sent to " + recipient})
}

func (h *Handler) List(c *gin.Context) {
	filter := &model.AlertFilter{
		Status:    model.AlertStatus(c.Query("status")),
		SearchMRN: c.Query("search_mrn"),
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid limit"))
			return
		}
		filter.Limit = limit
	}

	alerts, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(alerts))
}

func (h *Handler) Monitor(c *gin.Context) {
	alerts, err := h.service.List(c.Request.Context(), &model.AlertFilter{Limit: h.monitorLimit})
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(alerts))
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		handler.RespondError(c, apperrors.Validation("invalid alert ID", err))
		return
	}

	var req model.UpdateAlertStatusRequest
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
