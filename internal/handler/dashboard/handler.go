package dashboard

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/naijasafe/emergency-api/internal/handler"
	"github.com/naijasafe/emergency-api/internal/model"
	"github.com/naijasafe/emergency-api/internal/service/dashboard"
)

type Handler struct {
	service dashboard.Service
}

func NewHandler(service dashboard.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/dashboard", h.Dashboard)
}

// Dashboard serves the staff console. The tab query parameter selects
// the view; unknown values fall back to the overview.
func (h *Handler) Dashboard(c *gin.Context) {
	var (
		resp *model.DashboardResponse
		err  error
	)

	switch c.Query("tab") {
	case "alerts":
		resp, err = h.service.AlertsTab(c.Request.Context(),
			model.AlertStatus(c.Query("sos_status")), c.Query("search_mrn"))
	case "tasks":
		resp, err = h.service.TasksTab(c.Request.Context(),
			model.TaskUrgency(c.Query("task_urgency")))
	default:
		resp, err = h.service.Overview(c.Request.Context())
	}
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(resp))
}
