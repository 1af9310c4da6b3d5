package router

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/time/rate"

	"github.com/naijasafe/emergency-api/internal/handler"
	alerthandler "github.com/naijasafe/emergency-api/internal/handler/alert"
	authhandler "github.com/naijasafe/emergency-api/internal/handler/auth"
	dashboardhandler "github.com/naijasafe/emergency-api/internal/handler/dashboard"
	patienthandler "github.com/naijasafe/emergency-api/internal/handler/patient"
	taskhandler "github.com/naijasafe/emergency-api/internal/handler/task"
	volunteerhandler "github.com/naijasafe/emergency-api/internal/handler/volunteer"
	"github.com/naijasafe/emergency-api/internal/middleware"
	"github.com/naijasafe/emergency-api/internal/model"
)

type Router struct {
	engine     *gin.Engine
	auth       *middleware.AuthMiddleware
	authH      *authhandler.Handler
	alertH     *alerthandler.Handler
	taskH      *taskhandler.Handler
	patientH   *patienthandler.Handler
	volunteerH *volunteerhandler.Handler
	dashboardH *dashboardhandler.Handler
	h          *handler.Handler
	metrics    *routerMetrics
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	errorTotal      *prometheus.CounterVec
}

type RouterConfig struct {
	RateLimit     rate.Limit
	RateBurst     int
	CORSConfig    middleware.CORSConfig
	MetricsPrefix string
}

func NewRouter(
	auth *middleware.AuthMiddleware,
	authH *authhandler.Handler,
	alertH *alerthandler.Handler,
	taskH *taskhandler.Handler,
	patientH *patienthandler.Handler,
	volunteerH *volunteerhandler.Handler,
	dashboardH *dashboardhandler.Handler,
	h *handler.Handler,
	config RouterConfig,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	registerValidations()

	engine := gin.New()
	metrics := initRouterMetrics(config.MetricsPrefix)

	r := &Router{
		engine:     engine,
		auth:       auth,
		authH:      authH,
		alertH:     alertH,
		taskH:      taskH,
		patientH:   patientH,
		volunteerH: volunteerH,
		dashboardH: dashboardH,
		h:          h,
		metrics:    metrics,
	}

	engine.Use(
		gin.Recovery(),
		middleware.Logger(),
		middleware.ErrorHandler(),
		r.metricsMiddleware(),
		middleware.Timeout(middleware.TimeoutConfig{Duration: 30 * time.Second}),
		middleware.RequestID(),
	)

	engine.Use(middleware.CORS(config.CORSConfig))

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		RPS:   float64(config.RateLimit),
		Burst: config.RateBurst,
	})
	engine.Use(rateLimiter.RateLimit())

	return r
}

func (r *Router) Setup() {
	api := r.engine.Group("/api/v1")

	api.Use(func(c *gin.Context) {
		c.Header("X-API-Version", "1.0")
		c.Next()
	})

	r.setupHealthCheck(api)
	r.setupPublicRoutes(api)

	protected := api.Group("")
	protected.Use(r.auth.Authenticate())
	r.setupProtectedRoutes(protected)

	staff := protected.Group("")
	staff.Use(r.auth.RequireStaff())
	r.setupStaffRoutes(staff)
}

func (r *Router) setupHealthCheck(rg *gin.RouterGroup) {
	health := rg.Group("/health")
	{
		health.GET("/live", r.h.LivenessCheck)
		health.GET("/ready", r.h.ReadinessCheck)
		health.GET("/metrics", r.h.MetricsHandler)
	}
}

func (r *Router) setupPublicRoutes(rg *gin.RouterGroup) {
	r.authH.RegisterRoutes(rg)

	// Ingest is open to anonymous callers; a valid token only adds
	// patient linkage.
	ingest := rg.Group("")
	ingest.Use(r.auth.OptionalAuthenticate())
	r.alertH.RegisterPublicRoutes(ingest)
}

func (r *Router) setupProtectedRoutes(rg *gin.RouterGroup) {
	r.authH.RegisterProtectedRoutes(rg)
	r.alertH.RegisterProtectedRoutes(rg)
	r.patientH.RegisterRoutes(rg)
	r.volunteerH.RegisterRoutes(rg)
	r.taskH.RegisterProtectedRoutes(rg)

	volunteers := rg.Group("")
	volunteers.Use(r.auth.RequireVolunteerOrStaff())
	r.taskH.RegisterVolunteerRoutes(volunteers)
}

func (r *Router) setupStaffRoutes(rg *gin.RouterGroup) {
	r.alertH.RegisterStaffRoutes(rg)

	staff := rg.Group("/staff")
	r.taskH.RegisterStaffRoutes(staff)
	r.dashboardH.RegisterRoutes(staff)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// registerValidations hooks the domain enum checks into gin's binding
// validator so request structs can use them as tags.
func registerValidations() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterValidation("bloodtype", func(fl validator.FieldLevel) bool {
		return model.ValidBloodType(fl.Field().String())
	})
	v.RegisterValidation("urgency", func(fl validator.FieldLevel) bool {
		return model.ValidTaskUrgency(model.TaskUrgency(fl.Field().String()))
	})
	v.RegisterValidation("availability", func(fl validator.FieldLevel) bool {
		return model.ValidAvailability(fl.Field().String())
	})
}

func initRouterMetrics(prefix string) *routerMetrics {
	return &routerMetrics{
		requestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: prefix + "_request_duration_seconds",
				Help: "Duration of HTTP requests in seconds",
			},
			[]string{"method", "path", "status"},
		),
		requestTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		errorTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_errors_total",
				Help: "Total number of HTTP errors",
			},
			[]string{"method", "path", "type"},
		),
	}
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()

		c.Next()

		status := fmt.Sprintf("%d", c.Writer.Status())
		duration := time.Since(start).Seconds()

		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(duration)
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()

		if c.Writer.Status() >= 400 {
			r.metrics.errorTotal.WithLabelValues(c.Request.Method, path, "http").Inc()
		}
	}
}

func (r *Router) Use(middleware ...gin.HandlerFunc) {
	r.engine.Use(middleware...)
}
