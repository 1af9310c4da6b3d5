package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/naijasafe/emergency-api/internal/config"
	"github.com/naijasafe/emergency-api/internal/email"
	"github.com/naijasafe/emergency-api/internal/handler"
	alertHandler "github.com/naijasafe/emergency-api/internal/handler/alert"
	authHandler "github.com/naijasafe/emergency-api/internal/handler/auth"
	dashboardHandler "github.com/naijasafe/emergency-api/internal/handler/dashboard"
	patientHandler "github.com/naijasafe/emergency-api/internal/handler/patient"
	taskHandler "github.com/naijasafe/emergency-api/internal/handler/task"
	volunteerHandler "github.com/naijasafe/emergency-api/internal/handler/volunteer"
	"github.com/naijasafe/emergency-api/internal/middleware"
	"github.com/naijasafe/emergency-api/internal/repository/postgres"
	"github.com/naijasafe/emergency-api/internal/router"
	alertService "github.com/naijasafe/emergency-api/internal/service/alert"
	authService "github.com/naijasafe/emergency-api/internal/service/auth"
	dashboardService "github.com/naijasafe/emergency-api/internal/service/dashboard"
	patientService "github.com/naijasafe/emergency-api/internal/service/patient"
	taskService "github.com/naijasafe/emergency-api/internal/service/task"
	volunteerService "github.com/naijasafe/emergency-api/internal/service/volunteer"
	"github.com/naijasafe/emergency-api/internal/session"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Initialize database
	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Initialize repositories
	userRepo := postgres.NewUserRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	alertRepo := postgres.NewAlertRepository(db)
	taskRepo := postgres.NewTaskRepository(db)
	volunteerRepo := postgres.NewVolunteerRepository(db)
	eventRepo := postgres.NewEventRepository(db)

	// Outgoing mail: log-only mode keeps local runs off SMTP
	var emailSvc email.Service
	if cfg.SMTP.LogOnly {
		emailSvc = email.NewLogService(log.Logger)
	} else {
		emailSvc = email.NewSMTPService(cfg.SMTP)
	}

	// Initialize services
	authSvc := authService.NewService(userRepo, cfg.JWT)
	patientSvc := patientService.NewService(patientRepo)
	alertSvc := alertService.NewService(alertRepo, patientRepo, eventRepo, emailSvc, cfg.Alerts.FallbackEmail, log.Logger)
	taskSvc := taskService.NewService(taskRepo)
	volunteerSvc := volunteerService.NewService(volunteerRepo)
	dashboardSvc := dashboardService.NewService(alertRepo, taskRepo, volunteerRepo)

	sessions := session.NewStore(cfg.Session.TTL())

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(authSvc, volunteerSvc)

	// Initialize handlers
	h := handler.NewHandler(db)
	authH := authHandler.NewHandler(authSvc, sessions)
	alertH := alertHandler.NewHandler(alertSvc, cfg.Alerts.MonitorLimit)
	taskH := taskHandler.NewHandler(taskSvc)
	patientH := patientHandler.NewHandler(patientSvc, userRepo, sessions)
	volunteerH := volunteerHandler.NewHandler(volunteerSvc)
	dashboardH := dashboardHandler.NewHandler(dashboardSvc)

	// Setup router
	r := router.NewRouter(
		authMiddleware,
		authH,
		alertH,
		taskH,
		patientH,
		volunteerH,
		dashboardH,
		h,
		router.RouterConfig{
			RateLimit:     rate.Limit(100),
			RateBurst:     200,
			CORSConfig:    middleware.DefaultCORSConfig(),
			MetricsPrefix: "emergency_api",
		},
	)
	r.Setup()

	// Create server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	// Start server
	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
