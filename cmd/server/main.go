package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/edudash/edudash-backend/internal/config"
	"github.com/edudash/edudash-backend/internal/database"
	"github.com/edudash/edudash-backend/internal/edge"
	"github.com/edudash/edudash-backend/internal/email"
	"github.com/edudash/edudash-backend/internal/handler"
	"github.com/edudash/edudash-backend/internal/logger"
	"github.com/edudash/edudash-backend/internal/repository"
	"github.com/edudash/edudash-backend/internal/router"
	"github.com/edudash/edudash-backend/internal/service"
	"github.com/edudash/edudash-backend/internal/validator"
	"github.com/edudash/edudash-backend/internal/worker"
	"github.com/rs/zerolog"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting EduDash Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Outbound Clients ──────────────────────────────────────────────
	edgeClient := edge.New(cfg.EdgeBaseURL, cfg.EdgeTimeout, log)

	var mailer email.Mailer
	if cfg.SendGridKey != "" {
		mailer = email.NewSendGridMailer(cfg.SendGridKey, cfg.EmailAppName, cfg.EmailFrom, log)
	} else {
		log.Warn().Msg("No SendGrid key configured, emails disabled")
		mailer = email.NopMailer{}
	}

	// ─── Initialize Repositories ───────────────────────────────────────
	profileRepo := repository.NewProfileRepository(pool)
	threadRepo := repository.NewThreadRepository(pool)
	regRepo := repository.NewRegistrationRepository(pool)
	campaignRepo := repository.NewCampaignRepository(pool)
	quotaRepo := repository.NewQuotaRepository(pool)
	notifRepo := repository.NewNotificationRepository(pool)
	studentRepo := repository.NewStudentRepository(pool)
	dashboardRepo := repository.NewDashboardRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, rdb)
	notifService := service.NewNotificationService(notifRepo, profileRepo, rdb, log)
	threadService := service.NewThreadService(threadRepo, profileRepo, studentRepo, notifService, rdb, log)
	regService := service.NewRegistrationService(regRepo, studentRepo, profileRepo, notifService, edgeClient, log)
	campaignService := service.NewCampaignService(campaignRepo, rdb, log)
	quotaService := service.NewQuotaService(quotaRepo, profileRepo, rdb, log)
	mediaService := service.NewMediaService(cfg)
	dashboardService := service.NewDashboardService(regRepo, campaignRepo, threadRepo, dashboardRepo, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:         handler.NewAuthHandler(authService, profileRepo),
		Thread:       handler.NewThreadHandler(threadService),
		Registration: handler.NewRegistrationHandler(regService, mediaService),
		Campaign:     handler.NewCampaignHandler(campaignService),
		Quota:        handler.NewQuotaHandler(quotaService),
		Notification: handler.NewNotificationHandler(notifService),
		Media:        handler.NewMediaHandler(mediaService),
		Dashboard:    handler.NewDashboardHandler(dashboardService, notifService, quotaService),
		WS:           handler.NewWSHandler(rdb, threadService, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	notificationWorker := worker.NewNotificationWorker(mailer, rdb, log)
	usageWorker := worker.NewUsageWorker(pool, rdb, quotaRepo, log)
	redemptionWorker := worker.NewRedemptionWorker(pool, rdb, campaignRepo, log)

	go notificationWorker.Start(workerCtx)
	go usageWorker.Start(workerCtx)
	go redemptionWorker.Start(workerCtx)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop background workers and wait for queues to drain.
	workerCancel()
	time.Sleep(2 * time.Second) // Allow workers to drain.

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
