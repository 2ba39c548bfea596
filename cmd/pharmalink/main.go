package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/hibiken/asynq"

	"github.com/pharmalink/pharmalink/internal/app"
	"github.com/pharmalink/pharmalink/internal/auth"
	"github.com/pharmalink/pharmalink/internal/catalog"
	"github.com/pharmalink/pharmalink/internal/draft"
	"github.com/pharmalink/pharmalink/internal/observability"
	"github.com/pharmalink/pharmalink/internal/platform/cache"
	"github.com/pharmalink/pharmalink/internal/platform/db"
	"github.com/pharmalink/pharmalink/internal/reporting"
	reportinghttp "github.com/pharmalink/pharmalink/internal/reporting/http"
	"github.com/pharmalink/pharmalink/internal/submission"
	"github.com/pharmalink/pharmalink/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	validate := validator.New()
	cat := catalog.Default()
	deadline := reporting.NewDeadline(cfg.CutoffHour, cfg.CutoffLocation())

	reportingRepo := reporting.NewRepository(dbpool)
	reportingCache := reporting.NewCache(redisClient, cfg.CacheTTL)
	reportingService := reporting.NewService(reportingRepo, reportingCache, cat, deadline, logger)
	if err := reportingCache.ListenForInvalidation(ctx, ""); err != nil {
		logger.Warn("cache invalidation listener", slog.Any("error", err))
	}

	authService, err := auth.NewService(redisClient, cfg.SitePassword, cfg.SessionTTL)
	if err != nil {
		logger.Error("init auth", slog.Any("error", err))
		os.Exit(1)
	}
	authHandler := auth.NewHandler(authService, validate, logger)

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	submissionService := submission.NewService(reportingRepo, reportingCache, cat, jobClient, validate, logger)
	submissionHandler := submission.NewHandler(submissionService, logger)

	var drafts reportinghttp.DraftService
	if cfg.AIAPIKey != "" {
		generator := draft.NewClient(cfg.AIBaseURL, cfg.AIAPIKey, cfg.AIModel)
		drafts = draft.NewService(generator, logger)
	} else {
		logger.Warn("AI key not configured, email drafts will use fallback text")
		drafts = draft.NewService(nil, logger)
	}
	dashboardHandler := reportinghttp.NewHandler(logger, reportingService, drafts, cat)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		AuthService:       authService,
		AuthHandler:       authHandler,
		DashboardHandler:  dashboardHandler,
		SubmissionHandler: submissionHandler,
		JobHandler:        jobHandler,
		Metrics:           metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
