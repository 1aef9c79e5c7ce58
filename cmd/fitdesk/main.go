package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/fitdesk/fitdesk/internal/app"
	"github.com/fitdesk/fitdesk/internal/authz"
	"github.com/fitdesk/fitdesk/internal/billing"
	"github.com/fitdesk/fitdesk/internal/checkins"
	"github.com/fitdesk/fitdesk/internal/health"
	"github.com/fitdesk/fitdesk/internal/members"
	"github.com/fitdesk/fitdesk/internal/observability"
	"github.com/fitdesk/fitdesk/internal/platform/cache"
	"github.com/fitdesk/fitdesk/internal/platform/db"
	"github.com/fitdesk/fitdesk/internal/settings"
	"github.com/fitdesk/fitdesk/internal/shared"
	"github.com/fitdesk/fitdesk/jobs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

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

	sessionManager := shared.NewSessionManager(redisClient, "fitdesk_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())

	engine := authz.NewEngine(authz.DefaultTable())
	metrics := observability.NewMetrics()
	gate := authz.Gate{Table: engine.Table(), Logger: logger, Recorder: metrics}

	jobsClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	settingsRepo := settings.NewRepository(pool)
	settingsService := settings.NewService(settingsRepo, engine)
	settingsHandler := settings.NewHandler(logger, settingsService, gate)

	auditLogger := shared.NewAuditLogger(pool)

	membersRepo := members.NewRepository(pool)
	membersService := members.NewService(membersRepo, engine, auditLogger)
	membersHandler := members.NewHandler(logger, membersService, gate)

	checkinsRepo := checkins.NewRepository(pool)
	checkinsService := checkins.NewService(checkinsRepo, engine)
	checkinsHandler := checkins.NewHandler(logger, checkinsService, settingsRepo, gate)

	billingRepo := billing.NewRepository(pool)
	billingService := billing.NewService(billingRepo, engine)
	billingHandler := billing.NewHandler(logger, billingService, jobsClient, gate)

	healthRepo := health.NewRepository(pool)
	healthService := health.NewService(healthRepo, engine)
	healthHandler := health.NewHandler(logger, healthService, gate)

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		SessionManager:  sessionManager,
		MembersHandler:  membersHandler,
		CheckInsHandler: checkinsHandler,
		BillingHandler:  billingHandler,
		HealthHandler:   healthHandler,
		SettingsHandler: settingsHandler,
		JobHandler:      jobHandler,
		Metrics:         metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server exit", slog.Any("error", err))
		os.Exit(1)
	}
}
