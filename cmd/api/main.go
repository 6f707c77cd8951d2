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

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"

	"outdial-platform/internal/audit"
	"outdial-platform/internal/auth"
	"outdial-platform/internal/calls"
	"outdial-platform/internal/campaigns"
	"outdial-platform/internal/config"
	"outdial-platform/internal/health"
	"outdial-platform/internal/httpapi"
	"outdial-platform/internal/ratelimit"
	"outdial-platform/internal/reporting"
	"outdial-platform/internal/speech"
	"outdial-platform/internal/statestore"
	"outdial-platform/internal/telephony"
	"outdial-platform/internal/voice"
	"outdial-platform/pkg/logger"
	"outdial-platform/pkg/utils"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	authManager, err := auth.NewManager(cfg.Auth)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// Redis is opened without a liveness check: the failover store routes to
	// its local fallback while the remote is unreachable, including at boot.
	rdb, err := utils.NewRedisClient(utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		log.Error("redis init failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	store := statestore.NewFailover(statestore.NewRedis(rdb), statestore.NewLocal(), log)

	limiter := ratelimit.NewLimiter(store, ratelimit.Config{
		Enabled:          cfg.RateLimit.Enabled,
		Window:           cfg.RateLimit.Window,
		StrictPerWindow:  cfg.RateLimit.StrictPerWindow,
		LenientPerWindow: cfg.RateLimit.LenientPerWindow,
	}, log)

	dialer := telephony.NewTwilioDialer(cfg.Twilio)
	callRepo := calls.NewPostgresRepo(db)

	var analyzer calls.Analyzer
	if cfg.Calls.SummaryServiceURL != "" {
		analyzer = speech.NewHTTPSummarizer(cfg.Calls.SummaryServiceURL, cfg.Calls.SummaryServiceKey)
	}

	engine := calls.NewEngine(calls.EngineConfig{
		FromNumber:        cfg.Twilio.FromNumber,
		StatusCallbackURL: cfg.Twilio.CallbackBaseURL + "/webhooks/voice/status",
		MaxCallDuration:   cfg.Calls.MaxDuration,
	}, calls.EngineDeps{
		Registry:    calls.NewRegistry(),
		Dialer:      dialer,
		Voices:      voice.NewPicker(),
		Assignments: voice.NewAssignments(store, cfg.Calls.VoiceTTL),
		Limiter:     limiter,
		Repo:        callRepo,
		Analyzer:    analyzer,
		Log:         log,
	})

	auditSvc := audit.NewService(audit.NewPostgresRepo(db))

	campaignSvc := campaigns.NewService(
		campaigns.NewPostgresRepo(db),
		engine,
		campaigns.NewPostgresLeadSource(db),
		campaigns.NewPostgresScriptSource(db),
		auditSvc,
		log,
	)
	defer campaignSvc.Close()

	if err := campaignSvc.ResumeInterrupted(rootCtx); err != nil {
		log.Error("resuming interrupted campaigns failed", "err", err)
	}

	reporter := health.NewReporter(2 * time.Second)
	reporter.Register("postgres", db.PingContext)
	reporter.Register("redis", func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
	reporter.Register("telephony", dialer.HealthCheck)

	handlers := httpapi.Handlers{
		Auth:      authManager,
		Engine:    engine,
		CallRepo:  callRepo,
		Campaigns: campaignSvc,
		Reporting: reporting.NewService(reporting.NewPostgresRepo(db)),
		Health:    reporter,
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	registerRoutes(r, handlers, auth.RequireAccessToken(authManager), limiter)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}

	_ = logger.ShutdownFlush(shutdownCtx, 2*time.Second)
}
