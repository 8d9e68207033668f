package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/folio-review/folio-backend/config"
	httpapi "github.com/folio-review/folio-backend/internal/api/http"
	apimw "github.com/folio-review/folio-backend/internal/api/http/middleware"
	"github.com/folio-review/folio-backend/internal/auth"
	authmw "github.com/folio-review/folio-backend/internal/auth/middleware"
	"github.com/folio-review/folio-backend/internal/bootstrap"
	"github.com/folio-review/folio-backend/internal/metrics"
	"github.com/folio-review/folio-backend/internal/pkg/logger"
	cronjob "github.com/folio-review/folio-backend/internal/portfolios/cron"
	portfolioshttp "github.com/folio-review/folio-backend/internal/portfolios/http"
	"github.com/folio-review/folio-backend/internal/portfolios/lock"
	"github.com/folio-review/folio-backend/internal/portfolios/repository"
	"github.com/folio-review/folio-backend/internal/portfolios/service"
	"github.com/folio-review/folio-backend/internal/storage/postgres"
	"github.com/folio-review/folio-backend/internal/users"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	lg, err := logger.New(cfg.App.Environment, cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer lg.Sync()

	bootstrap.SetGinMode(cfg.App.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dsn := postgres.DSN(&cfg.Database)
	pool, err := bootstrap.OpenDB(ctx, bootstrap.DBOptions{
		DSN:      dsn,
		MaxConns: int32(cfg.Database.MaxConns),
		MinConns: int32(cfg.Database.MinConns),
	})
	if err != nil {
		lg.Fatal("failed to open pgx pool", "error", err)
	}
	defer pool.Close()

	sqlDB, err := postgres.NewConnection(ctx, &cfg.Database)
	if err != nil {
		lg.Fatal("failed to open database", "error", err)
	}
	defer sqlDB.Close()

	var batchLock service.BatchLock
	var redisCheck httpapi.Pinger
	rdb, err := bootstrap.OpenRedis(ctx, cfg.Redis)
	if err != nil {
		if cfg.IsProduction() {
			lg.Fatal("failed to connect to redis", "error", err)
		}
		lg.Warn("redis unavailable, publish batches are not locked across instances", "error", err)
	} else {
		defer rdb.Close()
		batchLock = lock.NewRedisLock(rdb, lock.DefaultBatchLockKey, cfg.Schedule.LockTTLFor(cfg.Schedule.RunTimeout))
		redisCheck = bootstrap.RedisPinger{Client: rdb}
	}

	var verifier authmw.TokenVerifier
	if cfg.Firebase.CredentialsPath != "" {
		client, err := auth.InitializeFirebase(ctx, &cfg.Firebase)
		if err != nil {
			lg.Fatal("failed to initialize firebase", "error", err)
		}
		verifier = client
	} else {
		lg.Warn("FIREBASE_CREDENTIALS_PATH not set, trusting X-User-Id header")
	}

	loc, _ := cfg.Schedule.Location()
	m := metrics.New()
	opts := service.Options{
		Location:    loc,
		Concurrency: cfg.Schedule.Concurrency,
		Logger:      lg,
		Metrics:     m,
	}

	portfolioRepo := repository.NewPortfolioRepository(sqlDB)
	settingsRepo := repository.NewSettingsRepository(sqlDB)
	feedbackRepo := repository.NewFeedbackRepository(sqlDB)

	lifecycle := service.NewLifecycleService(portfolioRepo, settingsRepo, feedbackRepo, opts)
	publisher := service.NewPublishService(lifecycle, portfolioRepo, settingsRepo, batchLock, opts)

	router := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName:    cfg.App.ServiceName,
		Version:        cfg.App.Version,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Logger:         lg,
		Metrics:        m,
		HealthChecks:   map[string]httpapi.Pinger{"db": pool, "redis": redisCheck},
		Verifier:       verifier,
		Users:          users.NewRepo(pool),
		RateLimiter:    apimw.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
		Portfolios:     portfolioshttp.New(lifecycle, publisher, lg),
	})

	var scheduler *cronjob.Scheduler
	if cfg.Schedule.Enabled {
		scheduler = cronjob.NewScheduler(publisher, cronjob.DefaultSpec, loc, cfg.Schedule.RunTimeout, lg)
		if err := scheduler.Start(); err != nil {
			lg.Fatal("failed to start publish scheduler", "error", err)
		}
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		lg.Info("listening", "addr", srv.Addr, "env", cfg.App.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	lg.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Error("server shutdown", "error", err)
	}
	if scheduler != nil {
		scheduler.Stop(shutdownCtx)
	}
}
