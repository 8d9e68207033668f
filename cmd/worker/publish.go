package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/folio-review/folio-backend/config"
	"github.com/folio-review/folio-backend/internal/bootstrap"
	"github.com/folio-review/folio-backend/internal/pkg/logger"
	"github.com/folio-review/folio-backend/internal/portfolios/domain"
	"github.com/folio-review/folio-backend/internal/portfolios/lock"
	"github.com/folio-review/folio-backend/internal/portfolios/repository"
	"github.com/folio-review/folio-backend/internal/portfolios/service"
	"github.com/folio-review/folio-backend/internal/storage/postgres"
)

type batchRunner interface {
	Preview(ctx context.Context) (domain.Schedule, error)
	RunBatch(ctx context.Context, trigger string) (*service.BatchResult, error)
}

// RunPublish publishes the next batch once, or prints the planned schedule
// with -dry-run. It returns the process exit code.
func RunPublish(args []string) int {
	fs := flag.NewFlagSet("publish", flag.ExitOnError)
	dryRun := fs.Bool("dry-run", false, "print the publish schedule without publishing")
	format := fs.String("format", "json", "output format: json or yaml")
	timeout := fs.Duration("timeout", 0, "overall timeout (default PUBLISH_RUN_TIMEOUT)")
	_ = fs.Parse(args)

	enc, err := newEncoder(*format, os.Stdout)
	if err != nil {
		log.Printf("publish: %v", err)
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		log.Printf("config: %v", err)
		return 1
	}
	lg, err := logger.New(cfg.App.Environment, cfg.App.LogLevel)
	if err != nil {
		log.Printf("logger: %v", err)
		return 1
	}
	defer lg.Sync()

	runTimeout := *timeout
	if runTimeout <= 0 {
		runTimeout = cfg.Schedule.RunTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	db, err := postgres.NewConnection(ctx, &cfg.Database)
	if err != nil {
		lg.Error("failed to open database", "error", err)
		return 1
	}
	defer db.Close()

	var batchLock service.BatchLock
	if rdb, err := bootstrap.OpenRedis(ctx, cfg.Redis); err != nil {
		lg.Warn("redis unavailable, running without batch lock", "error", err)
	} else {
		defer rdb.Close()
		batchLock = lock.NewRedisLock(rdb, lock.DefaultBatchLockKey, cfg.Schedule.LockTTLFor(runTimeout))
	}

	loc, _ := cfg.Schedule.Location()
	opts := service.Options{
		Location:    loc,
		Concurrency: cfg.Schedule.Concurrency,
		Logger:      lg,
	}
	portfolios := repository.NewPortfolioRepository(db)
	settings := repository.NewSettingsRepository(db)
	lifecycle := service.NewLifecycleService(portfolios, settings, repository.NewFeedbackRepository(db), opts)
	publisher := service.NewPublishService(lifecycle, portfolios, settings, batchLock, opts)

	if err := runPublish(ctx, publisher, *dryRun, enc); err != nil {
		lg.Error("publish failed", "error", err)
		return 1
	}
	return 0
}

type encoder interface {
	Encode(v interface{}) error
}

func newEncoder(format string, out io.Writer) (encoder, error) {
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc, nil
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		return enc, nil
	}
	return nil, fmt.Errorf("unknown format %q", format)
}

func runPublish(ctx context.Context, runner batchRunner, dryRun bool, enc encoder) error {
	if dryRun {
		plan, err := runner.Preview(ctx)
		if err != nil {
			return err
		}
		return enc.Encode(plan)
	}

	res, err := runner.RunBatch(ctx, service.TriggerWorker)
	if errors.Is(err, domain.ErrBatchInProgress) {
		log.Println("publish batch already running elsewhere, nothing to do")
		return nil
	}
	if err != nil {
		return err
	}
	return enc.Encode(res)
}
