package cronjob

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/folio-review/folio-backend/internal/pkg/logger"
	"github.com/folio-review/folio-backend/internal/portfolios/domain"
	"github.com/folio-review/folio-backend/internal/portfolios/service"
)

// DefaultSpec fires at the weekly publish slot, Sunday 10:00.
const DefaultSpec = "0 10 * * 0"

type BatchRunner interface {
	RunBatch(ctx context.Context, trigger string) (*service.BatchResult, error)
}

type Scheduler struct {
	cron    *cron.Cron
	runner  BatchRunner
	spec    string
	timeout time.Duration
	log     *logger.Logger
}

// DefaultRunTimeout bounds one scheduled batch.
const DefaultRunTimeout = 10 * time.Minute

// NewScheduler builds a scheduler that evaluates spec in loc. Each run is
// cancelled after timeout.
func NewScheduler(runner BatchRunner, spec string, loc *time.Location, timeout time.Duration, log *logger.Logger) *Scheduler {
	if spec == "" {
		spec = DefaultSpec
	}
	if timeout <= 0 {
		timeout = DefaultRunTimeout
	}
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Scheduler{
		cron:    cron.New(cron.WithLocation(loc)),
		runner:  runner,
		spec:    spec,
		timeout: timeout,
		log:     log.With("component", "publish_scheduler"),
	}
}

// Start registers the weekly batch and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.runOnce); err != nil {
		return fmt.Errorf("failed to create cron job: %w", err)
	}

	s.cron.Start()
	s.log.Info("publish scheduler started", "spec", s.spec, "next_run", s.Next())
	return nil
}

// Stop waits for a running batch to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.log.Warn("publish scheduler stop timed out")
	}
}

// Next reports the next scheduled run, zero before Start.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

func (s *Scheduler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	res, err := s.runner.RunBatch(ctx, service.TriggerSchedule)
	if errors.Is(err, domain.ErrBatchInProgress) {
		s.log.Info("publish batch skipped, another instance holds the lock")
		return
	}
	if err != nil {
		s.log.Error("scheduled publish batch failed", "error", err)
		return
	}
	s.log.Info("scheduled publish batch completed",
		"published", res.Published,
		"failed", res.Failed,
		"completed_at", res.FinishedAt.Format(time.RFC1123),
	)
}
