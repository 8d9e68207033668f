package service

import (
	"context"
	"time"

	"github.com/folio-review/folio-backend/internal/portfolios/domain"
	"golang.org/x/sync/errgroup"
)

const (
	TriggerSchedule = "schedule"
	TriggerManual   = "manual"
	TriggerWorker   = "worker"
)

// PublishResult is the outcome of one portfolio within a batch run.
type PublishResult struct {
	PortfolioID string     `json:"portfolio_id" yaml:"portfolio_id"`
	UserID      string     `json:"user_id" yaml:"user_id"`
	Published   bool       `json:"published" yaml:"published"`
	PublishedAt *time.Time `json:"published_at,omitempty" yaml:"published_at,omitempty"`
	Error       string     `json:"error,omitempty" yaml:"error,omitempty"`
}

type BatchResult struct {
	Trigger    string                 `json:"trigger" yaml:"trigger"`
	Strategy   domain.PublishStrategy `json:"publish_strategy" yaml:"publish_strategy"`
	Limit      int                    `json:"weekly_publish_limit" yaml:"weekly_publish_limit"`
	Queued     int                    `json:"queued" yaml:"queued"`
	Published  int                    `json:"published" yaml:"published"`
	Failed     int                    `json:"failed" yaml:"failed"`
	Results    []PublishResult        `json:"results" yaml:"results"`
	StartedAt  time.Time              `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time              `json:"finished_at" yaml:"finished_at"`
}

// PublishService selects and publishes the weekly batch and owns the
// admin publish settings.
type PublishService struct {
	lifecycle  *LifecycleService
	portfolios PortfolioStore
	settings   SettingsStore
	lock       BatchLock
	opts       Options
}

// NewPublishService wires the batch publisher. lock may be nil when only a
// single instance can run batches.
func NewPublishService(lifecycle *LifecycleService, portfolios PortfolioStore, settings SettingsStore, lock BatchLock, opts Options) *PublishService {
	return &PublishService{
		lifecycle:  lifecycle,
		portfolios: portfolios,
		settings:   settings,
		lock:       lock,
		opts:       opts.withDefaults(),
	}
}

func (s *PublishService) Settings(ctx context.Context) (domain.AdminSettings, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return domain.AdminSettings{}, classifyStoreErr(s.opts, "get settings", err)
	}
	return settings, nil
}

func (s *PublishService) UpdateSettings(ctx context.Context, actor domain.Actor, settings domain.AdminSettings) (domain.AdminSettings, error) {
	if !actor.IsAdmin {
		return domain.AdminSettings{}, domain.ErrForbidden
	}
	if err := settings.Validate(); err != nil {
		return domain.AdminSettings{}, err
	}
	if err := s.settings.Save(ctx, &settings); err != nil {
		return domain.AdminSettings{}, classifyStoreErr(s.opts, "save settings", err)
	}
	s.opts.Logger.Info("publish settings updated",
		"weekly_publish_limit", settings.WeeklyPublishLimit,
		"publish_strategy", settings.PublishStrategy,
		"actor", actor.UserID,
	)
	return settings, nil
}

// Preview plans the schedule from freshly read settings and queue.
func (s *PublishService) Preview(ctx context.Context) (domain.Schedule, error) {
	settings, queue, err := s.load(ctx)
	if err != nil {
		return domain.Schedule{}, err
	}
	return domain.PlanSchedule(queue, settings, s.opts.timestamp(), s.opts.Location), nil
}

// RunBatch publishes the next batch. Each portfolio is published
// independently; a failure is recorded in its result and never stops the
// others.
func (s *PublishService) RunBatch(ctx context.Context, trigger string) (*BatchResult, error) {
	if s.lock != nil {
		ok, err := s.lock.Acquire(ctx)
		if err != nil {
			return nil, classifyStoreErr(s.opts, "acquire batch lock", err)
		}
		if !ok {
			return nil, domain.ErrBatchInProgress
		}
		defer func() {
			if err := s.lock.Release(context.WithoutCancel(ctx)); err != nil {
				s.opts.Logger.Warn("failed to release batch lock", "error", err)
			}
		}()
	}

	started := s.opts.timestamp()
	settings, queue, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	batch := domain.SelectNextBatch(queue, settings)

	results := make([]PublishResult, len(batch))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Concurrency)

	for i := range batch {
		i, p := i, batch[i]
		g.Go(func() error {
			res := PublishResult{PortfolioID: p.ID, UserID: p.UserID}
			published, err := s.lifecycle.transition(gctx, &p, domain.SystemActor(),
				domain.TransitionInput{Action: domain.ActionPublish})
			if err != nil {
				res.Error = err.Error()
			} else {
				res.Published = true
				res.PublishedAt = published.PublishedAt
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	out := &BatchResult{
		Trigger:    trigger,
		Strategy:   settings.PublishStrategy,
		Limit:      settings.WeeklyPublishLimit,
		Queued:     len(queue),
		Results:    results,
		StartedAt:  started,
		FinishedAt: s.opts.timestamp(),
	}
	for _, r := range results {
		if r.Published {
			out.Published++
		} else {
			out.Failed++
		}
	}

	s.opts.Metrics.RecordBatch(trigger, len(queue), out.Published, out.Failed,
		out.FinishedAt.Sub(out.StartedAt).Seconds())
	s.opts.Logger.Info("publish batch finished",
		"trigger", trigger,
		"strategy", settings.PublishStrategy,
		"queued", len(queue),
		"published", out.Published,
		"failed", out.Failed,
	)
	return out, nil
}

func (s *PublishService) load(ctx context.Context) (domain.AdminSettings, []domain.Portfolio, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return domain.AdminSettings{}, nil, classifyStoreErr(s.opts, "get settings", err)
	}
	queue, err := s.portfolios.ListApprovedQueued(ctx)
	if err != nil {
		return domain.AdminSettings{}, nil, classifyStoreErr(s.opts, "list queue", err)
	}
	return settings, queue, nil
}
