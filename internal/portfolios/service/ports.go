package service

import (
	"context"
	"time"

	"github.com/folio-review/folio-backend/internal/metrics"
	"github.com/folio-review/folio-backend/internal/pkg/logger"
	"github.com/folio-review/folio-backend/internal/portfolios/domain"
)

type PortfolioStore interface {
	GetByID(ctx context.Context, id string) (*domain.Portfolio, error)
	GetLiveByUser(ctx context.Context, userID string) (*domain.Portfolio, error)
	Create(ctx context.Context, p *domain.Portfolio, enforceSingle bool) error
	Update(ctx context.Context, p *domain.Portfolio, prevUpdatedAt time.Time) error
	// Restore is Update for a soft-deleted portfolio coming back. It fails
	// with ErrPortfolioExists when a non-admin owner has another live one.
	Restore(ctx context.Context, p *domain.Portfolio, prevUpdatedAt time.Time) error
	ListApprovedQueued(ctx context.Context) ([]domain.Portfolio, error)
}

type SettingsStore interface {
	Get(ctx context.Context) (domain.AdminSettings, error)
	Save(ctx context.Context, s *domain.AdminSettings) error
}

type FeedbackCounter interface {
	CompletedCount(ctx context.Context, userID string) (int, error)
}

type BatchLock interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

// Options are shared by the lifecycle and publish services.
type Options struct {
	Location    *time.Location
	Concurrency int
	Logger      *logger.Logger
	Metrics     *metrics.Metrics
	Now         func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.Concurrency < 1 {
		o.Concurrency = 1
	}
	if o.Logger == nil {
		o.Logger = logger.NewNop()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// timestamp returns the current time at database precision.
func (o Options) timestamp() time.Time {
	return o.Now().UTC().Truncate(time.Microsecond)
}
