package http

import (
	"context"

	"github.com/folio-review/folio-backend/internal/pkg/logger"
	"github.com/folio-review/folio-backend/internal/portfolios/domain"
	"github.com/folio-review/folio-backend/internal/portfolios/service"
)

type Lifecycle interface {
	Status(ctx context.Context, actor domain.Actor) (*domain.Portfolio, domain.StatusDescriptor, error)
	SaveDraft(ctx context.Context, actor domain.Actor, content domain.DraftContent) (*domain.Portfolio, error)
	ClearAll(ctx context.Context, actor domain.Actor) (*domain.Portfolio, error)
	Submit(ctx context.Context, actor domain.Actor) (*domain.Portfolio, error)
	SelfTransition(ctx context.Context, actor domain.Actor, action domain.Action) (*domain.Portfolio, error)
	Get(ctx context.Context, actor domain.Actor, id string) (*domain.Portfolio, error)
	Transition(ctx context.Context, actor domain.Actor, id string, in domain.TransitionInput) (*domain.Portfolio, error)
}

type Publisher interface {
	Settings(ctx context.Context) (domain.AdminSettings, error)
	UpdateSettings(ctx context.Context, actor domain.Actor, settings domain.AdminSettings) (domain.AdminSettings, error)
	Preview(ctx context.Context) (domain.Schedule, error)
	RunBatch(ctx context.Context, trigger string) (*service.BatchResult, error)
}

// Handler serves the portfolio lifecycle endpoints
type Handler struct {
	lifecycle Lifecycle
	publisher Publisher
	log       *logger.Logger
}

func New(lifecycle Lifecycle, publisher Publisher, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.NewNop()
	}
	return &Handler{lifecycle: lifecycle, publisher: publisher, log: log}
}

type statusActionRequest struct {
	Action string `json:"action" binding:"required"`
}

type declineRequest struct {
	Reason string `json:"reason"`
}

type settingsRequest struct {
	WeeklyPublishLimit int                    `json:"weekly_publish_limit"`
	PublishStrategy    domain.PublishStrategy `json:"publish_strategy"`
}
