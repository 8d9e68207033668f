package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/folio-review/folio-backend/internal/portfolios/domain"
)

// LifecycleService resolves status and executes lifecycle transitions.
// Every transition is validated first and then written with one guarded
// update.
type LifecycleService struct {
	portfolios PortfolioStore
	settings   SettingsStore
	feedback   FeedbackCounter
	opts       Options
}

func NewLifecycleService(portfolios PortfolioStore, settings SettingsStore, feedback FeedbackCounter, opts Options) *LifecycleService {
	return &LifecycleService{
		portfolios: portfolios,
		settings:   settings,
		feedback:   feedback,
		opts:       opts.withDefaults(),
	}
}

// Status returns the caller's live portfolio (nil when none) and its
// descriptor. Queued portfolios also get their scheduled publish date.
func (s *LifecycleService) Status(ctx context.Context, actor domain.Actor) (*domain.Portfolio, domain.StatusDescriptor, error) {
	p, err := s.loadOwn(ctx, actor)
	if err != nil {
		return nil, domain.StatusDescriptor{}, err
	}

	d := domain.ResolveStatus(p)
	if d.State != domain.StateApprovedQueued {
		return p, d, nil
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, domain.StatusDescriptor{}, s.storeErr("get settings", err)
	}
	queue, err := s.portfolios.ListApprovedQueued(ctx)
	if err != nil {
		return nil, domain.StatusDescriptor{}, s.storeErr("list queue", err)
	}
	plan := domain.PlanSchedule(queue, settings, s.opts.timestamp(), s.opts.Location)
	d.ScheduledPublishAt = plan.ScheduledFor(p.ID)

	return p, d, nil
}

// SaveDraft creates the caller's portfolio on first save or updates its
// content when the current state allows editing.
func (s *LifecycleService) SaveDraft(ctx context.Context, actor domain.Actor, content domain.DraftContent) (*domain.Portfolio, error) {
	if err := content.Validate(); err != nil {
		return nil, err
	}

	p, err := s.loadOwn(ctx, actor)
	if err != nil {
		return nil, err
	}

	now := s.opts.timestamp()
	if p == nil {
		created := &domain.Portfolio{
			UserID:    actor.UserID,
			Status:    domain.StatusDraft,
			IsVisible: true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		content.ApplyTo(created)

		if err := s.portfolios.Create(ctx, created, !actor.IsAdmin); err != nil {
			return nil, s.storeErr("create portfolio", err)
		}
		s.opts.Logger.Info("portfolio created", "portfolio_id", created.ID, "user_id", actor.UserID)
		return created, nil
	}

	if d := domain.ResolveStatus(p); !d.CanEdit {
		return nil, &domain.TransitionError{From: d.State, Action: domain.ActionEdit}
	}

	next := *p
	content.ApplyTo(&next)
	next.UpdatedAt = now
	if err := s.portfolios.Update(ctx, &next, p.UpdatedAt); err != nil {
		return nil, s.storeErr("update portfolio", err)
	}
	return &next, nil
}

// ClearAll resets a draft or declined portfolio to an empty draft.
func (s *LifecycleService) ClearAll(ctx context.Context, actor domain.Actor) (*domain.Portfolio, error) {
	p, err := s.loadOwn(ctx, actor)
	if err != nil || p == nil {
		return nil, err
	}

	if d := domain.ResolveStatus(p); !d.CanClearAll {
		return nil, &domain.TransitionError{From: d.State, Action: domain.ActionClearAll}
	}

	next := *p
	domain.DraftContent{}.ApplyTo(&next)
	next.Status = domain.StatusDraft
	next.Approved = false
	next.Published = false
	next.DeclinedReason = nil
	next.UpdatedAt = s.opts.timestamp()

	if err := s.portfolios.Update(ctx, &next, p.UpdatedAt); err != nil {
		return nil, s.storeErr("clear portfolio", err)
	}
	return &next, nil
}

// Submit moves the caller's draft or declined portfolio to pending.
func (s *LifecycleService) Submit(ctx context.Context, actor domain.Actor) (*domain.Portfolio, error) {
	p, err := s.loadOwn(ctx, actor)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}

	if !actor.IsAdmin {
		n, err := s.feedback.CompletedCount(ctx, actor.UserID)
		if err != nil {
			return nil, s.storeErr("count feedback", err)
		}
		actor.FeedbackCount = n
	}

	return s.transition(ctx, p, actor, domain.TransitionInput{Action: domain.ActionSubmit})
}

// SelfTransition applies an owner action (withdraw or resubmit) to the
// caller's own portfolio.
func (s *LifecycleService) SelfTransition(ctx context.Context, actor domain.Actor, action domain.Action) (*domain.Portfolio, error) {
	if action != domain.ActionWithdraw && action != domain.ActionResubmit {
		return nil, &domain.ValidationError{Reason: fmt.Sprintf("unsupported action %q", action)}
	}

	p, err := s.loadOwn(ctx, actor)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}

	return s.transition(ctx, p, actor, domain.TransitionInput{Action: action})
}

// Get returns any portfolio by id for an admin, soft-deleted included.
func (s *LifecycleService) Get(ctx context.Context, actor domain.Actor, id string) (*domain.Portfolio, error) {
	if !actor.IsAdmin {
		return nil, domain.ErrForbidden
	}
	p, err := s.portfolios.GetByID(ctx, id)
	if err != nil {
		return nil, s.storeErr("get portfolio", err)
	}
	return p, nil
}

// Transition applies an admin action to the portfolio with the given id.
func (s *LifecycleService) Transition(ctx context.Context, actor domain.Actor, id string, in domain.TransitionInput) (*domain.Portfolio, error) {
	if !actor.IsAdmin && !actor.System {
		return nil, domain.ErrForbidden
	}

	p, err := s.portfolios.GetByID(ctx, id)
	if err != nil {
		return nil, s.storeErr("get portfolio", err)
	}
	return s.transition(ctx, p, actor, in)
}

func (s *LifecycleService) transition(ctx context.Context, p *domain.Portfolio, actor domain.Actor, in domain.TransitionInput) (*domain.Portfolio, error) {
	next, err := domain.Apply(p, actor, in, s.opts.timestamp())
	if err != nil {
		s.opts.Metrics.RecordTransition(string(in.Action), "rejected")
		return nil, err
	}

	write := s.portfolios.Update
	if in.Action == domain.ActionRestore {
		write = s.portfolios.Restore
	}
	if err := write(ctx, next, p.UpdatedAt); err != nil {
		s.opts.Metrics.RecordTransition(string(in.Action), "failed")
		return nil, s.storeErr("write transition", err)
	}

	s.opts.Metrics.RecordTransition(string(in.Action), "ok")
	s.opts.Logger.Info("portfolio transition",
		"portfolio_id", p.ID,
		"action", in.Action,
		"from", domain.StateOf(p),
		"to", domain.StateOf(next),
		"actor", actor.UserID,
	)
	return next, nil
}

func (s *LifecycleService) loadOwn(ctx context.Context, actor domain.Actor) (*domain.Portfolio, error) {
	if actor.UserID == "" {
		return nil, domain.ErrUnauthenticated
	}
	p, err := s.portfolios.GetLiveByUser(ctx, actor.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, s.storeErr("get own portfolio", err)
	}
	return p, nil
}

// storeErr passes domain errors through and tags everything else as a
// store failure.
func (s *LifecycleService) storeErr(op string, err error) error {
	return classifyStoreErr(s.opts, op, err)
}

func classifyStoreErr(opts Options, op string, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrPortfolioExists),
		errors.Is(err, domain.ErrStoreFailure):
		return err
	}
	opts.Logger.Error("store failure", "op", op, "error", err)
	return fmt.Errorf("%w: %s: %v", domain.ErrStoreFailure, op, err)
}
