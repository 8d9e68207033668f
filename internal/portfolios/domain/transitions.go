package domain

import (
	"fmt"
	"strings"
	"time"
)

// Actor is the caller of a transition. IsAdmin bypasses the feedback gate
// and the single-portfolio rule; System marks the scheduled batch publisher.
type Actor struct {
	UserID        string
	IsAdmin       bool
	System        bool
	FeedbackCount int
}

const SystemUserID = "system"

func SystemActor() Actor {
	return Actor{UserID: SystemUserID, System: true}
}

type TransitionInput struct {
	Action Action
	Reason string
}

// Apply validates in against p and returns the updated copy. p is left
// untouched. All checks run before anything is changed.
func Apply(p *Portfolio, actor Actor, in TransitionInput, now time.Time) (*Portfolio, error) {
	if p == nil {
		return nil, ErrNotFound
	}
	if err := authorize(p, actor, in.Action); err != nil {
		return nil, err
	}

	switch in.Action {
	case ActionDelete, ActionRestore:
		return applySoftDelete(p, actor, in.Action, now)
	}

	if p.IsDeleted() {
		return nil, ErrNotFound
	}

	from := StateOf(p)
	if _, ok := Next(from, in.Action); !ok {
		return nil, &TransitionError{From: from, Action: in.Action}
	}

	reason := strings.TrimSpace(in.Reason)
	switch in.Action {
	case ActionSubmit:
		if err := checkSubmittable(p, actor); err != nil {
			return nil, err
		}
	case ActionDecline:
		if reason == "" {
			return nil, &ValidationError{Reason: "a decline reason is required"}
		}
	}

	next := *p
	next.UpdatedAt = now

	switch in.Action {
	case ActionSubmit, ActionResubmit:
		next.Status = StatusPending
		next.Approved = false
		next.Published = false
		next.DeclinedReason = nil
	case ActionWithdraw:
		if from == StatePublishedOnline {
			next.IsVisible = false
		} else {
			next.Status = StatusDraft
			next.Approved = false
		}
	case ActionApprove:
		next.Status = StatusApproved
		next.Approved = true
		next.Published = false
	case ActionDecline:
		next.Status = StatusDeclined
		next.Approved = false
		next.Published = false
		next.DeclinedReason = &reason
	case ActionPublish:
		next.Published = true
		next.IsVisible = true
		publishedAt := now
		next.PublishedAt = &publishedAt
	case ActionUnpublish:
		next.Status = StatusPending
		next.Approved = false
		next.Published = false
	}

	return &next, nil
}

func authorize(p *Portfolio, actor Actor, a Action) error {
	if actor.IsAdmin {
		return nil
	}
	if IsAdminOnly(a) {
		if actor.System && a == ActionPublish {
			return nil
		}
		return ErrForbidden
	}
	if p.UserID != actor.UserID {
		return ErrForbidden
	}
	return nil
}

func applySoftDelete(p *Portfolio, actor Actor, a Action, now time.Time) (*Portfolio, error) {
	next := *p
	next.UpdatedAt = now

	if a == ActionDelete {
		if p.IsDeleted() || StateOf(p) == StateDraft {
			return nil, &TransitionError{From: deleteState(p), Action: a}
		}
		deletedAt := now
		deletedBy := actor.UserID
		next.DeletedAt = &deletedAt
		next.DeletedBy = &deletedBy
		return &next, nil
	}

	if !p.IsDeleted() {
		return nil, &TransitionError{From: StateOf(p), Action: a}
	}
	next.DeletedAt = nil
	next.DeletedBy = nil
	return &next, nil
}

func deleteState(p *Portfolio) State {
	if p.IsDeleted() {
		return "deleted"
	}
	return StateOf(p)
}

func checkSubmittable(p *Portfolio, actor Actor) error {
	switch {
	case strings.TrimSpace(p.Title) == "":
		return &ValidationError{Reason: "title is required"}
	case strings.TrimSpace(p.WebsiteURL) == "":
		return &ValidationError{Reason: "website URL is required"}
	case len(p.Images) == 0:
		return &ValidationError{Reason: "at least one image is required"}
	case !actor.IsAdmin && actor.FeedbackCount < MinFeedbackForSubmit:
		return &ValidationError{Reason: fmt.Sprintf(
			"at least %d completed feedback entries are required, you have %d",
			MinFeedbackForSubmit, actor.FeedbackCount)}
	}
	return nil
}
