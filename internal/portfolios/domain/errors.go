package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthenticated   = errors.New("authentication required")
	ErrForbidden         = errors.New("admin access required")
	ErrNotFound          = errors.New("portfolio not found")
	ErrValidationFailed  = errors.New("validation failed")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrConflict          = errors.New("portfolio was modified by another request")
	ErrPortfolioExists   = errors.New("user already has a portfolio")
	ErrBatchInProgress   = errors.New("publish batch already running")
	ErrStoreFailure      = errors.New("store failure")
)

// TransitionError reports an action that is not legal from the current state.
type TransitionError struct {
	From   State
	Action Action
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s a portfolio in state %s", e.Action, e.From)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// ValidationError carries the specific missing requirement.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

func (e *ValidationError) Unwrap() error { return ErrValidationFailed }
