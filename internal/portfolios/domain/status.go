package domain

import "time"

const (
	BadgeDraft     = "DRAFT"
	BadgePending   = "PENDING APPROVAL"
	BadgeQueued    = "APPROVED - IN QUEUE"
	BadgePublished = "PUBLISHED"
	BadgeOffline   = "OFFLINE FOR CHANGES"
	BadgeDeclined  = "DECLINED"
)

// StatusDescriptor is the UI-facing view of a portfolio's lifecycle.
type StatusDescriptor struct {
	State              State      `json:"state"`
	StatusBadge        string     `json:"statusBadge"`
	StatusMessage      string     `json:"statusMessage"`
	CanEdit            bool       `json:"canEdit"`
	CanSubmit          bool       `json:"canSubmit"`
	CanPreview         bool       `json:"canPreview"`
	CanClearAll        bool       `json:"canClearAll"`
	ShowWithdrawButton bool       `json:"showWithdrawButton"`
	DeclinedReason     *string    `json:"declinedReason,omitempty"`
	ScheduledPublishAt *time.Time `json:"scheduledPublishAt,omitempty"`
}

// ResolveStatus maps stored fields to a descriptor. p may be nil when the
// user has no portfolio yet.
func ResolveStatus(p *Portfolio) StatusDescriptor {
	state := StateOf(p)
	d := StatusDescriptor{State: state, CanPreview: true}

	switch state {
	case StateNone:
		d.StatusBadge = BadgeDraft
		d.StatusMessage = "Start building your portfolio. Save a draft any time."
		d.CanEdit, d.CanSubmit, d.CanClearAll = true, true, true
		d.CanPreview = false
	case StateDraft:
		d.StatusBadge = BadgeDraft
		d.StatusMessage = "Your portfolio is a draft. Submit it for review when it is ready."
		d.CanEdit, d.CanSubmit, d.CanClearAll = true, true, true
	case StatePending:
		d.StatusBadge = BadgePending
		d.StatusMessage = "Your portfolio is waiting for an admin to review it."
		d.ShowWithdrawButton = true
	case StateApprovedQueued:
		d.StatusBadge = BadgeQueued
		d.StatusMessage = "Your portfolio is approved and queued for the next publish run."
		d.ShowWithdrawButton = true
	case StatePublishedOnline:
		d.StatusBadge = BadgePublished
		d.StatusMessage = "Your portfolio is live."
		d.CanEdit = true
		d.ShowWithdrawButton = true
	case StatePublishedOffline:
		d.StatusBadge = BadgeOffline
		d.StatusMessage = "Your portfolio is hidden while you make changes."
		d.CanEdit = true
		d.ShowWithdrawButton = true
	case StateDeclined:
		d.StatusBadge = BadgeDeclined
		d.StatusMessage = "Your portfolio was declined. Update it and resubmit."
		d.CanEdit, d.CanSubmit, d.CanClearAll = true, true, true
		d.DeclinedReason = p.DeclinedReason
	}

	return d
}
