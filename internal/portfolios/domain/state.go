package domain

// State is the lifecycle state derived from a portfolio's stored fields.
type State string

const (
	StateNone             State = "none"
	StateDraft            State = "draft"
	StatePending          State = "pending"
	StateApprovedQueued   State = "approved_queued"
	StatePublishedOnline  State = "published_online"
	StatePublishedOffline State = "published_offline"
	StateDeclined         State = "declined"
)

type Action string

const (
	ActionSubmit    Action = "submit"
	ActionWithdraw  Action = "withdraw"
	ActionResubmit  Action = "resubmit"
	ActionApprove   Action = "approve"
	ActionDecline   Action = "decline"
	ActionPublish   Action = "publish"
	ActionUnpublish Action = "unpublish"
	ActionDelete    Action = "delete"
	ActionRestore   Action = "restore"

	// content operations, checked against the status descriptor
	ActionEdit     Action = "edit"
	ActionClearAll Action = "clear_all"
)

// transitions holds every legal (state, action) pair of the main machine.
// Soft delete and restore are orthogonal and handled separately.
var transitions = map[State]map[Action]State{
	StateDraft: {
		ActionSubmit: StatePending,
	},
	StateDeclined: {
		ActionSubmit:   StatePending,
		ActionResubmit: StatePending,
	},
	StatePending: {
		ActionWithdraw: StateDraft,
		ActionApprove:  StateApprovedQueued,
		ActionDecline:  StateDeclined,
	},
	StateApprovedQueued: {
		ActionWithdraw: StateDraft,
		ActionPublish:  StatePublishedOnline,
	},
	StatePublishedOnline: {
		ActionWithdraw:  StatePublishedOffline,
		ActionUnpublish: StatePending,
	},
	StatePublishedOffline: {
		ActionUnpublish: StatePending,
	},
}

var adminOnly = map[Action]bool{
	ActionApprove:   true,
	ActionDecline:   true,
	ActionPublish:   true,
	ActionUnpublish: true,
	ActionDelete:    true,
	ActionRestore:   true,
}

// StateOf derives the lifecycle state. A nil portfolio is StateNone.
func StateOf(p *Portfolio) State {
	if p == nil {
		return StateNone
	}
	switch p.Status {
	case StatusPending:
		return StatePending
	case StatusApproved:
		if !p.Published {
			return StateApprovedQueued
		}
		if p.IsVisible {
			return StatePublishedOnline
		}
		return StatePublishedOffline
	case StatusDeclined:
		return StateDeclined
	default:
		return StateDraft
	}
}

// Next looks up the target state for action from s.
func Next(s State, a Action) (State, bool) {
	to, ok := transitions[s][a]
	return to, ok
}

func IsAdminOnly(a Action) bool {
	return adminOnly[a]
}

func ParseAction(s string) (Action, bool) {
	a := Action(s)
	switch a {
	case ActionSubmit, ActionWithdraw, ActionResubmit, ActionApprove, ActionDecline,
		ActionPublish, ActionUnpublish, ActionDelete, ActionRestore:
		return a, true
	}
	return "", false
}
