package domain

import "time"

var day0 = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC) // Monday

func draft(userID string) *Portfolio {
	return &Portfolio{
		ID:         "p-" + userID,
		UserID:     userID,
		Title:      "Brand work",
		WebsiteURL: "https://example.com",
		Images:     []string{"img/1.png"},
		Status:     StatusDraft,
		IsVisible:  true,
		CreatedAt:  day0,
		UpdatedAt:  day0,
	}
}

func withState(p *Portfolio, s State) *Portfolio {
	switch s {
	case StatePending:
		p.Status = StatusPending
	case StateApprovedQueued:
		p.Status, p.Approved = StatusApproved, true
	case StatePublishedOnline:
		p.Status, p.Approved, p.Published, p.IsVisible = StatusApproved, true, true, true
	case StatePublishedOffline:
		p.Status, p.Approved, p.Published, p.IsVisible = StatusApproved, true, true, false
	case StateDeclined:
		reason := "needs more work"
		p.Status, p.DeclinedReason = StatusDeclined, &reason
	}
	return p
}

func queued(id string, updated time.Time) Portfolio {
	p := withState(draft(id), StateApprovedQueued)
	p.ID = id
	p.UpdatedAt = updated
	return *p
}

func ids(ps []Portfolio) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}
