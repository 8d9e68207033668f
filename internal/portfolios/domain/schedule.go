package domain

import (
	"sort"
	"time"
)

const (
	PublishWeekday = time.Sunday
	PublishHour    = 10
)

// ScheduledEntry places one queued portfolio in the publish plan.
// ScheduledFor is nil under the manual strategy.
type ScheduledEntry struct {
	Portfolio    Portfolio  `json:"portfolio" yaml:"portfolio"`
	Position     int        `json:"position" yaml:"position"`
	Batch        int        `json:"batch" yaml:"batch"`
	ScheduledFor *time.Time `json:"scheduled_for" yaml:"scheduled_for"`
}

type Schedule struct {
	Strategy  PublishStrategy  `json:"publish_strategy" yaml:"publish_strategy"`
	Limit     int              `json:"weekly_publish_limit" yaml:"weekly_publish_limit"`
	NextRunAt *time.Time       `json:"next_run_at" yaml:"next_run_at"`
	NextBatch []Portfolio      `json:"next_batch" yaml:"next_batch"`
	Entries   []ScheduledEntry `json:"entries" yaml:"entries"`
}

// NextPublishSlot returns the first Sunday 10:00 in loc strictly after now.
func NextPublishSlot(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	days := (int(PublishWeekday) - int(local.Weekday()) + 7) % 7
	slot := time.Date(local.Year(), local.Month(), local.Day()+days, PublishHour, 0, 0, 0, loc)
	if !slot.After(local) {
		slot = slot.AddDate(0, 0, 7)
	}
	return slot
}

// OrderQueue filters the approved-but-unpublished portfolios and sorts them
// by strategy. The input slice is not modified. Manual returns nil.
func OrderQueue(portfolios []Portfolio, strategy PublishStrategy) []Portfolio {
	if strategy == StrategyManual {
		return nil
	}

	queue := make([]Portfolio, 0, len(portfolios))
	for i := range portfolios {
		if portfolios[i].IsDeleted() || StateOf(&portfolios[i]) != StateApprovedQueued {
			continue
		}
		queue = append(queue, portfolios[i])
	}

	newestFirst := strategy == StrategyNewestFirst
	sort.SliceStable(queue, func(i, j int) bool {
		if newestFirst {
			return queue[i].UpdatedAt.After(queue[j].UpdatedAt)
		}
		return queue[i].UpdatedAt.Before(queue[j].UpdatedAt)
	})
	return queue
}

// SelectNextBatch returns the portfolios due in the next publish run.
func SelectNextBatch(portfolios []Portfolio, settings AdminSettings) []Portfolio {
	queue := OrderQueue(portfolios, settings.PublishStrategy)
	if n := settings.limit(); len(queue) > n {
		queue = queue[:n]
	}
	return queue
}

// PlanSchedule computes the next batch and a publish date for every queued
// portfolio. Index i lands in batch i/limit, one week apart.
func PlanSchedule(portfolios []Portfolio, settings AdminSettings, now time.Time, loc *time.Location) Schedule {
	limit := settings.limit()
	plan := Schedule{
		Strategy:  settings.PublishStrategy,
		Limit:     limit,
		NextBatch: []Portfolio{},
		Entries:   []ScheduledEntry{},
	}

	if settings.PublishStrategy == StrategyManual {
		for i := range portfolios {
			if portfolios[i].IsDeleted() || StateOf(&portfolios[i]) != StateApprovedQueued {
				continue
			}
			plan.Entries = append(plan.Entries, ScheduledEntry{
				Portfolio: portfolios[i],
				Position:  len(plan.Entries),
			})
		}
		return plan
	}

	first := NextPublishSlot(now, loc)
	plan.NextRunAt = &first

	for i, p := range OrderQueue(portfolios, settings.PublishStrategy) {
		batch := i / limit
		at := first.AddDate(0, 0, 7*batch)
		plan.Entries = append(plan.Entries, ScheduledEntry{
			Portfolio:    p,
			Position:     i,
			Batch:        batch,
			ScheduledFor: &at,
		})
		if batch == 0 {
			plan.NextBatch = append(plan.NextBatch, p)
		}
	}
	return plan
}

// ScheduledFor finds the publish date of id within the plan.
func (s Schedule) ScheduledFor(id string) *time.Time {
	for _, e := range s.Entries {
		if e.Portfolio.ID == id {
			return e.ScheduledFor
		}
	}
	return nil
}
