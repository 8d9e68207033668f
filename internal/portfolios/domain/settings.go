package domain

import "time"

type PublishStrategy string

const (
	StrategyOldestFirst PublishStrategy = "oldest_first"
	StrategyNewestFirst PublishStrategy = "newest_first"
	StrategyManual      PublishStrategy = "manual"
)

const (
	DefaultWeeklyPublishLimit = 5
	MinWeeklyPublishLimit     = 1
	MaxWeeklyPublishLimit     = 50
)

// AdminSettings is the singleton publish configuration
type AdminSettings struct {
	WeeklyPublishLimit int             `json:"weekly_publish_limit" validate:"min=1,max=50"`
	PublishStrategy    PublishStrategy `json:"publish_strategy" validate:"oneof=oldest_first newest_first manual"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

func DefaultSettings() AdminSettings {
	return AdminSettings{
		WeeklyPublishLimit: DefaultWeeklyPublishLimit,
		PublishStrategy:    StrategyOldestFirst,
	}
}

func (s AdminSettings) Validate() error {
	return validateStruct(s)
}

// limit returns a usable batch size even for unvalidated settings.
func (s AdminSettings) limit() int {
	if s.WeeklyPublishLimit < MinWeeklyPublishLimit {
		return DefaultWeeklyPublishLimit
	}
	if s.WeeklyPublishLimit > MaxWeeklyPublishLimit {
		return MaxWeeklyPublishLimit
	}
	return s.WeeklyPublishLimit
}
