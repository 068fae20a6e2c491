package achievement

import (
	"questlogAPI/internal/stats"
)

type Category string

const (
	CategoryMilestones Category = "milestones"
	CategoryStreaks    Category = "streaks"
	CategoryActivities Category = "activities"
	CategoryTimeBased  Category = "time_based"
	CategorySpecial    Category = "special"
)

// Definition describes a single unlockable achievement. Unlock reports
// whether the achievement is earned given the user's progression snapshot
// and the aggregated activity history. Progress is optional and returns a
// 0..100 completion ratio for locked achievements; nil means no partial
// progress is reported.
type Definition struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Icon        string   `json:"icon"`
	Category    Category `json:"category"`
	XPReward    int      `json:"xpReward"`

	Unlock   func(stats.UserStats, *ActivityStats) bool    `json:"-"`
	Progress func(stats.UserStats, *ActivityStats) float64 `json:"-"`
}

// WithStatus pairs a definition with the caller's unlock state for display.
type WithStatus struct {
	Definition
	Unlocked bool    `json:"unlocked"`
	Percent  float64 `json:"progress"`
}
