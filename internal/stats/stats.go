package stats

// UserStats is the progression snapshot used by achievement evaluation
// and the cached /users/stats read.
type UserStats struct {
	Level       int `json:"level"`
	XP          int `json:"xp"`
	TotalXP     int `json:"totalXP"`
	StreakCount int `json:"streakCount"`
}
