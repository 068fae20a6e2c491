package leaderboard

import "github.com/google/uuid"

type Entry struct {
	UserID      uuid.UUID `json:"user_id" db:"user_id"`
	Username    string    `json:"username" db:"username"`
	Level       int       `json:"level" db:"level"`
	TotalXP     int       `json:"total_xp" db:"total_xp"`
	StreakCount int       `json:"streak_count" db:"streak_count"`
	Rank        int       `json:"rank" db:"rank"`
}

type Leaderboard struct {
	Entries      []*Entry `json:"entries"`
	UserPosition *Entry   `json:"user_position"`
	TotalUsers   int      `json:"total_users"`
}
