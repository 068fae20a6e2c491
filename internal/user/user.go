package user

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID                   uuid.UUID  `json:"id" db:"id"`
	Email                string     `json:"email" db:"email"`
	Username             string     `json:"username" db:"username"`
	PasswordHash         string     `json:"-" db:"password_hash"`
	Level                int        `json:"level" db:"level"`
	XP                   int        `json:"xp" db:"xp"`
	TotalXP              int        `json:"totalXP" db:"total_xp"`
	StreakCount          int        `json:"streakCount" db:"streak_count"`
	LastActivity         *time.Time `json:"lastActivity,omitempty" db:"last_activity"`
	UnlockedAchievements []string   `json:"unlockedAchievements" db:"unlocked_achievements"`
	LastAchievementCheck time.Time  `json:"lastAchievementCheck" db:"last_achievement_check"`
	CreatedAt            time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt            time.Time  `json:"updatedAt" db:"updated_at"`
}
