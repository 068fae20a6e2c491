package activity

import (
	"time"

	"github.com/google/uuid"
)

// Predefined activity categories. Custom non-empty type strings are also accepted.
const (
	TypeWorkout = "WORKOUT"
	TypeStudy   = "STUDY"
	TypeWork    = "WORK"
)

type Intensity string

const (
	IntensityLow    Intensity = "LOW"
	IntensityMedium Intensity = "MEDIUM"
	IntensityHigh   Intensity = "HIGH"
)

type Activity struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"userId" db:"user_id"`
	Type      string    `json:"type" db:"type"`
	Title     string    `json:"title" db:"title"`
	Duration  int       `json:"duration" db:"duration"` // minutes
	Intensity Intensity `json:"intensity" db:"intensity"`
	XPEarned  int       `json:"xpEarned" db:"xp_earned"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

type ListOptions struct {
	Page      int
	Limit     int
	Category  string
	StartDate *time.Time
	SortBy    string
	SortOrder string
}

type Pagination struct {
	Page    int  `json:"page"`
	Limit   int  `json:"limit"`
	Total   int  `json:"total"`
	Pages   int  `json:"pages"`
	HasNext bool `json:"hasNext"`
	HasPrev bool `json:"hasPrev"`
}

type Page struct {
	Activities []*Activity `json:"activities"`
	Pagination Pagination  `json:"pagination"`
}

// AggregateStats summarizes a user's full activity history.
type AggregateStats struct {
	TotalActivities int      `json:"totalActivities"`
	TotalXP         int      `json:"totalXP"`
	AvgXP           float64  `json:"avgXP"`
	Categories      []string `json:"categories"`
}
