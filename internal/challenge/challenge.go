package challenge

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeWorkouts   Type = "workouts"
	TypeStudyHours Type = "study_hours"
	TypeWorkHours  Type = "work_hours"
	TypeXPEarned   Type = "xp_earned"
	TypeStreak     Type = "streak"
	TypeVariety    Type = "variety"
)

// ValidType reports whether t is one of the six challenge metrics.
func ValidType(t Type) bool {
	switch t {
	case TypeWorkouts, TypeStudyHours, TypeWorkHours, TypeXPEarned, TypeStreak, TypeVariety:
		return true
	}
	return false
}

type Status string

// Status only moves forward: pending -> active -> completed. A challenge
// whose last invitee declines with nobody else aboard is deleted outright
// instead of being marked cancelled.
const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

type ParticipantResult struct {
	UserID        uuid.UUID `json:"userId" db:"user_id"`
	Score         float64   `json:"score" db:"score"`
	Progress      float64   `json:"progress" db:"progress"`
	FinalScore    float64   `json:"finalScore" db:"final_score"`
	FinalProgress float64   `json:"finalProgress" db:"final_progress"`
	LastUpdated   time.Time `json:"lastUpdated" db:"last_updated"`
}

type Challenge struct {
	ID                 uuid.UUID           `json:"id" db:"id"`
	Name               string              `json:"name" db:"name"`
	Description        string              `json:"description" db:"description"`
	Type               Type                `json:"type" db:"type"`
	Duration           int                 `json:"duration" db:"duration"` // days
	Reward             int                 `json:"reward" db:"reward"`     // XP
	CreatorID          uuid.UUID           `json:"creator" db:"creator_id"`
	Participants       []uuid.UUID         `json:"participants"`
	InvitedUsers       []uuid.UUID         `json:"invitedUsers"`
	Status             Status              `json:"status" db:"status"`
	StartDate          time.Time           `json:"startDate" db:"start_date"`
	EndDate            time.Time           `json:"endDate" db:"end_date"`
	WinnerID           *uuid.UUID          `json:"winner,omitempty" db:"winner_id"`
	ParticipantResults []ParticipantResult `json:"participantResults"`
	CreatedAt          time.Time           `json:"createdAt" db:"created_at"`
}

// Expired reports whether the challenge is past its end date.
func (c *Challenge) Expired(now time.Time) bool {
	return now.After(c.EndDate)
}

// IsParticipant reports whether the user has accepted (or created) the challenge.
func (c *Challenge) IsParticipant(userID uuid.UUID) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// IsInvited reports whether the user has an unanswered invite.
func (c *Challenge) IsInvited(userID uuid.UUID) bool {
	for _, u := range c.InvitedUsers {
		if u == userID {
			return true
		}
	}
	return false
}

// ResultFor returns the participant's running result, zero-valued if absent.
func (c *Challenge) ResultFor(userID uuid.UUID) ParticipantResult {
	for _, r := range c.ParticipantResults {
		if r.UserID == userID {
			return r
		}
	}
	return ParticipantResult{UserID: userID}
}
