package friendship

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusDeclined Status = "declined"
	StatusBlocked  Status = "blocked"
)

type Friendship struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	RequesterID uuid.UUID  `json:"requesterId" db:"requester_id"`
	RecipientID uuid.UUID  `json:"recipientId" db:"recipient_id"`
	Status      Status     `json:"status" db:"status"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	RespondedAt *time.Time `json:"respondedAt,omitempty" db:"responded_at"`
}

// Friend is a friend's profile as shown in friend lists.
type Friend struct {
	ID                   uuid.UUID `json:"id"`
	Username             string    `json:"username"`
	Email                string    `json:"email"`
	Level                int       `json:"level"`
	XP                   int       `json:"xp"`
	StreakCount          int       `json:"streakCount"`
	UnlockedAchievements []string  `json:"unlockedAchievements"`
	FriendshipID         uuid.UUID `json:"friendshipId"`
	Since                time.Time `json:"createdAt"`
}

type PendingRequest struct {
	ID                uuid.UUID `json:"id"`
	RequesterID       uuid.UUID `json:"requesterId"`
	RequesterUsername string    `json:"requesterUsername"`
	RequesterLevel    int       `json:"requesterLevel"`
	CreatedAt         time.Time `json:"createdAt"`
}
