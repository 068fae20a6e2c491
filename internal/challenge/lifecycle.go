package challenge

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"questlogAPI/internal/apperr"
)

// InviteOutcome describes what an invite response did to the challenge.
type InviteOutcome struct {
	Status    Status
	Activated bool // all invitees responded and the challenge went active
	Deleted   bool // last invitee declined with only the creator left
}

// AcceptInvite moves userID from the invited set to the participants.
// When the last outstanding invite is answered the challenge activates.
func AcceptInvite(c *Challenge, userID uuid.UUID) (InviteOutcome, error) {
	if !c.IsInvited(userID) {
		return InviteOutcome{}, fmt.Errorf("user %s was not invited: %w", userID, apperr.ErrUnauthorized)
	}

	c.InvitedUsers = removeID(c.InvitedUsers, userID)
	if !c.IsParticipant(userID) {
		c.Participants = append(c.Participants, userID)
	}

	outcome := InviteOutcome{Status: c.Status}
	if len(c.InvitedUsers) == 0 {
		c.Status = StatusActive
		outcome.Status = StatusActive
		outcome.Activated = true
	}
	return outcome, nil
}

// DeclineInvite removes userID from the invited set. If nobody else is
// left besides the creator and all invites are answered, the challenge is
// marked for deletion rather than cancelled.
func DeclineInvite(c *Challenge, userID uuid.UUID) (InviteOutcome, error) {
	if !c.IsInvited(userID) {
		return InviteOutcome{}, fmt.Errorf("user %s was not invited: %w", userID, apperr.ErrUnauthorized)
	}

	c.InvitedUsers = removeID(c.InvitedUsers, userID)
	c.Participants = removeID(c.Participants, userID)

	outcome := InviteOutcome{Status: c.Status}
	if len(c.InvitedUsers) == 0 {
		if len(c.Participants) == 1 {
			outcome.Deleted = true
		} else {
			c.Status = StatusActive
			outcome.Status = StatusActive
			outcome.Activated = true
		}
	}
	return outcome, nil
}

// UpsertResult records a running score for the participant,
// inserting the entry if this is their first recompute.
func UpsertResult(c *Challenge, userID uuid.UUID, r Result, now time.Time) {
	for i := range c.ParticipantResults {
		if c.ParticipantResults[i].UserID == userID {
			c.ParticipantResults[i].Score = r.Score
			c.ParticipantResults[i].Progress = r.Progress
			c.ParticipantResults[i].LastUpdated = now
			return
		}
	}
	c.ParticipantResults = append(c.ParticipantResults, ParticipantResult{
		UserID:      userID,
		Score:       r.Score,
		Progress:    r.Progress,
		LastUpdated: now,
	})
}

// UpsertFinalResult records a participant's final score at expiry.
func UpsertFinalResult(c *Challenge, userID uuid.UUID, r Result, now time.Time) {
	for i := range c.ParticipantResults {
		if c.ParticipantResults[i].UserID == userID {
			c.ParticipantResults[i].FinalScore = r.Score
			c.ParticipantResults[i].FinalProgress = r.Progress
			c.ParticipantResults[i].LastUpdated = now
			return
		}
	}
	c.ParticipantResults = append(c.ParticipantResults, ParticipantResult{
		UserID:        userID,
		FinalScore:    r.Score,
		FinalProgress: r.Progress,
		LastUpdated:   now,
	})
}

// DetermineWinner picks the participant with the highest final score.
// Returns false when there are no recorded results.
func DetermineWinner(c *Challenge) (uuid.UUID, bool) {
	if len(c.ParticipantResults) == 0 {
		return uuid.Nil, false
	}
	best := c.ParticipantResults[0]
	for _, r := range c.ParticipantResults[1:] {
		if r.FinalScore > best.FinalScore {
			best = r
		}
	}
	return best.UserID, true
}

func removeID(ids []uuid.UUID, target uuid.UUID) []uuid.UUID {
	out := ids[:0]
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}
