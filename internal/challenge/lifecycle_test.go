package challenge

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"questlogAPI/internal/apperr"
)

func pendingChallenge(creator uuid.UUID, invited ...uuid.UUID) *Challenge {
	participants := []uuid.UUID{creator}
	participants = append(participants, invited...)
	return &Challenge{
		ID:           uuid.New(),
		Type:         TypeWorkouts,
		CreatorID:    creator,
		Participants: participants,
		InvitedUsers: append([]uuid.UUID{}, invited...),
		Status:       StatusPending,
		StartDate:    time.Now(),
		EndDate:      time.Now().AddDate(0, 0, 7),
	}
}

func TestAcceptInvite_ActivatesOnlyAfterAllRespond(t *testing.T) {
	creator := uuid.New()
	a, b := uuid.New(), uuid.New()
	c := pendingChallenge(creator, a, b)

	outcome, err := AcceptInvite(c, a)
	if err != nil {
		t.Fatalf("first accept: %v", err)
	}
	if outcome.Activated || c.Status != StatusPending {
		t.Fatalf("challenge activated after first of two accepts, status %s", c.Status)
	}

	outcome, err = AcceptInvite(c, b)
	if err != nil {
		t.Fatalf("second accept: %v", err)
	}
	if !outcome.Activated || c.Status != StatusActive {
		t.Fatalf("challenge not active after all invitees accepted, status %s", c.Status)
	}
	if len(c.Participants) != 3 {
		t.Errorf("participants = %d, want 3", len(c.Participants))
	}
}

func TestAcceptInvite_NotInvited(t *testing.T) {
	c := pendingChallenge(uuid.New(), uuid.New())
	_, err := AcceptInvite(c, uuid.New())
	if !errors.Is(err, apperr.ErrUnauthorized) {
		t.Errorf("accepting a never-sent invite: err = %v, want ErrUnauthorized", err)
	}
}

func TestDeclineInvite_LastDeclineDeletes(t *testing.T) {
	creator := uuid.New()
	invitee := uuid.New()
	c := pendingChallenge(creator, invitee)

	outcome, err := DeclineInvite(c, invitee)
	if err != nil {
		t.Fatalf("decline: %v", err)
	}
	if !outcome.Deleted {
		t.Error("declining the only invite with just the creator left should delete the challenge")
	}
}

func TestDeclineInvite_OthersRemainActivates(t *testing.T) {
	creator := uuid.New()
	accepter, decliner := uuid.New(), uuid.New()
	c := pendingChallenge(creator, accepter, decliner)

	if _, err := AcceptInvite(c, accepter); err != nil {
		t.Fatalf("accept: %v", err)
	}

	outcome, err := DeclineInvite(c, decliner)
	if err != nil {
		t.Fatalf("decline: %v", err)
	}
	if outcome.Deleted {
		t.Fatal("challenge deleted even though two participants remain")
	}
	if !outcome.Activated || c.Status != StatusActive {
		t.Errorf("challenge should go active once the last invite is answered, status %s", c.Status)
	}
	if c.IsParticipant(decliner) {
		t.Error("decliner still listed as a participant")
	}
}

func TestUpsertResult_UpdatesInPlace(t *testing.T) {
	c := pendingChallenge(uuid.New())
	userID := uuid.New()
	now := time.Now()

	UpsertResult(c, userID, Result{Score: 3, Progress: 15}, now)
	UpsertResult(c, userID, Result{Score: 5, Progress: 25}, now.Add(time.Minute))

	if len(c.ParticipantResults) != 1 {
		t.Fatalf("results = %d entries, want 1", len(c.ParticipantResults))
	}
	r := c.ParticipantResults[0]
	if r.Score != 5 || r.Progress != 25 {
		t.Errorf("result = %v/%v, want 5/25", r.Score, r.Progress)
	}
}

func TestDetermineWinner(t *testing.T) {
	c := pendingChallenge(uuid.New())
	first, second := uuid.New(), uuid.New()
	now := time.Now()

	UpsertFinalResult(c, first, Result{Score: 12, Progress: 60}, now)
	UpsertFinalResult(c, second, Result{Score: 18, Progress: 90}, now)

	winner, ok := DetermineWinner(c)
	if !ok {
		t.Fatal("expected a winner")
	}
	if winner != second {
		t.Errorf("winner = %s, want the higher final score", winner)
	}
}

func TestDetermineWinner_NoResults(t *testing.T) {
	c := pendingChallenge(uuid.New())
	if _, ok := DetermineWinner(c); ok {
		t.Error("winner reported with no recorded results")
	}
}
