package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"questlogAPI/internal/apperr"
	"questlogAPI/internal/cache"
	"questlogAPI/internal/challenge"
)

const (
	minChallengeDuration = 1
	maxChallengeDuration = 365
	maxChallengeReward   = 10000
)

type ChallengeService struct {
	db      *pgxpool.Pool
	cache   *cache.Cache
	users   *UserService
	friends *FriendService
}

func NewChallengeService(db *pgxpool.Pool, queryCache *cache.Cache, users *UserService, friends *FriendService) *ChallengeService {
	return &ChallengeService{db: db, cache: queryCache, users: users, friends: friends}
}

type CreateChallengeRequest struct {
	Name         string         `json:"name"`
	Description  string         `json:"description"`
	Type         challenge.Type `json:"type"`
	Duration     int            `json:"duration"`
	Reward       int            `json:"reward"`
	InvitedUsers []uuid.UUID    `json:"invitedUsers"`
}

// CreateChallenge validates the request, requires every invitee to be an
// accepted friend of the creator, and persists the challenge in pending
// state with the creator as its first participant. The friendship check is
// all-or-nothing: one non-friend invitee rejects the whole request.
func (s *ChallengeService) CreateChallenge(ctx context.Context, creatorID uuid.UUID, req *CreateChallengeRequest) (*challenge.Challenge, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("challenge name is required: %w", apperr.ErrValidation)
	}
	if !challenge.ValidType(req.Type) {
		return nil, fmt.Errorf("unknown challenge type %q: %w", req.Type, apperr.ErrValidation)
	}
	if req.Duration < minChallengeDuration || req.Duration > maxChallengeDuration {
		return nil, fmt.Errorf("duration must be between %d and %d days: %w", minChallengeDuration, maxChallengeDuration, apperr.ErrValidation)
	}
	if req.Reward < 0 || req.Reward > maxChallengeReward {
		return nil, fmt.Errorf("reward must be between 0 and %d xp: %w", maxChallengeReward, apperr.ErrValidation)
	}
	if len(req.InvitedUsers) == 0 {
		return nil, fmt.Errorf("at least one invitee is required: %w", apperr.ErrValidation)
	}

	for _, invitee := range req.InvitedUsers {
		if invitee == creatorID {
			return nil, fmt.Errorf("cannot invite yourself: %w", apperr.ErrValidation)
		}
		areFriends, err := s.friends.AreFriends(ctx, creatorID, invitee)
		if err != nil {
			return nil, fmt.Errorf("failed to verify friendship: %w", err)
		}
		if !areFriends {
			return nil, fmt.Errorf("user %s is not a friend: %w", invitee, apperr.ErrValidation)
		}
	}

	now := time.Now()
	c := &challenge.Challenge{
		ID:           uuid.New(),
		Name:         req.Name,
		Description:  req.Description,
		Type:         req.Type,
		Duration:     req.Duration,
		Reward:       req.Reward,
		CreatorID:    creatorID,
		Participants: []uuid.UUID{creatorID},
		InvitedUsers: req.InvitedUsers,
		Status:       challenge.StatusPending,
		StartDate:    now,
		EndDate:      now.AddDate(0, 0, req.Duration),
		CreatedAt:    now,
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
	INSERT INTO challenges (id, name, description, type, duration, reward, creator_id, status, start_date, end_date, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, c.ID, c.Name, c.Description, c.Type, c.Duration, c.Reward, c.CreatorID, c.Status, c.StartDate, c.EndDate, c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert challenge: %w", err)
	}

	_, err = tx.Exec(ctx, `
	INSERT INTO challenge_participants (challenge_id, user_id, state, last_updated)
	VALUES ($1, $2, 'accepted', $3)
	`, c.ID, creatorID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to insert creator participant: %w", err)
	}

	for _, invitee := range c.InvitedUsers {
		_, err = tx.Exec(ctx, `
		INSERT INTO challenge_participants (challenge_id, user_id, state, last_updated)
		VALUES ($1, $2, 'invited', $3)
		`, c.ID, invitee, now)
		if err != nil {
			return nil, fmt.Errorf("failed to insert invitee: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit challenge: %w", err)
	}

	log.Printf("CreateChallenge: user %s created challenge %s (%s) with %d invitees", creatorID, c.ID, c.Type, len(c.InvitedUsers))
	return c, nil
}

type InviteResponse struct {
	ChallengeID uuid.UUID        `json:"challengeId"`
	Status      challenge.Status `json:"status"`
	Activated   bool             `json:"activated"`
	Deleted     bool             `json:"deleted"`
}

// RespondToInvite applies an accept or decline to a pending invite.
// Acceptance that answers the last outstanding invite activates the
// challenge. A decline by the last invitee with only the creator left
// deletes the challenge entirely.
func (s *ChallengeService) RespondToInvite(ctx context.Context, challengeID, userID uuid.UUID, accept bool) (*InviteResponse, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	c, err := s.loadChallenge(ctx, tx, challengeID)
	if err != nil {
		return nil, err
	}
	if c.Status != challenge.StatusPending {
		return nil, fmt.Errorf("challenge %s is not accepting responses: %w", challengeID, apperr.ErrValidation)
	}

	var outcome challenge.InviteOutcome
	if accept {
		outcome, err = challenge.AcceptInvite(c, userID)
	} else {
		outcome, err = challenge.DeclineInvite(c, userID)
	}
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if outcome.Deleted {
		if _, err := tx.Exec(ctx, `DELETE FROM challenge_participants WHERE challenge_id = $1`, challengeID); err != nil {
			return nil, fmt.Errorf("failed to delete participants: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM challenges WHERE id = $1`, challengeID); err != nil {
			return nil, fmt.Errorf("failed to delete challenge: %w", err)
		}
	} else {
		if accept {
			_, err = tx.Exec(ctx, `
			UPDATE challenge_participants SET state = 'accepted', last_updated = $3
			WHERE challenge_id = $1 AND user_id = $2
			`, challengeID, userID, now)
		} else {
			_, err = tx.Exec(ctx, `
			DELETE FROM challenge_participants WHERE challenge_id = $1 AND user_id = $2
			`, challengeID, userID)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to record invite response: %w", err)
		}

		if outcome.Activated {
			if _, err := tx.Exec(ctx, `UPDATE challenges SET status = $2 WHERE id = $1`, challengeID, challenge.StatusActive); err != nil {
				return nil, fmt.Errorf("failed to activate challenge: %w", err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit invite response: %w", err)
	}

	log.Printf("RespondToInvite: user %s %s challenge %s (activated=%t deleted=%t)",
		userID, map[bool]string{true: "accepted", false: "declined"}[accept], challengeID, outcome.Activated, outcome.Deleted)

	return &InviteResponse{
		ChallengeID: challengeID,
		Status:      outcome.Status,
		Activated:   outcome.Activated,
		Deleted:     outcome.Deleted,
	}, nil
}

// RecomputeForUser rescores every active challenge the user participates
// in against their current activity history. Called after each activity
// submission; failures here are logged by the caller and never block the
// submission itself.
func (s *ChallengeService) RecomputeForUser(ctx context.Context, userID uuid.UUID) error {
	rows, err := s.db.Query(ctx, `
	SELECT c.id
	FROM challenges c
	JOIN challenge_participants p ON p.challenge_id = c.id
	WHERE p.user_id = $1 AND p.state = 'accepted' AND c.status = 'active'
	`, userID)
	if err != nil {
		return fmt.Errorf("failed to list active challenges: %w", err)
	}
	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan challenge id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate challenge ids: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}

	activities, err := loadAllActivities(ctx, s.db, userID)
	if err != nil {
		return err
	}

	now := time.Now()
	for _, id := range ids {
		c, err := s.loadChallenge(ctx, s.db, id)
		if err != nil {
			return err
		}
		result := challenge.Score(c, activities)
		_, err = s.db.Exec(ctx, `
		UPDATE challenge_participants SET score = $3, progress = $4, last_updated = $5
		WHERE challenge_id = $1 AND user_id = $2
		`, id, userID, result.Score, result.Progress, now)
		if err != nil {
			return fmt.Errorf("failed to store recomputed score: %w", err)
		}
	}

	return nil
}

// ChallengeDetail is a challenge plus freshly computed scores for every
// participant, so the detail view never shows stale standings.
type ChallengeDetail struct {
	Challenge *challenge.Challenge `json:"challenge"`
	Standings []ParticipantScore   `json:"standings"`
}

type ParticipantScore struct {
	UserID   uuid.UUID `json:"userId"`
	Username string    `json:"username"`
	Score    float64   `json:"score"`
	Progress float64   `json:"progress"`
}

// GetChallengeDetail returns the challenge with live per-participant
// scores. Only participants and invitees may view it.
func (s *ChallengeService) GetChallengeDetail(ctx context.Context, challengeID, userID uuid.UUID) (*ChallengeDetail, error) {
	c, err := s.loadChallenge(ctx, s.db, challengeID)
	if err != nil {
		return nil, err
	}
	if !c.IsParticipant(userID) && !c.IsInvited(userID) {
		return nil, fmt.Errorf("user %s has no access to challenge %s: %w", userID, challengeID, apperr.ErrUnauthorized)
	}

	detail := &ChallengeDetail{Challenge: c, Standings: []ParticipantScore{}}
	for _, participantID := range c.Participants {
		var username string
		err := s.db.QueryRow(ctx, `SELECT username FROM users WHERE id = $1`, participantID).Scan(&username)
		if err != nil {
			return nil, fmt.Errorf("failed to load participant username: %w", err)
		}

		score := ParticipantScore{UserID: participantID, Username: username}
		if c.Status == challenge.StatusCompleted {
			r := c.ResultFor(participantID)
			score.Score = r.FinalScore
			score.Progress = r.FinalProgress
		} else {
			activities, err := loadAllActivities(ctx, s.db, participantID)
			if err != nil {
				return nil, err
			}
			result := challenge.Score(c, activities)
			score.Score = result.Score
			score.Progress = result.Progress
		}
		detail.Standings = append(detail.Standings, score)
	}

	return detail, nil
}

// GetActiveChallenges lists pending and active challenges the user has joined.
func (s *ChallengeService) GetActiveChallenges(ctx context.Context, userID uuid.UUID) ([]*challenge.Challenge, error) {
	return s.listChallenges(ctx, userID, `p.state = 'accepted' AND c.status IN ('pending', 'active')`)
}

// GetInvites lists pending challenges the user has been invited to but not answered.
func (s *ChallengeService) GetInvites(ctx context.Context, userID uuid.UUID) ([]*challenge.Challenge, error) {
	return s.listChallenges(ctx, userID, `p.state = 'invited' AND c.status = 'pending'`)
}

// GetHistory lists the user's completed challenges, newest first.
func (s *ChallengeService) GetHistory(ctx context.Context, userID uuid.UUID) ([]*challenge.Challenge, error) {
	return s.listChallenges(ctx, userID, `p.state = 'accepted' AND c.status = 'completed'`)
}

func (s *ChallengeService) listChallenges(ctx context.Context, userID uuid.UUID, cond string) ([]*challenge.Challenge, error) {
	query := fmt.Sprintf(`
	SELECT c.id
	FROM challenges c
	JOIN challenge_participants p ON p.challenge_id = c.id
	WHERE p.user_id = $1 AND %s
	ORDER BY c.created_at DESC
	`, cond)

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list challenges: %w", err)
	}
	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan challenge id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate challenge ids: %w", err)
	}

	challenges := []*challenge.Challenge{}
	for _, id := range ids {
		c, err := s.loadChallenge(ctx, s.db, id)
		if err != nil {
			return nil, err
		}
		challenges = append(challenges, c)
	}
	return challenges, nil
}

// SweepExpired finalizes every active challenge past its end date: final
// scores are frozen, the winner is picked by highest final score and the
// reward XP is credited through normal progression.
func (s *ChallengeService) SweepExpired(ctx context.Context) (int, error) {
	rows, err := s.db.Query(ctx, `SELECT id FROM challenges WHERE status = 'active' AND end_date < NOW()`)
	if err != nil {
		return 0, fmt.Errorf("failed to find expired challenges: %w", err)
	}
	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, fmt.Errorf("failed to scan expired challenge id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("failed to iterate expired challenge ids: %w", err)
	}

	completed := 0
	for _, id := range ids {
		if err := s.finalizeChallenge(ctx, id); err != nil {
			log.Printf("SweepExpired: failed to finalize challenge %s: %v", id, err)
			continue
		}
		completed++
	}

	if completed > 0 {
		log.Printf("SweepExpired: completed %d challenge(s)", completed)
	}
	return completed, nil
}

func (s *ChallengeService) finalizeChallenge(ctx context.Context, challengeID uuid.UUID) error {
	c, err := s.loadChallenge(ctx, s.db, challengeID)
	if err != nil {
		return err
	}

	now := time.Now()
	for _, participantID := range c.Participants {
		activities, err := loadAllActivities(ctx, s.db, participantID)
		if err != nil {
			return err
		}
		result := challenge.Score(c, activities)
		challenge.UpsertFinalResult(c, participantID, result, now)

		_, err = s.db.Exec(ctx, `
		UPDATE challenge_participants SET final_score = $3, final_progress = $4, last_updated = $5
		WHERE challenge_id = $1 AND user_id = $2
		`, challengeID, participantID, result.Score, result.Progress, now)
		if err != nil {
			return fmt.Errorf("failed to store final score: %w", err)
		}
	}

	var winnerID *uuid.UUID
	if winner, ok := challenge.DetermineWinner(c); ok {
		winnerID = &winner
	}

	_, err = s.db.Exec(ctx, `UPDATE challenges SET status = $2, winner_id = $3 WHERE id = $1`,
		challengeID, challenge.StatusCompleted, winnerID)
	if err != nil {
		return fmt.Errorf("failed to complete challenge: %w", err)
	}

	if winnerID != nil && c.Reward > 0 {
		if _, _, err := s.users.CreditXP(ctx, *winnerID, c.Reward); err != nil {
			return fmt.Errorf("failed to credit challenge reward: %w", err)
		}
		log.Printf("finalizeChallenge: challenge %s won by %s, %d xp credited", challengeID, *winnerID, c.Reward)
	}

	for _, participantID := range c.Participants {
		s.cache.InvalidateUser(participantID.String())
	}
	return nil
}

type queryer interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (s *ChallengeService) loadChallenge(ctx context.Context, q queryer, challengeID uuid.UUID) (*challenge.Challenge, error) {
	c := &challenge.Challenge{}
	err := q.QueryRow(ctx, `
	SELECT id, name, description, type, duration, reward, creator_id, status, start_date, end_date, winner_id, created_at
	FROM challenges
	WHERE id = $1
	`, challengeID).Scan(
		&c.ID, &c.Name, &c.Description, &c.Type, &c.Duration, &c.Reward,
		&c.CreatorID, &c.Status, &c.StartDate, &c.EndDate, &c.WinnerID, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("challenge not found: %w", apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load challenge: %w", err)
	}

	rows, err := q.Query(ctx, `
	SELECT user_id, state, score, progress, final_score, final_progress, last_updated
	FROM challenge_participants
	WHERE challenge_id = $1
	`, challengeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load participants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var userID uuid.UUID
		var state string
		var r challenge.ParticipantResult
		if err := rows.Scan(&userID, &state, &r.Score, &r.Progress, &r.FinalScore, &r.FinalProgress, &r.LastUpdated); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		r.UserID = userID
		switch state {
		case "accepted":
			c.Participants = append(c.Participants, userID)
			c.ParticipantResults = append(c.ParticipantResults, r)
		case "invited":
			c.InvitedUsers = append(c.InvitedUsers, userID)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}

	return c, nil
}
