package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"questlogAPI/internal/apperr"
	"questlogAPI/internal/cache"
	"questlogAPI/internal/friendship"
	"questlogAPI/internal/leaderboard"
)

type FriendService struct {
	db    *pgxpool.Pool
	cache *cache.Cache
}

func NewFriendService(db *pgxpool.Pool, queryCache *cache.Cache) *FriendService {
	return &FriendService{db: db, cache: queryCache}
}

// SendRequest creates a pending friendship from requester to the user with
// the given username. Duplicate requests in either direction are conflicts.
func (s *FriendService) SendRequest(ctx context.Context, requesterID uuid.UUID, username string) (*friendship.Friendship, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("username is required: %w", apperr.ErrValidation)
	}

	var recipientID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE username = $1`, username).Scan(&recipientID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user %q not found: %w", username, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to look up recipient: %w", err)
	}
	if recipientID == requesterID {
		return nil, fmt.Errorf("cannot befriend yourself: %w", apperr.ErrValidation)
	}

	var exists bool
	err = s.db.QueryRow(ctx, `
	SELECT EXISTS(
		SELECT 1 FROM friendships
		WHERE ((requester_id = $1 AND recipient_id = $2) OR (requester_id = $2 AND recipient_id = $1))
		AND status IN ('pending', 'accepted')
	)`, requesterID, recipientID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing friendship: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("friendship already exists or is pending: %w", apperr.ErrConflict)
	}

	f := &friendship.Friendship{
		ID:          uuid.New(),
		RequesterID: requesterID,
		RecipientID: recipientID,
		Status:      friendship.StatusPending,
		CreatedAt:   time.Now(),
	}
	_, err = s.db.Exec(ctx, `
	INSERT INTO friendships (id, requester_id, recipient_id, status, created_at)
	VALUES ($1, $2, $3, $4, $5)
	`, f.ID, f.RequesterID, f.RecipientID, f.Status, f.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create friend request: %w", err)
	}

	log.Printf("SendRequest: user %s sent friend request to %s", requesterID, recipientID)
	return f, nil
}

// RespondToRequest lets the recipient accept or decline a pending request.
func (s *FriendService) RespondToRequest(ctx context.Context, requestID, userID uuid.UUID, accept bool) error {
	status := friendship.StatusDeclined
	if accept {
		status = friendship.StatusAccepted
	}

	tag, err := s.db.Exec(ctx, `
	UPDATE friendships SET status = $3, responded_at = NOW()
	WHERE id = $1 AND recipient_id = $2 AND status = 'pending'
	`, requestID, userID, status)
	if err != nil {
		return fmt.Errorf("failed to respond to friend request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("pending request %s not found for user %s: %w", requestID, userID, apperr.ErrNotFound)
	}

	log.Printf("RespondToRequest: user %s set request %s to %s", userID, requestID, status)
	return nil
}

// RemoveFriend deletes an accepted friendship between the two users.
func (s *FriendService) RemoveFriend(ctx context.Context, userID, friendID uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `
	DELETE FROM friendships
	WHERE ((requester_id = $1 AND recipient_id = $2) OR (requester_id = $2 AND recipient_id = $1))
	AND status = 'accepted'
	`, userID, friendID)
	if err != nil {
		return fmt.Errorf("failed to remove friend: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("friendship not found: %w", apperr.ErrNotFound)
	}
	return nil
}

// AreFriends reports whether the two users share an accepted friendship.
func (s *FriendService) AreFriends(ctx context.Context, a, b uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `
	SELECT EXISTS(
		SELECT 1 FROM friendships
		WHERE ((requester_id = $1 AND recipient_id = $2) OR (requester_id = $2 AND recipient_id = $1))
		AND status = 'accepted'
	)`, a, b).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check friendship: %w", err)
	}
	return exists, nil
}

// GetFriends returns the profiles of all accepted friends.
func (s *FriendService) GetFriends(ctx context.Context, userID uuid.UUID) ([]*friendship.Friend, error) {
	query := `
	SELECT u.id, u.username, u.email, u.level, u.xp, u.streak_count, u.unlocked_achievements, f.id, f.created_at
	FROM friendships f
	JOIN users u ON u.id = CASE WHEN f.requester_id = $1 THEN f.recipient_id ELSE f.requester_id END
	WHERE (f.requester_id = $1 OR f.recipient_id = $1) AND f.status = 'accepted'
	ORDER BY u.username
	`
	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list friends: %w", err)
	}
	defer rows.Close()

	friends := []*friendship.Friend{}
	for rows.Next() {
		f := &friendship.Friend{}
		if err := rows.Scan(&f.ID, &f.Username, &f.Email, &f.Level, &f.XP, &f.StreakCount, &f.UnlockedAchievements, &f.FriendshipID, &f.Since); err != nil {
			return nil, fmt.Errorf("failed to scan friend: %w", err)
		}
		friends = append(friends, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate friends: %w", err)
	}
	return friends, nil
}

// GetPendingRequests returns incoming requests awaiting the user's answer.
func (s *FriendService) GetPendingRequests(ctx context.Context, userID uuid.UUID) ([]*friendship.PendingRequest, error) {
	query := `
	SELECT f.id, f.requester_id, u.username, u.level, f.created_at
	FROM friendships f
	JOIN users u ON u.id = f.requester_id
	WHERE f.recipient_id = $1 AND f.status = 'pending'
	ORDER BY f.created_at DESC
	`
	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending requests: %w", err)
	}
	defer rows.Close()

	requests := []*friendship.PendingRequest{}
	for rows.Next() {
		r := &friendship.PendingRequest{}
		if err := rows.Scan(&r.ID, &r.RequesterID, &r.RequesterUsername, &r.RequesterLevel, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan pending request: %w", err)
		}
		requests = append(requests, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pending requests: %w", err)
	}
	return requests, nil
}

// SearchUsers finds users by username prefix, excluding the searcher.
func (s *FriendService) SearchUsers(ctx context.Context, userID uuid.UUID, term string, limit int) ([]*friendship.Friend, error) {
	term = strings.TrimSpace(term)
	if len(term) < 2 {
		return nil, fmt.Errorf("search term must be at least 2 characters: %w", apperr.ErrValidation)
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}

	query := `
	SELECT id, username, email, level, xp, streak_count, unlocked_achievements
	FROM users
	WHERE username ILIKE $2 AND id != $1
	ORDER BY username
	LIMIT $3
	`
	rows, err := s.db.Query(ctx, query, userID, term+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	defer rows.Close()

	results := []*friendship.Friend{}
	for rows.Next() {
		f := &friendship.Friend{}
		if err := rows.Scan(&f.ID, &f.Username, &f.Email, &f.Level, &f.XP, &f.StreakCount, &f.UnlockedAchievements); err != nil {
			return nil, fmt.Errorf("failed to scan search result: %w", err)
		}
		results = append(results, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate search results: %w", err)
	}
	return results, nil
}

// GetFriendsLeaderboard ranks the user and their accepted friends by total
// XP. The result is cached per user with the stats TTL.
func (s *FriendService) GetFriendsLeaderboard(ctx context.Context, userID uuid.UUID) (*leaderboard.Leaderboard, error) {
	cacheKey := cache.Key("friends_leaderboard", userID.String())
	if cached, ok := s.cache.Get(cacheKey); ok {
		return cached.(*leaderboard.Leaderboard), nil
	}

	query := `
	SELECT u.id, u.username, u.level, u.total_xp, u.streak_count
	FROM users u
	WHERE u.id = $1 OR u.id IN (
		SELECT CASE WHEN f.requester_id = $1 THEN f.recipient_id ELSE f.requester_id END
		FROM friendships f
		WHERE (f.requester_id = $1 OR f.recipient_id = $1) AND f.status = 'accepted'
	)
	ORDER BY u.total_xp DESC, u.username
	`
	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to build leaderboard: %w", err)
	}
	defer rows.Close()

	lb := &leaderboard.Leaderboard{Entries: []*leaderboard.Entry{}}
	for rows.Next() {
		e := &leaderboard.Entry{}
		if err := rows.Scan(&e.UserID, &e.Username, &e.Level, &e.TotalXP, &e.StreakCount); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard entry: %w", err)
		}
		e.Rank = len(lb.Entries) + 1
		lb.Entries = append(lb.Entries, e)
		if e.UserID == userID {
			lb.UserPosition = e
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate leaderboard: %w", err)
	}
	lb.TotalUsers = len(lb.Entries)

	s.cache.Set(cacheKey, lb, cache.UserStatsTTL, cache.UserTag(userID.String()))
	return lb, nil
}
