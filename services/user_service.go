package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"questlogAPI/internal/apperr"
	"questlogAPI/internal/cache"
	"questlogAPI/internal/progression"
	"questlogAPI/internal/stats"
	"questlogAPI/internal/user"
)

type UserService struct {
	db    *pgxpool.Pool
	cache *cache.Cache
}

func NewUserService(db *pgxpool.Pool, queryCache *cache.Cache) *UserService {
	return &UserService{db: db, cache: queryCache}
}

func (s *UserService) Register(ctx context.Context, req *user.RegisterRequest) (*user.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, fmt.Errorf("email and password are required: %w", apperr.ErrValidation)
	}
	if len(req.Password) < 6 {
		return nil, fmt.Errorf("password must be at least 6 characters: %w", apperr.ErrValidation)
	}

	var exists bool
	err := s.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing email: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("email already registered: %w", apperr.ErrConflict)
	}

	// Derive a username from the email, suffixing a random number on collision.
	username := strings.Split(email, "@")[0]
	err = s.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`, username).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing username: %w", err)
	}
	if exists {
		username = fmt.Sprintf("%s%d", username, rand.Intn(1000))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &user.User{
		ID:        uuid.New(),
		Email:     email,
		Username:  username,
		Level:     1,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	query := `
	INSERT INTO users (id, email, username, password_hash, level, xp, total_xp, streak_count, unlocked_achievements, last_achievement_check, created_at, updated_at)
	VALUES ($1, $2, $3, $4, 1, 0, 0, 0, '{}', NOW(), $5, $6)
	`

	_, err = s.db.Exec(ctx, query, u.ID, u.Email, u.Username, string(hash), u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return u, nil
}

func (s *UserService) Authenticate(ctx context.Context, req *user.LoginRequest) (*user.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	u := &user.User{}
	query := `
	SELECT id, email, username, password_hash, level, xp, total_xp, streak_count, created_at, updated_at
	FROM users
	WHERE email = $1
	`
	err := s.db.QueryRow(ctx, query, email).Scan(
		&u.ID,
		&u.Email,
		&u.Username,
		&u.PasswordHash,
		&u.Level,
		&u.XP,
		&u.TotalXP,
		&u.StreakCount,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("invalid credentials: %w", apperr.ErrUnauthorized)
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", apperr.ErrUnauthorized)
	}

	return u, nil
}

func (s *UserService) GetUserByID(ctx context.Context, userID uuid.UUID) (*user.User, error) {
	u := &user.User{}
	query := `
	SELECT id, email, username, level, xp, total_xp, streak_count, last_activity, unlocked_achievements, last_achievement_check, created_at, updated_at
	FROM users
	WHERE id = $1
	`
	err := s.db.QueryRow(ctx, query, userID).Scan(
		&u.ID,
		&u.Email,
		&u.Username,
		&u.Level,
		&u.XP,
		&u.TotalXP,
		&u.StreakCount,
		&u.LastActivity,
		&u.UnlockedAchievements,
		&u.LastAchievementCheck,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user not found: %w", apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return u, nil
}

// GetUserStats returns the progression snapshot, served from cache for up
// to a minute. Writes that change the user invalidate this entry.
func (s *UserService) GetUserStats(ctx context.Context, userID uuid.UUID) (*stats.UserStats, error) {
	cacheKey := cache.Key("user_stats", userID.String())
	if cached, ok := s.cache.Get(cacheKey); ok {
		return cached.(*stats.UserStats), nil
	}

	s.cache.StartQuery("getUserStats")
	defer func() {
		duration := s.cache.EndQuery("getUserStats")
		log.Printf("GetUserStats: query completed in %s", duration)
	}()

	us := &stats.UserStats{}
	query := `SELECT level, xp, total_xp, streak_count FROM users WHERE id = $1`
	err := s.db.QueryRow(ctx, query, userID).Scan(&us.Level, &us.XP, &us.TotalXP, &us.StreakCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user not found: %w", apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user stats: %w", err)
	}

	s.cache.Set(cacheKey, us, cache.UserStatsTTL, cache.UserTag(userID.String()))
	return us, nil
}

// CreditXP applies an XP amount to the user's progression inside a
// transaction, carrying level-up overflow, and invalidates the user's
// cached reads. Returns the post-credit state and the new level if the
// credit caused at least one level-up, 0 otherwise.
func (s *UserService) CreditXP(ctx context.Context, userID uuid.UUID, amount int) (progression.LevelState, int, error) {
	if amount < 0 {
		return progression.LevelState{}, 0, fmt.Errorf("xp amount must be non-negative: %w", apperr.ErrValidation)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return progression.LevelState{}, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	state := &progression.LevelState{}
	err = tx.QueryRow(ctx, `SELECT level, xp, total_xp FROM users WHERE id = $1 FOR UPDATE`, userID).
		Scan(&state.Level, &state.XP, &state.TotalXP)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return progression.LevelState{}, 0, fmt.Errorf("user not found: %w", apperr.ErrNotFound)
		}
		return progression.LevelState{}, 0, fmt.Errorf("failed to load user progression: %w", err)
	}

	newLevel := progression.ApplyXP(state, amount)

	_, err = tx.Exec(ctx,
		`UPDATE users SET level = $2, xp = $3, total_xp = $4, updated_at = NOW() WHERE id = $1`,
		userID, state.Level, state.XP, state.TotalXP,
	)
	if err != nil {
		return progression.LevelState{}, 0, fmt.Errorf("failed to update user progression: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return progression.LevelState{}, 0, fmt.Errorf("failed to commit xp credit: %w", err)
	}

	s.cache.InvalidateUser(userID.String())
	return *state, newLevel, nil
}

// TouchStreak advances the consecutive-day counter for an activity logged
// now: same calendar day leaves it unchanged, the day after the previous
// activity increments it, anything else resets it to 1. Returns the
// resulting streak count.
func (s *UserService) TouchStreak(ctx context.Context, userID uuid.UUID, now time.Time) (int, error) {
	var lastActivity *time.Time
	var streak int
	err := s.db.QueryRow(ctx, `SELECT last_activity, streak_count FROM users WHERE id = $1`, userID).
		Scan(&lastActivity, &streak)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("user not found: %w", apperr.ErrNotFound)
		}
		return 0, fmt.Errorf("failed to load streak: %w", err)
	}

	streak = nextStreak(lastActivity, now, streak)

	_, err = s.db.Exec(ctx,
		`UPDATE users SET streak_count = $2, last_activity = $3, updated_at = NOW() WHERE id = $1`,
		userID, streak, now,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to update streak: %w", err)
	}

	s.cache.Invalidate(cache.UserTag(userID.String()))
	return streak, nil
}

// nextStreak compares calendar-date keys, the same day bucketing the
// scoring and achievement engines use, so local-midnight boundaries agree
// everywhere regardless of time zone.
func nextStreak(lastActivity *time.Time, now time.Time, current int) int {
	today := now.Format("2006-01-02")
	switch {
	case lastActivity == nil:
		return 1
	case lastActivity.Format("2006-01-02") == today:
		if current < 1 {
			return 1
		}
		return current
	case lastActivity.AddDate(0, 0, 1).Format("2006-01-02") == today:
		return current + 1
	default:
		return 1
	}
}
