package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"questlogAPI/internal/achievement"
	"questlogAPI/internal/apperr"
	"questlogAPI/internal/cache"
	"questlogAPI/internal/stats"
)

type AchievementService struct {
	db        *pgxpool.Pool
	cache     *cache.Cache
	evaluator *achievement.Evaluator
	users     *UserService
}

func NewAchievementService(db *pgxpool.Pool, queryCache *cache.Cache, users *UserService) *AchievementService {
	return &AchievementService{
		db:        db,
		cache:     queryCache,
		evaluator: achievement.NewEvaluator(),
		users:     users,
	}
}

// Evaluate returns the achievements the user currently qualifies for but
// has not unlocked. It never persists anything; unlocking is a separate
// explicit call so the client controls when the celebration happens.
func (s *AchievementService) Evaluate(ctx context.Context, userID uuid.UUID) ([]achievement.Definition, error) {
	userStats, unlocked, err := s.loadEvaluationInput(ctx, userID)
	if err != nil {
		return nil, err
	}
	activities, err := loadAllActivities(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}

	newlyQualified := s.evaluator.Evaluate(*userStats, unlocked, activities)

	_, err = s.db.Exec(ctx, `UPDATE users SET last_achievement_check = NOW() WHERE id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to record achievement check: %w", err)
	}

	return newlyQualified, nil
}

type UnlockResult struct {
	Achievement achievement.Definition `json:"achievement"`
	XPAwarded   int                    `json:"xpAwarded"`
	NewLevel    int                    `json:"newLevel,omitempty"`
}

// Unlock persists a single achievement for the user and credits its XP
// reward. Unlocking the same achievement twice is a conflict, which keeps
// the reward idempotent under client retries.
func (s *AchievementService) Unlock(ctx context.Context, userID uuid.UUID, achievementID string) (*UnlockResult, error) {
	def, ok := s.evaluator.Lookup(achievementID)
	if !ok {
		return nil, fmt.Errorf("unknown achievement %q: %w", achievementID, apperr.ErrNotFound)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var unlocked []string
	err = tx.QueryRow(ctx, `SELECT unlocked_achievements FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&unlocked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user not found: %w", apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load unlocked achievements: %w", err)
	}

	for _, id := range unlocked {
		if id == achievementID {
			return nil, fmt.Errorf("achievement %q already unlocked: %w", achievementID, apperr.ErrConflict)
		}
	}

	_, err = tx.Exec(ctx, `
	UPDATE users SET unlocked_achievements = array_append(unlocked_achievements, $2), updated_at = NOW()
	WHERE id = $1
	`, userID, achievementID)
	if err != nil {
		return nil, fmt.Errorf("failed to store unlocked achievement: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit unlock: %w", err)
	}

	newLevel := 0
	if def.XPReward > 0 {
		_, newLevel, err = s.users.CreditXP(ctx, userID, def.XPReward)
		if err != nil {
			return nil, fmt.Errorf("failed to credit achievement reward: %w", err)
		}
	}
	s.cache.InvalidateUser(userID.String())

	log.Printf("Unlock: user %s unlocked %q (+%d xp)", userID, achievementID, def.XPReward)
	return &UnlockResult{Achievement: def, XPAwarded: def.XPReward, NewLevel: newLevel}, nil
}

// List returns the full catalog annotated with the user's unlock state and
// partial progress for locked entries.
func (s *AchievementService) List(ctx context.Context, userID uuid.UUID) ([]achievement.WithStatus, error) {
	userStats, unlocked, err := s.loadEvaluationInput(ctx, userID)
	if err != nil {
		return nil, err
	}
	activities, err := loadAllActivities(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	return s.evaluator.Statuses(*userStats, unlocked, activities), nil
}

// Progress returns the completion percentage for one achievement.
func (s *AchievementService) Progress(ctx context.Context, userID uuid.UUID, achievementID string) (float64, error) {
	if _, ok := s.evaluator.Lookup(achievementID); !ok {
		return 0, fmt.Errorf("unknown achievement %q: %w", achievementID, apperr.ErrNotFound)
	}
	userStats, _, err := s.loadEvaluationInput(ctx, userID)
	if err != nil {
		return 0, err
	}
	activities, err := loadAllActivities(ctx, s.db, userID)
	if err != nil {
		return 0, err
	}
	return s.evaluator.Progress(achievementID, *userStats, activities), nil
}

// Reset clears the user's unlocked set. Earned XP is not clawed back.
func (s *AchievementService) Reset(ctx context.Context, userID uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `
	UPDATE users SET unlocked_achievements = '{}', updated_at = NOW() WHERE id = $1
	`, userID)
	if err != nil {
		return fmt.Errorf("failed to reset achievements: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user not found: %w", apperr.ErrNotFound)
	}

	s.cache.InvalidateUser(userID.String())
	log.Printf("Reset: cleared achievements for user %s", userID)
	return nil
}

func (s *AchievementService) loadEvaluationInput(ctx context.Context, userID uuid.UUID) (*stats.UserStats, []string, error) {
	us := &stats.UserStats{}
	var unlocked []string
	err := s.db.QueryRow(ctx, `
	SELECT level, xp, total_xp, streak_count, unlocked_achievements FROM users WHERE id = $1
	`, userID).Scan(&us.Level, &us.XP, &us.TotalXP, &us.StreakCount, &unlocked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, fmt.Errorf("user not found: %w", apperr.ErrNotFound)
		}
		return nil, nil, fmt.Errorf("failed to load user for evaluation: %w", err)
	}
	return us, unlocked, nil
}
