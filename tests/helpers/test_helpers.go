package helpers

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

// SetupTestDB creates a test database connection
func SetupTestDB(t *testing.T) *pgxpool.Pool {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL or DATABASE_URL must be set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("Failed to ping test database: %v", err)
	}

	return pool
}

// CleanupTestDB removes rows created by the test users and closes the pool.
func CleanupTestDB(t *testing.T, pool *pgxpool.Pool) {
	ctx := context.Background()
	statements := []string{
		`DELETE FROM challenge_participants WHERE user_id IN (SELECT id FROM users WHERE email LIKE 'test%@example.com')`,
		`DELETE FROM challenges WHERE creator_id IN (SELECT id FROM users WHERE email LIKE 'test%@example.com')`,
		`DELETE FROM friendships WHERE requester_id IN (SELECT id FROM users WHERE email LIKE 'test%@example.com')
			OR recipient_id IN (SELECT id FROM users WHERE email LIKE 'test%@example.com')`,
		`DELETE FROM activities WHERE user_id IN (SELECT id FROM users WHERE email LIKE 'test%@example.com')`,
		`DELETE FROM users WHERE email LIKE 'test%@example.com'`,
	}
	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			t.Logf("Warning: failed to cleanup test data: %v", err)
		}
	}
	pool.Close()
}

// CreateTestUser inserts a fresh level-1 user and returns its id.
func CreateTestUser(t *testing.T, pool *pgxpool.Pool) uuid.UUID {
	ctx := context.Background()
	id := uuid.New()
	suffix := time.Now().Format("20060102150405") + id.String()[:8]
	email := fmt.Sprintf("test%s@example.com", suffix)
	username := "testuser" + suffix

	hash, err := bcrypt.GenerateFromPassword([]byte("testpassword"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash test password: %v", err)
	}

	_, err = pool.Exec(ctx, `
	INSERT INTO users (id, email, username, password_hash, level, xp, total_xp, streak_count, unlocked_achievements, last_achievement_check, created_at, updated_at)
	VALUES ($1, $2, $3, $4, 1, 0, 0, 0, '{}', NOW(), NOW(), NOW())
	`, id, email, username, string(hash))
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return id
}
