package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"questlogAPI/handlers"
	"questlogAPI/internal/cache"
	"questlogAPI/middleware"
	"questlogAPI/services"
	"questlogAPI/tests/helpers"
)

// TestActivityToStatsFlow walks the core loop: log an activity, watch XP
// land on the profile, and unlock the first achievement it qualifies for.
func TestActivityToStatsFlow(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	queryCache := cache.New()
	userService := services.NewUserService(pool, queryCache)
	friendService := services.NewFriendService(pool, queryCache)
	challengeService := services.NewChallengeService(pool, queryCache, userService, friendService)
	activityService := services.NewActivityService(pool, queryCache, userService, challengeService)
	achievementService := services.NewAchievementService(pool, queryCache, userService)

	userHandler := handlers.NewUserHandler(userService)
	activityHandler := handlers.NewActivityHandler(activityService)
	achievementHandler := handlers.NewAchievementHandler(achievementService)

	userID := helpers.CreateTestUser(t, pool)
	asUser := func(req *http.Request) *http.Request {
		ctx := context.WithValue(req.Context(), middleware.UserIDKey, userID.String())
		return req.WithContext(ctx)
	}

	// Step 1: Log a high intensity workout
	t.Log("Step 1: Submit activity")

	payload := `{"type": "WORKOUT", "title": "Morning run", "duration": 30, "intensity": "HIGH"}`
	req1 := asUser(httptest.NewRequest(http.MethodPost, "/api/activities", bytes.NewReader([]byte(payload))))
	rr1 := httptest.NewRecorder()

	activityHandler.SubmitActivity(rr1, req1)
	require.Equal(t, http.StatusCreated, rr1.Code)

	var submitted services.SubmitActivityResult
	require.NoError(t, json.Unmarshal(rr1.Body.Bytes(), &submitted))
	// 1 XP per minute
	assert.Equal(t, 30, submitted.XPEarned)
	require.NotNil(t, submitted.UpdatedUser)
	assert.Equal(t, 1, submitted.UpdatedUser.Level)
	assert.Equal(t, 30, submitted.UpdatedUser.XP)
	assert.Equal(t, 30, submitted.UpdatedUser.TotalXP)
	assert.Equal(t, 1, submitted.UpdatedUser.StreakCount)
	assert.Equal(t, 0, submitted.NewLevel)

	// Step 2: Stats reflect the credit
	t.Log("Step 2: Verify stats")

	req2 := asUser(httptest.NewRequest(http.MethodGet, "/api/users/stats", nil))
	rr2 := httptest.NewRecorder()

	userHandler.GetStats(rr2, req2)
	require.Equal(t, http.StatusOK, rr2.Code)

	var userStats struct {
		Level       int `json:"level"`
		XP          int `json:"xp"`
		TotalXP     int `json:"totalXP"`
		StreakCount int `json:"streakCount"`
	}
	require.NoError(t, json.Unmarshal(rr2.Body.Bytes(), &userStats))
	assert.Equal(t, 1, userStats.Level)
	assert.Equal(t, 30, userStats.XP)
	assert.Equal(t, 30, userStats.TotalXP)
	assert.Equal(t, 1, userStats.StreakCount)

	// Step 3: The check endpoint offers firstWorkout without persisting it
	t.Log("Step 3: Check achievements")

	req3 := asUser(httptest.NewRequest(http.MethodPost, "/api/achievements/check", nil))
	rr3 := httptest.NewRecorder()

	achievementHandler.CheckAchievements(rr3, req3)
	require.Equal(t, http.StatusOK, rr3.Code)

	var checked struct {
		NewlyQualified []struct {
			ID string `json:"id"`
		} `json:"newlyQualified"`
	}
	require.NoError(t, json.Unmarshal(rr3.Body.Bytes(), &checked))

	qualified := map[string]bool{}
	for _, a := range checked.NewlyQualified {
		qualified[a.ID] = true
	}
	assert.True(t, qualified["firstWorkout"], "firstWorkout should qualify")
	assert.True(t, qualified["firstDay"], "firstDay should qualify")

	// Step 4: Unlock it explicitly and collect the reward
	t.Log("Step 4: Unlock firstWorkout")

	req4 := asUser(httptest.NewRequest(http.MethodPost, "/api/achievements/firstWorkout/unlock", nil))
	req4 = mux.SetURLVars(req4, map[string]string{"id": "firstWorkout"})
	rr4 := httptest.NewRecorder()

	achievementHandler.UnlockAchievement(rr4, req4)
	require.Equal(t, http.StatusOK, rr4.Code)

	var unlocked services.UnlockResult
	require.NoError(t, json.Unmarshal(rr4.Body.Bytes(), &unlocked))
	assert.Equal(t, 25, unlocked.XPAwarded)

	// Step 5: Unlocking again conflicts
	t.Log("Step 5: Re-unlock conflicts")

	req5 := asUser(httptest.NewRequest(http.MethodPost, "/api/achievements/firstWorkout/unlock", nil))
	req5 = mux.SetURLVars(req5, map[string]string{"id": "firstWorkout"})
	rr5 := httptest.NewRecorder()

	achievementHandler.UnlockAchievement(rr5, req5)
	assert.Equal(t, http.StatusConflict, rr5.Code)

	// Step 6: Stats now include the reward
	t.Log("Step 6: Verify reward landed")

	req6 := asUser(httptest.NewRequest(http.MethodGet, "/api/users/stats", nil))
	rr6 := httptest.NewRecorder()

	userHandler.GetStats(rr6, req6)
	require.Equal(t, http.StatusOK, rr6.Code)
	require.NoError(t, json.Unmarshal(rr6.Body.Bytes(), &userStats))
	assert.Equal(t, 55, userStats.TotalXP)
}
