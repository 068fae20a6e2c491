package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"questlogAPI/handlers"
	"questlogAPI/internal/cache"
	modelUser "questlogAPI/internal/user"
	"questlogAPI/services"
	"questlogAPI/tests/helpers"
)

func TestRegisterAndLogin(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	os.Setenv("JWT_SECRET", "test-secret-key-for-testing-only")
	defer os.Unsetenv("JWT_SECRET")

	userService := services.NewUserService(pool, cache.New())
	userHandler := handlers.NewUserHandler(userService)

	email := fmt.Sprintf("test%s@example.com", time.Now().Format("20060102150405"))

	// Step 1: Register
	body, _ := json.Marshal(modelUser.RegisterRequest{Email: email, Password: "secret123"})
	req1 := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewReader(body))
	rr1 := httptest.NewRecorder()

	userHandler.Register(rr1, req1)
	require.Equal(t, http.StatusCreated, rr1.Code, "Register should succeed")

	var registered modelUser.AuthResponse
	require.NoError(t, json.Unmarshal(rr1.Body.Bytes(), &registered))
	assert.NotEmpty(t, registered.Token)
	require.NotNil(t, registered.Stats)
	assert.Equal(t, 1, registered.Stats.Level)
	assert.Equal(t, 0, registered.Stats.XP)

	// Step 2: Duplicate registration conflicts
	req2 := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewReader(body))
	rr2 := httptest.NewRecorder()

	userHandler.Register(rr2, req2)
	assert.Equal(t, http.StatusConflict, rr2.Code)

	// Step 3: Login with correct credentials
	loginBody, _ := json.Marshal(modelUser.LoginRequest{Email: email, Password: "secret123"})
	req3 := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(loginBody))
	rr3 := httptest.NewRecorder()

	userHandler.Login(rr3, req3)
	require.Equal(t, http.StatusOK, rr3.Code)

	var loggedIn modelUser.AuthResponse
	require.NoError(t, json.Unmarshal(rr3.Body.Bytes(), &loggedIn))
	assert.NotEmpty(t, loggedIn.Token)
	assert.Equal(t, registered.Username, loggedIn.Username)

	// Step 4: Wrong password is rejected
	badBody, _ := json.Marshal(modelUser.LoginRequest{Email: email, Password: "wrongpass"})
	req4 := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(badBody))
	rr4 := httptest.NewRecorder()

	userHandler.Login(rr4, req4)
	assert.Equal(t, http.StatusUnauthorized, rr4.Code)
}
