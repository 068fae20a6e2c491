package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"questlogAPI/internal/user"
	"questlogAPI/middleware"
	"questlogAPI/services"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// authedUserID extracts and parses the authenticated user id set by the
// auth middleware.
func authedUserID(r *http.Request) (uuid.UUID, bool) {
	raw, ok := middleware.GetUserID(r.Context())
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout*time.Second)
	defer cancel()

	var req user.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	u, err := h.userService.Register(ctx, &req)
	if err != nil {
		respondWithServiceError(w, "Register", err)
		return
	}

	token, err := middleware.IssueToken(u.ID.String())
	if err != nil {
		respondWithServiceError(w, "Register", err)
		return
	}

	respondWithJSON(w, http.StatusCreated, user.AuthResponse{
		Token:    token,
		Username: u.Username,
		Message:  "Account created",
		Stats:    &user.AuthStats{Level: u.Level, XP: u.XP},
	})
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout*time.Second)
	defer cancel()

	var req user.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	u, err := h.userService.Authenticate(ctx, &req)
	if err != nil {
		respondWithServiceError(w, "Login", err)
		return
	}

	token, err := middleware.IssueToken(u.ID.String())
	if err != nil {
		respondWithServiceError(w, "Login", err)
		return
	}

	respondWithJSON(w, http.StatusOK, user.AuthResponse{
		Token:    token,
		Username: u.Username,
		Stats:    &user.AuthStats{Level: u.Level, XP: u.XP},
	})
}

func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout*time.Second)
	defer cancel()

	userID, ok := authedUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	u, err := h.userService.GetUserByID(ctx, userID)
	if err != nil {
		respondWithServiceError(w, "GetProfile", err)
		return
	}

	respondWithJSON(w, http.StatusOK, u)
}

func (h *UserHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout*time.Second)
	defer cancel()

	userID, ok := authedUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	userStats, err := h.userService.GetUserStats(ctx, userID)
	if err != nil {
		respondWithServiceError(w, "GetStats", err)
		return
	}

	respondWithJSON(w, http.StatusOK, userStats)
}
