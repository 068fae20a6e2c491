package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"questlogAPI/services"
)

type AchievementHandler struct {
	achievementService *services.AchievementService
}

func NewAchievementHandler(achievementService *services.AchievementService) *AchievementHandler {
	return &AchievementHandler{achievementService: achievementService}
}

func (h *AchievementHandler) ListAchievements(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout*time.Second)
	defer cancel()

	userID, ok := authedUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	statuses, err := h.achievementService.List(ctx, userID)
	if err != nil {
		respondWithServiceError(w, "ListAchievements", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"achievements": statuses})
}

func (h *AchievementHandler) CheckAchievements(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout*time.Second)
	defer cancel()

	userID, ok := authedUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	newlyQualified, err := h.achievementService.Evaluate(ctx, userID)
	if err != nil {
		respondWithServiceError(w, "CheckAchievements", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"newlyQualified": newlyQualified})
}

func (h *AchievementHandler) UnlockAchievement(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout*time.Second)
	defer cancel()

	userID, ok := authedUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	achievementID := mux.Vars(r)["id"]
	result, err := h.achievementService.Unlock(ctx, userID, achievementID)
	if err != nil {
		respondWithServiceError(w, "UnlockAchievement", err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

func (h *AchievementHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout*time.Second)
	defer cancel()

	userID, ok := authedUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	achievementID := mux.Vars(r)["id"]
	percent, err := h.achievementService.Progress(ctx, userID, achievementID)
	if err != nil {
		respondWithServiceError(w, "GetProgress", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"achievementId": achievementID,
		"percent":       percent,
	})
}

func (h *AchievementHandler) ResetAchievements(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout*time.Second)
	defer cancel()

	userID, ok := authedUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := h.achievementService.Reset(ctx, userID); err != nil {
		respondWithServiceError(w, "ResetAchievements", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Achievements reset"})
}
