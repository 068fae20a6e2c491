package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"questlogAPI/services"
)

type ChallengeHandler struct {
	challengeService *services.ChallengeService
}

func NewChallengeHandler(challengeService *services.ChallengeService) *ChallengeHandler {
	return &ChallengeHandler{challengeService: challengeService}
}

func (h *ChallengeHandler) CreateChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout*time.Second)
	defer cancel()

	userID, ok := authedUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req services.CreateChallengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	c, err := h.challengeService.CreateChallenge(ctx, userID, &req)
	if err != nil {
		respondWithServiceError(w, "CreateChallenge", err)
		return
	}

	respondWithJSON(w, http.StatusCreated, c)
}

func (h *ChallengeHandler) RespondToInvite(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout*time.Second)
	defer cancel()

	userID, ok := authedUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	challengeID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid challenge id")
		return
	}

	var req struct {
		Accept bool `json:"accept"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	resp, err := h.challengeService.RespondToInvite(ctx, challengeID, userID, req.Accept)
	if err != nil {
		respondWithServiceError(w, "RespondToInvite", err)
		return
	}

	respondWithJSON(w, http.StatusOK, resp)
}

func (h *ChallengeHandler) GetChallengeDetail(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout*time.Second)
	defer cancel()

	userID, ok := authedUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	challengeID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid challenge id")
		return
	}

	detail, err := h.challengeService.GetChallengeDetail(ctx, challengeID, userID)
	if err != nil {
		respondWithServiceError(w, "GetChallengeDetail", err)
		return
	}

	respondWithJSON(w, http.StatusOK, detail)
}

func (h *ChallengeHandler) GetActiveChallenges(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout*time.Second)
	defer cancel()

	userID, ok := authedUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	challenges, err := h.challengeService.GetActiveChallenges(ctx, userID)
	if err != nil {
		respondWithServiceError(w, "GetActiveChallenges", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"challenges": challenges})
}

func (h *ChallengeHandler) GetInvites(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout*time.Second)
	defer cancel()

	userID, ok := authedUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	invites, err := h.challengeService.GetInvites(ctx, userID)
	if err != nil {
		respondWithServiceError(w, "GetInvites", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"invites": invites})
}

func (h *ChallengeHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout*time.Second)
	defer cancel()

	userID, ok := authedUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	history, err := h.challengeService.GetHistory(ctx, userID)
	if err != nil {
		respondWithServiceError(w, "GetHistory", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"challenges": history})
}
