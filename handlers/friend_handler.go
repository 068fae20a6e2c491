package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"questlogAPI/services"
)

type FriendHandler struct {
	friendService *services.FriendService
}

func NewFriendHandler(friendService *services.FriendService) *FriendHandler {
	return &FriendHandler{friendService: friendService}
}

func (h *FriendHandler) SendRequest(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout*time.Second)
	defer cancel()

	userID, ok := authedUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req struct {
		Username string `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	f, err := h.friendService.SendRequest(ctx, userID, req.Username)
	if err != nil {
		respondWithServiceError(w, "SendRequest", err)
		return
	}

	respondWithJSON(w, http.StatusCreated, f)
}

func (h *FriendHandler) RespondToRequest(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout*time.Second)
	defer cancel()

	userID, ok := authedUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	requestID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request id")
		return
	}

	var req struct {
		Accept bool `json:"accept"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.friendService.RespondToRequest(ctx, requestID, userID, req.Accept); err != nil {
		respondWithServiceError(w, "RespondToRequest", err)
		return
	}

	message := "Friend request declined"
	if req.Accept {
		message = "Friend request accepted"
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": message})
}

func (h *FriendHandler) RemoveFriend(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout*time.Second)
	defer cancel()

	userID, ok := authedUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	friendID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid friend id")
		return
	}

	if err := h.friendService.RemoveFriend(ctx, userID, friendID); err != nil {
		respondWithServiceError(w, "RemoveFriend", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Friend removed"})
}

func (h *FriendHandler) GetFriends(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout*time.Second)
	defer cancel()

	userID, ok := authedUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	friends, err := h.friendService.GetFriends(ctx, userID)
	if err != nil {
		respondWithServiceError(w, "GetFriends", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"friends": friends})
}

func (h *FriendHandler) GetPendingRequests(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout*time.Second)
	defer cancel()

	userID, ok := authedUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	requests, err := h.friendService.GetPendingRequests(ctx, userID)
	if err != nil {
		respondWithServiceError(w, "GetPendingRequests", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"requests": requests})
}

func (h *FriendHandler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout*time.Second)
	defer cancel()

	userID, ok := authedUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.friendService.SearchUsers(ctx, userID, r.URL.Query().Get("q"), limit)
	if err != nil {
		respondWithServiceError(w, "SearchUsers", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"users": results})
}

func (h *FriendHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout*time.Second)
	defer cancel()

	userID, ok := authedUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	lb, err := h.friendService.GetFriendsLeaderboard(ctx, userID)
	if err != nil {
		respondWithServiceError(w, "GetLeaderboard", err)
		return
	}

	respondWithJSON(w, http.StatusOK, lb)
}
