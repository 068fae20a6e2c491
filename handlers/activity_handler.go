package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"questlogAPI/internal/activity"
	"questlogAPI/services"
)

type ActivityHandler struct {
	activityService *services.ActivityService
}

func NewActivityHandler(activityService *services.ActivityService) *ActivityHandler {
	return &ActivityHandler{activityService: activityService}
}

func (h *ActivityHandler) SubmitActivity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout*time.Second)
	defer cancel()

	userID, ok := authedUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var a activity.Activity
	if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	result, err := h.activityService.SubmitActivity(ctx, userID, &a)
	if err != nil {
		respondWithServiceError(w, "SubmitActivity", err)
		return
	}

	respondWithJSON(w, http.StatusCreated, result)
}

func (h *ActivityHandler) ListActivities(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout*time.Second)
	defer cancel()

	userID, ok := authedUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	q := r.URL.Query()
	opts := activity.ListOptions{
		Category:  q.Get("category"),
		SortBy:    q.Get("sortBy"),
		SortOrder: q.Get("sortOrder"),
	}
	opts.Page, _ = strconv.Atoi(q.Get("page"))
	opts.Limit, _ = strconv.Atoi(q.Get("limit"))
	if raw := q.Get("startDate"); raw != "" {
		start, err := time.Parse("2006-01-02", raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "startDate must be YYYY-MM-DD")
			return
		}
		opts.StartDate = &start
	}

	page, err := h.activityService.ListActivities(ctx, userID, opts)
	if err != nil {
		respondWithServiceError(w, "ListActivities", err)
		return
	}

	respondWithJSON(w, http.StatusOK, page)
}

func (h *ActivityHandler) GetAggregateStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout*time.Second)
	defer cancel()

	userID, ok := authedUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	agg, err := h.activityService.GetAggregateStats(ctx, userID)
	if err != nil {
		respondWithServiceError(w, "GetAggregateStats", err)
		return
	}

	respondWithJSON(w, http.StatusOK, agg)
}

func (h *ActivityHandler) GetRecentActivities(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout*time.Second)
	defer cancel()

	userID, ok := authedUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	recent, err := h.activityService.GetRecentActivities(ctx, userID, limit)
	if err != nil {
		respondWithServiceError(w, "GetRecentActivities", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"activities": recent})
}
