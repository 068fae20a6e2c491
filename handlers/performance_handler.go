package handlers

import (
	"net/http"

	"questlogAPI/internal/cache"
)

type PerformanceHandler struct {
	cache *cache.Cache
}

func NewPerformanceHandler(queryCache *cache.Cache) *PerformanceHandler {
	return &PerformanceHandler{cache: queryCache}
}

func (h *PerformanceHandler) GetCacheStats(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.cache.Stats())
}

func (h *PerformanceHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	removed := h.cache.Clear()
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Cache cleared",
		"removed": removed,
	})
}
