package handler

import (
	"net/http"

	"github.com/hszk-dev/megaflix/internal/infrastructure/cache"
)

type HealthResponse struct {
	Status       string `json:"status"`
	CacheEntries int    `json:"cache_entries"`
}

// HealthHandler reports liveness along with the response cache size.
// It never calls upstream or storage, so probes stay cheap.
type HealthHandler struct {
	cache *cache.ResponseCache
}

func NewHealthHandler(c *cache.ResponseCache) *HealthHandler {
	return &HealthHandler{cache: c}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok"}
	if h.cache != nil {
		resp.CacheEntries = h.cache.Len()
	}
	JSON(w, http.StatusOK, resp)
}
