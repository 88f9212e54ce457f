package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// StreamTargets builds upstream embed URLs.
type StreamTargets interface {
	MovieURL(tmdbID string) string
	SeriesURL(tmdbID, season, episode string) string
}

// Relayer streams an upstream URL to the client.
type Relayer interface {
	Serve(w http.ResponseWriter, r *http.Request, target string)
}

// StreamHandler relays video bytes from the embed provider.
type StreamHandler struct {
	relay   Relayer
	targets StreamTargets
}

// NewStreamHandler creates a new StreamHandler.
func NewStreamHandler(relay Relayer, targets StreamTargets) *StreamHandler {
	return &StreamHandler{relay: relay, targets: targets}
}

// Movie handles GET /stream/movie/{tmdbID}
func (h *StreamHandler) Movie(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "tmdbID")
	if _, err := positiveInt(id); err != nil {
		http.Error(w, "tmdbID must be a positive integer", http.StatusBadRequest)
		return
	}

	h.relay.Serve(w, r, h.targets.MovieURL(id))
}

// Series handles GET /stream/series/{tmdbID}?sea&epi
func (h *StreamHandler) Series(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "tmdbID")
	if _, err := positiveInt(id); err != nil {
		http.Error(w, "tmdbID must be a positive integer", http.StatusBadRequest)
		return
	}

	q := r.URL.Query()
	season, episode := q.Get("sea"), q.Get("epi")
	if season == "" || episode == "" {
		http.Error(w, `parameters "sea" (season) and "epi" (episode) are required for series`, http.StatusBadRequest)
		return
	}
	if _, err := positiveInt(season); err != nil {
		http.Error(w, "sea must be a positive integer", http.StatusBadRequest)
		return
	}
	if _, err := positiveInt(episode); err != nil {
		http.Error(w, "epi must be a positive integer", http.StatusBadRequest)
		return
	}

	h.relay.Serve(w, r, h.targets.SeriesURL(id, season, episode))
}
