package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/hszk-dev/megaflix/internal/infrastructure/upstream"
)

func newStreamRouter(relay Relayer) *chi.Mux {
	h := NewStreamHandler(relay, upstream.NewEmbedClientWithHTTP("https://megaembed.com", nil))

	r := chi.NewRouter()
	r.Get("/stream/movie/{tmdbID}", h.Movie)
	r.Get("/stream/series/{tmdbID}", h.Series)
	return r
}

func TestStreamHandler(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantURL    string
	}{
		{
			name:       "movie",
			target:     "/stream/movie/550",
			wantStatus: http.StatusOK,
			wantURL:    "https://megaembed.com/embed/movie?tmdb=550",
		},
		{
			name:       "series",
			target:     "/stream/series/1399?sea=1&epi=3",
			wantStatus: http.StatusOK,
			wantURL:    "https://megaembed.com/embed/series?tmdb=1399&sea=1&epi=3",
		},
		{
			name:       "series missing episode",
			target:     "/stream/series/1399?sea=1",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "series missing season",
			target:     "/stream/series/1399?epi=3",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "series non numeric season",
			target:     "/stream/series/1399?sea=one&epi=3",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "movie non numeric id",
			target:     "/stream/movie/fight-club",
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			relay := &mockRelayer{}
			r := newStreamRouter(relay)

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.target, nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			if tt.wantURL == "" {
				if len(relay.targets) != 0 {
					t.Errorf("relay called with %v, want no upstream call", relay.targets)
				}
				return
			}
			if len(relay.targets) != 1 || relay.targets[0] != tt.wantURL {
				t.Errorf("relay targets = %v, want [%s]", relay.targets, tt.wantURL)
			}
		})
	}
}
