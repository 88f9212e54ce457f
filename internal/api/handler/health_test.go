package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hszk-dev/megaflix/internal/infrastructure/cache"
)

func TestHealthHandler_Health(t *testing.T) {
	c := cache.NewResponseCache()
	c.Set("GET /api/discover", cache.Response{Body: []byte("{}")}, time.Hour)

	tests := []struct {
		name        string
		cache       *cache.ResponseCache
		wantEntries int
	}{
		{name: "with cache", cache: c, wantEntries: 1},
		{name: "without cache", cache: nil, wantEntries: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			NewHealthHandler(tt.cache).Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			if rec.Code != http.StatusOK {
				t.Errorf("status = %d, want 200", rec.Code)
			}

			var resp HealthResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.Status != "ok" {
				t.Errorf("Status = %v, want ok", resp.Status)
			}
			if resp.CacheEntries != tt.wantEntries {
				t.Errorf("CacheEntries = %d, want %d", resp.CacheEntries, tt.wantEntries)
			}
		})
	}
}

func TestJSON_EncodeFailureIs500(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusOK, map[string]any{"bad": make(chan int)})

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"error":"internal_error"`) {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestError_Envelope(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, http.StatusBadRequest, "invalid_page", "page must be between 1 and 500")

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var resp ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Error != "invalid_page" || resp.Message != "page must be between 1 and 500" {
		t.Errorf("resp = %+v", resp)
	}
}
