package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/hszk-dev/megaflix/internal/api/middleware"
	"github.com/hszk-dev/megaflix/internal/domain/model"
	"github.com/hszk-dev/megaflix/internal/usecase"
)

func authedRequest(method, target string, body any, userID uuid.UUID) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			_ = json.NewEncoder(&buf).Encode(body)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	if userID != uuid.Nil {
		req = req.WithContext(middleware.WithUserID(req.Context(), userID))
	}
	return req
}

func TestLibraryHandler_ToggleWatchlist(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name           string
		requestBody    any
		setupMock      func(m *mockLibraryService)
		wantStatusCode int
		wantAction     string
	}{
		{
			name:        "added",
			requestBody: LibraryItemRequest{TMDBID: 550, ItemType: "movie", Title: "Fight Club", PosterPath: "/p.jpg"},
			setupMock: func(m *mockLibraryService) {
				m.toggleWatchlistFn = func(ctx context.Context, input usecase.LibraryItemInput) (model.ToggleAction, error) {
					if input.UserID != userID || input.TMDBID != 550 || input.ItemType != model.ItemTypeMovie {
						t.Errorf("unexpected input %+v", input)
					}
					return model.ToggleAdded, nil
				}
			},
			wantStatusCode: http.StatusCreated,
			wantAction:     "added",
		},
		{
			name:        "removed",
			requestBody: LibraryItemRequest{TMDBID: 550, ItemType: "movie", Title: "Fight Club"},
			setupMock: func(m *mockLibraryService) {
				m.toggleWatchlistFn = func(ctx context.Context, input usecase.LibraryItemInput) (model.ToggleAction, error) {
					return model.ToggleRemoved, nil
				}
			},
			wantStatusCode: http.StatusOK,
			wantAction:     "removed",
		},
		{
			name:           "invalid JSON body",
			requestBody:    "not json",
			setupMock:      func(m *mockLibraryService) {},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:        "validation error",
			requestBody: LibraryItemRequest{TMDBID: 550, ItemType: "anime", Title: "x"},
			setupMock: func(m *mockLibraryService) {
				m.toggleWatchlistFn = func(ctx context.Context, input usecase.LibraryItemInput) (model.ToggleAction, error) {
					return "", model.ErrInvalidItemType
				}
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:        "storage error",
			requestBody: LibraryItemRequest{TMDBID: 550, ItemType: "movie", Title: "x"},
			setupMock: func(m *mockLibraryService) {
				m.toggleWatchlistFn = func(ctx context.Context, input usecase.LibraryItemInput) (model.ToggleAction, error) {
					return "", errors.New("toggle watchlist: connection refused")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockLibraryService{}
			tt.setupMock(svc)
			h := NewLibraryHandler(svc, nil)

			rec := httptest.NewRecorder()
			h.ToggleWatchlist(rec, authedRequest(http.MethodPost, "/api/my-list", tt.requestBody, userID))

			if rec.Code != tt.wantStatusCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatusCode)
			}
			if tt.wantAction != "" {
				var resp ToggleResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
					t.Fatalf("failed to unmarshal response: %v", err)
				}
				if resp.Action != tt.wantAction {
					t.Errorf("action = %q, want %q", resp.Action, tt.wantAction)
				}
			}
		})
	}
}

func TestLibraryHandler_Watchlist(t *testing.T) {
	userID := uuid.New()
	added := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	svc := &mockLibraryService{
		watchlistFn: func(ctx context.Context, id uuid.UUID) ([]*model.WatchlistItem, error) {
			return []*model.WatchlistItem{
				{UserID: id, TMDBID: 550, ItemType: model.ItemTypeMovie, Title: "Fight Club", PosterPath: "/p.jpg", AddedAt: added},
				{UserID: id, TMDBID: 1399, ItemType: model.ItemTypeTV, Title: "Game of Thrones", AddedAt: added},
			}, nil
		},
	}
	h := NewLibraryHandler(svc, nil)

	rec := httptest.NewRecorder()
	h.Watchlist(rec, authedRequest(http.MethodGet, "/api/my-list", nil, userID))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp []WatchlistItemResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if len(resp) != 2 || resp[0].ID != 550 || resp[1].ItemType != "tv" {
		t.Errorf("response = %+v", resp)
	}
	if resp[0].PosterPath == nil || *resp[0].PosterPath != "/p.jpg" || resp[1].PosterPath != nil {
		t.Errorf("poster paths = %v, %v", resp[0].PosterPath, resp[1].PosterPath)
	}
}

func TestLibraryHandler_Watchlist_EmptyIsArray(t *testing.T) {
	h := NewLibraryHandler(&mockLibraryService{}, nil)

	rec := httptest.NewRecorder()
	h.Watchlist(rec, authedRequest(http.MethodGet, "/api/my-list", nil, uuid.New()))

	if got := bytes.TrimSpace(rec.Body.Bytes()); string(got) != "[]" {
		t.Errorf("body = %s, want []", got)
	}
}

func TestLibraryHandler_RequiresUser(t *testing.T) {
	h := NewLibraryHandler(&mockLibraryService{}, nil)

	for name, fn := range map[string]http.HandlerFunc{
		"watchlist":     h.Watchlist,
		"toggle":        h.ToggleWatchlist,
		"history":       h.History,
		"save progress": h.SaveProgress,
	} {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			fn(rec, authedRequest(http.MethodPost, "/api/x", `{}`, uuid.Nil))
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
		})
	}
}

func TestLibraryHandler_SaveProgress(t *testing.T) {
	userID := uuid.New()
	fifty := 50
	over := 150

	tests := []struct {
		name           string
		requestBody    any
		wantStatusCode int
	}{
		{
			name:           "saved",
			requestBody:    SaveProgressRequest{LibraryItemRequest: LibraryItemRequest{TMDBID: 1399, ItemType: "tv", Title: "GoT"}, Progress: &fifty},
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "missing progress",
			requestBody:    LibraryItemRequest{TMDBID: 1399, ItemType: "tv", Title: "GoT"},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "progress out of range",
			requestBody:    SaveProgressRequest{LibraryItemRequest: LibraryItemRequest{TMDBID: 1399, ItemType: "tv", Title: "GoT"}, Progress: &over},
			wantStatusCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockLibraryService{
				saveProgressFn: func(ctx context.Context, input usecase.SaveProgressInput) (*model.HistoryEntry, error) {
					if input.Progress < 0 || input.Progress > model.MaxProgress {
						return nil, model.ErrInvalidProgress
					}
					if input.UserID != userID {
						t.Errorf("UserID = %v, want %v", input.UserID, userID)
					}
					return &model.HistoryEntry{Progress: input.Progress}, nil
				},
			}
			h := NewLibraryHandler(svc, nil)

			rec := httptest.NewRecorder()
			h.SaveProgress(rec, authedRequest(http.MethodPost, "/api/history", tt.requestBody, userID))

			if rec.Code != tt.wantStatusCode {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.wantStatusCode, rec.Body.String())
			}
		})
	}
}

func TestLibraryHandler_History(t *testing.T) {
	watched := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	svc := &mockLibraryService{
		historyFn: func(ctx context.Context, id uuid.UUID) ([]*model.HistoryEntry, error) {
			return []*model.HistoryEntry{
				{TMDBID: 1399, ItemType: model.ItemTypeTV, Title: "GoT", Progress: 40, LastWatched: watched},
			}, nil
		},
	}
	h := NewLibraryHandler(svc, nil)

	rec := httptest.NewRecorder()
	h.History(rec, authedRequest(http.MethodGet, "/api/history", nil, uuid.New()))

	var resp []HistoryEntryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if len(resp) != 1 || resp[0].Progress != 40 || resp[0].LastWatched != "2024-05-01T10:00:00Z" {
		t.Errorf("response = %+v", resp)
	}
}
