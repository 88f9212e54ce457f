package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/hszk-dev/megaflix/internal/api/middleware"
	"github.com/hszk-dev/megaflix/internal/domain/model"
	"github.com/hszk-dev/megaflix/internal/usecase"
)

// Request/Response types

type LibraryItemRequest struct {
	TMDBID     int64  `json:"tmdb_id"`
	ItemType   string `json:"item_type"`
	PosterPath string `json:"poster_path"`
	Title      string `json:"title"`
}

type SaveProgressRequest struct {
	LibraryItemRequest
	Progress *int `json:"progress"`
}

type WatchlistItemResponse struct {
	ID         int64   `json:"id"`
	ItemType   string  `json:"item_type"`
	PosterPath *string `json:"poster_path"`
	Title      string  `json:"title"`
	AddedAt    string  `json:"added_at"`
}

type HistoryEntryResponse struct {
	ID          int64   `json:"id"`
	ItemType    string  `json:"item_type"`
	PosterPath  *string `json:"poster_path"`
	Title       string  `json:"title"`
	Progress    int     `json:"progress"`
	LastWatched string  `json:"last_watched"`
}

type ToggleResponse struct {
	Action string `json:"action"`
}

type SaveProgressResponse struct {
	Progress int `json:"progress"`
}

// LibraryHandler handles the authenticated watchlist and history routes.
type LibraryHandler struct {
	svc    usecase.LibraryService
	logger *slog.Logger
}

// NewLibraryHandler creates a new LibraryHandler.
func NewLibraryHandler(svc usecase.LibraryService, logger *slog.Logger) *LibraryHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &LibraryHandler{svc: svc, logger: logger}
}

// Watchlist handles GET /api/my-list
func (h *LibraryHandler) Watchlist(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		Error(w, http.StatusUnauthorized, "unauthorized", "A valid bearer token is required")
		return
	}

	items, err := h.svc.Watchlist(r.Context(), userID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	resp := make([]WatchlistItemResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, WatchlistItemResponse{
			ID:         item.TMDBID,
			ItemType:   item.ItemType.String(),
			PosterPath: optional(item.PosterPath),
			Title:      item.Title,
			AddedAt:    item.AddedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	JSON(w, http.StatusOK, resp)
}

// ToggleWatchlist handles POST /api/my-list
func (h *LibraryHandler) ToggleWatchlist(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		Error(w, http.StatusUnauthorized, "unauthorized", "A valid bearer token is required")
		return
	}

	var req LibraryItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	action, err := h.svc.ToggleWatchlist(r.Context(), req.toInput(userID))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	status := http.StatusOK
	if action == model.ToggleAdded {
		status = http.StatusCreated
	}
	JSON(w, status, ToggleResponse{Action: string(action)})
}

// History handles GET /api/history
func (h *LibraryHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		Error(w, http.StatusUnauthorized, "unauthorized", "A valid bearer token is required")
		return
	}

	entries, err := h.svc.History(r.Context(), userID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	resp := make([]HistoryEntryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, HistoryEntryResponse{
			ID:          e.TMDBID,
			ItemType:    e.ItemType.String(),
			PosterPath:  optional(e.PosterPath),
			Title:       e.Title,
			Progress:    e.Progress,
			LastWatched: e.LastWatched.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	JSON(w, http.StatusOK, resp)
}

// SaveProgress handles POST /api/history
func (h *LibraryHandler) SaveProgress(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		Error(w, http.StatusUnauthorized, "unauthorized", "A valid bearer token is required")
		return
	}

	var req SaveProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}
	if req.Progress == nil {
		Error(w, http.StatusBadRequest, "invalid_progress", "Progress is required")
		return
	}

	entry, err := h.svc.SaveProgress(r.Context(), usecase.SaveProgressInput{
		LibraryItemInput: req.toInput(userID),
		Progress:         *req.Progress,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	JSON(w, http.StatusOK, SaveProgressResponse{Progress: entry.Progress})
}

func (h *LibraryHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidUserID):
		Error(w, http.StatusUnauthorized, "unauthorized", "A valid bearer token is required")
	case errors.Is(err, model.ErrInvalidTMDBID):
		Error(w, http.StatusBadRequest, "invalid_tmdb_id", "tmdb_id must be a positive integer")
	case errors.Is(err, model.ErrInvalidItemType):
		Error(w, http.StatusBadRequest, "invalid_item_type", "item_type must be movie or tv")
	case errors.Is(err, model.ErrEmptyItemTitle):
		Error(w, http.StatusBadRequest, "invalid_title", "Title cannot be empty")
	case errors.Is(err, model.ErrTitleTooLong):
		Error(w, http.StatusBadRequest, "invalid_title", "Title exceeds maximum length")
	case errors.Is(err, model.ErrInvalidProgress):
		Error(w, http.StatusBadRequest, "invalid_progress", "Progress must be between 0 and 100")
	default:
		h.logger.Error("library request failed",
			slog.String("request_id", middleware.GetRequestID(r.Context())),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		Error(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}

func (req LibraryItemRequest) toInput(userID uuid.UUID) usecase.LibraryItemInput {
	return usecase.LibraryItemInput{
		UserID:     userID,
		TMDBID:     req.TMDBID,
		ItemType:   model.ItemType(req.ItemType),
		PosterPath: req.PosterPath,
		Title:      req.Title,
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
