package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hszk-dev/megaflix/internal/api/middleware"
	"github.com/hszk-dev/megaflix/internal/infrastructure/cache"
	"github.com/hszk-dev/megaflix/internal/infrastructure/upstream"
	"github.com/hszk-dev/megaflix/internal/usecase"
)

const contentTypeJSON = "application/json"

// CacheTTLs selects the lifetime of each class of cached route.
type CacheTTLs struct {
	Short time.Duration
	Long  time.Duration
}

// CatalogHandler serves the TMDB-backed routes through the response cache.
type CatalogHandler struct {
	svc    usecase.CatalogService
	cache  *cache.ResponseCache
	ttls   CacheTTLs
	logger *slog.Logger
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(svc usecase.CatalogService, responseCache *cache.ResponseCache, ttls CacheTTLs, logger *slog.Logger) *CatalogHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogHandler{
		svc:    svc,
		cache:  responseCache,
		ttls:   ttls,
		logger: logger,
	}
}

type fetchJSON func(ctx context.Context) (json.RawMessage, error)

// Discover handles GET /api/discover
func (h *CatalogHandler) Discover(w http.ResponseWriter, r *http.Request) {
	h.serveCached(w, r, h.ttls.Short, h.svc.Discover)
}

// Search handles GET /api/search?query&type&page
func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := q.Get("query")
	kind := q.Get("type")
	if query == "" || kind == "" {
		Error(w, http.StatusBadRequest, "invalid_request", "Parameters query and type are required")
		return
	}

	page, ok := pageParam(w, r)
	if !ok {
		return
	}

	h.serveCached(w, r, h.ttls.Short, func(ctx context.Context) (json.RawMessage, error) {
		return h.svc.Search(ctx, query, kind, page)
	})
}

// Genres handles GET /api/genres
func (h *CatalogHandler) Genres(w http.ResponseWriter, r *http.Request) {
	h.serveCached(w, r, h.ttls.Long, h.svc.Genres)
}

// DiscoverByGenre handles GET /api/discover/genre?genreId&page
func (h *CatalogHandler) DiscoverByGenre(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("genreId")
	if raw == "" {
		Error(w, http.StatusBadRequest, "invalid_request", "Parameter genreId is required")
		return
	}
	genreID, err := positiveInt(raw)
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid_genre_id", "genreId must be a positive integer")
		return
	}

	page, ok := pageParam(w, r)
	if !ok {
		return
	}

	h.serveCached(w, r, h.ttls.Short, func(ctx context.Context) (json.RawMessage, error) {
		return h.svc.DiscoverByGenre(ctx, genreID, page)
	})
}

// Season handles GET /api/tv/{id}/season/{season}
func (h *CatalogHandler) Season(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	season, ok := idParam(w, r, "season")
	if !ok {
		return
	}

	h.serveCached(w, r, h.ttls.Long, func(ctx context.Context) (json.RawMessage, error) {
		return h.svc.Season(ctx, id, season)
	})
}

// Movie handles GET /api/movie/{id}
func (h *CatalogHandler) Movie(w http.ResponseWriter, r *http.Request) {
	h.serveDetails(w, r, h.svc.Movie)
}

// TV handles GET /api/tv/{id}
func (h *CatalogHandler) TV(w http.ResponseWriter, r *http.Request) {
	h.serveDetails(w, r, h.svc.TV)
}

// Person handles GET /api/person/{id}
func (h *CatalogHandler) Person(w http.ResponseWriter, r *http.Request) {
	h.serveDetails(w, r, h.svc.Person)
}

func (h *CatalogHandler) serveDetails(w http.ResponseWriter, r *http.Request, get func(ctx context.Context, id int64) (json.RawMessage, error)) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	h.serveCached(w, r, h.ttls.Long, func(ctx context.Context) (json.RawMessage, error) {
		return get(ctx, id)
	})
}

// serveCached answers from the response cache, fetching on a miss.
// Failed fetches are never cached.
func (h *CatalogHandler) serveCached(w http.ResponseWriter, r *http.Request, ttl time.Duration, fetch fetchJSON) {
	key := cache.KeyFromRequest(r)

	resp, fresh, err := h.cache.GetOrFetch(r.Context(), key, ttl, func(ctx context.Context) (cache.Response, error) {
		body, err := fetch(ctx)
		if err != nil {
			return cache.Response{}, err
		}
		return cache.Response{Body: body, ContentType: contentTypeJSON, Status: http.StatusOK}, nil
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	if resp.ContentType != "" {
		w.Header().Set("Content-Type", resp.ContentType)
	}
	if fresh {
		w.Header().Set("X-Cache", "MISS")
	} else {
		w.Header().Set("X-Cache", "HIT")
	}
	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = w.Write(resp.Body)
}

func (h *CatalogHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var statusErr *upstream.StatusError
	switch {
	case errors.Is(err, usecase.ErrEmptyQuery):
		Error(w, http.StatusBadRequest, "invalid_query", "Query cannot be empty")
	case errors.Is(err, usecase.ErrInvalidSearchType):
		Error(w, http.StatusBadRequest, "invalid_type", "Type must be one of movie, tv, person, multi")
	case errors.Is(err, usecase.ErrInvalidPage):
		Error(w, http.StatusBadRequest, "invalid_page", "Page must be between 1 and 500")
	case errors.Is(err, usecase.ErrInvalidID):
		Error(w, http.StatusBadRequest, "invalid_id", "ID must be a positive integer")
	case upstream.IsTransport(err), errors.As(err, &statusErr):
		h.logger.Error("metadata upstream failed",
			slog.String("request_id", middleware.GetRequestID(r.Context())),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		Error(w, http.StatusInternalServerError, "upstream_error", "Failed to fetch data from the metadata provider")
	default:
		h.logger.Error("catalog request failed",
			slog.String("request_id", middleware.GetRequestID(r.Context())),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		Error(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}

// idParam parses a positive integer URL parameter, writing 400 on failure.
func idParam(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := positiveInt(chi.URLParam(r, name))
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid_"+name, name+" must be a positive integer")
		return 0, false
	}
	return id, true
}

// pageParam parses ?page, defaulting to 1.
func pageParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("page")
	if raw == "" {
		return 1, true
	}
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 || page > usecase.MaxPage {
		Error(w, http.StatusBadRequest, "invalid_page", "Page must be between 1 and 500")
		return 0, false
	}
	return page, true
}

func positiveInt(raw string) (int64, error) {
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, usecase.ErrInvalidID
	}
	return n, nil
}
