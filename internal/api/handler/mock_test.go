package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/hszk-dev/megaflix/internal/domain/model"
	"github.com/hszk-dev/megaflix/internal/usecase"
)

// Mock CatalogService

type mockCatalogService struct {
	mu    sync.Mutex
	calls int

	discoverFn        func(ctx context.Context) (json.RawMessage, error)
	searchFn          func(ctx context.Context, query, kind string, page int) (json.RawMessage, error)
	genresFn          func(ctx context.Context) (json.RawMessage, error)
	discoverByGenreFn func(ctx context.Context, genreID int64, page int) (json.RawMessage, error)
	seasonFn          func(ctx context.Context, tvID, season int64) (json.RawMessage, error)
	detailsFn         func(ctx context.Context, kind string, id int64) (json.RawMessage, error)
}

func (m *mockCatalogService) record() {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
}

func (m *mockCatalogService) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *mockCatalogService) Discover(ctx context.Context) (json.RawMessage, error) {
	m.record()
	if m.discoverFn != nil {
		return m.discoverFn(ctx)
	}
	return json.RawMessage(`{"movies":[],"series":[]}`), nil
}

func (m *mockCatalogService) Search(ctx context.Context, query, kind string, page int) (json.RawMessage, error) {
	m.record()
	if m.searchFn != nil {
		return m.searchFn(ctx, query, kind, page)
	}
	return json.RawMessage(`{}`), nil
}

func (m *mockCatalogService) Genres(ctx context.Context) (json.RawMessage, error) {
	m.record()
	if m.genresFn != nil {
		return m.genresFn(ctx)
	}
	return json.RawMessage(`[]`), nil
}

func (m *mockCatalogService) DiscoverByGenre(ctx context.Context, genreID int64, page int) (json.RawMessage, error) {
	m.record()
	if m.discoverByGenreFn != nil {
		return m.discoverByGenreFn(ctx, genreID, page)
	}
	return json.RawMessage(`{}`), nil
}

func (m *mockCatalogService) Season(ctx context.Context, tvID, season int64) (json.RawMessage, error) {
	m.record()
	if m.seasonFn != nil {
		return m.seasonFn(ctx, tvID, season)
	}
	return json.RawMessage(`{}`), nil
}

func (m *mockCatalogService) details(ctx context.Context, kind string, id int64) (json.RawMessage, error) {
	m.record()
	if m.detailsFn != nil {
		return m.detailsFn(ctx, kind, id)
	}
	return json.RawMessage(`{}`), nil
}

func (m *mockCatalogService) Movie(ctx context.Context, id int64) (json.RawMessage, error) {
	return m.details(ctx, "movie", id)
}

func (m *mockCatalogService) TV(ctx context.Context, id int64) (json.RawMessage, error) {
	return m.details(ctx, "tv", id)
}

func (m *mockCatalogService) Person(ctx context.Context, id int64) (json.RawMessage, error) {
	return m.details(ctx, "person", id)
}

// Mock LibraryService

type mockLibraryService struct {
	watchlistFn       func(ctx context.Context, userID uuid.UUID) ([]*model.WatchlistItem, error)
	toggleWatchlistFn func(ctx context.Context, input usecase.LibraryItemInput) (model.ToggleAction, error)
	historyFn         func(ctx context.Context, userID uuid.UUID) ([]*model.HistoryEntry, error)
	saveProgressFn    func(ctx context.Context, input usecase.SaveProgressInput) (*model.HistoryEntry, error)
}

func (m *mockLibraryService) Watchlist(ctx context.Context, userID uuid.UUID) ([]*model.WatchlistItem, error) {
	if m.watchlistFn != nil {
		return m.watchlistFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockLibraryService) ToggleWatchlist(ctx context.Context, input usecase.LibraryItemInput) (model.ToggleAction, error) {
	if m.toggleWatchlistFn != nil {
		return m.toggleWatchlistFn(ctx, input)
	}
	return model.ToggleAdded, nil
}

func (m *mockLibraryService) History(ctx context.Context, userID uuid.UUID) ([]*model.HistoryEntry, error) {
	if m.historyFn != nil {
		return m.historyFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockLibraryService) SaveProgress(ctx context.Context, input usecase.SaveProgressInput) (*model.HistoryEntry, error) {
	if m.saveProgressFn != nil {
		return m.saveProgressFn(ctx, input)
	}
	return &model.HistoryEntry{Progress: input.Progress}, nil
}

// Mock AuthService

type mockAuthService struct {
	registerFn     func(ctx context.Context, username, password string) (*model.User, error)
	loginFn        func(ctx context.Context, username, password string) (string, error)
	authenticateFn func(ctx context.Context, token string) (uuid.UUID, error)
}

func (m *mockAuthService) Register(ctx context.Context, username, password string) (*model.User, error) {
	if m.registerFn != nil {
		return m.registerFn(ctx, username, password)
	}
	return &model.User{ID: uuid.New(), Username: username}, nil
}

func (m *mockAuthService) Login(ctx context.Context, username, password string) (string, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, username, password)
	}
	return "token", nil
}

func (m *mockAuthService) Authenticate(ctx context.Context, token string) (uuid.UUID, error) {
	if m.authenticateFn != nil {
		return m.authenticateFn(ctx, token)
	}
	return uuid.Nil, usecase.ErrUnauthenticated
}

// Mock Relayer

type mockRelayer struct {
	targets []string
}

func (m *mockRelayer) Serve(w http.ResponseWriter, r *http.Request, target string) {
	m.targets = append(m.targets, target)
	w.WriteHeader(http.StatusOK)
}
