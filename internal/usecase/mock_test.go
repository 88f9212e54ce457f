package usecase

import (
	"context"
	"encoding/json"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hszk-dev/megaflix/internal/domain/model"
	"github.com/hszk-dev/megaflix/internal/domain/repository"
)

// mockMetadataClient provides a configurable mock for MetadataClient.
type mockMetadataClient struct {
	mu    sync.Mutex
	getFn func(ctx context.Context, path string, params url.Values) (json.RawMessage, error)
	paths []string
}

func (m *mockMetadataClient) Get(ctx context.Context, path string, params url.Values) (json.RawMessage, error) {
	m.mu.Lock()
	m.paths = append(m.paths, path)
	m.mu.Unlock()
	if m.getFn != nil {
		return m.getFn(ctx, path, params)
	}
	return json.RawMessage(`{}`), nil
}

func (m *mockMetadataClient) calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.paths...)
}

// mockWatchlistRepository provides a configurable mock for WatchlistRepository.
type mockWatchlistRepository struct {
	listFn   func(ctx context.Context, userID uuid.UUID) ([]*model.WatchlistItem, error)
	toggleFn func(ctx context.Context, item *model.WatchlistItem) (model.ToggleAction, error)
}

func (m *mockWatchlistRepository) List(ctx context.Context, userID uuid.UUID) ([]*model.WatchlistItem, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID)
	}
	return []*model.WatchlistItem{}, nil
}

func (m *mockWatchlistRepository) Toggle(ctx context.Context, item *model.WatchlistItem) (model.ToggleAction, error) {
	if m.toggleFn != nil {
		return m.toggleFn(ctx, item)
	}
	return model.ToggleAdded, nil
}

// mockHistoryRepository provides a configurable mock for HistoryRepository.
type mockHistoryRepository struct {
	listFn   func(ctx context.Context, userID uuid.UUID) ([]*model.HistoryEntry, error)
	upsertFn func(ctx context.Context, entry *model.HistoryEntry) error
}

func (m *mockHistoryRepository) List(ctx context.Context, userID uuid.UUID) ([]*model.HistoryEntry, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID)
	}
	return []*model.HistoryEntry{}, nil
}

func (m *mockHistoryRepository) Upsert(ctx context.Context, entry *model.HistoryEntry) error {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, entry)
	}
	return nil
}

// mockActivityPublisher records published events.
type mockActivityPublisher struct {
	publishFn func(ctx context.Context, event repository.ActivityEvent) error
	events    []repository.ActivityEvent
}

func (m *mockActivityPublisher) PublishActivity(ctx context.Context, event repository.ActivityEvent) error {
	m.events = append(m.events, event)
	if m.publishFn != nil {
		return m.publishFn(ctx, event)
	}
	return nil
}

func (m *mockActivityPublisher) Close() error {
	return nil
}

// mockUserRepository provides a configurable mock for UserRepository.
type mockUserRepository struct {
	createFn        func(ctx context.Context, user *model.User) error
	getByUsernameFn func(ctx context.Context, username string) (*model.User, error)
}

func (m *mockUserRepository) Create(ctx context.Context, user *model.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	if m.getByUsernameFn != nil {
		return m.getByUsernameFn(ctx, username)
	}
	return nil, repository.ErrUserNotFound
}

// mockSessionStore provides an in-memory SessionStore.
type mockSessionStore struct {
	saveFn   func(ctx context.Context, token string, userID uuid.UUID, ttl time.Duration) error
	lookupFn func(ctx context.Context, token string) (uuid.UUID, error)
	saved    map[string]uuid.UUID
}

func (m *mockSessionStore) Save(ctx context.Context, token string, userID uuid.UUID, ttl time.Duration) error {
	if m.saveFn != nil {
		return m.saveFn(ctx, token, userID, ttl)
	}
	if m.saved == nil {
		m.saved = make(map[string]uuid.UUID)
	}
	m.saved[token] = userID
	return nil
}

func (m *mockSessionStore) Lookup(ctx context.Context, token string) (uuid.UUID, error) {
	if m.lookupFn != nil {
		return m.lookupFn(ctx, token)
	}
	if id, ok := m.saved[token]; ok {
		return id, nil
	}
	return uuid.Nil, repository.ErrSessionNotFound
}

func (m *mockSessionStore) Delete(ctx context.Context, token string) error {
	delete(m.saved, token)
	return nil
}
