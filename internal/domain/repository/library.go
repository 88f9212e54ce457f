package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/hszk-dev/megaflix/internal/domain/model"
)

// WatchlistRepository defines persistence for a user's "my list".
type WatchlistRepository interface {
	// List returns the user's items, most recently added first.
	// Returns empty slice if the user has no items.
	List(ctx context.Context, userID uuid.UUID) ([]*model.WatchlistItem, error)

	// Toggle inserts the item if absent and deletes it if present.
	// The check and the write happen atomically.
	Toggle(ctx context.Context, item *model.WatchlistItem) (model.ToggleAction, error)
}

// HistoryRepository defines persistence for playback progress.
type HistoryRepository interface {
	// List returns the user's history, most recently watched first.
	List(ctx context.Context, userID uuid.UUID) ([]*model.HistoryEntry, error)

	// Upsert inserts the entry or, on conflict by (user, tmdb id),
	// updates progress and last watched time.
	Upsert(ctx context.Context, entry *model.HistoryEntry) error
}
