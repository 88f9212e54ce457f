package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ActivityType names a user library change.
type ActivityType string

const (
	ActivityWatchlistAdded   ActivityType = "watchlist_added"
	ActivityWatchlistRemoved ActivityType = "watchlist_removed"
	ActivityProgressSaved    ActivityType = "progress_saved"
)

// ActivityEvent is published after a successful library write.
type ActivityEvent struct {
	Type       ActivityType `json:"type"`
	UserID     uuid.UUID    `json:"user_id"`
	TMDBID     int64        `json:"tmdb_id"`
	ItemType   string       `json:"item_type"`
	Progress   *int         `json:"progress,omitempty"`
	OccurredAt time.Time    `json:"occurred_at"`
}

// ActivityPublisher defines the interface for publishing library events.
// Implementations should be provided by the infrastructure layer (e.g., RabbitMQ).
type ActivityPublisher interface {
	// PublishActivity sends an event to downstream consumers.
	PublishActivity(ctx context.Context, event ActivityEvent) error

	// Close gracefully closes the connection to the broker.
	Close() error
}
