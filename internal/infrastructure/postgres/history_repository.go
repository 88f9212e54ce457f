package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/hszk-dev/megaflix/internal/domain/model"
	"github.com/hszk-dev/megaflix/internal/domain/repository"
	"github.com/hszk-dev/megaflix/internal/infrastructure/metrics"
)

// HistoryRepository implements repository.HistoryRepository using PostgreSQL.
type HistoryRepository struct {
	db DBTX
}

// NewHistoryRepository creates a new HistoryRepository instance.
func NewHistoryRepository(db DBTX) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// List retrieves a user's playback history, most recent first.
func (r *HistoryRepository) List(ctx context.Context, userID uuid.UUID) ([]*model.HistoryEntry, error) {
	const query = `
		SELECT user_id, tmdb_id, item_type, poster_path, title, progress, last_watched
		FROM history
		WHERE user_id = $1
		ORDER BY last_watched DESC
	`

	metrics.DBQueriesTotal.WithLabelValues(metrics.DBQuerySelect, metrics.TableHistory).Inc()
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	entries := []*model.HistoryEntry{}
	for rows.Next() {
		var (
			entry      model.HistoryEntry
			itemType   string
			posterPath *string
		)
		err := rows.Scan(
			&entry.UserID,
			&entry.TMDBID,
			&itemType,
			&posterPath,
			&entry.Title,
			&entry.Progress,
			&entry.LastWatched,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entry.ItemType = model.ItemType(itemType)
		entry.PosterPath = derefString(posterPath)
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history: %w", err)
	}

	return entries, nil
}

// Upsert records progress, keeping one row per (user, tmdb id).
// On conflict only progress and last_watched change.
func (r *HistoryRepository) Upsert(ctx context.Context, entry *model.HistoryEntry) error {
	const query = `
		INSERT INTO history (user_id, tmdb_id, item_type, poster_path, title, progress, last_watched)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, tmdb_id) DO UPDATE SET
			progress = EXCLUDED.progress,
			last_watched = EXCLUDED.last_watched
	`

	metrics.DBQueriesTotal.WithLabelValues(metrics.DBQueryUpsert, metrics.TableHistory).Inc()
	_, err := r.db.Exec(ctx, query,
		entry.UserID,
		entry.TMDBID,
		entry.ItemType.String(),
		nullString(entry.PosterPath),
		entry.Title,
		entry.Progress,
		entry.LastWatched,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert history: %w", err)
	}

	return nil
}

// Compile-time verification that HistoryRepository implements repository.HistoryRepository.
var _ repository.HistoryRepository = (*HistoryRepository)(nil)
