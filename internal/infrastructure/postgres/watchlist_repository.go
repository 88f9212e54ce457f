package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/hszk-dev/megaflix/internal/domain/model"
	"github.com/hszk-dev/megaflix/internal/domain/repository"
	"github.com/hszk-dev/megaflix/internal/infrastructure/metrics"
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique constraint violations.
const uniqueViolation = "23505"

// WatchlistRepository implements repository.WatchlistRepository using PostgreSQL.
type WatchlistRepository struct {
	db DBTX
}

// NewWatchlistRepository creates a new WatchlistRepository instance.
func NewWatchlistRepository(db DBTX) *WatchlistRepository {
	return &WatchlistRepository{db: db}
}

// List retrieves all watchlist items belonging to a user.
func (r *WatchlistRepository) List(ctx context.Context, userID uuid.UUID) ([]*model.WatchlistItem, error) {
	const query = `
		SELECT user_id, tmdb_id, item_type, poster_path, title, added_at
		FROM watchlist
		WHERE user_id = $1
		ORDER BY added_at DESC
	`

	metrics.DBQueriesTotal.WithLabelValues(metrics.DBQuerySelect, metrics.TableWatchlist).Inc()
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query watchlist: %w", err)
	}
	defer rows.Close()

	items := []*model.WatchlistItem{}
	for rows.Next() {
		var (
			item       model.WatchlistItem
			itemType   string
			posterPath *string
		)
		if err := rows.Scan(&item.UserID, &item.TMDBID, &itemType, &posterPath, &item.Title, &item.AddedAt); err != nil {
			return nil, fmt.Errorf("failed to scan watchlist item: %w", err)
		}
		item.ItemType = model.ItemType(itemType)
		item.PosterPath = derefString(posterPath)
		items = append(items, &item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating watchlist: %w", err)
	}

	return items, nil
}

// Toggle removes the item if the user already has it, otherwise adds it.
// Both steps run in one transaction.
func (r *WatchlistRepository) Toggle(ctx context.Context, item *model.WatchlistItem) (model.ToggleAction, error) {
	const deleteQuery = `
		DELETE FROM watchlist
		WHERE user_id = $1 AND tmdb_id = $2
	`
	const insertQuery = `
		INSERT INTO watchlist (user_id, tmdb_id, item_type, poster_path, title, added_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}

	metrics.DBQueriesTotal.WithLabelValues(metrics.DBQueryDelete, metrics.TableWatchlist).Inc()
	tag, err := tx.Exec(ctx, deleteQuery, item.UserID, item.TMDBID)
	if err != nil {
		_ = tx.Rollback(ctx)
		return "", fmt.Errorf("failed to delete watchlist item: %w", err)
	}

	action := model.ToggleRemoved
	if tag.RowsAffected() == 0 {
		action = model.ToggleAdded

		metrics.DBQueriesTotal.WithLabelValues(metrics.DBQueryInsert, metrics.TableWatchlist).Inc()
		_, err = tx.Exec(ctx, insertQuery,
			item.UserID,
			item.TMDBID,
			item.ItemType.String(),
			nullString(item.PosterPath),
			item.Title,
			item.AddedAt,
		)
		if err != nil {
			_ = tx.Rollback(ctx)
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
				// A concurrent toggle added the same item first.
				return model.ToggleAdded, nil
			}
			return "", fmt.Errorf("failed to insert watchlist item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("failed to commit watchlist toggle: %w", err)
	}

	return action, nil
}

// nullString returns nil for empty strings, otherwise returns a pointer to the string.
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Compile-time verification that WatchlistRepository implements repository.WatchlistRepository.
var _ repository.WatchlistRepository = (*WatchlistRepository)(nil)
