package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hszk-dev/megaflix/internal/domain/model"
	"github.com/hszk-dev/megaflix/internal/domain/repository"
)

// LibraryItemInput identifies a catalog item saved by a user.
type LibraryItemInput struct {
	UserID     uuid.UUID
	TMDBID     int64
	ItemType   model.ItemType
	PosterPath string
	Title      string
}

// SaveProgressInput contains the input parameters for recording playback progress.
type SaveProgressInput struct {
	LibraryItemInput
	Progress int
}

// LibraryService defines the per-user watchlist and history operations.
type LibraryService interface {
	// Watchlist returns the user's list, newest first.
	Watchlist(ctx context.Context, userID uuid.UUID) ([]*model.WatchlistItem, error)

	// ToggleWatchlist adds the item if absent, removes it if present.
	ToggleWatchlist(ctx context.Context, input LibraryItemInput) (model.ToggleAction, error)

	// History returns the user's playback history, most recently watched first.
	History(ctx context.Context, userID uuid.UUID) ([]*model.HistoryEntry, error)

	// SaveProgress creates or updates the history entry for an item.
	SaveProgress(ctx context.Context, input SaveProgressInput) (*model.HistoryEntry, error)
}

type libraryService struct {
	watchlist repository.WatchlistRepository
	history   repository.HistoryRepository
	events    repository.ActivityPublisher
	logger    *slog.Logger
}

// NewLibraryService creates a new LibraryService instance.
func NewLibraryService(
	watchlist repository.WatchlistRepository,
	history repository.HistoryRepository,
	events repository.ActivityPublisher,
	logger *slog.Logger,
) LibraryService {
	if logger == nil {
		logger = slog.Default()
	}
	return &libraryService{
		watchlist: watchlist,
		history:   history,
		events:    events,
		logger:    logger,
	}
}

func (s *libraryService) Watchlist(ctx context.Context, userID uuid.UUID) ([]*model.WatchlistItem, error) {
	if userID == uuid.Nil {
		return nil, model.ErrInvalidUserID
	}
	return s.watchlist.List(ctx, userID)
}

func (s *libraryService) ToggleWatchlist(ctx context.Context, input LibraryItemInput) (model.ToggleAction, error) {
	item, err := model.NewWatchlistItem(input.UserID, input.TMDBID, input.ItemType, input.PosterPath, input.Title)
	if err != nil {
		return "", err
	}

	action, err := s.watchlist.Toggle(ctx, item)
	if err != nil {
		return "", fmt.Errorf("toggle watchlist: %w", err)
	}

	eventType := repository.ActivityWatchlistAdded
	if action == model.ToggleRemoved {
		eventType = repository.ActivityWatchlistRemoved
	}
	s.publish(ctx, repository.ActivityEvent{
		Type:       eventType,
		UserID:     item.UserID,
		TMDBID:     item.TMDBID,
		ItemType:   item.ItemType.String(),
		OccurredAt: item.AddedAt,
	})

	return action, nil
}

func (s *libraryService) History(ctx context.Context, userID uuid.UUID) ([]*model.HistoryEntry, error) {
	if userID == uuid.Nil {
		return nil, model.ErrInvalidUserID
	}
	return s.history.List(ctx, userID)
}

func (s *libraryService) SaveProgress(ctx context.Context, input SaveProgressInput) (*model.HistoryEntry, error) {
	entry, err := model.NewHistoryEntry(
		input.UserID,
		input.TMDBID,
		input.ItemType,
		input.PosterPath,
		input.Title,
		input.Progress,
	)
	if err != nil {
		return nil, err
	}

	if err := s.history.Upsert(ctx, entry); err != nil {
		return nil, fmt.Errorf("save progress: %w", err)
	}

	progress := entry.Progress
	s.publish(ctx, repository.ActivityEvent{
		Type:       repository.ActivityProgressSaved,
		UserID:     entry.UserID,
		TMDBID:     entry.TMDBID,
		ItemType:   entry.ItemType.String(),
		Progress:   &progress,
		OccurredAt: entry.LastWatched,
	})

	return entry, nil
}

// publish is best-effort: the write already succeeded, so a broker failure is only logged.
func (s *libraryService) publish(ctx context.Context, event repository.ActivityEvent) {
	if s.events == nil {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}
	if err := s.events.PublishActivity(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to publish activity event",
			"type", event.Type,
			"user_id", event.UserID,
			"tmdb_id", event.TMDBID,
			"error", err,
		)
	}
}
