package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ItemType identifies the kind of catalog item a user saved.
type ItemType string

const (
	ItemTypeMovie ItemType = "movie"
	ItemTypeTV    ItemType = "tv"
)

func (t ItemType) IsValid() bool {
	switch t {
	case ItemTypeMovie, ItemTypeTV:
		return true
	default:
		return false
	}
}

func (t ItemType) String() string {
	return string(t)
}

// ToggleAction reports what a watchlist toggle did.
type ToggleAction string

const (
	ToggleAdded   ToggleAction = "added"
	ToggleRemoved ToggleAction = "removed"
)

var (
	ErrInvalidTMDBID   = errors.New("tmdb id must be a positive integer")
	ErrInvalidItemType = errors.New("item type must be movie or tv")
	ErrEmptyItemTitle  = errors.New("item title cannot be empty")
	ErrInvalidProgress = errors.New("progress must be between 0 and 100")
)

const (
	maxItemTitleLength = 255
	MaxProgress        = 100
)

// WatchlistItem is an entry in a user's "my list".
type WatchlistItem struct {
	UserID     uuid.UUID
	TMDBID     int64
	ItemType   ItemType
	PosterPath string
	Title      string
	AddedAt    time.Time
}

// NewWatchlistItem validates the input and returns a new WatchlistItem.
func NewWatchlistItem(userID uuid.UUID, tmdbID int64, itemType ItemType, posterPath, title string) (*WatchlistItem, error) {
	if err := validateItem(userID, tmdbID, itemType, title); err != nil {
		return nil, err
	}

	return &WatchlistItem{
		UserID:     userID,
		TMDBID:     tmdbID,
		ItemType:   itemType,
		PosterPath: posterPath,
		Title:      title,
		AddedAt:    time.Now(),
	}, nil
}

// HistoryEntry records how far a user got into a catalog item.
type HistoryEntry struct {
	UserID      uuid.UUID
	TMDBID      int64
	ItemType    ItemType
	PosterPath  string
	Title       string
	Progress    int
	LastWatched time.Time
}

// NewHistoryEntry validates the input and returns a new HistoryEntry.
func NewHistoryEntry(userID uuid.UUID, tmdbID int64, itemType ItemType, posterPath, title string, progress int) (*HistoryEntry, error) {
	if err := validateItem(userID, tmdbID, itemType, title); err != nil {
		return nil, err
	}
	if progress < 0 || progress > MaxProgress {
		return nil, ErrInvalidProgress
	}

	return &HistoryEntry{
		UserID:      userID,
		TMDBID:      tmdbID,
		ItemType:    itemType,
		PosterPath:  posterPath,
		Title:       title,
		Progress:    progress,
		LastWatched: time.Now(),
	}, nil
}

func validateItem(userID uuid.UUID, tmdbID int64, itemType ItemType, title string) error {
	if userID == uuid.Nil {
		return ErrInvalidUserID
	}
	if tmdbID <= 0 {
		return ErrInvalidTMDBID
	}
	if !itemType.IsValid() {
		return ErrInvalidItemType
	}
	if title == "" {
		return ErrEmptyItemTitle
	}
	if len(title) > maxItemTitleLength {
		return ErrTitleTooLong
	}
	return nil
}
