package model

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidUserID    = errors.New("user ID cannot be nil")
	ErrInvalidUsername  = errors.New("username must be 3-32 characters")
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")
	ErrPasswordTooLong  = errors.New("password must be at most 72 bytes")
	ErrTitleTooLong     = errors.New("title exceeds maximum length of 255 characters")
)

const (
	minUsernameLength = 3
	maxUsernameLength = 32
	MinPasswordLength = 8
	MaxPasswordLength = 72 // bcrypt input limit
)

// User is an account that owns a watchlist and a playback history.
type User struct {
	ID           uuid.UUID
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// NormalizeUsername trims surrounding whitespace and lowercases the name.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// NewUser creates a User with a fresh ID. passwordHash must already be hashed.
func NewUser(username, passwordHash string) (*User, error) {
	username = NormalizeUsername(username)
	if len(username) < minUsernameLength || len(username) > maxUsernameLength {
		return nil, ErrInvalidUsername
	}

	return &User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}, nil
}
