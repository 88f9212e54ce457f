package repository

import (
	"context"

	"github.com/hszk-dev/megaflix/internal/domain/model"
)

// UserRepository defines persistence for user accounts.
type UserRepository interface {
	// Create persists a new user.
	// Returns ErrDuplicateUser if the username is taken.
	Create(ctx context.Context, user *model.User) error

	// GetByUsername returns ErrUserNotFound if no such user exists.
	GetByUsername(ctx context.Context, username string) (*model.User, error)
}
