package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SessionStore maps opaque bearer tokens to user IDs.
// Implementations should be provided by the infrastructure layer (e.g., Redis).
type SessionStore interface {
	// Save stores the token for the given TTL.
	Save(ctx context.Context, token string, userID uuid.UUID, ttl time.Duration) error

	// Lookup returns ErrSessionNotFound if the token is unknown or expired.
	Lookup(ctx context.Context, token string) (uuid.UUID, error)

	// Delete removes a token. Deleting an unknown token is not an error.
	Delete(ctx context.Context, token string) error
}
