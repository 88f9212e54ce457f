package postgres

import (
	"context"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            UUID PRIMARY KEY,
	username      TEXT UNIQUE NOT NULL,
	password_hash TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS watchlist (
	id          BIGSERIAL PRIMARY KEY,
	user_id     UUID NOT NULL REFERENCES users (id) ON DELETE CASCADE,
	tmdb_id     BIGINT NOT NULL,
	item_type   TEXT NOT NULL,
	poster_path TEXT,
	title       TEXT NOT NULL,
	added_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (user_id, tmdb_id)
);

CREATE TABLE IF NOT EXISTS history (
	id           BIGSERIAL PRIMARY KEY,
	user_id      UUID NOT NULL REFERENCES users (id) ON DELETE CASCADE,
	tmdb_id      BIGINT NOT NULL,
	item_type    TEXT NOT NULL,
	poster_path  TEXT,
	title        TEXT NOT NULL,
	progress     INTEGER NOT NULL,
	last_watched TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (user_id, tmdb_id)
);
`

// EnsureSchema creates the tables if they do not exist yet.
func EnsureSchema(ctx context.Context, db DBTX) error {
	if _, err := db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}
