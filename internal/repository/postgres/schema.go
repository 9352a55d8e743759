package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is applied in order. Every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS analyses (
		id            UUID PRIMARY KEY,
		session_id    TEXT NOT NULL,
		status        TEXT NOT NULL DEFAULT 'pending',
		progress      INTEGER NOT NULL DEFAULT 0,
		floor_width   INTEGER NOT NULL,
		floor_height  INTEGER NOT NULL,
		survey        JSONB NOT NULL,
		error_message TEXT,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		completed_at  TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_analyses_session_id ON analyses (session_id)`,
	`CREATE TABLE IF NOT EXISTS analysis_results (
		id               UUID PRIMARY KEY,
		analysis_id      UUID NOT NULL UNIQUE REFERENCES analyses (id) ON DELETE CASCADE,
		coverage_target  TEXT,
		report           JSONB NOT NULL,
		summary          TEXT NOT NULL,
		emitters         JSONB NOT NULL,
		sources          JSONB NOT NULL,
		coverage_key     TEXT,
		interference_key TEXT,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// Migrate creates the tables used by the analysis repository
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement %d: %w", i, err)
		}
	}
	return nil
}
