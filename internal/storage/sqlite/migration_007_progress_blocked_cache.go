package sqlite

import (
	"context"
	"database/sql"
)

const migration007Body = `
ALTER TABLE tasks ADD COLUMN is_blocked INTEGER NOT NULL DEFAULT 0;
ALTER TABLE tasks ADD COLUMN blocked_by_count INTEGER NOT NULL DEFAULT 0;

CREATE TABLE blocked_cache (
	task_id TEXT PRIMARY KEY REFERENCES tasks(id) ON DELETE CASCADE,
	blocking_task_ids TEXT NOT NULL DEFAULT '',
	computed_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX idx_tasks_is_blocked ON tasks(board_id, is_blocked);
`

var migration007ProgressAndBlockedCache = Migration{
	ID:          7,
	Description: "progress_rollup_and_blocked_cache",
	Body:        migration007Body,
	Up: func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, migration007Body)
		return err
	},
	Down: func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			DROP INDEX IF EXISTS idx_tasks_is_blocked;
			DROP TABLE IF EXISTS blocked_cache;
		`)
		if err != nil {
			return err
		}
		// SQLite cannot DROP COLUMN prior to 3.35 without a table rebuild;
		// modernc.org/sqlite tracks current SQLite which supports it directly.
		_, err = tx.ExecContext(ctx, `
			ALTER TABLE tasks DROP COLUMN blocked_by_count;
			ALTER TABLE tasks DROP COLUMN is_blocked;
		`)
		return err
	},
}
