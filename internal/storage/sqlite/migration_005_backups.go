package sqlite

import (
	"context"
	"database/sql"
)

const migration005Body = `
CREATE TABLE backups (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	type TEXT NOT NULL CHECK(type IN ('full','incremental','manual')),
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	size_bytes INTEGER NOT NULL DEFAULT 0,
	checksum TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT 'pending' CHECK(status IN ('pending','verified','failed','restored')),
	retention_days INTEGER NOT NULL DEFAULT 30,
	parent_backup_id TEXT REFERENCES backups(id) ON DELETE SET NULL,
	path TEXT NOT NULL DEFAULT ''
);
CREATE INDEX idx_backups_status ON backups(status);
CREATE INDEX idx_backups_created_at ON backups(created_at);
CREATE INDEX idx_backups_parent ON backups(parent_backup_id);
`

var migration005Backups = Migration{
	ID:          5,
	Description: "backup_metadata",
	Body:        migration005Body,
	Up: func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, migration005Body)
		return err
	},
	Down: func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS backups;`)
		return err
	},
}
