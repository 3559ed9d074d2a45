package sqlite

import (
	"context"
	"database/sql"
)

const migration004Body = `
CREATE TABLE repo_mappings (
	id TEXT PRIMARY KEY,
	pattern TEXT NOT NULL,
	pattern_type TEXT NOT NULL DEFAULT 'name' CHECK(pattern_type IN ('url','name','branch','config-file')),
	board_id TEXT NOT NULL REFERENCES boards(id) ON DELETE CASCADE,
	priority INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX idx_repo_mappings_board ON repo_mappings(board_id);
CREATE INDEX idx_repo_mappings_priority ON repo_mappings(priority DESC);

CREATE TABLE repo_mapping_default_tags (
	mapping_id TEXT NOT NULL REFERENCES repo_mappings(id) ON DELETE CASCADE,
	tag_id TEXT NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
	PRIMARY KEY (mapping_id, tag_id)
);
`

var migration004RepoMappings = Migration{
	ID:          4,
	Description: "repo_mappings",
	Body:        migration004Body,
	Up: func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, migration004Body)
		return err
	},
	Down: func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			DROP TABLE IF EXISTS repo_mapping_default_tags;
			DROP TABLE IF EXISTS repo_mappings;
		`)
		return err
	},
}
