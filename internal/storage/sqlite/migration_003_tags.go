package sqlite

import (
	"context"
	"database/sql"
)

const migration003Body = `
CREATE TABLE tags (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	slug TEXT NOT NULL UNIQUE,
	color TEXT NOT NULL DEFAULT '',
	parent_id TEXT REFERENCES tags(id) ON DELETE SET NULL,
	path TEXT NOT NULL DEFAULT '',
	usage_count INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX idx_tags_parent ON tags(parent_id);
CREATE INDEX idx_tags_path ON tags(path);

CREATE TABLE task_tags (
	task_id TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
	tag_id TEXT NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
	PRIMARY KEY (task_id, tag_id)
);
CREATE INDEX idx_task_tags_tag ON task_tags(tag_id);

CREATE TABLE note_links (
	note_id TEXT NOT NULL REFERENCES notes(id) ON DELETE CASCADE,
	tag_id TEXT NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
	PRIMARY KEY (note_id, tag_id)
);
CREATE INDEX idx_note_links_tag ON note_links(tag_id);
`

var migration003Tags = Migration{
	ID:          3,
	Description: "tags_hierarchy_and_links",
	Body:        migration003Body,
	Up: func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, migration003Body)
		return err
	},
	Down: func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			DROP TABLE IF EXISTS note_links;
			DROP TABLE IF EXISTS task_tags;
			DROP TABLE IF EXISTS tags;
		`)
		return err
	},
}
