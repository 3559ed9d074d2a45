package sqlite

import (
	"context"
	"database/sql"
)

const migration002Body = `
CREATE TABLE notes (
	id TEXT PRIMARY KEY,
	task_id TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
	board_id TEXT NOT NULL REFERENCES boards(id) ON DELETE CASCADE,
	content TEXT NOT NULL CHECK(length(content) > 0),
	category TEXT NOT NULL DEFAULT 'general' CHECK(category IN ('general','implementation','research','blocker','idea')),
	pinned INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX idx_notes_task ON notes(task_id);
CREATE INDEX idx_notes_board ON notes(board_id);
CREATE INDEX idx_notes_category ON notes(category);
CREATE INDEX idx_notes_pinned ON notes(pinned);

CREATE VIRTUAL TABLE notes_fts USING fts5(
	content,
	content='notes',
	content_rowid='rowid'
);

CREATE TRIGGER notes_ai AFTER INSERT ON notes BEGIN
	INSERT INTO notes_fts(rowid, content) VALUES (new.rowid, new.content);
END;
CREATE TRIGGER notes_ad AFTER DELETE ON notes BEGIN
	INSERT INTO notes_fts(notes_fts, rowid, content) VALUES ('delete', old.rowid, old.content);
END;
CREATE TRIGGER notes_au AFTER UPDATE ON notes BEGIN
	INSERT INTO notes_fts(notes_fts, rowid, content) VALUES ('delete', old.rowid, old.content);
	INSERT INTO notes_fts(rowid, content) VALUES (new.rowid, new.content);
END;
`

var migration002Notes = Migration{
	ID:          2,
	Description: "notes_with_fts5",
	Body:        migration002Body,
	Up: func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, migration002Body)
		return err
	},
	Down: func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			DROP TRIGGER IF EXISTS notes_au;
			DROP TRIGGER IF EXISTS notes_ad;
			DROP TRIGGER IF EXISTS notes_ai;
			DROP TABLE IF EXISTS notes_fts;
			DROP TABLE IF EXISTS notes;
		`)
		return err
	},
}
