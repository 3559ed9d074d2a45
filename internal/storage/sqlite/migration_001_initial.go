package sqlite

import (
	"context"
	"database/sql"
)

const migration001Body = `
CREATE TABLE boards (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	description TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	archived INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE columns (
	id TEXT PRIMARY KEY,
	board_id TEXT NOT NULL REFERENCES boards(id) ON DELETE CASCADE,
	name TEXT NOT NULL,
	position INTEGER NOT NULL DEFAULT 0,
	color TEXT NOT NULL DEFAULT '',
	UNIQUE(board_id, name)
);
CREATE INDEX idx_columns_board ON columns(board_id);

CREATE TABLE tasks (
	id TEXT PRIMARY KEY,
	board_id TEXT NOT NULL REFERENCES boards(id) ON DELETE CASCADE,
	column_id TEXT NOT NULL REFERENCES columns(id) ON DELETE RESTRICT,
	parent_task_id TEXT REFERENCES tasks(id) ON DELETE CASCADE,
	title TEXT NOT NULL CHECK(length(title) <= 500),
	description TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT 'todo' CHECK(status IN ('todo','in_progress','done','blocked','archived')),
	priority TEXT NOT NULL DEFAULT 'medium' CHECK(priority IN ('low','medium','high','critical')),
	priority_score REAL NOT NULL DEFAULT 0,
	due_date DATETIME,
	assignee TEXT NOT NULL DEFAULT '',
	estimated_hours REAL NOT NULL DEFAULT 0,
	position INTEGER NOT NULL DEFAULT 0,
	content_hash TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	archived INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX idx_tasks_board ON tasks(board_id);
CREATE INDEX idx_tasks_column ON tasks(column_id);
CREATE INDEX idx_tasks_parent ON tasks(parent_task_id);
CREATE INDEX idx_tasks_status ON tasks(status);
CREATE INDEX idx_tasks_assignee ON tasks(assignee);
CREATE INDEX idx_tasks_due_date ON tasks(due_date);
CREATE INDEX idx_tasks_priority_score ON tasks(board_id, priority_score DESC);

CREATE TABLE dependencies (
	task_id TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
	depends_on_task_id TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
	type TEXT NOT NULL DEFAULT 'blocks' CHECK(type IN ('blocks','related','parent-child')),
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (task_id, depends_on_task_id),
	CHECK (task_id != depends_on_task_id)
);
CREATE INDEX idx_dependencies_depends_on ON dependencies(depends_on_task_id);
CREATE INDEX idx_dependencies_type ON dependencies(type);

CREATE TABLE task_progress (
	task_id TEXT PRIMARY KEY REFERENCES tasks(id) ON DELETE CASCADE,
	percent_complete REAL NOT NULL DEFAULT 0,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

var migration001InitialSchema = Migration{
	ID:          1,
	Description: "initial_schema_boards_columns_tasks_dependencies",
	Body:        migration001Body,
	Up: func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, migration001Body)
		return err
	},
	Down: func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			DROP TABLE IF EXISTS task_progress;
			DROP TABLE IF EXISTS dependencies;
			DROP TABLE IF EXISTS tasks;
			DROP TABLE IF EXISTS columns;
			DROP TABLE IF EXISTS boards;
		`)
		return err
	},
}
