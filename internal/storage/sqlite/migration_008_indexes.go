package sqlite

import (
	"context"
	"database/sql"
)

const migration008Body = `
CREATE INDEX idx_tasks_board_status ON tasks(board_id, status);
CREATE INDEX idx_tasks_board_column_position ON tasks(board_id, column_id, position);
CREATE INDEX idx_notes_task_created ON notes(task_id, created_at);
CREATE INDEX idx_dependencies_task_type ON dependencies(task_id, type);
`

var migration008Indexes = Migration{
	ID:          8,
	Description: "supplementary_query_indexes",
	Body:        migration008Body,
	Up: func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, migration008Body)
		return err
	},
	Down: func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			DROP INDEX IF EXISTS idx_dependencies_task_type;
			DROP INDEX IF EXISTS idx_notes_task_created;
			DROP INDEX IF EXISTS idx_tasks_board_column_position;
			DROP INDEX IF EXISTS idx_tasks_board_status;
		`)
		return err
	},
}
