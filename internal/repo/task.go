package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/kanbanforge/kanband/internal/query"
	"github.com/kanbanforge/kanband/internal/types"
)

// TaskRepository is the typed CRUD and aggregate-query surface for tasks.
type TaskRepository struct{}

func NewTaskRepository() *TaskRepository { return &TaskRepository{} }

const taskColumns = `id, board_id, column_id, parent_task_id, title, description, status, priority,
	priority_score, due_date, assignee, estimated_hours, position, content_hash, created_at, updated_at, archived`

func (r *TaskRepository) Create(ctx context.Context, tx dbtx, t *types.Task) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO tasks (
		id, board_id, column_id, parent_task_id, title, description, status, priority,
		priority_score, due_date, assignee, estimated_hours, position, content_hash, archived
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.BoardID, t.ColumnID, t.ParentTaskID, t.Title, t.Description, t.Status, t.Priority,
		t.PriorityScore, t.DueDate, t.Assignee, t.EstimatedHours, t.Position, t.ContentHash, t.Archived)
	if err != nil {
		return wrapErr("insert task", err)
	}
	_, err = tx.ExecContext(ctx, `INSERT INTO task_progress (task_id, percent_complete) VALUES (?, 0)`, t.ID)
	if err != nil {
		return wrapErr("insert task_progress", err)
	}
	return nil
}

func (r *TaskRepository) Get(ctx context.Context, tx dbtx, id string) (*types.Task, error) {
	row := tx.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func scanTask(row *sql.Row) (*types.Task, error) {
	var t types.Task
	err := row.Scan(&t.ID, &t.BoardID, &t.ColumnID, &t.ParentTaskID, &t.Title, &t.Description,
		&t.Status, &t.Priority, &t.PriorityScore, &t.DueDate, &t.Assignee, &t.EstimatedHours,
		&t.Position, &t.ContentHash, &t.CreatedAt, &t.UpdatedAt, &t.Archived)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.NewNotFoundError("task", "")
	}
	if err != nil {
		return nil, wrapErr("scan task", err)
	}
	return &t, nil
}

func scanTaskRows(rows *sql.Rows) ([]*types.Task, error) {
	var out []*types.Task
	for rows.Next() {
		var t types.Task
		if err := rows.Scan(&t.ID, &t.BoardID, &t.ColumnID, &t.ParentTaskID, &t.Title, &t.Description,
			&t.Status, &t.Priority, &t.PriorityScore, &t.DueDate, &t.Assignee, &t.EstimatedHours,
			&t.Position, &t.ContentHash, &t.CreatedAt, &t.UpdatedAt, &t.Archived); err != nil {
			return nil, wrapErr("scan task row", err)
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}

func (r *TaskRepository) Update(ctx context.Context, tx dbtx, t *types.Task) error {
	res, err := tx.ExecContext(ctx, `UPDATE tasks SET
		column_id = ?, parent_task_id = ?, title = ?, description = ?, status = ?, priority = ?,
		priority_score = ?, due_date = ?, assignee = ?, estimated_hours = ?, position = ?,
		content_hash = ?, updated_at = CURRENT_TIMESTAMP, archived = ?
		WHERE id = ?`,
		t.ColumnID, t.ParentTaskID, t.Title, t.Description, t.Status, t.Priority,
		t.PriorityScore, t.DueDate, t.Assignee, t.EstimatedHours, t.Position,
		t.ContentHash, t.Archived, t.ID)
	if err != nil {
		return wrapErr("update task", err)
	}
	return requireAffected(res, "task", t.ID)
}

// UpdateStatus is a narrow update used by the engine's status-transition
// path so it doesn't have to round-trip a full Task struct.
func (r *TaskRepository) UpdateStatus(ctx context.Context, tx dbtx, id string, status types.Status) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE tasks SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, status, id)
	if err != nil {
		return wrapErr("update task status", err)
	}
	return requireAffected(res, "task", id)
}

// UpdatePriorityScore is called by the priority-recompute pass, which
// writes scores for many tasks without otherwise touching their rows.
func (r *TaskRepository) UpdatePriorityScore(ctx context.Context, tx dbtx, id string, score float64) error {
	_, err := tx.ExecContext(ctx, `UPDATE tasks SET priority_score = ? WHERE id = ?`, score, id)
	if err != nil {
		return wrapErr("update priority score", err)
	}
	return nil
}

func (r *TaskRepository) UpdateBlockedState(ctx context.Context, tx dbtx, id string, blocked bool, blockedByCount int) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE tasks SET is_blocked = ?, blocked_by_count = ? WHERE id = ?`, blocked, blockedByCount, id)
	if err != nil {
		return wrapErr("update blocked state", err)
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, tx dbtx, id string) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return wrapErr("delete task", err)
	}
	return requireAffected(res, "task", id)
}

// ListByBoard returns the tasks on a board (archived ones only when
// includeArchived is set), ordered by position ascending.
func (r *TaskRepository) ListByBoard(ctx context.Context, tx dbtx, boardID string, includeArchived bool) ([]*types.Task, error) {
	b := query.New(query.TasksSchema).Where("board_id", query.OpEq, boardID)
	if !includeArchived {
		b.Where("archived", query.OpEq, false)
	}
	b.OrderBy("position", false)
	sqlStr, args, err := b.BuildSelect(splitCols()...)
	if err != nil {
		return nil, err
	}
	rows, err := tx.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, wrapErr("list tasks by board", err)
	}
	defer rows.Close()
	return scanTaskRows(rows)
}

// ListChildren returns the direct subtasks of parentID, ordered by
// position.
func (r *TaskRepository) ListChildren(ctx context.Context, tx dbtx, parentID string) ([]*types.Task, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE parent_task_id = ? ORDER BY position ASC`, parentID)
	if err != nil {
		return nil, wrapErr("list children", err)
	}
	defer rows.Close()
	return scanTaskRows(rows)
}

// MaxPositionInColumn returns the highest position among the tasks in a
// column, or -1 if there are none.
func (r *TaskRepository) MaxPositionInColumn(ctx context.Context, tx dbtx, columnID string) (int, error) {
	var max sql.NullInt64
	err := tx.QueryRowContext(ctx, `SELECT MAX(position) FROM tasks WHERE column_id = ?`, columnID).Scan(&max)
	if err != nil {
		return 0, wrapErr("max task position", err)
	}
	if !max.Valid {
		return -1, nil
	}
	return int(max.Int64), nil
}

func (r *TaskRepository) MaxPositionAmongSiblings(ctx context.Context, tx dbtx, parentID string) (int, error) {
	var max sql.NullInt64
	err := tx.QueryRowContext(ctx, `SELECT MAX(position) FROM tasks WHERE parent_task_id = ?`, parentID).Scan(&max)
	if err != nil {
		return 0, wrapErr("max sibling position", err)
	}
	if !max.Valid {
		return -1, nil
	}
	return int(max.Int64), nil
}

// ListBlockedTasks returns tasks currently flagged as blocked by the
// engine's cached blocked state, newest-first by update.
func (r *TaskRepository) ListBlockedTasks(ctx context.Context, tx dbtx, boardID string) ([]*types.Task, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE board_id = ? AND is_blocked = 1 AND archived = 0 ORDER BY updated_at DESC`,
		boardID)
	if err != nil {
		return nil, wrapErr("list blocked tasks", err)
	}
	defer rows.Close()
	return scanTaskRows(rows)
}

// ListOverdue returns non-terminal tasks whose due_date has passed asOf.
func (r *TaskRepository) ListOverdue(ctx context.Context, tx dbtx, boardID string, asOf time.Time) ([]*types.Task, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks
		 WHERE board_id = ? AND due_date IS NOT NULL AND due_date < ?
		   AND status NOT IN ('done', 'archived')
		 ORDER BY due_date ASC`,
		boardID, asOf)
	if err != nil {
		return nil, wrapErr("list overdue tasks", err)
	}
	defer rows.Close()
	return scanTaskRows(rows)
}

// SearchTasks applies a TaskFilter using the safe query builder.
func (r *TaskRepository) SearchTasks(ctx context.Context, tx dbtx, f types.TaskFilter) ([]*types.Task, error) {
	b := query.New(query.TasksSchema)
	if f.BoardID != "" {
		b.Where("board_id", query.OpEq, f.BoardID)
	}
	if f.ColumnID != "" {
		b.Where("column_id", query.OpEq, f.ColumnID)
	}
	if f.Assignee != "" {
		b.Where("assignee", query.OpEq, f.Assignee)
	}
	if f.ParentTaskID != "" {
		b.Where("parent_task_id", query.OpEq, f.ParentTaskID)
	}
	if f.Search != "" {
		b.Where("title", query.OpLike, "%"+f.Search+"%")
	}
	if f.PriorityMin != 0 {
		b.Where("priority_score", query.OpGte, f.PriorityMin)
	}
	if f.PriorityMax != 0 {
		b.Where("priority_score", query.OpLte, f.PriorityMax)
	}
	if !f.IncludeArchived {
		b.Where("archived", query.OpEq, false)
	}
	if len(f.Status) > 0 {
		vals := make([]any, len(f.Status))
		for i, s := range f.Status {
			vals[i] = s
		}
		b.WhereIn("status", vals)
	}
	sortCol := f.Sort
	if sortCol == "" {
		sortCol = "priority_score"
	}
	b.OrderBy(sortCol, f.Order != "asc")
	if f.Limit > 0 {
		b.Limit(f.Limit)
	}
	if f.Offset > 0 {
		b.Offset(f.Offset)
	}
	sqlStr, args, err := b.BuildSelect(splitCols()...)
	if err != nil {
		return nil, err
	}
	rows, err := tx.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, wrapErr("search tasks", err)
	}
	defer rows.Close()
	return scanTaskRows(rows)
}

// GetProgress returns the cached percent_complete for a task.
func (r *TaskRepository) GetProgress(ctx context.Context, tx dbtx, taskID string) (float64, error) {
	var pct float64
	err := tx.QueryRowContext(ctx, `SELECT percent_complete FROM task_progress WHERE task_id = ?`, taskID).Scan(&pct)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, wrapErr("get progress", err)
	}
	return pct, nil
}

// SetProgress upserts the cached percent_complete for a task, used by the
// rollup walk.
func (r *TaskRepository) SetProgress(ctx context.Context, tx dbtx, taskID string, pct float64) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO task_progress (task_id, percent_complete, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(task_id) DO UPDATE SET percent_complete = excluded.percent_complete, updated_at = CURRENT_TIMESTAMP`,
		taskID, pct)
	if err != nil {
		return wrapErr("set progress", err)
	}
	return nil
}

func splitCols() []string {
	return []string{
		"id", "board_id", "column_id", "parent_task_id", "title", "description", "status", "priority",
		"priority_score", "due_date", "assignee", "estimated_hours", "position", "content_hash",
		"created_at", "updated_at", "archived",
	}
}
