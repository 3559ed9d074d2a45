package repo

import (
	"context"
	"database/sql"

	"github.com/kanbanforge/kanband/internal/types"
)

// DependencyRepository is the typed CRUD surface for dependency edges. It
// does not itself enforce D1/D2 (cycle/self-edge) — those are graph-level
// invariants enforced by the Task/Dependency Engine before a write is
// attempted here. This layer only enforces the DB-level uniqueness and
// self-edge CHECK constraint as a backstop.
type DependencyRepository struct{}

func NewDependencyRepository() *DependencyRepository { return &DependencyRepository{} }

func (r *DependencyRepository) Create(ctx context.Context, tx dbtx, d *types.Dependency) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO dependencies (task_id, depends_on_task_id, type) VALUES (?, ?, ?)`,
		d.TaskID, d.DependsOnTaskID, d.Type)
	if err != nil {
		return wrapErr("insert dependency", err)
	}
	return nil
}

func (r *DependencyRepository) Delete(ctx context.Context, tx dbtx, taskID, dependsOnTaskID string) error {
	res, err := tx.ExecContext(ctx,
		`DELETE FROM dependencies WHERE task_id = ? AND depends_on_task_id = ?`, taskID, dependsOnTaskID)
	if err != nil {
		return wrapErr("delete dependency", err)
	}
	return requireAffected(res, "dependency", taskID+"->"+dependsOnTaskID)
}

// ListOutgoing returns every edge task_id=taskID, i.e. what taskID depends
// on.
func (r *DependencyRepository) ListOutgoing(ctx context.Context, tx dbtx, taskID string) ([]*types.Dependency, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT task_id, depends_on_task_id, type, created_at FROM dependencies WHERE task_id = ?`, taskID)
	if err != nil {
		return nil, wrapErr("list outgoing dependencies", err)
	}
	defer rows.Close()
	return scanDependencyRows(rows)
}

// ListIncoming returns every edge depends_on_task_id=taskID, i.e. what
// depends on taskID (its successors — tasks this one unblocks on
// completion).
func (r *DependencyRepository) ListIncoming(ctx context.Context, tx dbtx, taskID string) ([]*types.Dependency, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT task_id, depends_on_task_id, type, created_at FROM dependencies WHERE depends_on_task_id = ?`, taskID)
	if err != nil {
		return nil, wrapErr("list incoming dependencies", err)
	}
	defer rows.Close()
	return scanDependencyRows(rows)
}

// ListBlocksEdgesForBoard loads the entire blocks-subgraph for a board in
// one query, used by the engine's cycle-detection and topological-sort
// passes so they don't issue one query per node.
func (r *DependencyRepository) ListBlocksEdgesForBoard(ctx context.Context, tx dbtx, boardID string) ([]*types.Dependency, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT d.task_id, d.depends_on_task_id, d.type, d.created_at
		FROM dependencies d
		JOIN tasks t ON t.id = d.task_id
		WHERE d.type = 'blocks' AND t.board_id = ?`, boardID)
	if err != nil {
		return nil, wrapErr("list board blocks edges", err)
	}
	defer rows.Close()
	return scanDependencyRows(rows)
}

func (r *DependencyRepository) Exists(ctx context.Context, tx dbtx, taskID, dependsOnTaskID string) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx,
		`SELECT 1 FROM dependencies WHERE task_id = ? AND depends_on_task_id = ?`, taskID, dependsOnTaskID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, wrapErr("check dependency exists", err)
	}
	return true, nil
}

func scanDependencyRows(rows *sql.Rows) ([]*types.Dependency, error) {
	var out []*types.Dependency
	for rows.Next() {
		var d types.Dependency
		if err := rows.Scan(&d.TaskID, &d.DependsOnTaskID, &d.Type, &d.CreatedAt); err != nil {
			return nil, wrapErr("scan dependency row", err)
		}
		out = append(out, &d)
	}
	return out, rows.Err()
}
