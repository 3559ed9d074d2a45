package repo

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/kanbanforge/kanband/internal/types"
)

// TagRepository is the typed CRUD surface for hierarchical tags, plus the
// subtree path-rewrite used by Reparent.
type TagRepository struct{}

func NewTagRepository() *TagRepository { return &TagRepository{} }

const tagColumns = `id, name, slug, color, parent_id, path, usage_count`

func (r *TagRepository) Create(ctx context.Context, tx dbtx, t *types.Tag) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO tags (id, name, slug, color, parent_id, path, usage_count) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Name, t.Slug, t.Color, t.ParentID, t.Path, t.UsageCount)
	if err != nil {
		return wrapErr("insert tag", err)
	}
	return nil
}

func (r *TagRepository) Get(ctx context.Context, tx dbtx, id string) (*types.Tag, error) {
	row := tx.QueryRowContext(ctx, `SELECT `+tagColumns+` FROM tags WHERE id = ?`, id)
	t, err := scanTagRow(row)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func scanTagRow(row *sql.Row) (*types.Tag, error) {
	var t types.Tag
	err := row.Scan(&t.ID, &t.Name, &t.Slug, &t.Color, &t.ParentID, &t.Path, &t.UsageCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.NewNotFoundError("tag", "")
	}
	if err != nil {
		return nil, wrapErr("scan tag", err)
	}
	return &t, nil
}

func (r *TagRepository) List(ctx context.Context, tx dbtx) ([]*types.Tag, error) {
	rows, err := tx.QueryContext(ctx, `SELECT `+tagColumns+` FROM tags ORDER BY path ASC`)
	if err != nil {
		return nil, wrapErr("list tags", err)
	}
	defer rows.Close()
	return scanTagRows(rows)
}

func (r *TagRepository) ListBySubtree(ctx context.Context, tx dbtx, pathPrefix string) ([]*types.Tag, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT `+tagColumns+` FROM tags WHERE path = ? OR path LIKE ? ORDER BY path ASC`,
		pathPrefix, pathPrefix+"/%")
	if err != nil {
		return nil, wrapErr("list tag subtree", err)
	}
	defer rows.Close()
	return scanTagRows(rows)
}

func scanTagRows(rows *sql.Rows) ([]*types.Tag, error) {
	var out []*types.Tag
	for rows.Next() {
		var t types.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug, &t.Color, &t.ParentID, &t.Path, &t.UsageCount); err != nil {
			return nil, wrapErr("scan tag row", err)
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}

func (r *TagRepository) Update(ctx context.Context, tx dbtx, t *types.Tag) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE tags SET name = ?, color = ? WHERE id = ?`, t.Name, t.Color, t.ID)
	if err != nil {
		return wrapErr("update tag", err)
	}
	return requireAffected(res, "tag", t.ID)
}

// Reparent moves tag to under newParentID (nil for root) and rewrites the
// path of the entire subtree atomically. Callers are expected to run this
// inside a single transaction with the whole subtree loaded and validated
// for cycles beforehand (the engine package does the cycle check; this is
// a mechanical rewrite).
func (r *TagRepository) Reparent(ctx context.Context, tx dbtx, tagID string, newParentID *string, newPath string) error {
	old, err := r.Get(ctx, tx, tagID)
	if err != nil {
		return err
	}
	oldPath := old.Path

	if _, err := tx.ExecContext(ctx, `UPDATE tags SET parent_id = ?, path = ? WHERE id = ?`, newParentID, newPath, tagID); err != nil {
		return wrapErr("reparent tag", err)
	}

	rows, err := tx.QueryContext(ctx, `SELECT id, path FROM tags WHERE path LIKE ?`, oldPath+"/%")
	if err != nil {
		return wrapErr("list descendant tags", err)
	}
	type descendant struct{ id, path string }
	var descendants []descendant
	for rows.Next() {
		var d descendant
		if err := rows.Scan(&d.id, &d.path); err != nil {
			rows.Close()
			return wrapErr("scan descendant tag", err)
		}
		descendants = append(descendants, d)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return wrapErr("iterate descendant tags", err)
	}

	for _, d := range descendants {
		rewritten := newPath + strings.TrimPrefix(d.path, oldPath)
		if _, err := tx.ExecContext(ctx, `UPDATE tags SET path = ? WHERE id = ?`, rewritten, d.id); err != nil {
			return wrapErr("rewrite descendant path", err)
		}
	}
	return nil
}

func (r *TagRepository) IncrementUsage(ctx context.Context, tx dbtx, tagID string, delta int) error {
	_, err := tx.ExecContext(ctx, `UPDATE tags SET usage_count = usage_count + ? WHERE id = ?`, delta, tagID)
	if err != nil {
		return wrapErr("increment tag usage", err)
	}
	return nil
}

func (r *TagRepository) Delete(ctx context.Context, tx dbtx, id string) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM tags WHERE id = ?`, id)
	if err != nil {
		return wrapErr("delete tag", err)
	}
	return requireAffected(res, "tag", id)
}

// AttachToTask / DetachFromTask manage the task_tags join.
func (r *TagRepository) AttachToTask(ctx context.Context, tx dbtx, taskID, tagID string) error {
	_, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO task_tags (task_id, tag_id) VALUES (?, ?)`, taskID, tagID)
	if err != nil {
		return wrapErr("attach tag to task", err)
	}
	return nil
}

func (r *TagRepository) DetachFromTask(ctx context.Context, tx dbtx, taskID, tagID string) error {
	_, err := tx.ExecContext(ctx,
		`DELETE FROM task_tags WHERE task_id = ? AND tag_id = ?`, taskID, tagID)
	if err != nil {
		return wrapErr("detach tag from task", err)
	}
	return nil
}

func (r *TagRepository) ListForTask(ctx context.Context, tx dbtx, taskID string) ([]*types.Tag, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT t.id, t.name, t.slug, t.color, t.parent_id, t.path, t.usage_count
		FROM tags t
		JOIN task_tags tt ON tt.tag_id = t.id
		WHERE tt.task_id = ?
		ORDER BY t.path ASC`, taskID)
	if err != nil {
		return nil, wrapErr("list tags for task", err)
	}
	defer rows.Close()
	return scanTagRows(rows)
}
