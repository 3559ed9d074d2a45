package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/kanbanforge/kanband/internal/query"
	"github.com/kanbanforge/kanband/internal/types"
)

// NoteRepository is the typed CRUD and full-text-search surface for notes.
type NoteRepository struct{}

func NewNoteRepository() *NoteRepository { return &NoteRepository{} }

const noteColumns = `id, task_id, board_id, content, category, pinned, created_at, updated_at`

func (r *NoteRepository) Create(ctx context.Context, tx dbtx, n *types.Note) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO notes (id, task_id, board_id, content, category, pinned) VALUES (?, ?, ?, ?, ?, ?)`,
		n.ID, n.TaskID, n.BoardID, n.Content, n.Category, n.Pinned)
	if err != nil {
		return wrapErr("insert note", err)
	}
	return nil
}

func (r *NoteRepository) Get(ctx context.Context, tx dbtx, id string) (*types.Note, error) {
	row := tx.QueryRowContext(ctx, `SELECT `+noteColumns+` FROM notes WHERE id = ?`, id)
	var n types.Note
	err := row.Scan(&n.ID, &n.TaskID, &n.BoardID, &n.Content, &n.Category, &n.Pinned, &n.CreatedAt, &n.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.NewNotFoundError("note", id)
	}
	if err != nil {
		return nil, wrapErr("scan note", err)
	}
	return &n, nil
}

func (r *NoteRepository) Update(ctx context.Context, tx dbtx, n *types.Note) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE notes SET content = ?, category = ?, pinned = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		n.Content, n.Category, n.Pinned, n.ID)
	if err != nil {
		return wrapErr("update note", err)
	}
	return requireAffected(res, "note", n.ID)
}

func (r *NoteRepository) Delete(ctx context.Context, tx dbtx, id string) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id)
	if err != nil {
		return wrapErr("delete note", err)
	}
	return requireAffected(res, "note", id)
}

func (r *NoteRepository) ListByTask(ctx context.Context, tx dbtx, taskID string) ([]*types.Note, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE task_id = ? ORDER BY pinned DESC, created_at ASC`, taskID)
	if err != nil {
		return nil, wrapErr("list notes by task", err)
	}
	defer rows.Close()
	return scanNoteRows(rows)
}

// Search runs the filter against notes, using FTS5 (notes_fts) for the
// free-text term when one is given, and the safe builder for structured
// predicates otherwise.
func (r *NoteRepository) Search(ctx context.Context, tx dbtx, f types.NoteFilter) ([]*types.Note, error) {
	if f.Search != "" {
		rows, err := tx.QueryContext(ctx, `
			SELECT n.id, n.task_id, n.board_id, n.content, n.category, n.pinned, n.created_at, n.updated_at
			FROM notes n
			JOIN notes_fts ON notes_fts.rowid = n.rowid
			WHERE notes_fts MATCH ?
			ORDER BY rank`, f.Search)
		if err != nil {
			return nil, wrapErr("search notes fts", err)
		}
		defer rows.Close()
		return scanNoteRows(rows)
	}

	b := query.New(query.NotesSchema)
	if f.TaskID != "" {
		b.Where("task_id", query.OpEq, f.TaskID)
	}
	if f.BoardID != "" {
		b.Where("board_id", query.OpEq, f.BoardID)
	}
	if f.Category != "" {
		b.Where("category", query.OpEq, f.Category)
	}
	if f.Pinned != nil {
		b.Where("pinned", query.OpEq, *f.Pinned)
	}
	b.OrderBy("created_at", true)
	if f.Limit > 0 {
		b.Limit(f.Limit)
	}
	sqlStr, args, err := b.BuildSelect("id", "task_id", "board_id", "content", "category", "pinned", "created_at", "updated_at")
	if err != nil {
		return nil, err
	}
	rows, err := tx.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, wrapErr("search notes", err)
	}
	defer rows.Close()
	return scanNoteRows(rows)
}

func scanNoteRows(rows *sql.Rows) ([]*types.Note, error) {
	var out []*types.Note
	for rows.Next() {
		var n types.Note
		if err := rows.Scan(&n.ID, &n.TaskID, &n.BoardID, &n.Content, &n.Category, &n.Pinned, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, wrapErr("scan note row", err)
		}
		out = append(out, &n)
	}
	return out, rows.Err()
}
