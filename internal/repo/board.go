package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/kanbanforge/kanband/internal/query"
	"github.com/kanbanforge/kanband/internal/types"
)

// BoardRepository is the typed CRUD surface for boards.
type BoardRepository struct{}

func NewBoardRepository() *BoardRepository { return &BoardRepository{} }

func (r *BoardRepository) Create(ctx context.Context, tx dbtx, b *types.Board) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO boards (id, name, description, archived) VALUES (?, ?, ?, ?)`,
		b.ID, b.Name, b.Description, b.Archived)
	if err != nil {
		return wrapErr("insert board", err)
	}
	return nil
}

func (r *BoardRepository) Get(ctx context.Context, tx dbtx, id string) (*types.Board, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT id, name, description, created_at, archived FROM boards WHERE id = ?`, id)
	return scanBoard(row)
}

func (r *BoardRepository) GetByName(ctx context.Context, tx dbtx, name string) (*types.Board, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT id, name, description, created_at, archived FROM boards WHERE name = ?`, name)
	return scanBoard(row)
}

func scanBoard(row *sql.Row) (*types.Board, error) {
	var b types.Board
	err := row.Scan(&b.ID, &b.Name, &b.Description, &b.CreatedAt, &b.Archived)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.NewNotFoundError("board", "")
	}
	if err != nil {
		return nil, wrapErr("scan board", err)
	}
	return &b, nil
}

func (r *BoardRepository) List(ctx context.Context, tx dbtx, includeArchived bool) ([]*types.Board, error) {
	b := query.New(query.BoardsSchema)
	if !includeArchived {
		b.Where("archived", query.OpEq, false)
	}
	b.OrderBy("created_at", false)
	sqlStr, args, err := b.BuildSelect("id", "name", "description", "created_at", "archived")
	if err != nil {
		return nil, err
	}
	rows, err := tx.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, wrapErr("list boards", err)
	}
	defer rows.Close()

	var out []*types.Board
	for rows.Next() {
		var bd types.Board
		if err := rows.Scan(&bd.ID, &bd.Name, &bd.Description, &bd.CreatedAt, &bd.Archived); err != nil {
			return nil, wrapErr("scan board row", err)
		}
		out = append(out, &bd)
	}
	return out, rows.Err()
}

func (r *BoardRepository) Update(ctx context.Context, tx dbtx, b *types.Board) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE boards SET name = ?, description = ?, archived = ? WHERE id = ?`,
		b.Name, b.Description, b.Archived, b.ID)
	if err != nil {
		return wrapErr("update board", err)
	}
	return requireAffected(res, "board", b.ID)
}

func (r *BoardRepository) Delete(ctx context.Context, tx dbtx, id string) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM boards WHERE id = ?`, id)
	if err != nil {
		return wrapErr("delete board", err)
	}
	return requireAffected(res, "board", id)
}
