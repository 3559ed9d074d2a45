package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/kanbanforge/kanband/internal/types"
)

// ColumnRepository is the typed CRUD surface for board columns.
type ColumnRepository struct{}

func NewColumnRepository() *ColumnRepository { return &ColumnRepository{} }

func (r *ColumnRepository) Create(ctx context.Context, tx dbtx, c *types.Column) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO columns (id, board_id, name, position, color) VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.BoardID, c.Name, c.Position, c.Color)
	if err != nil {
		return wrapErr("insert column", err)
	}
	return nil
}

func (r *ColumnRepository) Get(ctx context.Context, tx dbtx, id string) (*types.Column, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT id, board_id, name, position, color FROM columns WHERE id = ?`, id)
	var c types.Column
	err := row.Scan(&c.ID, &c.BoardID, &c.Name, &c.Position, &c.Color)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.NewNotFoundError("column", id)
	}
	if err != nil {
		return nil, wrapErr("scan column", err)
	}
	return &c, nil
}

func (r *ColumnRepository) ListByBoard(ctx context.Context, tx dbtx, boardID string) ([]*types.Column, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT id, board_id, name, position, color FROM columns WHERE board_id = ? ORDER BY position ASC`, boardID)
	if err != nil {
		return nil, wrapErr("list columns", err)
	}
	defer rows.Close()

	var out []*types.Column
	for rows.Next() {
		var c types.Column
		if err := rows.Scan(&c.ID, &c.BoardID, &c.Name, &c.Position, &c.Color); err != nil {
			return nil, wrapErr("scan column row", err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

func (r *ColumnRepository) Update(ctx context.Context, tx dbtx, c *types.Column) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE columns SET name = ?, position = ?, color = ? WHERE id = ?`,
		c.Name, c.Position, c.Color, c.ID)
	if err != nil {
		return wrapErr("update column", err)
	}
	return requireAffected(res, "column", c.ID)
}

func (r *ColumnRepository) Delete(ctx context.Context, tx dbtx, id string) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM columns WHERE id = ?`, id)
	if err != nil {
		return wrapErr("delete column", err)
	}
	return requireAffected(res, "column", id)
}

// MaxPosition returns the current highest position among columns on board,
// or -1 if none exist.
func (r *ColumnRepository) MaxPosition(ctx context.Context, tx dbtx, boardID string) (int, error) {
	var max sql.NullInt64
	err := tx.QueryRowContext(ctx,
		`SELECT MAX(position) FROM columns WHERE board_id = ?`, boardID).Scan(&max)
	if err != nil {
		return 0, wrapErr("max column position", err)
	}
	if !max.Valid {
		return -1, nil
	}
	return int(max.Int64), nil
}
