package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/kanbanforge/kanband/internal/idgen"
	"github.com/kanbanforge/kanband/internal/types"
)

// CreateBoard validates and persists a new board plus its starter column
// ("To Do"), so every board is immediately usable.
func (s *Service) CreateBoard(ctx context.Context, b *types.Board) (*types.Board, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}

	var created *types.Board
	err := s.store.Transaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := s.boards.GetByName(ctx, tx, b.Name); err == nil {
			return types.NewConflictError(types.CodeDuplicate, "a board with this name already exists", map[string]any{"name": b.Name})
		}

		now := time.Now()
		b.ID = idgen.New(idgen.PrefixBoard, b.Name, b.Description, "", now, func(id string) bool {
			_, err := s.boards.Get(ctx, tx, id)
			return err == nil
		})
		if err := s.boards.Create(ctx, tx, b); err != nil {
			return err
		}

		col := &types.Column{
			ID:       idgen.New(idgen.PrefixColumn, "To Do", b.ID, "", now, nil),
			BoardID:  b.ID,
			Name:     "To Do",
			Position: 0,
		}
		if err := s.columns.Create(ctx, tx, col); err != nil {
			return err
		}

		created = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *Service) GetBoard(ctx context.Context, id string) (*types.Board, error) {
	var b *types.Board
	err := s.store.Transaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		var err error
		b, err = s.boards.Get(ctx, tx, id)
		return err
	})
	return b, err
}

func (s *Service) ListBoards(ctx context.Context, includeArchived bool) ([]*types.Board, error) {
	var out []*types.Board
	err := s.store.Transaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		var err error
		out, err = s.boards.List(ctx, tx, includeArchived)
		return err
	})
	return out, err
}

// ArchiveBoard soft-deletes a board (archived=true); it does not cascade,
// since archived boards and their tasks remain readable for history.
func (s *Service) ArchiveBoard(ctx context.Context, id string) error {
	return s.store.Transaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		b, err := s.boards.Get(ctx, tx, id)
		if err != nil {
			return err
		}
		b.Archived = true
		return s.boards.Update(ctx, tx, b)
	})
}

// CreateColumn appends a new column at the tail of the board.
func (s *Service) CreateColumn(ctx context.Context, c *types.Column) (*types.Column, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	err := s.store.Transaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := s.boards.Get(ctx, tx, c.BoardID); err != nil {
			return types.NewConflictError(types.CodeBoardNotFound, "board not found", map[string]any{"board_id": c.BoardID})
		}
		maxPos, err := s.columns.MaxPosition(ctx, tx, c.BoardID)
		if err != nil {
			return err
		}
		c.Position = maxPos + 1
		c.ID = idgen.New(idgen.PrefixColumn, c.Name, c.BoardID, "", time.Now(), func(id string) bool {
			_, err := s.columns.Get(ctx, tx, id)
			return err == nil
		})
		return s.columns.Create(ctx, tx, c)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) ListColumns(ctx context.Context, boardID string) ([]*types.Column, error) {
	var out []*types.Column
	err := s.store.Transaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		var err error
		out, err = s.columns.ListByBoard(ctx, tx, boardID)
		return err
	})
	return out, err
}
