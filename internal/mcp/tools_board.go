package mcp

import (
	"context"

	"github.com/kanbanforge/kanband/internal/types"
)

func (t *Toolset) createBoard(ctx context.Context, args map[string]any) (any, error) {
	var b types.Board
	if err := decodeArgs(args, &b); err != nil {
		return nil, err
	}
	return t.svc.CreateBoard(ctx, &b)
}

func (t *Toolset) listBoards(ctx context.Context, args map[string]any) (any, error) {
	return t.svc.ListBoards(ctx, boolArg(args, "include_archived"))
}

func (t *Toolset) listColumns(ctx context.Context, args map[string]any) (any, error) {
	boardID := stringArg(args, "board_id")
	if boardID == "" {
		return nil, types.NewValidationError("board_id is required", nil)
	}
	return t.svc.ListColumns(ctx, boardID)
}
