package mcp

import (
	"context"

	"github.com/kanbanforge/kanband/internal/types"
)

func (t *Toolset) addNote(ctx context.Context, args map[string]any) (any, error) {
	var n types.Note
	if err := decodeArgs(args, &n); err != nil {
		return nil, err
	}
	return t.svc.AddNote(ctx, &n)
}
