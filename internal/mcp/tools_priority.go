package mcp

import (
	"context"

	"github.com/kanbanforge/kanband/internal/engine"
	"github.com/kanbanforge/kanband/internal/types"
)

func (t *Toolset) getNextTask(ctx context.Context, args map[string]any) (any, error) {
	boardID := stringArg(args, "board_id")
	if boardID == "" {
		return nil, types.NewValidationError("board_id is required", nil)
	}
	f := engine.SelectionFilter{
		BoardID:        boardID,
		Assignee:       stringArg(args, "assignee"),
		ExcludeBlocked: true,
	}
	if _, ok := args["exclude_blocked"]; ok {
		f.ExcludeBlocked = boolArg(args, "exclude_blocked")
	}
	if raw, ok := args["skill_tags"].([]any); ok {
		for _, v := range raw {
			if s, ok := v.(string); ok {
				f.SkillTags = append(f.SkillTags, s)
			}
		}
	}
	if minutes := int(floatArg(args, "time_available_minutes")); minutes > 0 {
		f.TimeAvailableMinutes = &minutes
	}
	return t.svc.GetNextTask(ctx, f)
}

func (t *Toolset) recomputeScores(ctx context.Context, args map[string]any) (any, error) {
	boardID := stringArg(args, "board_id")
	if boardID == "" {
		return nil, types.NewValidationError("board_id is required", nil)
	}
	return nil, t.svc.RecomputeScores(ctx, boardID)
}
