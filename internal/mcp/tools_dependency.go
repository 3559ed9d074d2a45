package mcp

import (
	"context"

	"github.com/kanbanforge/kanband/internal/types"
)

func (t *Toolset) addDependency(ctx context.Context, args map[string]any) (any, error) {
	taskID := stringArg(args, "task_id")
	dependsOn := stringArg(args, "depends_on_task_id")
	if taskID == "" || dependsOn == "" {
		return nil, types.NewValidationError("task_id and depends_on_task_id are required", nil)
	}
	depType := types.DependencyType(stringArg(args, "type"))
	if depType == "" {
		depType = types.DepBlocks
	}
	return nil, t.svc.AddDependency(ctx, taskID, dependsOn, depType)
}

func (t *Toolset) removeDependency(ctx context.Context, args map[string]any) (any, error) {
	taskID := stringArg(args, "task_id")
	dependsOn := stringArg(args, "depends_on_task_id")
	if taskID == "" || dependsOn == "" {
		return nil, types.NewValidationError("task_id and depends_on_task_id are required", nil)
	}
	return nil, t.svc.RemoveDependency(ctx, taskID, dependsOn)
}

func (t *Toolset) listDependencies(ctx context.Context, args map[string]any) (any, error) {
	taskID := stringArg(args, "task_id")
	if taskID == "" {
		return nil, types.NewValidationError("task_id is required", nil)
	}
	outgoing, incoming, err := t.svc.ListDependencies(ctx, taskID)
	if err != nil {
		return nil, err
	}
	return map[string]any{"outgoing": outgoing, "incoming": incoming}, nil
}
