package mcp

import (
	"context"

	"github.com/kanbanforge/kanband/internal/types"
)

func (t *Toolset) createTask(ctx context.Context, args map[string]any) (any, error) {
	var task types.Task
	if err := decodeArgs(args, &task); err != nil {
		return nil, err
	}
	if parentID := stringArg(args, "parent_task_id"); parentID != "" {
		return t.svc.CreateSubtask(ctx, parentID, &task)
	}
	return t.svc.CreateTask(ctx, &task)
}

func (t *Toolset) getTask(ctx context.Context, args map[string]any) (any, error) {
	id := stringArg(args, "id")
	if id == "" {
		return nil, types.NewValidationError("id is required", nil)
	}
	return t.svc.GetTask(ctx, id)
}

func (t *Toolset) searchTasks(ctx context.Context, args map[string]any) (any, error) {
	f := types.TaskFilter{
		BoardID:       stringArg(args, "board_id"),
		Assignee:      stringArg(args, "assignee"),
		Tag:           stringArg(args, "tag"),
		Search:        stringArg(args, "search"),
		ParentTaskID:  stringArg(args, "parent_task_id"),
		PriorityMin:   floatArg(args, "priority_min"),
		PriorityMax:   floatArg(args, "priority_max"),
		Sort:          stringArg(args, "sort"),
		Order:         stringArg(args, "order"),
		Limit:         int(floatArg(args, "limit")),
		Offset:        int(floatArg(args, "offset")),
		IncludeArchived: boolArg(args, "include_archived"),
	}
	if status := stringArg(args, "status"); status != "" {
		f.Status = []types.Status{types.Status(status)}
	}
	return t.svc.SearchTasks(ctx, f)
}

func (t *Toolset) updateTaskStatus(ctx context.Context, args map[string]any) (any, error) {
	id := stringArg(args, "id")
	status := stringArg(args, "status")
	if id == "" || status == "" {
		return nil, types.NewValidationError("id and status are required", nil)
	}
	return t.svc.UpdateTaskStatus(ctx, id, types.Status(status))
}

func (t *Toolset) moveTask(ctx context.Context, args map[string]any) (any, error) {
	id := stringArg(args, "id")
	columnID := stringArg(args, "column_id")
	if id == "" || columnID == "" {
		return nil, types.NewValidationError("id and column_id are required", nil)
	}
	return t.svc.MoveTask(ctx, id, columnID, int(floatArg(args, "position")))
}

func (t *Toolset) deleteTask(ctx context.Context, args map[string]any) (any, error) {
	id := stringArg(args, "id")
	if id == "" {
		return nil, types.NewValidationError("id is required", nil)
	}
	return nil, t.svc.DeleteTask(ctx, id)
}
