package mcp_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/kanbanforge/kanband/internal/auth"
	"github.com/kanbanforge/kanband/internal/engine"
	"github.com/kanbanforge/kanband/internal/eventbus"
	"github.com/kanbanforge/kanband/internal/mcp"
	"github.com/kanbanforge/kanband/internal/service"
	"github.com/kanbanforge/kanband/internal/storage/sqlite"
	"github.com/kanbanforge/kanband/internal/types"
)

func newTestToolset(t *testing.T) *mcp.Toolset {
	t.Helper()
	store, err := sqlite.Open(context.Background(), sqlite.Options{Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	hub := eventbus.New(zerolog.Nop())
	hasher := auth.NewHasher("test-secret")
	svc := service.New(store, hub, zerolog.Nop(), engine.DefaultConfig(), hasher)
	return mcp.New(svc, zerolog.Nop())
}

func findTool(t *testing.T, ts *mcp.Toolset, name string) mcp.Tool {
	t.Helper()
	for _, tool := range ts.Tools() {
		if tool.Name == name {
			return tool
		}
	}
	t.Fatalf("no tool named %q", name)
	return mcp.Tool{}
}

func TestCreateBoardTool_ReturnsCreatedBoard(t *testing.T) {
	ts := newTestToolset(t)
	ctx := context.Background()

	result, err := findTool(t, ts, "create_board").Handler(ctx, map[string]any{"name": "Engineering"})
	require.NoError(t, err)

	board, ok := result.(*types.Board)
	require.True(t, ok)
	require.Equal(t, "Engineering", board.Name)
}

func TestCreateTaskTool_RejectsMissingBoard(t *testing.T) {
	ts := newTestToolset(t)
	ctx := context.Background()

	_, err := findTool(t, ts, "create_task").Handler(ctx, map[string]any{"title": "no board"})
	require.Error(t, err)
}

func TestTaskLifecycle_CreateDependAndRecommendNext(t *testing.T) {
	ts := newTestToolset(t)
	ctx := context.Background()

	boardResult, err := findTool(t, ts, "create_board").Handler(ctx, map[string]any{"name": "Sprint"})
	require.NoError(t, err)
	board := boardResult.(*types.Board)

	emptySearch, err := findTool(t, ts, "search_tasks").Handler(ctx, map[string]any{"board_id": board.ID})
	require.NoError(t, err)
	require.Empty(t, emptySearch)

	columnsResult, err := findTool(t, ts, "list_columns").Handler(ctx, map[string]any{"board_id": board.ID})
	require.NoError(t, err)
	columns := columnsResult.([]*types.Column)
	require.NotEmpty(t, columns)
	columnID := columns[0].ID

	createTask := findTool(t, ts, "create_task")
	taskAResult, err := createTask.Handler(ctx, map[string]any{
		"board_id": board.ID, "column_id": columnID, "title": "Design API",
	})
	require.NoError(t, err)
	taskA := taskAResult.(*types.Task)

	taskBResult, err := createTask.Handler(ctx, map[string]any{
		"board_id": board.ID, "column_id": columnID, "title": "Implement API",
	})
	require.NoError(t, err)
	taskB := taskBResult.(*types.Task)

	_, err = findTool(t, ts, "add_dependency").Handler(ctx, map[string]any{
		"task_id": taskB.ID, "depends_on_task_id": taskA.ID,
	})
	require.NoError(t, err)

	deps, err := findTool(t, ts, "list_dependencies").Handler(ctx, map[string]any{"task_id": taskB.ID})
	require.NoError(t, err)
	depsMap := deps.(map[string]any)
	require.NotEmpty(t, depsMap["outgoing"])

	_, err = findTool(t, ts, "recompute_scores").Handler(ctx, map[string]any{"board_id": board.ID})
	require.NoError(t, err)

	nextResult, err := findTool(t, ts, "get_next_task").Handler(ctx, map[string]any{"board_id": board.ID})
	require.NoError(t, err)
	next := nextResult.(*service.NextTaskResult)
	require.Equal(t, taskA.ID, next.Task.ID)
}
