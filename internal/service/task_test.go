package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kanbanforge/kanband/internal/types"
)

func TestCreateTask_PlacesAtTailAndScores(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	b, col := createTestBoard(t, ctx, svc)

	t1, err := svc.CreateTask(ctx, &types.Task{BoardID: b.ID, ColumnID: col.ID, Title: "First"})
	require.NoError(t, err)
	t2, err := svc.CreateTask(ctx, &types.Task{BoardID: b.ID, ColumnID: col.ID, Title: "Second"})
	require.NoError(t, err)

	assert.Greater(t, t2.Position, t1.Position)
	assert.Equal(t, types.StatusTodo, t1.Status)
	assert.Equal(t, types.PriorityMedium, t1.Priority)
	assert.NotEmpty(t, t1.ContentHash)
	assert.Greater(t, t1.PriorityScore, 0.0)
}

func TestCreateTask_RejectsColumnFromDifferentBoard(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	b1, _ := createTestBoard(t, ctx, svc)
	_, otherCol := createTestBoard(t, ctx, svc)

	_, err := svc.CreateTask(ctx, &types.Task{BoardID: b1.ID, ColumnID: otherCol.ID, Title: "Mismatch"})
	require.Error(t, err)
	te, ok := types.AsError(err)
	require.True(t, ok)
	assert.Equal(t, types.CodeColumnMismatch, te.Code)
}

func TestCreateSubtask_RejectsCrossBoardParent(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	b1, col1 := createTestBoard(t, ctx, svc)
	b2, col2 := createTestBoard(t, ctx, svc)

	parent, err := svc.CreateTask(ctx, &types.Task{BoardID: b1.ID, ColumnID: col1.ID, Title: "Parent"})
	require.NoError(t, err)

	_, err = svc.CreateSubtask(ctx, parent.ID, &types.Task{BoardID: b2.ID, ColumnID: col2.ID, Title: "Child"})
	require.Error(t, err)
}

func TestUpdateTaskStatus_RejectsCloseWithOpenChildren(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	b, col := createTestBoard(t, ctx, svc)

	parent, err := svc.CreateTask(ctx, &types.Task{BoardID: b.ID, ColumnID: col.ID, Title: "Parent"})
	require.NoError(t, err)
	_, err = svc.CreateSubtask(ctx, parent.ID, &types.Task{BoardID: b.ID, ColumnID: col.ID, Title: "Child"})
	require.NoError(t, err)

	_, err = svc.UpdateTaskStatus(ctx, parent.ID, types.StatusDone)
	require.Error(t, err)
	te, ok := types.AsError(err)
	require.True(t, ok)
	assert.Equal(t, types.CodeHasOpenChildren, te.Code)
}

func TestUpdateTaskStatus_RollsUpProgressToParent(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	b, col := createTestBoard(t, ctx, svc)

	parent, err := svc.CreateTask(ctx, &types.Task{BoardID: b.ID, ColumnID: col.ID, Title: "Parent"})
	require.NoError(t, err)
	child, err := svc.CreateSubtask(ctx, parent.ID, &types.Task{BoardID: b.ID, ColumnID: col.ID, Title: "Child"})
	require.NoError(t, err)

	_, err = svc.UpdateTaskStatus(ctx, child.ID, types.StatusDone)
	require.NoError(t, err)

	got, err := svc.GetTask(ctx, parent.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, got.PercentComplete)
}

func TestMoveTask_RejectsColumnFromDifferentBoard(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	b1, col1 := createTestBoard(t, ctx, svc)
	_, col2 := createTestBoard(t, ctx, svc)

	task, err := svc.CreateTask(ctx, &types.Task{BoardID: b1.ID, ColumnID: col1.ID, Title: "Movable"})
	require.NoError(t, err)

	_, err = svc.MoveTask(ctx, task.ID, col2.ID, 0)
	require.Error(t, err)
	te, ok := types.AsError(err)
	require.True(t, ok)
	assert.Equal(t, types.CodeColumnMismatch, te.Code)
}

func TestDeleteTask_RemovesTask(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	b, col := createTestBoard(t, ctx, svc)

	task, err := svc.CreateTask(ctx, &types.Task{BoardID: b.ID, ColumnID: col.ID, Title: "Ephemeral"})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteTask(ctx, task.ID))

	_, err = svc.GetTask(ctx, task.ID)
	require.Error(t, err)
}
