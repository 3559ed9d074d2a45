package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kanbanforge/kanband/internal/types"
)

func TestAddDependency_RecordsOutgoingEdgeOnDependent(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	b, col := createTestBoard(t, ctx, svc)

	blocker, err := svc.CreateTask(ctx, &types.Task{BoardID: b.ID, ColumnID: col.ID, Title: "Blocker"})
	require.NoError(t, err)
	dependent, err := svc.CreateTask(ctx, &types.Task{BoardID: b.ID, ColumnID: col.ID, Title: "Dependent"})
	require.NoError(t, err)

	require.NoError(t, svc.AddDependency(ctx, dependent.ID, blocker.ID, types.DepBlocks))

	out, in, err := svc.ListDependencies(ctx, dependent.ID)
	require.NoError(t, err)
	assert.Len(t, out, 1)
	assert.Empty(t, in)
}

func TestAddDependency_RejectsSelfDependency(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	b, col := createTestBoard(t, ctx, svc)

	task, err := svc.CreateTask(ctx, &types.Task{BoardID: b.ID, ColumnID: col.ID, Title: "Solo"})
	require.NoError(t, err)

	err = svc.AddDependency(ctx, task.ID, task.ID, types.DepBlocks)
	require.Error(t, err)
	te, ok := types.AsError(err)
	require.True(t, ok)
	assert.Equal(t, types.CodeSelfDependency, te.Code)
}

func TestAddDependency_RejectsCycle(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	b, col := createTestBoard(t, ctx, svc)

	a, err := svc.CreateTask(ctx, &types.Task{BoardID: b.ID, ColumnID: col.ID, Title: "A"})
	require.NoError(t, err)
	c, err := svc.CreateTask(ctx, &types.Task{BoardID: b.ID, ColumnID: col.ID, Title: "C"})
	require.NoError(t, err)

	require.NoError(t, svc.AddDependency(ctx, a.ID, c.ID, types.DepBlocks))

	err = svc.AddDependency(ctx, c.ID, a.ID, types.DepBlocks)
	require.Error(t, err)
	te, ok := types.AsError(err)
	require.True(t, ok)
	assert.Equal(t, types.CodeCycle, te.Code)
}

func TestAddDependency_RejectsDuplicate(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	b, col := createTestBoard(t, ctx, svc)

	a, err := svc.CreateTask(ctx, &types.Task{BoardID: b.ID, ColumnID: col.ID, Title: "A"})
	require.NoError(t, err)
	c, err := svc.CreateTask(ctx, &types.Task{BoardID: b.ID, ColumnID: col.ID, Title: "C"})
	require.NoError(t, err)

	require.NoError(t, svc.AddDependency(ctx, a.ID, c.ID, types.DepBlocks))
	err = svc.AddDependency(ctx, a.ID, c.ID, types.DepBlocks)
	require.Error(t, err)
	te, ok := types.AsError(err)
	require.True(t, ok)
	assert.Equal(t, types.CodeDuplicate, te.Code)
}

func TestAddThenRemoveDependency_RoundTrips(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	b, col := createTestBoard(t, ctx, svc)

	a, err := svc.CreateTask(ctx, &types.Task{BoardID: b.ID, ColumnID: col.ID, Title: "A"})
	require.NoError(t, err)
	c, err := svc.CreateTask(ctx, &types.Task{BoardID: b.ID, ColumnID: col.ID, Title: "C"})
	require.NoError(t, err)

	require.NoError(t, svc.AddDependency(ctx, a.ID, c.ID, types.DepBlocks))
	require.NoError(t, svc.RemoveDependency(ctx, a.ID, c.ID))

	out, _, err := svc.ListDependencies(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, out)
}
