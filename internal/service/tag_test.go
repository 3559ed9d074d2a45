package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kanbanforge/kanband/internal/types"
)

func TestCreateTag_RootHasBareSlugPath(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	tag, err := svc.CreateTag(ctx, &types.Tag{Name: "Backend", Slug: "backend"})
	require.NoError(t, err)
	assert.Equal(t, "backend", tag.Path)
}

func TestCreateTag_ChildPathPrefixedByParent(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	parent, err := svc.CreateTag(ctx, &types.Tag{Name: "Backend", Slug: "backend"})
	require.NoError(t, err)
	child, err := svc.CreateTag(ctx, &types.Tag{Name: "API", Slug: "api", ParentID: &parent.ID})
	require.NoError(t, err)
	assert.Equal(t, "backend/api", child.Path)
}

func TestReparentTag_RejectsSelfParent(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	tag, err := svc.CreateTag(ctx, &types.Tag{Name: "Backend", Slug: "backend"})
	require.NoError(t, err)

	err = svc.ReparentTag(ctx, tag.ID, &tag.ID)
	require.Error(t, err)
	te, ok := types.AsError(err)
	require.True(t, ok)
	assert.Equal(t, types.CodeCycle, te.Code)
}

func TestReparentTag_RejectsDescendantCycle(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	parent, err := svc.CreateTag(ctx, &types.Tag{Name: "Backend", Slug: "backend"})
	require.NoError(t, err)
	child, err := svc.CreateTag(ctx, &types.Tag{Name: "API", Slug: "api", ParentID: &parent.ID})
	require.NoError(t, err)

	err = svc.ReparentTag(ctx, parent.ID, &child.ID)
	require.Error(t, err)
	te, ok := types.AsError(err)
	require.True(t, ok)
	assert.Equal(t, types.CodeCycle, te.Code)
}

func TestAttachAndDetachTag_Succeed(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	b, col := createTestBoard(t, ctx, svc)

	task, err := svc.CreateTask(ctx, &types.Task{BoardID: b.ID, ColumnID: col.ID, Title: "Task"})
	require.NoError(t, err)
	tag, err := svc.CreateTag(ctx, &types.Tag{Name: "Backend", Slug: "backend"})
	require.NoError(t, err)

	require.NoError(t, svc.AttachTag(ctx, task.ID, tag.ID))
	require.NoError(t, svc.DetachTag(ctx, task.ID, tag.ID))
}
