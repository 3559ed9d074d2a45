package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kanbanforge/kanband/internal/types"
)

func TestCreateBoard_SeedsStarterColumn(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	b, col := createTestBoard(t, ctx, svc)
	assert.Equal(t, "To Do", col.Name)
	assert.Equal(t, b.ID, col.BoardID)
}

func TestCreateBoard_RejectsDuplicateName(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateBoard(ctx, &types.Board{Name: "Dup"})
	require.NoError(t, err)

	_, err = svc.CreateBoard(ctx, &types.Board{Name: "Dup"})
	require.Error(t, err)
	te, ok := types.AsError(err)
	require.True(t, ok)
	assert.Equal(t, types.CodeDuplicate, te.Code)
}

func TestArchiveBoard_SetsArchivedFlag(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	b, _ := createTestBoard(t, ctx, svc)
	require.NoError(t, svc.ArchiveBoard(ctx, b.ID))

	got, err := svc.GetBoard(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, got.Archived)
}

func TestCreateColumn_AppendsAtTail(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	b, first := createTestBoard(t, ctx, svc)
	second, err := svc.CreateColumn(ctx, &types.Column{BoardID: b.ID, Name: "In Progress"})
	require.NoError(t, err)
	assert.Greater(t, second.Position, first.Position)
}
