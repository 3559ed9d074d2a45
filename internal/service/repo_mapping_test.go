package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kanbanforge/kanband/internal/types"
)

func TestMatchBoard_PrefersHigherPriorityMapping(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	generic, _ := createTestBoard(t, ctx, svc)
	specific, _ := createTestBoard(t, ctx, svc)

	_, err := svc.CreateRepoMapping(ctx, &types.RepoMapping{
		Pattern: "acme", PatternType: types.PatternName, BoardID: generic.ID, Priority: 1,
	})
	require.NoError(t, err)
	_, err = svc.CreateRepoMapping(ctx, &types.RepoMapping{
		Pattern: "acme-api", PatternType: types.PatternName, BoardID: specific.ID, Priority: 10,
	})
	require.NoError(t, err)

	boardID, err := svc.MatchBoard(ctx, "acme-api")
	require.NoError(t, err)
	assert.Equal(t, specific.ID, boardID)
}

func TestMatchBoard_NoMatchReturnsNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.MatchBoard(ctx, "nonexistent")
	require.Error(t, err)
	te, ok := types.AsError(err)
	require.True(t, ok)
	assert.Equal(t, types.KindNotFound, te.Kind)
}

func TestDeleteRepoMapping_RemovesFromList(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	b, _ := createTestBoard(t, ctx, svc)

	m, err := svc.CreateRepoMapping(ctx, &types.RepoMapping{Pattern: "foo", PatternType: types.PatternName, BoardID: b.ID})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteRepoMapping(ctx, m.ID))

	list, err := svc.ListRepoMappings(ctx)
	require.NoError(t, err)
	for _, mm := range list {
		assert.NotEqual(t, m.ID, mm.ID)
	}
}
