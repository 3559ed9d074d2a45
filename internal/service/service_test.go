package service_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/kanbanforge/kanband/internal/auth"
	"github.com/kanbanforge/kanband/internal/engine"
	"github.com/kanbanforge/kanband/internal/eventbus"
	"github.com/kanbanforge/kanband/internal/service"
	"github.com/kanbanforge/kanband/internal/storage/sqlite"
	"github.com/kanbanforge/kanband/internal/types"
)

func newTestService(t *testing.T) (*service.Service, *sqlite.Storage, *eventbus.Hub) {
	t.Helper()
	store, err := sqlite.Open(context.Background(), sqlite.Options{Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	hub := eventbus.New(zerolog.Nop())
	hasher := auth.NewHasher("test-secret")
	svc := service.New(store, hub, zerolog.Nop(), engine.DefaultConfig(), hasher)
	return svc, store, hub
}

var testBoardSeq int

func createTestBoard(t *testing.T, ctx context.Context, svc *service.Service) (*types.Board, *types.Column) {
	t.Helper()
	testBoardSeq++
	b, err := svc.CreateBoard(ctx, &types.Board{Name: fmt.Sprintf("%s #%d", t.Name(), testBoardSeq)})
	require.NoError(t, err)
	cols, err := svc.ListColumns(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, cols, 1)
	return b, cols[0]
}
