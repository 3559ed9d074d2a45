package export_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/kanbanforge/kanband/internal/auth"
	"github.com/kanbanforge/kanband/internal/engine"
	"github.com/kanbanforge/kanband/internal/eventbus"
	"github.com/kanbanforge/kanband/internal/export"
	"github.com/kanbanforge/kanband/internal/service"
	"github.com/kanbanforge/kanband/internal/storage/sqlite"
	"github.com/kanbanforge/kanband/internal/types"
)

func newTestService(t *testing.T) *service.Service {
	t.Helper()
	store, err := sqlite.Open(context.Background(), sqlite.Options{Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	hub := eventbus.New(zerolog.Nop())
	hasher := auth.NewHasher("test-secret")
	return service.New(store, hub, zerolog.Nop(), engine.DefaultConfig(), hasher)
}

func seedGraph(t *testing.T, ctx context.Context, svc *service.Service) (*types.Board, *types.Task, *types.Task) {
	t.Helper()
	board, err := svc.CreateBoard(ctx, &types.Board{Name: "Engineering"})
	require.NoError(t, err)
	cols, err := svc.ListColumns(ctx, board.ID)
	require.NoError(t, err)

	tag, err := svc.CreateTag(ctx, &types.Tag{Name: "Backend", Slug: "backend"})
	require.NoError(t, err)

	taskA, err := svc.CreateTask(ctx, &types.Task{BoardID: board.ID, ColumnID: cols[0].ID, Title: "Design API"})
	require.NoError(t, err)
	taskB, err := svc.CreateTask(ctx, &types.Task{BoardID: board.ID, ColumnID: cols[0].ID, Title: "Implement API"})
	require.NoError(t, err)

	require.NoError(t, svc.AddDependency(ctx, taskB.ID, taskA.ID, types.DepBlocks))
	require.NoError(t, svc.AttachTag(ctx, taskA.ID, tag.ID))
	_, err = svc.AddNote(ctx, &types.Note{TaskID: taskA.ID, BoardID: board.ID, Content: "spike the schema first"})
	require.NoError(t, err)
	_, err = svc.CreateRepoMapping(ctx, &types.RepoMapping{
		Pattern: "github.com/acme/api", PatternType: types.PatternURL, BoardID: board.ID,
	})
	require.NoError(t, err)

	return board, taskA, taskB
}

func TestExportThenImport_RoundTripsGraphIntoFreshDatabase(t *testing.T) {
	ctx := context.Background()
	source := newTestService(t)
	board, taskA, taskB := seedGraph(t, ctx, source)

	dir := t.TempDir()
	manifest, err := export.Export(ctx, source, dir, time.Unix(0, 0).UTC())
	require.NoError(t, err)
	require.Equal(t, 1, manifest.Counts["boards.jsonl"])
	require.Equal(t, 2, manifest.Counts["tasks.jsonl"])
	require.Equal(t, 1, manifest.Counts["dependencies.jsonl"])
	require.NotEmpty(t, manifest.Checksum)

	dest := newTestService(t)
	imported, err := export.Import(ctx, dest, dir)
	require.NoError(t, err)
	require.Equal(t, manifest.Checksum, imported.Checksum)

	boards, err := dest.ListBoards(ctx, true)
	require.NoError(t, err)
	require.Len(t, boards, 1)
	require.Equal(t, board.Name, boards[0].Name)

	tasks, err := dest.SearchTasks(ctx, types.TaskFilter{BoardID: boards[0].ID, IncludeArchived: true})
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	var newTaskA, newTaskB *types.Task
	for _, task := range tasks {
		switch task.Title {
		case taskA.Title:
			newTaskA = task
		case taskB.Title:
			newTaskB = task
		}
	}
	require.NotNil(t, newTaskA)
	require.NotNil(t, newTaskB)

	outgoing, _, err := dest.ListDependencies(ctx, newTaskB.ID)
	require.NoError(t, err)
	require.Len(t, outgoing, 1)
	require.Equal(t, newTaskA.ID, outgoing[0].DependsOnTaskID)

	notes, err := dest.ListNotesByTask(ctx, newTaskA.ID)
	require.NoError(t, err)
	require.Len(t, notes, 1)

	tags, err := dest.ListTagsForTask(ctx, newTaskA.ID)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	require.Equal(t, "Backend", tags[0].Name)

	mappings, err := dest.ListRepoMappings(ctx)
	require.NoError(t, err)
	require.Len(t, mappings, 1)
}

func TestImport_RejectsTamperedExport(t *testing.T) {
	ctx := context.Background()
	source := newTestService(t)
	seedGraph(t, ctx, source)

	dir := t.TempDir()
	_, err := export.Export(ctx, source, dir, time.Unix(0, 0).UTC())
	require.NoError(t, err)

	require.NoError(t, appendLine(dir+"/tasks.jsonl", `{"id":"tampered"}`))

	dest := newTestService(t)
	_, err = export.Import(ctx, dest, dir)
	require.Error(t, err)
}

func appendLine(path, line string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteString(line + "\n")
	return err
}
