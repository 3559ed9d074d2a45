package repo_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kanbanforge/kanband/internal/repo"
	"github.com/kanbanforge/kanband/internal/storage/sqlite"
	"github.com/kanbanforge/kanband/internal/types"
)

func openTestStorage(t *testing.T) *sqlite.Storage {
	t.Helper()
	s, err := sqlite.Open(context.Background(), sqlite.Options{Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seedBoardAndColumn(t *testing.T, ctx context.Context, s *sqlite.Storage) (boardID, columnID string) {
	t.Helper()
	boards := repo.NewBoardRepository()
	cols := repo.NewColumnRepository()
	boardID, columnID = "brd-test", "col-test"
	err := s.Transaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := boards.Create(ctx, tx, &types.Board{ID: boardID, Name: "Test Board " + boardID}); err != nil {
			return err
		}
		return cols.Create(ctx, tx, &types.Column{ID: columnID, BoardID: boardID, Name: "Todo", Position: 0})
	})
	require.NoError(t, err)
	return boardID, columnID
}

func TestBoardRepository_CreateGetList(t *testing.T) {
	s := openTestStorage(t)
	ctx := context.Background()
	boards := repo.NewBoardRepository()

	err := s.Transaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		return boards.Create(ctx, tx, &types.Board{ID: "brd-1", Name: "Engineering"})
	})
	require.NoError(t, err)

	err = s.Transaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		b, err := boards.Get(ctx, tx, "brd-1")
		require.NoError(t, err)
		require.Equal(t, "Engineering", b.Name)

		list, err := boards.List(ctx, tx, true)
		require.NoError(t, err)
		require.GreaterOrEqual(t, len(list), 2) // brd-1 plus the seeded default board
		return nil
	})
	require.NoError(t, err)
}

func TestTaskRepository_CreateUpdateAndSearch(t *testing.T) {
	s := openTestStorage(t)
	ctx := context.Background()
	boardID, columnID := seedBoardAndColumn(t, ctx, s)
	tasks := repo.NewTaskRepository()

	err := s.Transaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		return tasks.Create(ctx, tx, &types.Task{
			ID: "tsk-1", BoardID: boardID, ColumnID: columnID,
			Title: "Write the storage engine", Status: types.StatusTodo, Priority: types.PriorityHigh,
		})
	})
	require.NoError(t, err)

	err = s.Transaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		return tasks.UpdateStatus(ctx, tx, "tsk-1", types.StatusInProgress)
	})
	require.NoError(t, err)

	err = s.Transaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		got, err := tasks.Get(ctx, tx, "tsk-1")
		require.NoError(t, err)
		require.Equal(t, types.StatusInProgress, got.Status)

		results, err := tasks.SearchTasks(ctx, tx, types.TaskFilter{BoardID: boardID, Search: "storage"})
		require.NoError(t, err)
		require.Len(t, results, 1)
		require.Equal(t, "tsk-1", results[0].ID)
		return nil
	})
	require.NoError(t, err)
}

func TestTaskRepository_ListOverdue(t *testing.T) {
	s := openTestStorage(t)
	ctx := context.Background()
	boardID, columnID := seedBoardAndColumn(t, ctx, s)
	tasks := repo.NewTaskRepository()

	past := time.Now().Add(-48 * time.Hour)
	err := s.Transaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		return tasks.Create(ctx, tx, &types.Task{
			ID: "tsk-overdue", BoardID: boardID, ColumnID: columnID,
			Title: "Overdue thing", Status: types.StatusTodo, DueDate: &past,
		})
	})
	require.NoError(t, err)

	err = s.Transaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		overdue, err := tasks.ListOverdue(ctx, tx, boardID, time.Now())
		require.NoError(t, err)
		require.Len(t, overdue, 1)
		require.Equal(t, "tsk-overdue", overdue[0].ID)
		return nil
	})
	require.NoError(t, err)
}

func TestDependencyRepository_AddAndList(t *testing.T) {
	s := openTestStorage(t)
	ctx := context.Background()
	boardID, columnID := seedBoardAndColumn(t, ctx, s)
	tasks := repo.NewTaskRepository()
	deps := repo.NewDependencyRepository()

	err := s.Transaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := tasks.Create(ctx, tx, &types.Task{ID: "tsk-a", BoardID: boardID, ColumnID: columnID, Title: "A"}); err != nil {
			return err
		}
		if err := tasks.Create(ctx, tx, &types.Task{ID: "tsk-b", BoardID: boardID, ColumnID: columnID, Title: "B"}); err != nil {
			return err
		}
		return deps.Create(ctx, tx, &types.Dependency{TaskID: "tsk-a", DependsOnTaskID: "tsk-b", Type: types.DepBlocks})
	})
	require.NoError(t, err)

	err = s.Transaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		out, err := deps.ListOutgoing(ctx, tx, "tsk-a")
		require.NoError(t, err)
		require.Len(t, out, 1)
		require.Equal(t, "tsk-b", out[0].DependsOnTaskID)

		in, err := deps.ListIncoming(ctx, tx, "tsk-b")
		require.NoError(t, err)
		require.Len(t, in, 1)
		return nil
	})
	require.NoError(t, err)
}

func TestNoteRepository_CreateAndSearchFTS(t *testing.T) {
	s := openTestStorage(t)
	ctx := context.Background()
	boardID, columnID := seedBoardAndColumn(t, ctx, s)
	tasks := repo.NewTaskRepository()
	notes := repo.NewNoteRepository()

	err := s.Transaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := tasks.Create(ctx, tx, &types.Task{ID: "tsk-note", BoardID: boardID, ColumnID: columnID, Title: "Has notes"}); err != nil {
			return err
		}
		return notes.Create(ctx, tx, &types.Note{ID: "note-1", TaskID: "tsk-note", BoardID: boardID, Content: "investigated the connection pool exhaustion"})
	})
	require.NoError(t, err)

	err = s.Transaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		found, err := notes.Search(ctx, tx, types.NoteFilter{Search: "exhaustion"})
		require.NoError(t, err)
		require.Len(t, found, 1)
		require.Equal(t, "note-1", found[0].ID)
		return nil
	})
	require.NoError(t, err)
}

func TestTagRepository_Reparent(t *testing.T) {
	s := openTestStorage(t)
	ctx := context.Background()
	tags := repo.NewTagRepository()

	err := s.Transaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := tags.Create(ctx, tx, &types.Tag{ID: "tag-root", Name: "backend", Slug: "backend", Path: "backend"}); err != nil {
			return err
		}
		if err := tags.Create(ctx, tx, &types.Tag{ID: "tag-child", Name: "api", Slug: "api", Path: "backend/api"}); err != nil {
			return err
		}
		return tags.Create(ctx, tx, &types.Tag{ID: "tag-grandchild", Name: "auth", Slug: "auth", Path: "backend/api/auth"})
	})
	require.NoError(t, err)

	newParent := "tag-new-root"
	err = s.Transaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := tags.Create(ctx, tx, &types.Tag{ID: newParent, Name: "platform", Slug: "platform", Path: "platform"}); err != nil {
			return err
		}
		return tags.Reparent(ctx, tx, "tag-child", &newParent, "platform/api")
	})
	require.NoError(t, err)

	err = s.Transaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		grandchild, err := tags.Get(ctx, tx, "tag-grandchild")
		require.NoError(t, err)
		require.Equal(t, "platform/api/auth", grandchild.Path)
		return nil
	})
	require.NoError(t, err)
}
