package backup_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/kanbanforge/kanband/internal/backup"
	"github.com/kanbanforge/kanband/internal/storage/sqlite"
	"github.com/kanbanforge/kanband/internal/types"
)

func openTestStorage(t *testing.T) *sqlite.Storage {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kanban.db")
	s, err := sqlite.Open(context.Background(), sqlite.Options{Path: path, Logger: zerolog.Nop()})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSnapshot_ProducesVerifiableBackup(t *testing.T) {
	store := openTestStorage(t)
	dir := t.TempDir()
	eng := backup.NewEngine(store, dir, zerolog.Nop())

	b, err := eng.Snapshot(context.Background(), types.BackupFull, 30, "")
	require.NoError(t, err)
	require.NotEmpty(t, b.Checksum)
	require.Greater(t, b.SizeBytes, int64(0))
	require.NoError(t, eng.Verify(b))
}

func TestSnapshot_IncrementalDegradesToFull(t *testing.T) {
	store := openTestStorage(t)
	dir := t.TempDir()
	eng := backup.NewEngine(store, dir, zerolog.Nop())

	full, err := eng.Snapshot(context.Background(), types.BackupFull, 30, "")
	require.NoError(t, err)

	inc, err := eng.Snapshot(context.Background(), types.BackupIncremental, 30, full.ID)
	require.NoError(t, err)
	require.NoError(t, eng.Verify(inc))
	require.Equal(t, types.BackupIncremental, inc.Type)
}
