package backup_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/kanbanforge/kanband/internal/backup"
	"github.com/kanbanforge/kanband/internal/storage/sqlite"
	"github.com/kanbanforge/kanband/internal/types"
)

func TestRestore_RoundTripsDatabaseFile(t *testing.T) {
	store := openTestStorage(t)
	dbPath := store.Path()
	dir := t.TempDir()
	eng := backup.NewEngine(store, dir, zerolog.Nop())

	b, err := eng.Snapshot(context.Background(), types.BackupFull, 30, "")
	require.NoError(t, err)
	require.NoError(t, store.Close())

	require.False(t, backup.Restoring())
	require.NoError(t, backup.Restore(b, dbPath))
	require.False(t, backup.Restoring())

	_, err = os.Stat(dbPath)
	require.NoError(t, err)

	reopened, err := sqlite.Open(context.Background(), sqlite.Options{Path: dbPath, Logger: zerolog.Nop()})
	require.NoError(t, err)
	defer reopened.Close()

	_, err = reopened.HealthCheck(context.Background())
	require.NoError(t, err)
}

func TestRestore_LeavesOriginalUntouchedOnBadSnapshot(t *testing.T) {
	store := openTestStorage(t)
	dbPath := store.Path()
	require.NoError(t, store.Close())

	before, err := os.ReadFile(dbPath)
	require.NoError(t, err)

	badBackup := &types.Backup{Path: filepath.Join(t.TempDir(), "does-not-exist.snap.zst")}
	err = backup.Restore(badBackup, dbPath)
	require.Error(t, err)

	after, err := os.ReadFile(dbPath)
	require.NoError(t, err)
	require.Equal(t, before, after)
}
