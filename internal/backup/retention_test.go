package backup_test

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/kanbanforge/kanband/internal/backup"
	"github.com/kanbanforge/kanband/internal/repo"
)

func TestSweep_RemovesExpiredBackupsAndFiles(t *testing.T) {
	store := openTestStorage(t)
	backups := repo.NewBackupRepository()

	expiredFile := filepath.Join(t.TempDir(), "expired.snap.zst")
	require.NoError(t, os.WriteFile(expiredFile, []byte("x"), 0o644))

	err := store.Transaction(context.Background(), func(ctx context.Context, tx *sql.Tx) error {
		_, execErr := tx.ExecContext(ctx,
			`INSERT INTO backups (id, name, type, created_at, size_bytes, checksum, status, retention_days, path)
			 VALUES ('b1','old','full', datetime('now','-60 days'), 1, 'sum', 'verified', 1, ?)`, expiredFile)
		return execErr
	})
	require.NoError(t, err)

	expired, err := backup.Sweep(context.Background(), store, backups, zerolog.Nop())
	require.NoError(t, err)
	require.Len(t, expired, 1)
	require.Equal(t, "b1", expired[0].ID)

	_, statErr := os.Stat(expiredFile)
	require.True(t, os.IsNotExist(statErr))

	remaining, err := func() ([]int, error) {
		var count int
		err := store.Transaction(context.Background(), func(ctx context.Context, tx *sql.Tx) error {
			row := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM backups`)
			return row.Scan(&count)
		})
		return []int{count}, err
	}()
	require.NoError(t, err)
	require.Equal(t, 0, remaining[0])
}
