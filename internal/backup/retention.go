package backup

import (
	"context"
	"database/sql"
	"os"

	"github.com/rs/zerolog"

	"github.com/kanbanforge/kanband/internal/repo"
	"github.com/kanbanforge/kanband/internal/storage"
	"github.com/kanbanforge/kanband/internal/types"
)

// Sweep deletes every backup row past its retention window, per
// types.Backup.RetentionDays, in one transaction, then removes each deleted
// row's on-disk snapshot file. Individual file-removal failures are logged, not
// fatal, so one bad row never blocks the rest of the sweep.
func Sweep(ctx context.Context, store storage.Engine, backups *repo.BackupRepository, log zerolog.Logger) ([]*types.Backup, error) {
	var expired []*types.Backup
	err := store.Transaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		var err error
		expired, err = backups.ListExpired(ctx, tx)
		if err != nil {
			return err
		}
		for _, b := range expired {
			if err := backups.Delete(ctx, tx, b.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, b := range expired {
		if err := os.Remove(b.Path); err != nil && !os.IsNotExist(err) {
			log.Warn().Err(err).Str("backup_id", b.ID).Msg("failed to remove expired snapshot file")
		}
	}
	return expired, nil
}
