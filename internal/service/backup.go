package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/kanbanforge/kanband/internal/backup"
	"github.com/kanbanforge/kanband/internal/eventbus"
	"github.com/kanbanforge/kanband/internal/idgen"
	"github.com/kanbanforge/kanband/internal/types"
)

// snapshotter is the subset of backup.Engine the Service Layer depends on,
// so tests can substitute a fake without touching the filesystem.
type snapshotter interface {
	Snapshot(ctx context.Context, backupType types.BackupType, retentionDays int, parentBackupID string) (*types.Backup, error)
	Verify(b *types.Backup) error
}

// RunBackup performs one snapshot (full or incremental, though incremental
// degrades to full per backup.Engine's documented fallback), persists its
// metadata, and publishes backup:started/completed/failed. eng is supplied
// by the caller (cmd/kanband wires a *backup.Engine here); the empty
// BoardID on these events means "all boards" per the Event Hub's
// AllBoards broadcast convention.
func (s *Service) RunBackup(ctx context.Context, eng snapshotter, backupType types.BackupType, retentionDays int) (*types.Backup, error) {
	var buf eventbus.Buffer
	buf.Append(types.Event{Type: types.EventBackupStarted, Timestamp: time.Now(), Payload: map[string]any{"type": string(backupType)}})
	buf.Flush(s.hub)

	var parentID string
	if backupType == types.BackupIncremental {
		err := s.store.Transaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
			latest, err := s.backups.LatestFull(ctx, tx)
			if err != nil {
				return nil // no full backup yet; fall through with empty parent
			}
			parentID = latest.ID
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	b, err := eng.Snapshot(ctx, backupType, retentionDays, parentID)
	if err != nil {
		var fail eventbus.Buffer
		fail.Append(types.Event{Type: types.EventBackupFailed, Timestamp: time.Now(), Payload: map[string]any{"error": err.Error()}})
		fail.Flush(s.hub)
		return nil, types.NewInternalError("service: run backup", err)
	}

	err = s.store.Transaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		b.ID = idgen.New(idgen.PrefixBackup, b.Name, b.Checksum, "", time.Now(), func(id string) bool {
			_, err := s.backups.Get(ctx, tx, id)
			return err == nil
		})
		return s.backups.Create(ctx, tx, b)
	})
	if err != nil {
		return nil, err
	}

	var done eventbus.Buffer
	done.Append(types.Event{
		Type: types.EventBackupCompleted, Timestamp: time.Now(),
		Payload: map[string]any{"backup_id": b.ID, "size_bytes": b.SizeBytes, "type": string(b.Type)},
	})
	done.Flush(s.hub)
	return b, nil
}

// ListBackups returns every recorded backup, newest first.
func (s *Service) ListBackups(ctx context.Context) ([]*types.Backup, error) {
	var out []*types.Backup
	err := s.store.Transaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		var err error
		out, err = s.backups.List(ctx, tx)
		return err
	})
	return out, err
}

// GetBackup looks up one backup record by ID.
func (s *Service) GetBackup(ctx context.Context, id string) (*types.Backup, error) {
	var out *types.Backup
	err := s.store.Transaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		var err error
		out, err = s.backups.Get(ctx, tx, id)
		return err
	})
	return out, err
}

// RestoreBackup verifies the chosen backup's checksum, then delegates to
// backup.Restore. Callers are responsible for closing and
// reopening the Storage Engine's connection pool around this call, since
// the database file is replaced out from under any open *sql.DB handle.
func (s *Service) RestoreBackup(ctx context.Context, eng snapshotter, id, dbPath string) (*types.Backup, error) {
	b, err := s.GetBackup(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := eng.Verify(b); err != nil {
		return nil, types.NewConflictError(types.CodeBackupVerificationFailed, "backup failed verification", map[string]any{"backup_id": id, "error": err.Error()})
	}
	if err := backup.Restore(b, dbPath); err != nil {
		return nil, types.NewInternalError("service: restore backup", err)
	}

	err = s.store.Transaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		return s.backups.UpdateStatus(ctx, tx, b.ID, types.BackupRestored)
	})
	if err != nil {
		return nil, err
	}
	b.Status = types.BackupRestored
	return b, nil
}

// SweepExpiredBackups deletes backups past their retention window and
// removes their on-disk snapshot files.
func (s *Service) SweepExpiredBackups(ctx context.Context) ([]*types.Backup, error) {
	return backup.Sweep(ctx, s.store, s.backups, s.log)
}
