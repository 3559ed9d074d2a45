package httpapi

import (
	"context"

	"github.com/kanbanforge/kanband/internal/service"
	"github.com/kanbanforge/kanband/internal/types"
)

// backupEngine is the subset of backup.Engine the backup routes need,
// kept narrow so this package doesn't import internal/backup directly
// for anything but this interface.
type backupEngine interface {
	Snapshot(ctx context.Context, backupType types.BackupType, retentionDays int, parentBackupID string) (*types.Backup, error)
	Verify(b *types.Backup) error
}

// handlers bundles every route handler over a single Service Layer
// instance. Grouped in one struct (rather than one per resource) since
// spec.md's routes all funnel through the same transaction-per-operation
// Service, matching the teacher pack's single-handler-struct-per-router
// composition.
type handlers struct {
	svc    *service.Service
	backup backupEngine
	dbPath string
}

func newHandlers(svc *service.Service, backup backupEngine, dbPath string) *handlers {
	return &handlers{svc: svc, backup: backup, dbPath: dbPath}
}
