package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/kanbanforge/kanband/internal/types"
)

// BackupRepository is the typed CRUD surface for backup metadata rows. The
// snapshot payload itself is written to disk by the backup scheduler; this
// repository only tracks the durable record.
type BackupRepository struct{}

func NewBackupRepository() *BackupRepository { return &BackupRepository{} }

const backupColumns = `id, name, type, created_at, size_bytes, checksum, status, retention_days, parent_backup_id, path`

func (r *BackupRepository) Create(ctx context.Context, tx dbtx, b *types.Backup) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO backups (id, name, type, size_bytes, checksum, status, retention_days, parent_backup_id, path)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.Name, b.Type, b.SizeBytes, b.Checksum, b.Status, b.RetentionDays, nullableString(b.ParentBackupID), b.Path)
	if err != nil {
		return wrapErr("insert backup", err)
	}
	return nil
}

func (r *BackupRepository) Get(ctx context.Context, tx dbtx, id string) (*types.Backup, error) {
	row := tx.QueryRowContext(ctx, `SELECT `+backupColumns+` FROM backups WHERE id = ?`, id)
	b, err := scanBackupRow(row)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func scanBackupRow(row *sql.Row) (*types.Backup, error) {
	var b types.Backup
	var parent sql.NullString
	err := row.Scan(&b.ID, &b.Name, &b.Type, &b.CreatedAt, &b.SizeBytes, &b.Checksum, &b.Status, &b.RetentionDays, &parent, &b.Path)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.NewNotFoundError("backup", "")
	}
	if err != nil {
		return nil, wrapErr("scan backup", err)
	}
	b.ParentBackupID = parent.String
	return &b, nil
}

func (r *BackupRepository) UpdateStatus(ctx context.Context, tx dbtx, id string, status types.BackupStatus) error {
	res, err := tx.ExecContext(ctx, `UPDATE backups SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return wrapErr("update backup status", err)
	}
	return requireAffected(res, "backup", id)
}

func (r *BackupRepository) List(ctx context.Context, tx dbtx) ([]*types.Backup, error) {
	rows, err := tx.QueryContext(ctx, `SELECT `+backupColumns+` FROM backups ORDER BY created_at DESC`)
	if err != nil {
		return nil, wrapErr("list backups", err)
	}
	defer rows.Close()

	var out []*types.Backup
	for rows.Next() {
		var b types.Backup
		var parent sql.NullString
		if err := rows.Scan(&b.ID, &b.Name, &b.Type, &b.CreatedAt, &b.SizeBytes, &b.Checksum, &b.Status, &b.RetentionDays, &parent, &b.Path); err != nil {
			return nil, wrapErr("scan backup row", err)
		}
		b.ParentBackupID = parent.String
		out = append(out, &b)
	}
	return out, rows.Err()
}

// ListExpired returns backups past their retention window, for the sweep
// to delete. The retention_days column is compared against created_at
// directly in SQL so the comparison is done against the DB clock, not the app clock.
func (r *BackupRepository) ListExpired(ctx context.Context, tx dbtx) ([]*types.Backup, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT `+backupColumns+` FROM backups
		 WHERE julianday('now') - julianday(created_at) > retention_days`)
	if err != nil {
		return nil, wrapErr("list expired backups", err)
	}
	defer rows.Close()

	var out []*types.Backup
	for rows.Next() {
		var b types.Backup
		var parent sql.NullString
		if err := rows.Scan(&b.ID, &b.Name, &b.Type, &b.CreatedAt, &b.SizeBytes, &b.Checksum, &b.Status, &b.RetentionDays, &parent, &b.Path); err != nil {
			return nil, wrapErr("scan expired backup row", err)
		}
		b.ParentBackupID = parent.String
		out = append(out, &b)
	}
	return out, rows.Err()
}

func (r *BackupRepository) Delete(ctx context.Context, tx dbtx, id string) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM backups WHERE id = ?`, id)
	if err != nil {
		return wrapErr("delete backup", err)
	}
	return requireAffected(res, "backup", id)
}

// LatestFull returns the most recent full backup, used as the base for a
// new incremental.
func (r *BackupRepository) LatestFull(ctx context.Context, tx dbtx) (*types.Backup, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+backupColumns+` FROM backups WHERE type = 'full' AND status = 'verified' ORDER BY created_at DESC LIMIT 1`)
	return scanBackupRow(row)
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
