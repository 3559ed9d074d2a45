// Package backup implements the Backup Engine: WAL-checkpointed,
// zstd-compressed snapshots of the database file, a retention sweep, and a
// time.Ticker-driven scheduler that runs both on the configured cadence.
package backup

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog"

	"github.com/kanbanforge/kanband/internal/storage"
	"github.com/kanbanforge/kanband/internal/types"
)

// sourceDB is the subset of storage.Engine plus sqlite's file-path
// accessor the Engine needs. Kept narrow so tests can fake it without a
// real database file.
type sourceDB interface {
	storage.Engine
	Path() string
}

// Engine performs full and incremental snapshots of a sqlite database
// file to a backup directory, verifying each with a SHA-256 checksum.
// modernc.org/sqlite exposes no page-level change-counter API (the thing
// SQLite's native online-backup facility would use for a true incremental
// copy), so "incremental" here is a degraded alias for "full" — see
// DESIGN.md's Open Question decision on this.
type Engine struct {
	db  sourceDB
	dir string
	log zerolog.Logger
}

func NewEngine(db sourceDB, dir string, log zerolog.Logger) *Engine {
	return &Engine{db: db, dir: dir, log: log.With().Str("component", "backup.engine").Logger()}
}

// Snapshot checkpoints the WAL into the main database file, then streams a
// zstd-compressed copy of it into e.dir, returning the populated metadata
// record (ID and CreatedAt are left for the caller to assign/observe).
func (e *Engine) Snapshot(ctx context.Context, backupType types.BackupType, retentionDays int, parentBackupID string) (*types.Backup, error) {
	if err := e.checkpoint(ctx); err != nil {
		return nil, fmt.Errorf("backup: checkpoint: %w", err)
	}

	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return nil, fmt.Errorf("backup: create backup dir: %w", err)
	}

	name := fmt.Sprintf("%s-%s", time.Now().UTC().Format("2006-01-02-150405"), backupType)
	destPath := filepath.Join(e.dir, name+".snap.zst")

	size, sum, err := e.compressCopy(e.db.Path(), destPath)
	if err != nil {
		return nil, err
	}

	return &types.Backup{
		Name:           name,
		Type:           backupType,
		SizeBytes:      size,
		Checksum:       sum,
		Status:         types.BackupVerified,
		RetentionDays:  retentionDays,
		ParentBackupID: parentBackupID,
		Path:           destPath,
	}, nil
}

// checkpoint forces a WAL checkpoint so the main database file reflects
// every committed transaction before it is copied.
func (e *Engine) checkpoint(ctx context.Context) error {
	_, err := e.db.DB().ExecContext(ctx, `PRAGMA wal_checkpoint(TRUNCATE);`)
	return err
}

func (e *Engine) compressCopy(srcPath, destPath string) (size int64, checksum string, err error) {
	src, err := os.Open(srcPath)
	if err != nil {
		return 0, "", fmt.Errorf("backup: open source db: %w", err)
	}
	defer src.Close()

	tmp := destPath + ".tmp"
	dest, err := os.Create(tmp)
	if err != nil {
		return 0, "", fmt.Errorf("backup: create snapshot file: %w", err)
	}

	hasher := sha256.New()
	counter := &countingWriter{w: io.MultiWriter(dest, hasher)}

	enc, err := zstd.NewWriter(counter)
	if err != nil {
		dest.Close()
		os.Remove(tmp)
		return 0, "", fmt.Errorf("backup: init zstd writer: %w", err)
	}

	if _, err := io.Copy(enc, src); err != nil {
		enc.Close()
		dest.Close()
		os.Remove(tmp)
		return 0, "", fmt.Errorf("backup: compress snapshot: %w", err)
	}
	if err := enc.Close(); err != nil {
		dest.Close()
		os.Remove(tmp)
		return 0, "", fmt.Errorf("backup: finalize zstd stream: %w", err)
	}
	if err := dest.Close(); err != nil {
		os.Remove(tmp)
		return 0, "", fmt.Errorf("backup: close snapshot file: %w", err)
	}

	if err := os.Rename(tmp, destPath); err != nil {
		os.Remove(tmp)
		return 0, "", fmt.Errorf("backup: finalize snapshot: %w", err)
	}

	return counter.n, hex.EncodeToString(hasher.Sum(nil)), nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// Verify recomputes the checksum of a stored snapshot and compares it to
// the recorded one.
func (e *Engine) Verify(b *types.Backup) error {
	f, err := os.Open(b.Path)
	if err != nil {
		return fmt.Errorf("backup: open snapshot for verify: %w", err)
	}
	defer f.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return fmt.Errorf("backup: read snapshot for verify: %w", err)
	}
	got := hex.EncodeToString(hasher.Sum(nil))
	if got != b.Checksum {
		return fmt.Errorf("backup: checksum mismatch for %s: want %s got %s", b.Name, b.Checksum, got)
	}
	return nil
}
