package backup

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/klauspost/compress/zstd"

	"github.com/kanbanforge/kanband/internal/types"
)

// restoring gates write traffic during a restore: the Storage Engine
// checks this before opening a transaction and treats an in-progress
// restore as transient, so writers back off and retry rather than racing
// the file swap.
var restoring atomic.Bool

// Restoring reports whether a restore is currently in flight.
func Restoring() bool { return restoring.Load() }

// Restore decompresses a snapshot over the live database file using the
// temp-file-then-rename idiom, so a crash mid-restore leaves the original
// file untouched. Callers must ensure the Storage Engine's connection pool
// is closed before calling this and reopened afterward; Restore does not
// manage the pool itself.
func Restore(b *types.Backup, dbPath string) (err error) {
	restoring.Store(true)
	defer restoring.Store(false)

	src, err := os.Open(b.Path)
	if err != nil {
		return fmt.Errorf("backup: open snapshot: %w", err)
	}
	defer src.Close()

	dec, err := zstd.NewReader(src)
	if err != nil {
		return fmt.Errorf("backup: init zstd reader: %w", err)
	}
	defer dec.Close()

	tmp := dbPath + ".restore.tmp"
	dest, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("backup: create restore temp file: %w", err)
	}

	if _, err := io.Copy(dest, dec); err != nil {
		dest.Close()
		os.Remove(tmp)
		return fmt.Errorf("backup: decompress snapshot: %w", err)
	}
	if err := dest.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("backup: close restore temp file: %w", err)
	}

	// Remove any stale WAL/SHM files so SQLite doesn't try to replay a WAL
	// that belongs to a different database generation.
	os.Remove(dbPath + "-wal")
	os.Remove(dbPath + "-shm")

	if err := os.Rename(tmp, dbPath); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("backup: finalize restore: %w", err)
	}
	return nil
}
