// Package sqlite is the Storage Engine: it owns the connection pool for the
// embedded database, applies pragmas, runs schema migrations and seeds, and
// exposes transactions to the repository layer. The process is the single
// writer; readers are pool-managed, writers are serialized through
// IMMEDIATE transactions.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/kanbanforge/kanband/internal/backup"
	"github.com/kanbanforge/kanband/internal/storage"
	"github.com/kanbanforge/kanband/internal/types"
)

// Options configures the pragmas and pool sizing applied on Open. Zero
// values fall back to the defaults documented on each field.
type Options struct {
	// Path to the database file. ":memory:" is accepted for tests but
	// disables WAL (SQLite restriction) and is never used in production.
	Path string

	// BusyTimeout bounds how long a writer waits for a lock before
	// SQLITE_BUSY is raised. Default 30s.
	BusyTimeout time.Duration

	// MmapSizeBytes sizes the memory-mapped I/O region. Default 64MB.
	MmapSizeBytes int64

	// CacheSizeBytes sizes the page cache in bytes; Open converts it to the
	// negative KB value SQLite's cache_size pragma takes. Default 64MB.
	CacheSizeBytes int64

	// MaxOpenReaders caps concurrent reader connections. Default 8.
	MaxOpenReaders int

	Logger zerolog.Logger
}

func (o *Options) setDefaults() {
	if o.BusyTimeout == 0 {
		o.BusyTimeout = 30 * time.Second
	}
	if o.MmapSizeBytes == 0 {
		o.MmapSizeBytes = 64 << 20
	}
	if o.CacheSizeBytes == 0 {
		o.CacheSizeBytes = 64 << 20
	}
	if o.MaxOpenReaders == 0 {
		o.MaxOpenReaders = 8
	}
}

// Storage is the concrete Storage Engine backed by modernc.org/sqlite (a
// pure-Go driver, so the server has no cgo requirement).
type Storage struct {
	db     *sql.DB
	path   string
	opts   Options
	log    zerolog.Logger
}

var _ storage.Engine = (*Storage)(nil)

// Open creates the database file (and its parent directory) if needed,
// applies pragmas, validates or creates the schema, and runs any pending
// migrations and idempotent seeds. It is the single entry point the rest
// of the server uses to obtain a Storage Engine.
func Open(ctx context.Context, opts Options) (*Storage, error) {
	opts.setDefaults()
	if opts.Path == "" {
		return nil, fmt.Errorf("sqlite: Path is required")
	}

	if opts.Path != ":memory:" {
		if dir := filepath.Dir(opts.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("sqlite: create data directory: %w", err)
			}
		}
	}

	dsn := opts.Path
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", opts.Path, err)
	}

	// A single dedicated writer connection plus N readers. database/sql's
	// pool doesn't distinguish readers from writers, but WAL mode lets
	// many readers proceed concurrently with the one writer holding a
	// RESERVED lock, so capping total connections is sufficient here.
	db.SetMaxOpenConns(opts.MaxOpenReaders + 1)
	db.SetMaxIdleConns(opts.MaxOpenReaders + 1)
	db.SetConnMaxLifetime(0)

	s := &Storage{db: db, path: opts.Path, opts: opts, log: opts.Logger}

	if err := s.applyPragmas(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: apply pragmas: %w", err)
	}

	if err := ensureSchemaInfo(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: schema bootstrap: %w", err)
	}

	if err := RunMigrations(ctx, db, s.log, ""); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: run migrations: %w", err)
	}

	if err := RunSeeds(ctx, db, s.log, false); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: run seeds: %w", err)
	}

	return s, nil
}

func (s *Storage) applyPragmas(ctx context.Context) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		fmt.Sprintf("PRAGMA busy_timeout=%d", s.opts.BusyTimeout.Milliseconds()),
		fmt.Sprintf("PRAGMA mmap_size=%d", s.opts.MmapSizeBytes),
		fmt.Sprintf("PRAGMA cache_size=-%d", s.opts.CacheSizeBytes/1024), // negative = KB
		"PRAGMA auto_vacuum=INCREMENTAL",
		"PRAGMA synchronous=NORMAL",
	}
	for _, p := range pragmas {
		if _, err := s.db.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// DB exposes the pool for non-transactional reads.
func (s *Storage) DB() *sql.DB { return s.db }

// Path returns the database file path Open was called with, for callers
// (the backup engine) that need to read the file directly.
func (s *Storage) Path() string { return s.path }

// Close releases the connection pool.
func (s *Storage) Close() error { return s.db.Close() }

// Transaction wraps BEGIN/COMMIT/ROLLBACK around fn. Any error from fn, or
// from Commit itself, triggers Rollback before the error surfaces.
//
// Lock-ordering rule enforced by callers: acquire this transaction BEFORE
// touching the event hub's publish path. Never hold an event-hub lock
// across a call into Transaction.
func (s *Storage) Transaction(ctx context.Context, fn storage.TxFunc) (err error) {
	tx, err := s.beginTxWithRetry(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err = fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.log.Error().Err(rbErr).Msg("rollback failed after callback error")
		}
		return err
	}

	if err = tx.Commit(); err != nil {
		_ = tx.Rollback()
		return wrapDBError("commit transaction", err)
	}
	return nil
}

// beginTxWithRetry retries BeginTx with exponential backoff when SQLite
// reports a transient busy/locked condition, since busy_timeout only
// bounds how long a single attempt waits inside the driver, not how many
// attempts the caller gets. Any other failure (including the context
// being done) is permanent and returned immediately.
func (s *Storage) beginTxWithRetry(ctx context.Context) (*sql.Tx, error) {
	var tx *sql.Tx
	attempt := func() error {
		if backup.Restoring() {
			return types.NewTransientError("begin transaction", fmt.Errorf("restore in progress"))
		}
		t, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			wrapped := wrapDBError("begin transaction", err)
			if te, ok := types.AsError(wrapped); ok && te.Kind == types.KindTransient {
				return wrapped
			}
			return backoff.Permanent(wrapped)
		}
		tx = t
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	if err := backoff.Retry(attempt, policy); err != nil {
		return nil, err
	}
	return tx, nil
}

// HealthCheck reports connectivity, a SELECT-1 round trip time, and basic
// pool/schema stats. Responsive is true iff the round trip completes in
// under one second.
func (s *Storage) HealthCheck(ctx context.Context) (storage.Health, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	h := storage.Health{Connected: true}
	start := time.Now()
	var one int
	err := s.db.QueryRowContext(ctx, "SELECT 1").Scan(&one)
	h.Latency = time.Since(start)
	if err != nil {
		h.Connected = false
		h.Responsive = false
		return h, wrapDBError("health check", err)
	}
	h.Responsive = h.Latency < time.Second

	poolStats := s.db.Stats()
	stats := storage.Stats{
		OpenConnections: poolStats.OpenConnections,
		InUse:           poolStats.InUse,
		Idle:            poolStats.Idle,
		DatabasePath:    s.path,
	}
	if v, err := CurrentAppliedVersion(ctx, s.db); err == nil {
		stats.SchemaVersion = v
	}
	if s.path != ":memory:" {
		if fi, err := os.Stat(s.path); err == nil {
			stats.SizeBytes = fi.Size()
		}
	}
	h.Stats = stats
	return h, nil
}
