// Package storage defines the storage-engine contract shared by the
// concrete sqlite implementation and anything that needs to depend on it
// abstractly (mainly the service layer and tests).
package storage

import (
	"context"
	"database/sql"
	"time"
)

// TxFunc is the callback passed to Engine.Transaction. Any error it returns
// triggers a rollback before the error surfaces to the caller.
type TxFunc func(ctx context.Context, tx *sql.Tx) error

// Health reports the result of a liveness probe against the database.
type Health struct {
	Connected  bool          `json:"connected"`
	Responsive bool          `json:"responsive"`
	Latency    time.Duration `json:"latency_ns"`
	Stats      Stats         `json:"stats"`
}

// Stats surfaces connection-pool and schema counters for the health
// endpoint and internal diagnostics.
type Stats struct {
	OpenConnections int    `json:"open_connections"`
	InUse           int    `json:"in_use"`
	Idle            int    `json:"idle"`
	SchemaVersion   int    `json:"schema_version"`
	DatabasePath    string `json:"database_path"`
	SizeBytes       int64  `json:"size_bytes"`
}

// Engine is the contract the rest of the system depends on: open/migrate
// are handled at construction time, everything else funnels through these
// four operations.
type Engine interface {
	// Transaction wraps BEGIN/COMMIT/ROLLBACK around fn. Any error from fn
	// — or from COMMIT itself — rolls back before the error surfaces.
	Transaction(ctx context.Context, fn TxFunc) error

	// DB exposes the underlying *sql.DB for read-only queries that don't
	// need transactional scope (list/search endpoints).
	DB() *sql.DB

	// HealthCheck reports connectivity and pool stats. Responsive is true
	// iff a SELECT 1 round-trip completes in under one second.
	HealthCheck(ctx context.Context) (Health, error)

	// Close releases the connection pool.
	Close() error
}
