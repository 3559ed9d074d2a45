// Package repo implements one repository per aggregate root. Repositories
// are stateless views over an ambient transaction handle — they never
// begin, commit, or roll back a transaction themselves; the Service Layer
// owns transactional scope (see storage.Engine.Transaction).
package repo

import (
	"context"
	"database/sql"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx, letting a repository
// method run either inside an ambient transaction or directly against the
// pool for read-only, non-transactional queries.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ dbtx = (*sql.DB)(nil)
	_ dbtx = (*sql.Tx)(nil)
)
