package sqlite

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/rs/zerolog"
)

// CurrentSchemaVersion is bumped whenever a migration is appended. It is
// the target RunMigrations applies up to when no explicit target is given.
const CurrentSchemaVersion = len(registry)

// Migration is one numbered, checksummed schema change. Up and Down run
// inside the single transaction RunMigrations manages; a failure in either
// rolls back cleanly and the migration is not recorded as applied.
type Migration struct {
	ID          int
	Description string
	Up          func(ctx context.Context, tx *sql.Tx) error
	Down        func(ctx context.Context, tx *sql.Tx) error
	// Body is the literal source used to compute Checksum, so that editing
	// a migration after it has shipped is detected rather than silently
	// applied differently across environments.
	Body string
}

func (m Migration) Checksum() string {
	sum := sha256.Sum256([]byte(m.Body))
	return hex.EncodeToString(sum[:])
}

// registry holds every migration in ascending ID order. It is the single
// source of truth for CurrentSchemaVersion.
var registry = []Migration{
	migration001InitialSchema,
	migration002Notes,
	migration003Tags,
	migration004RepoMappings,
	migration005Backups,
	migration006ApiKeys,
	migration007ProgressAndBlockedCache,
	migration008Indexes,
}

func ensureSchemaInfo(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS schema_info (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS schema_migrations (
			id INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			checksum TEXT NOT NULL,
			applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS seed_status (
			name TEXT PRIMARY KEY,
			applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			checksum TEXT NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%s: %w", stmt, err)
		}
	}
	return nil
}

// appliedMigration is a row read back from schema_migrations.
type appliedMigration struct {
	ID       int
	Checksum string
}

func loadApplied(ctx context.Context, db *sql.DB) (map[int]appliedMigration, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, checksum FROM schema_migrations ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[int]appliedMigration)
	for rows.Next() {
		var am appliedMigration
		if err := rows.Scan(&am.ID, &am.Checksum); err != nil {
			return nil, err
		}
		applied[am.ID] = am
	}
	return applied, rows.Err()
}

// RunMigrations applies all pending migrations up to target (inclusive). An
// empty target means "latest". Every previously-applied migration whose
// on-disk checksum no longer matches the recorded checksum is reported as
// an error — skew is never silently tolerated or auto-repaired.
func RunMigrations(ctx context.Context, db *sql.DB, log zerolog.Logger, target string) error {
	applied, err := loadApplied(ctx, db)
	if err != nil {
		return fmt.Errorf("load applied migrations: %w", err)
	}

	for _, m := range registry {
		if am, ok := applied[m.ID]; ok {
			if am.Checksum != m.Checksum() {
				return fmt.Errorf("migration %03d (%s): on-disk checksum %s does not match applied checksum %s — schema skew detected",
					m.ID, m.Description, m.Checksum(), am.Checksum)
			}
		}
	}

	targetID := CurrentSchemaVersion
	if target != "" {
		if _, err := fmt.Sscanf(target, "%d", &targetID); err != nil {
			return fmt.Errorf("invalid migration target %q: %w", target, err)
		}
	}

	pending := make([]Migration, 0)
	for _, m := range registry {
		if m.ID > targetID {
			continue
		}
		if _, ok := applied[m.ID]; ok {
			continue
		}
		pending = append(pending, m)
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].ID < pending[j].ID })

	for _, m := range pending {
		if err := applyOne(ctx, db, m); err != nil {
			return fmt.Errorf("migration %03d (%s): %w", m.ID, m.Description, err)
		}
		log.Info().Int("migration", m.ID).Str("description", m.Description).Msg("applied migration")
	}
	return nil
}

func applyOne(ctx context.Context, db *sql.DB, m Migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := m.Up(ctx, tx); err != nil {
		return fmt.Errorf("up: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (id, description, checksum) VALUES (?, ?, ?)`,
		m.ID, m.Description, m.Checksum()); err != nil {
		return fmt.Errorf("record migration: %w", err)
	}
	return tx.Commit()
}

// DownTo reverses applied migrations newest-first down to (but not
// including) target.
func DownTo(ctx context.Context, db *sql.DB, target int) error {
	applied, err := loadApplied(ctx, db)
	if err != nil {
		return err
	}
	ids := make([]int, 0, len(applied))
	for id := range applied {
		ids = append(ids, id)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(ids)))

	byID := make(map[int]Migration, len(registry))
	for _, m := range registry {
		byID[m.ID] = m
	}

	for _, id := range ids {
		if id <= target {
			break
		}
		m, ok := byID[id]
		if !ok || m.Down == nil {
			return fmt.Errorf("migration %03d has no down operation", id)
		}
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if err := m.Down(ctx, tx); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %03d down: %w", id, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM schema_migrations WHERE id = ?`, id); err != nil {
			_ = tx.Rollback()
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
	}
	return nil
}

// CurrentAppliedVersion returns the highest migration ID recorded as
// applied, or 0 for a brand-new database.
func CurrentAppliedVersion(ctx context.Context, db *sql.DB) (int, error) {
	var v sql.NullInt64
	err := db.QueryRowContext(ctx, `SELECT MAX(id) FROM schema_migrations`).Scan(&v)
	if err != nil {
		return 0, err
	}
	return int(v.Int64), nil
}
