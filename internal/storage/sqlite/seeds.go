package sqlite

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"

	"github.com/rs/zerolog"
)

// seed is one idempotent data-fixture applied at most once per database,
// tracked in seed_status by name. Re-running RunSeeds is always safe:
// seeds already recorded are skipped, and the checksum is there to catch
// someone editing a seed's Apply body without renaming it.
type seed struct {
	Name  string
	Body  string
	Apply func(ctx context.Context, tx *sql.Tx) error
}

func (s seed) checksum() string {
	sum := sha256.Sum256([]byte(s.Body))
	return hex.EncodeToString(sum[:])
}

var defaultBoardSeed = seed{
	Name: "default_board_and_columns",
	Body: "default board 'default' with todo/in_progress/done/blocked columns",
	Apply: func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO boards (id, name, description) VALUES (?, ?, ?)`,
			"brd-default", "default", "default board created on first boot"); err != nil {
			return fmt.Errorf("seed default board: %w", err)
		}
		columns := []struct {
			id, name string
			position int
		}{
			{"col-default-todo", "To Do", 0},
			{"col-default-in-progress", "In Progress", 1},
			{"col-default-blocked", "Blocked", 2},
			{"col-default-done", "Done", 3},
		}
		for _, c := range columns {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO columns (id, board_id, name, position) VALUES (?, ?, ?, ?)`,
				c.id, "brd-default", c.name, c.position); err != nil {
				return fmt.Errorf("seed column %s: %w", c.name, err)
			}
		}
		return nil
	},
}

var seedRegistry = []seed{
	defaultBoardSeed,
}

// RunSeeds applies every seed in seedRegistry not already recorded in
// seed_status. force re-applies everything regardless of prior status,
// used only by kanbanctl's `seed --force`.
func RunSeeds(ctx context.Context, db *sql.DB, log zerolog.Logger, force bool) error {
	for _, s := range seedRegistry {
		if !force {
			var checksum string
			err := db.QueryRowContext(ctx, `SELECT checksum FROM seed_status WHERE name = ?`, s.Name).Scan(&checksum)
			if err == nil {
				continue
			}
			if err != sql.ErrNoRows {
				return fmt.Errorf("seed status lookup %s: %w", s.Name, err)
			}
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if err := s.Apply(ctx, tx); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("seed %s: %w", s.Name, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO seed_status (name, checksum) VALUES (?, ?)
			 ON CONFLICT(name) DO UPDATE SET checksum = excluded.checksum, applied_at = CURRENT_TIMESTAMP`,
			s.Name, s.checksum()); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record seed %s: %w", s.Name, err)
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		log.Info().Str("seed", s.Name).Msg("applied seed")
	}
	return nil
}
