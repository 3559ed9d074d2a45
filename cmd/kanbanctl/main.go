// Command kanbanctl is a thin operator CLI over the same Storage Engine
// and Service Layer the kanband server uses: schema migrations, seed
// fixtures, and backup/restore, all invoked directly against the
// database file rather than through the HTTP API.
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"

	"github.com/kanbanforge/kanband/internal/auth"
	"github.com/kanbanforge/kanband/internal/backup"
	"github.com/kanbanforge/kanband/internal/config"
	"github.com/kanbanforge/kanband/internal/eventbus"
	"github.com/kanbanforge/kanband/internal/service"
	"github.com/kanbanforge/kanband/internal/storage/sqlite"
	"github.com/kanbanforge/kanband/internal/types"
)

var (
	dbPath     string
	jsonOutput bool
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "kanbanctl",
		Short: "Operator CLI for the kanband database",
	}
	root.PersistentFlags().StringVar(&dbPath, "db", config.Defaults().DatabasePath, "path to the database file")
	root.PersistentFlags().BoolVar(&jsonOutput, "json", false, "emit JSON instead of plain text")

	root.AddCommand(migrateCmd(), seedCmd(), backupCmd())
	return root
}

func quietLogger() zerolog.Logger {
	return zerolog.New(os.Stderr).Level(zerolog.WarnLevel)
}

func openRawDB(ctx context.Context) (*sql.DB, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back schema migrations",
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := openRawDB(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			log := quietLogger()
			if err := sqlite.RunMigrations(ctx, db, log, ""); err != nil {
				return err
			}
			version, err := sqlite.CurrentAppliedVersion(ctx, db)
			if err != nil {
				return err
			}
			fmt.Printf("migrated to schema version %d\n", version)
			return nil
		},
	}

	var downTarget int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations to a target version",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := openRawDB(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := sqlite.DownTo(ctx, db, downTarget); err != nil {
				return err
			}
			version, err := sqlite.CurrentAppliedVersion(ctx, db)
			if err != nil {
				return err
			}
			fmt.Printf("rolled back to schema version %d\n", version)
			return nil
		},
	}
	down.Flags().IntVar(&downTarget, "target", 0, "schema version to roll back to (exclusive)")

	cmd.AddCommand(up, down)
	return cmd
}

func seedCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Apply idempotent seed fixtures",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := openRawDB(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			log := quietLogger()
			if err := sqlite.RunSeeds(ctx, db, log, force); err != nil {
				return err
			}
			fmt.Println("seeds applied")
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "re-apply every seed regardless of prior status")
	return cmd
}

func openService(ctx context.Context) (*service.Service, *sqlite.Storage, error) {
	store, err := sqlite.Open(ctx, sqlite.Options{Path: dbPath, Logger: quietLogger()})
	if err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	hub := eventbus.New(quietLogger())
	hasher := auth.NewHasher(cfg.APIKeySecret)
	return service.New(store, hub, quietLogger(), cfg.Priority, hasher), store, nil
}

func backupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Take, list, and restore database backups",
	}

	var retentionDays int
	now := &cobra.Command{
		Use:   "now",
		Short: "Take a manual backup immediately",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, store, err := openService(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			eng := backup.NewEngine(store, filepath.Join(filepath.Dir(dbPath), "backups"), quietLogger())
			b, err := svc.RunBackup(ctx, eng, types.BackupManual, retentionDays)
			if err != nil {
				return err
			}
			return printBackup(b)
		},
	}
	now.Flags().IntVar(&retentionDays, "retention-days", 30, "days to retain the new backup before it's swept")

	list := &cobra.Command{
		Use:   "list",
		Short: "List known backups",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, store, err := openService(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			backups, err := svc.ListBackups(ctx)
			if err != nil {
				return err
			}
			if jsonOutput {
				return json.NewEncoder(os.Stdout).Encode(backups)
			}
			for _, b := range backups {
				fmt.Printf("%s\t%s\t%s\t%s\n", b.ID, b.Type, b.Status, b.CreatedAt.Format("2006-01-02T15:04:05Z07:00"))
			}
			return nil
		},
	}

	restore := &cobra.Command{
		Use:   "restore <backup-id>",
		Short: "Restore the database file from a verified backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, store, err := openService(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			eng := backup.NewEngine(store, filepath.Join(filepath.Dir(dbPath), "backups"), quietLogger())
			b, err := svc.RestoreBackup(ctx, eng, args[0], dbPath)
			if err != nil {
				return err
			}
			fmt.Printf("restored %s from backup %s; restart kanband to pick up the new file\n", dbPath, b.ID)
			return nil
		},
	}

	cmd.AddCommand(now, list, restore)
	return cmd
}

func printBackup(b *types.Backup) error {
	if jsonOutput {
		return json.NewEncoder(os.Stdout).Encode(b)
	}
	fmt.Printf("%s\t%s\t%s\t%s\n", b.ID, b.Type, b.Status, b.CreatedAt.Format("2006-01-02T15:04:05Z07:00"))
	return nil
}
