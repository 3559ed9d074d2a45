// Command kanband is the server process: it loads configuration, opens
// the Storage Engine, wires the Service Layer, Event Hub, WebSocket
// Gateway, Backup Engine and scheduler, and the HTTP API, then serves
// until it receives SIGINT or SIGTERM.
//
// Exit codes:
//
//	0   clean shutdown
//	1   unrecoverable startup error (database open failure, etc.)
//	2   configuration error
//	130 shutdown triggered by SIGINT
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/kanbanforge/kanband/internal/auth"
	"github.com/kanbanforge/kanband/internal/backup"
	"github.com/kanbanforge/kanband/internal/config"
	"github.com/kanbanforge/kanband/internal/eventbus"
	"github.com/kanbanforge/kanband/internal/httpapi"
	"github.com/kanbanforge/kanband/internal/service"
	"github.com/kanbanforge/kanband/internal/storage/sqlite"
	"github.com/kanbanforge/kanband/internal/types"
	"github.com/kanbanforge/kanband/internal/ws"
)

func main() {
	os.Exit(run())
}

func run() int {
	log := newLogger()

	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("invalid configuration")
		return 2
	}

	// No span exporter is wired (the pack carries no OTLP/Jaeger exporter
	// dependency), so spans are sampled and ended but never leave the
	// process; the SDK still runs so one can be added later without
	// touching any instrumented call site.
	tp := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tp)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("error shutting down tracer provider")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var gotSIGINT bool
	go func() {
		sig := <-sigCh
		gotSIGINT = sig == syscall.SIGINT
		cancel()
	}()

	store, err := sqlite.Open(ctx, sqlite.Options{Path: cfg.DatabasePath, Logger: log})
	if err != nil {
		log.Error().Err(err).Msg("failed to open database")
		return 1
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Warn().Err(err).Msg("error closing database")
		}
	}()

	hasher := auth.NewHasher(cfg.APIKeySecret)
	hub := eventbus.New(log)
	svc := service.New(store, hub, log, cfg.Priority, hasher)

	backupDir := filepath.Join(filepath.Dir(cfg.DatabasePath), "backups")
	backupEngine := backup.NewEngine(store, backupDir, log)

	var scheduler *backup.Scheduler
	if cfg.BackupEnabled {
		scheduler = backup.NewScheduler(cfg.BackupSchedule, func(ctx context.Context) error {
			if _, err := svc.RunBackup(ctx, backupEngine, types.BackupFull, cfg.BackupRetentionDays); err != nil {
				return err
			}
			_, err := svc.SweepExpiredBackups(ctx)
			return err
		}, log)
		go scheduler.Start(ctx)
	}

	authenticate := func(rawKey string) bool {
		_, err := svc.Authenticate(ctx, rawKey)
		return err == nil
	}
	gw := ws.New(hub, cfg, log, authenticate)

	router := httpapi.NewRouter(svc, backupEngine, gw, cfg, log)

	server := &http.Server{
		Addr:              cfg.Host + ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		log.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		gw.Shutdown(10 * time.Second)
		if scheduler != nil {
			scheduler.Stop()
		}
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("error during HTTP shutdown")
		}
	}()

	log.Info().Str("addr", server.Addr).Msg("listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("server error")
		return 1
	}

	if gotSIGINT {
		return 130
	}
	return 0
}

func newLogger() zerolog.Logger {
	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	if os.Getenv("LOG_FORMAT") == "json" {
		return zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
	return zerolog.New(output).With().Timestamp().Logger()
}
