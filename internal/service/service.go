// Package service is the Service Layer: it coordinates repositories under
// a transaction, validates input against the types package's declared
// schemas, drives the Task/Dependency Engine's pure algorithms, and
// publishes domain events only after the transaction that produced them
// commits. A rollback discards any events queued during that transaction
// (see eventbus.Buffer).
package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/kanbanforge/kanband/internal/auth"
	"github.com/kanbanforge/kanband/internal/engine"
	"github.com/kanbanforge/kanband/internal/eventbus"
	"github.com/kanbanforge/kanband/internal/repo"
	"github.com/kanbanforge/kanband/internal/storage"
)

// Service wires the repository layer, the engine's pure algorithms, and
// the event hub together. It is the only layer allowed to open a
// transaction and the only layer allowed to publish events.
type Service struct {
	store storage.Engine
	hub   *eventbus.Hub
	log   zerolog.Logger
	cfg   engine.Config
	auth  *auth.Hasher

	boards   *repo.BoardRepository
	columns  *repo.ColumnRepository
	tasks    *repo.TaskRepository
	deps     *repo.DependencyRepository
	notes    *repo.NoteRepository
	tags     *repo.TagRepository
	mappings *repo.RepoMappingRepository
	backups  *repo.BackupRepository
	apiKeys  *repo.ApiKeyRepository
}

// New constructs a Service over an already-open Storage Engine and Event
// Hub. cfg supplies the priority-scoring weights; pass engine.DefaultConfig()
// for the glossary defaults. hasher computes and verifies API key digests
// under the server's configured secret (API_KEY_SECRET).
func New(store storage.Engine, hub *eventbus.Hub, log zerolog.Logger, cfg engine.Config, hasher *auth.Hasher) *Service {
	return &Service{
		store: store,
		hub:   hub,
		log:   log.With().Str("component", "service").Logger(),
		cfg:   cfg,
		auth:  hasher,

		boards:   repo.NewBoardRepository(),
		columns:  repo.NewColumnRepository(),
		tasks:    repo.NewTaskRepository(),
		deps:     repo.NewDependencyRepository(),
		notes:    repo.NewNoteRepository(),
		tags:     repo.NewTagRepository(),
		mappings: repo.NewRepoMappingRepository(),
		backups:  repo.NewBackupRepository(),
		apiKeys:  repo.NewApiKeyRepository(),
	}
}

// HealthCheck delegates to the Storage Engine's liveness probe for the
// /api/database/health endpoint.
func (s *Service) HealthCheck(ctx context.Context) (storage.Health, error) {
	return s.store.HealthCheck(ctx)
}
