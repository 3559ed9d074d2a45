package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/kanbanforge/kanband/internal/engine"
	"github.com/kanbanforge/kanband/internal/eventbus"
	"github.com/kanbanforge/kanband/internal/types"
)

// AddDependency validates D1/D2 (distinct endpoints, uniqueness, blocks-
// subgraph acyclicity), persists the edge, and recomputes priority scores
// and blocked state for the affected board.
//
// Errors: CYCLE, SELF_DEPENDENCY, DUPLICATE, NOT_FOUND.
func (s *Service) AddDependency(ctx context.Context, taskID, dependsOn string, depType types.DependencyType) error {
	var buf eventbus.Buffer
	var boardID string
	err := s.store.Transaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		t, err := s.tasks.Get(ctx, tx, taskID)
		if err != nil {
			return err
		}
		if _, err := s.tasks.Get(ctx, tx, dependsOn); err != nil {
			return err
		}

		exists, err := s.deps.Exists(ctx, tx, taskID, dependsOn)
		if err != nil {
			return err
		}
		if exists {
			return types.NewConflictError(types.CodeDuplicate, "dependency already exists", map[string]any{
				"task_id": taskID, "depends_on_task_id": dependsOn,
			})
		}

		boardID = t.BoardID
		g, err := s.loadBoardGraph(ctx, tx, t.BoardID)
		if err != nil {
			return err
		}
		if err := engine.ValidateNewDependency(g.blocks, taskID, dependsOn, depType); err != nil {
			return err
		}

		d := &types.Dependency{TaskID: taskID, DependsOnTaskID: dependsOn, Type: depType}
		if err := d.Validate(); err != nil {
			return err
		}
		if err := s.deps.Create(ctx, tx, d); err != nil {
			return err
		}

		now := time.Now()
		buf.Append(types.Event{
			Type: types.EventDependencyAdded, BoardID: t.BoardID, Timestamp: now,
			Payload: map[string]any{"task_id": taskID, "depends_on_task_id": dependsOn, "type": string(depType)},
		})

		if depType == types.DepBlocks {
			g.blocks.AddEdge(taskID, dependsOn)
			blocked, count := engine.IsBlocked(g.blocks, taskID, g.statusOf)
			if err := s.tasks.UpdateBlockedState(ctx, tx, taskID, blocked, count); err != nil {
				return err
			}
			if blocked {
				buf.Append(types.Event{
					Type: types.EventDependencyBlocked, BoardID: t.BoardID, Timestamp: now,
					Payload: map[string]any{"task_id": taskID, "blocked_by": dependsOn},
				})
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	buf.Flush(s.hub)

	if err := s.RecomputeScores(ctx, boardID); err != nil {
		s.log.Warn().Err(err).Msg("post-dependency score recompute failed")
	}
	return nil
}

// RemoveDependency deletes the edge; AddDependency then RemoveDependency
// leaves the dependency table unchanged (the round-trip property from the
// testable-properties list).
func (s *Service) RemoveDependency(ctx context.Context, taskID, dependsOn string) error {
	var buf eventbus.Buffer
	err := s.store.Transaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		t, err := s.tasks.Get(ctx, tx, taskID)
		if err != nil {
			return err
		}
		if err := s.deps.Delete(ctx, tx, taskID, dependsOn); err != nil {
			return err
		}
		buf.Append(types.Event{
			Type: types.EventDependencyRemoved, BoardID: t.BoardID, Timestamp: time.Now(),
			Payload: map[string]any{"task_id": taskID, "depends_on_task_id": dependsOn},
		})
		return nil
	})
	if err != nil {
		return err
	}
	buf.Flush(s.hub)
	return nil
}

func (s *Service) ListDependencies(ctx context.Context, taskID string) (outgoing, incoming []*types.Dependency, err error) {
	err = s.store.Transaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		var e error
		outgoing, e = s.deps.ListOutgoing(ctx, tx, taskID)
		if e != nil {
			return e
		}
		incoming, e = s.deps.ListIncoming(ctx, tx, taskID)
		return e
	})
	return outgoing, incoming, err
}
