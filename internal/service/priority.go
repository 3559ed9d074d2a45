package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/kanbanforge/kanband/internal/engine"
	"github.com/kanbanforge/kanband/internal/eventbus"
	"github.com/kanbanforge/kanband/internal/types"
)

// RecomputeScores runs the engine's single-pass per-board priority
// recompute: build the blocks graph, derive each active task's dependency
// factor, normalize per-board, score every task, and persist the new
// scores. Archived/done tasks are excluded from scoring but kept in the
// graph for reverse-edge counting. Emits priority:changed for each task
// whose score moved.
func (s *Service) RecomputeScores(ctx context.Context, boardID string) error {
	var buf eventbus.Buffer
	err := s.store.Transaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		g, err := s.loadBoardGraph(ctx, tx, boardID)
		if err != nil {
			return err
		}
		now := time.Now()

		raw := make(map[string]float64, len(g.tasksByID))
		for id, t := range g.tasksByID {
			if t.Status.IsTerminal() {
				continue
			}
			raw[id] = engine.DependencyFactorRaw(
				g.blocks.DirectBlockCount(id), g.blocks.TransitiveBlockCount(id), g.blocks.CriticalPathLength(id),
				s.cfg.DependencyWeights)
		}
		normalized := engine.NormalizeDependencyFactors(raw)

		for id, t := range g.tasksByID {
			if t.Status.IsTerminal() {
				continue
			}
			in := engine.ScoringInput{
				TaskID:    id,
				CreatedAt: t.CreatedAt,
				Priority:  t.Priority,
				DueDate:   t.DueDate,
			}
			score, _ := engine.Score(in, normalized[id], now, s.cfg)
			if score == t.PriorityScore {
				continue
			}
			if err := s.tasks.UpdatePriorityScore(ctx, tx, id, score); err != nil {
				return err
			}
			buf.Append(types.Event{
				Type: types.EventPriorityChanged, BoardID: boardID, Timestamp: now,
				Payload: map[string]any{"task_id": id, "priority_score": score},
			})
		}
		return nil
	})
	if err != nil {
		return err
	}
	buf.Flush(s.hub)
	return nil
}

// NextTaskResult is the response shape for GetNextTask.
type NextTaskResult struct {
	Task      *types.Task
	Reasoning *engine.Reasoning
}

// GetNextTask implements the next-task recommender: load the active
// candidate set, filter, and defer to the engine's deterministic selection
// algorithm.
func (s *Service) GetNextTask(ctx context.Context, f engine.SelectionFilter) (*NextTaskResult, error) {
	var result *NextTaskResult
	err := s.store.Transaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		g, err := s.loadBoardGraph(ctx, tx, f.BoardID)
		if err != nil {
			return err
		}

		candidates := make([]engine.Candidate, 0, len(g.tasksByID))
		for id, t := range g.tasksByID {
			blocked, _ := engine.IsBlocked(g.blocks, id, g.statusOf)
			tagRows, err := s.tags.ListForTask(ctx, tx, id)
			if err != nil {
				return err
			}
			tagSet := make(map[string]bool, len(tagRows))
			for _, tg := range tagRows {
				tagSet[tg.Slug] = true
			}
			candidates = append(candidates, engine.Candidate{Task: t, Tags: tagSet, Blocked: blocked})
		}

		unblocksOf := func(taskID string) []string { return g.blocks.Unblocks(taskID) }
		chosen, reasoning := engine.SelectNext(candidates, f, unblocksOf)
		if chosen == nil {
			return nil
		}

		now := time.Now()
		raw := make(map[string]float64, len(g.tasksByID))
		for id := range g.tasksByID {
			raw[id] = engine.DependencyFactorRaw(
				g.blocks.DirectBlockCount(id), g.blocks.TransitiveBlockCount(id), g.blocks.CriticalPathLength(id),
				s.cfg.DependencyWeights)
		}
		normalized := engine.NormalizeDependencyFactors(raw)
		in := engine.ScoringInput{
			TaskID: chosen.Task.ID, CreatedAt: chosen.Task.CreatedAt,
			Priority: chosen.Task.Priority, DueDate: chosen.Task.DueDate,
		}
		_, factors := engine.Score(in, normalized[chosen.Task.ID], now, s.cfg)
		reasoning.TopFactors = engine.TopThreeFactors(factors)

		result = &NextTaskResult{Task: chosen.Task, Reasoning: reasoning}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
