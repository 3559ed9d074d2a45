package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/kanbanforge/kanband/internal/engine"
	"github.com/kanbanforge/kanband/internal/eventbus"
	"github.com/kanbanforge/kanband/internal/idgen"
	"github.com/kanbanforge/kanband/internal/types"
)

// CreateTask validates input, places the task at the tail of its column,
// computes an initial priority score, and emits task:created.
//
// Errors: BOARD_NOT_FOUND, COLUMN_MISMATCH, VALIDATION.
func (s *Service) CreateTask(ctx context.Context, t *types.Task) (*types.Task, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}

	var buf eventbus.Buffer
	err := s.store.Transaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := s.boards.Get(ctx, tx, t.BoardID); err != nil {
			return types.NewConflictError(types.CodeBoardNotFound, "board not found", map[string]any{"board_id": t.BoardID})
		}
		col, err := s.columns.Get(ctx, tx, t.ColumnID)
		if err != nil {
			return types.NewConflictError(types.CodeColumnNotFound, "column not found", map[string]any{"column_id": t.ColumnID})
		}
		if col.BoardID != t.BoardID {
			return types.NewConflictError(types.CodeColumnMismatch, "column belongs to a different board", map[string]any{
				"column_board": col.BoardID, "task_board": t.BoardID,
			})
		}

		now := time.Now()
		if t.Status == "" {
			t.Status = types.StatusTodo
		}
		if t.Priority == "" {
			t.Priority = types.PriorityMedium
		}
		t.ID = idgen.New(idgen.PrefixTask, t.Title, t.Description, t.Assignee, now, func(id string) bool {
			_, err := s.tasks.Get(ctx, tx, id)
			return err == nil
		})
		t.ContentHash = t.ComputeContentHash()

		maxPos, err := s.tasks.MaxPositionInColumn(ctx, tx, t.ColumnID)
		if err != nil {
			return err
		}
		t.Position = maxPos + 1

		in := engine.ScoringInput{TaskID: t.ID, CreatedAt: now, Priority: t.Priority, DueDate: t.DueDate}
		score, _ := engine.Score(in, 0, now, s.cfg)
		t.PriorityScore = score

		if err := s.tasks.Create(ctx, tx, t); err != nil {
			return err
		}

		buf.Append(types.Event{
			Type: types.EventTaskCreated, BoardID: t.BoardID, Timestamp: now,
			Payload: map[string]any{"task_id": t.ID, "title": t.Title, "column_id": t.ColumnID},
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	buf.Flush(s.hub)
	return t, nil
}

// CreateSubtask enforces T2 (same board, depth <= MaxHierarchyDepth) before
// delegating to CreateTask's placement logic, positioning the new task
// among its siblings rather than at the tail of the column.
//
// Errors: DEPTH_EXCEEDED, CROSS_BOARD, VALIDATION.
func (s *Service) CreateSubtask(ctx context.Context, parentID string, t *types.Task) (*types.Task, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}

	var buf eventbus.Buffer
	err := s.store.Transaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		g, err := s.loadBoardGraph(ctx, tx, t.BoardID)
		if err != nil {
			return err
		}
		parentTask, ok := g.tasksByID[parentID]
		if !ok {
			return types.NewNotFoundError("task", parentID)
		}
		parentNode := engine.HierarchyNode{ID: parentTask.ID, BoardID: parentTask.BoardID, ParentTaskID: parentTask.ParentTaskID}
		if err := engine.ValidateSubtaskPlacement(parentNode, t.BoardID, g.hierarchyNodes()); err != nil {
			return err
		}

		now := time.Now()
		t.ParentTaskID = &parentID
		t.ColumnID = parentTask.ColumnID
		if t.Status == "" {
			t.Status = types.StatusTodo
		}
		if t.Priority == "" {
			t.Priority = types.PriorityMedium
		}
		t.ID = idgen.New(idgen.PrefixTask, t.Title, t.Description, t.Assignee, now, func(id string) bool {
			_, err := s.tasks.Get(ctx, tx, id)
			return err == nil
		})
		t.ContentHash = t.ComputeContentHash()

		maxPos, err := s.tasks.MaxPositionAmongSiblings(ctx, tx, parentID)
		if err != nil {
			return err
		}
		t.Position = maxPos + 1

		in := engine.ScoringInput{TaskID: t.ID, CreatedAt: now, Priority: t.Priority, DueDate: t.DueDate}
		score, _ := engine.Score(in, 0, now, s.cfg)
		t.PriorityScore = score

		if err := s.tasks.Create(ctx, tx, t); err != nil {
			return err
		}

		buf.Append(types.Event{
			Type: types.EventTaskCreated, BoardID: t.BoardID, Timestamp: now,
			Payload: map[string]any{"task_id": t.ID, "parent_task_id": parentID},
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	buf.Flush(s.hub)
	return t, nil
}

func (s *Service) GetTask(ctx context.Context, id string) (*types.Task, error) {
	var t *types.Task
	err := s.store.Transaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		var err error
		t, err = s.tasks.Get(ctx, tx, id)
		if err != nil {
			return err
		}
		t.PercentComplete, err = s.tasks.GetProgress(ctx, tx, id)
		return err
	})
	return t, err
}

func (s *Service) SearchTasks(ctx context.Context, f types.TaskFilter) ([]*types.Task, error) {
	var out []*types.Task
	err := s.store.Transaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		var err error
		out, err = s.tasks.SearchTasks(ctx, tx, f)
		return err
	})
	return out, err
}

// UpdateTaskStatus validates the transition, rejects closing a task with
// open children, recomputes the progress rollup to the root, and
// re-evaluates blocked state for every task this one unblocks.
//
// Errors: NOT_FOUND, HAS_OPEN_CHILDREN.
func (s *Service) UpdateTaskStatus(ctx context.Context, taskID string, newStatus types.Status) (*types.Task, error) {
	var buf eventbus.Buffer
	var updated *types.Task
	err := s.store.Transaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		t, err := s.tasks.Get(ctx, tx, taskID)
		if err != nil {
			return err
		}

		if newStatus == types.StatusDone {
			children, err := s.tasks.ListChildren(ctx, tx, taskID)
			if err != nil {
				return err
			}
			statuses := make([]types.Status, len(children))
			for i, c := range children {
				statuses[i] = c.Status
			}
			if err := engine.ValidateCloseToDone(statuses); err != nil {
				return err
			}
		}

		now := time.Now()
		wasTerminal := t.Status.IsTerminal()
		if err := s.tasks.UpdateStatus(ctx, tx, taskID, newStatus); err != nil {
			return err
		}
		t.Status = newStatus

		buf.Append(types.Event{
			Type: types.EventTaskUpdated, BoardID: t.BoardID, Timestamp: now,
			Payload: map[string]any{"task_id": taskID, "status": string(newStatus)},
		})

		bg, err := s.loadBoardGraph(ctx, tx, t.BoardID)
		if err != nil {
			return err
		}

		nodes := bg.progressNodes()
		percents := make(map[string]float64, len(nodes))
		for id := range nodes {
			pct, err := s.tasks.GetProgress(ctx, tx, id)
			if err != nil {
				return err
			}
			percents[id] = pct
		}
		for _, step := range engine.ComputeRollup(taskID, nodes, percents) {
			if err := s.tasks.SetProgress(ctx, tx, step.TaskID, step.Percent); err != nil {
				return err
			}
			if step.TaskID != taskID && step.Percent == 100 {
				buf.Append(types.Event{
					Type: types.EventSubtaskCompleted, BoardID: t.BoardID, Timestamp: now,
					Payload: map[string]any{"task_id": step.TaskID, "child_task_id": taskID},
				})
			}
		}

		if newStatus.IsTerminal() != wasTerminal {
			successors := bg.blocks.Unblocks(taskID)
			for _, succID := range successors {
				blocked, count := engine.IsBlocked(bg.blocks, succID, bg.statusOf)
				if err := s.tasks.UpdateBlockedState(ctx, tx, succID, blocked, count); err != nil {
					return err
				}
				if !blocked {
					buf.Append(types.Event{
						Type: types.EventDependencyUnblocked, BoardID: t.BoardID, Timestamp: now,
						Payload: map[string]any{"task_id": succID, "unblocked_by": taskID},
					})
				}
			}
		}

		updated = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	buf.Flush(s.hub)
	return updated, nil
}

// MoveTask relocates a task to a (possibly different) column on the same
// board at the given position. The positions of the other tasks in the
// source and destination columns are not changed.
//
// Errors: COLUMN_MISMATCH.
func (s *Service) MoveTask(ctx context.Context, taskID, columnID string, position int) (*types.Task, error) {
	var buf eventbus.Buffer
	var moved *types.Task
	err := s.store.Transaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		t, err := s.tasks.Get(ctx, tx, taskID)
		if err != nil {
			return err
		}
		col, err := s.columns.Get(ctx, tx, columnID)
		if err != nil {
			return types.NewConflictError(types.CodeColumnNotFound, "column not found", map[string]any{"column_id": columnID})
		}
		if col.BoardID != t.BoardID {
			return types.NewConflictError(types.CodeColumnMismatch, "column belongs to a different board", map[string]any{
				"column_board": col.BoardID, "task_board": t.BoardID,
			})
		}

		fromColumn := t.ColumnID
		t.ColumnID = columnID
		t.Position = position
		if err := s.tasks.Update(ctx, tx, t); err != nil {
			return err
		}

		buf.Append(types.Event{
			Type: types.EventTaskMoved, BoardID: t.BoardID, Timestamp: time.Now(),
			Payload: map[string]any{
				"task_id": taskID, "from_column_id": fromColumn, "to_column_id": columnID, "position": position,
			},
		})
		moved = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	buf.Flush(s.hub)
	return moved, nil
}

func (s *Service) DeleteTask(ctx context.Context, id string) error {
	var buf eventbus.Buffer
	err := s.store.Transaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		t, err := s.tasks.Get(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := s.tasks.Delete(ctx, tx, id); err != nil {
			return err
		}
		buf.Append(types.Event{
			Type: types.EventTaskDeleted, BoardID: t.BoardID, Timestamp: time.Now(),
			Payload: map[string]any{"task_id": id},
		})
		return nil
	})
	if err != nil {
		return err
	}
	buf.Flush(s.hub)
	return nil
}
