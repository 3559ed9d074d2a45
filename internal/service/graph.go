package service

import (
	"context"
	"database/sql"

	"github.com/kanbanforge/kanband/internal/engine"
	"github.com/kanbanforge/kanband/internal/types"
)

// boardGraph is everything the engine's pure algorithms need to act on one
// board: every task (including archived/done, retained for reverse-edge
// counting) keyed by ID, and the blocks-subgraph built from them.
type boardGraph struct {
	tasksByID map[string]*types.Task
	blocks    *engine.Graph
}

func (s *Service) loadBoardGraph(ctx context.Context, tx *sql.Tx, boardID string) (*boardGraph, error) {
	tasks, err := s.tasks.ListByBoard(ctx, tx, boardID, true)
	if err != nil {
		return nil, err
	}
	tasksByID := make(map[string]*types.Task, len(tasks))
	ids := make([]string, 0, len(tasks))
	for _, t := range tasks {
		tasksByID[t.ID] = t
		ids = append(ids, t.ID)
	}

	edgeRows, err := s.deps.ListBlocksEdgesForBoard(ctx, tx, boardID)
	if err != nil {
		return nil, err
	}
	edges := make([]engine.Edge, len(edgeRows))
	for i, d := range edgeRows {
		edges[i] = engine.Edge{TaskID: d.TaskID, DependsOn: d.DependsOnTaskID}
	}

	return &boardGraph{tasksByID: tasksByID, blocks: engine.NewGraph(edges, ids)}, nil
}

func (g *boardGraph) statusOf(id string) types.Status {
	if t, ok := g.tasksByID[id]; ok {
		return t.Status
	}
	return types.StatusArchived
}

func (g *boardGraph) hierarchyNodes() map[string]engine.HierarchyNode {
	out := make(map[string]engine.HierarchyNode, len(g.tasksByID))
	for id, t := range g.tasksByID {
		out[id] = engine.HierarchyNode{ID: id, BoardID: t.BoardID, ParentTaskID: t.ParentTaskID, Position: t.Position}
	}
	return out
}

// progressNodes builds the rollup engine's view of the hierarchy: every
// task plus its direct children, derived from the same tasksByID snapshot
// used for the blocks graph.
func (g *boardGraph) progressNodes() map[string]engine.ProgressNode {
	out := make(map[string]engine.ProgressNode, len(g.tasksByID))
	for id, t := range g.tasksByID {
		out[id] = engine.ProgressNode{ID: id, ParentID: t.ParentTaskID, Status: t.Status}
	}
	for id, t := range g.tasksByID {
		if t.ParentTaskID == nil {
			continue
		}
		parent := out[*t.ParentTaskID]
		parent.Children = append(parent.Children, id)
		out[*t.ParentTaskID] = parent
	}
	return out
}
