package engine

import "github.com/kanbanforge/kanband/internal/types"

// IsBlocked reports whether taskID is blocked: true iff any of its direct
// blocks-predecessors has a status outside {done, archived}.
func IsBlocked(g *Graph, taskID string, statusOf func(string) types.Status) (blocked bool, blockingCount int) {
	for _, pred := range g.BlockingPredecessors(taskID) {
		if !statusOf(pred).IsTerminal() {
			blockingCount++
		}
	}
	return blockingCount > 0, blockingCount
}

// RecomputeBlockedState recomputes IsBlocked for every node in the graph,
// used after a status transition to find which successors newly unblock
// or newly block. Returns only the tasks whose blocked state differs from
// previousState, so the caller emits dependency:unblocked events only for
// actual transitions.
type BlockedChange struct {
	TaskID      string
	WasBlocked  bool
	NowBlocked  bool
	BlockingCount int
}

func RecomputeBlockedState(g *Graph, taskIDs []string, statusOf func(string) types.Status, previousState map[string]bool) []BlockedChange {
	var changes []BlockedChange
	for _, id := range taskIDs {
		blocked, count := IsBlocked(g, id, statusOf)
		if previousState[id] != blocked {
			changes = append(changes, BlockedChange{
				TaskID: id, WasBlocked: previousState[id], NowBlocked: blocked, BlockingCount: count,
			})
		}
	}
	return changes
}
