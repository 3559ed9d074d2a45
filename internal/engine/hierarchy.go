package engine

import (
	"github.com/kanbanforge/kanband/internal/types"
)

// HierarchyNode is the minimal shape the hierarchy algorithms need from a
// task — callers pass in whatever subset of loaded tasks is relevant
// rather than engine reaching back into the repository layer itself.
type HierarchyNode struct {
	ID           string
	BoardID      string
	ParentTaskID *string
	Position     int
}

// Depth returns the nesting depth of node within byID (root = 0). It stops
// and returns the depth reached so far if a parent reference is missing
// from byID, which should not happen for a well-formed call but avoids an
// infinite loop on bad input.
func Depth(node HierarchyNode, byID map[string]HierarchyNode) int {
	depth := 0
	cur := node
	seen := map[string]bool{cur.ID: true}
	for cur.ParentTaskID != nil {
		parent, ok := byID[*cur.ParentTaskID]
		if !ok || seen[parent.ID] {
			break
		}
		seen[parent.ID] = true
		depth++
		cur = parent
	}
	return depth
}

// ValidateSubtaskPlacement checks invariant T2 before a subtask is
// created: the parent must exist, be on the same board, and have depth
// strictly less than MaxHierarchyDepth (so the new child lands at depth
// parent+1 <= MaxHierarchyDepth).
func ValidateSubtaskPlacement(parent HierarchyNode, childBoardID string, byID map[string]HierarchyNode) error {
	if parent.BoardID != childBoardID {
		return types.NewConflictError(types.CodeCrossBoard, "parent task is on a different board", map[string]any{
			"parent_board": parent.BoardID, "child_board": childBoardID,
		})
	}
	if Depth(parent, byID) >= types.MaxHierarchyDepth {
		return types.NewConflictError(types.CodeDepthExceeded, "subtask hierarchy depth exceeded", map[string]any{
			"max_depth": types.MaxHierarchyDepth,
		})
	}
	return nil
}

// NextSiblingPosition returns max(position)+1 among siblings, or 0 if
// there are none.
func NextSiblingPosition(siblings []HierarchyNode) int {
	max := -1
	for _, s := range siblings {
		if s.Position > max {
			max = s.Position
		}
	}
	return max + 1
}
