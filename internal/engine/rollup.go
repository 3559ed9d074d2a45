package engine

import "github.com/kanbanforge/kanband/internal/types"

// ProgressNode is the minimal shape needed to compute percent_complete.
type ProgressNode struct {
	ID       string
	ParentID *string
	Status   types.Status
	Children []string
}

// LeafPercentComplete returns 100 if status is done, else 0.
func LeafPercentComplete(status types.Status) float64 {
	if status == types.StatusDone {
		return 100
	}
	return 0
}

// ParentPercentComplete is the arithmetic mean of the given children's
// percent_complete values. A parent with no children is treated as a leaf
// by the caller, not here — this function is only meaningful for nodes
// that do have children.
func ParentPercentComplete(childPercents []float64) float64 {
	if len(childPercents) == 0 {
		return 0
	}
	sum := 0.0
	for _, p := range childPercents {
		sum += p
	}
	return sum / float64(len(childPercents))
}

// RollupPlan is the ordered list of (taskID, newPercent) writes the caller
// must apply, root-ward, so that a parent is always recomputed after all
// of its children have their fresh values.
type RollupPlan struct {
	TaskID  string
	Percent float64
}

// ComputeRollup walks from changedTaskID up to the root, recomputing
// percent_complete at each level. nodes must contain every ancestor of
// changedTaskID and, for each ancestor, every one of its direct children
// (so ParentPercentComplete can be computed); percents supplies the
// already-known percent_complete for leaves/children not being
// recomputed in this pass (typically read from task_progress).
func ComputeRollup(changedTaskID string, nodes map[string]ProgressNode, percents map[string]float64) []RollupPlan {
	var plan []RollupPlan

	node, ok := nodes[changedTaskID]
	if !ok {
		return plan
	}
	leafPct := LeafPercentComplete(node.Status)
	if len(node.Children) > 0 {
		leafPct = ParentPercentComplete(childPercentsOf(node, percents))
	}
	percents[changedTaskID] = leafPct
	plan = append(plan, RollupPlan{TaskID: changedTaskID, Percent: leafPct})

	cur := node
	for cur.ParentID != nil {
		parent, ok := nodes[*cur.ParentID]
		if !ok {
			break
		}
		parentPct := ParentPercentComplete(childPercentsOf(parent, percents))
		percents[parent.ID] = parentPct
		plan = append(plan, RollupPlan{TaskID: parent.ID, Percent: parentPct})
		cur = parent
	}
	return plan
}

func childPercentsOf(node ProgressNode, percents map[string]float64) []float64 {
	out := make([]float64, 0, len(node.Children))
	for _, c := range node.Children {
		out = append(out, percents[c])
	}
	return out
}

// ValidateCloseToDone enforces that a parent with any non-done,
// non-archived direct child cannot itself transition to done
// (HAS_OPEN_CHILDREN).
func ValidateCloseToDone(children []types.Status) error {
	for _, s := range children {
		if !s.IsTerminal() {
			return types.NewConflictError(types.CodeHasOpenChildren, "task has open children", map[string]any{
				"open_children": countOpen(children),
			})
		}
	}
	return nil
}

func countOpen(children []types.Status) int {
	n := 0
	for _, s := range children {
		if !s.IsTerminal() {
			n++
		}
	}
	return n
}
