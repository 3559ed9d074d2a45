package types

import "time"

// DependencyType classifies a directed edge between two tasks.
type DependencyType string

const (
	// DepBlocks means the source task cannot be done until the target is
	// done. The subgraph restricted to blocks-edges must be acyclic
	// (invariant D2).
	DepBlocks     DependencyType = "blocks"
	DepRelated    DependencyType = "related"
	DepParentChild DependencyType = "parent-child"
)

func (d DependencyType) Valid() bool {
	switch d {
	case DepBlocks, DepRelated, DepParentChild:
		return true
	}
	return false
}

// Dependency is a directed edge task_id -> depends_on_task_id.
type Dependency struct {
	TaskID         string         `json:"task_id" db:"task_id" validate:"required"`
	DependsOnTaskID string        `json:"depends_on_task_id" db:"depends_on_task_id" validate:"required"`
	Type           DependencyType `json:"type" db:"type"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`
}

func (d *Dependency) Validate() error {
	details := map[string]any{}
	if d.TaskID == "" {
		details["task_id"] = "required"
	}
	if d.DependsOnTaskID == "" {
		details["depends_on_task_id"] = "required"
	}
	if d.Type != "" && !d.Type.Valid() {
		details["type"] = "invalid dependency type"
	}
	if len(details) > 0 {
		return NewValidationError("dependency validation failed", details)
	}
	if d.TaskID != "" && d.TaskID == d.DependsOnTaskID {
		return NewConflictError(CodeSelfDependency, "a task cannot depend on itself", map[string]any{"task_id": d.TaskID})
	}
	return nil
}
