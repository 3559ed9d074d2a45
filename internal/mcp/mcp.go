// Package mcp defines the tool-call surface consumed by an MCP server
// process: one function per tool, each a thin adapter from an untyped
// argument bag onto the Service Layer. Wire framing, transport, and the
// tool-registration handshake are out of scope and live in whatever
// process embeds this package.
package mcp

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/kanbanforge/kanband/internal/service"
	"github.com/kanbanforge/kanband/internal/types"
)

// Tool describes one callable tool: its name, a human-readable summary
// for a model's tool listing, and the handler that runs it.
type Tool struct {
	Name        string
	Description string
	Handler     func(ctx context.Context, args map[string]any) (any, error)
}

// Toolset bundles every tool surfaced against one Service instance.
type Toolset struct {
	svc *service.Service
	log zerolog.Logger
}

// New builds the toolset, deriving a component-scoped logger the way
// every other layer in this repo does.
func New(svc *service.Service, log zerolog.Logger) *Toolset {
	return &Toolset{svc: svc, log: log.With().Str("component", "mcp").Logger()}
}

// Tools returns the full tool list, in registration order.
func (t *Toolset) Tools() []Tool {
	return []Tool{
		{Name: "create_board", Description: "Create a new board.", Handler: t.createBoard},
		{Name: "list_boards", Description: "List boards, optionally including archived ones.", Handler: t.listBoards},
		{Name: "list_columns", Description: "List a board's columns.", Handler: t.listColumns},
		{Name: "create_task", Description: "Create a task on a board.", Handler: t.createTask},
		{Name: "get_task", Description: "Fetch a task by ID.", Handler: t.getTask},
		{Name: "search_tasks", Description: "Search tasks by board, status, assignee, or free text in the title. The tag argument is not applied.", Handler: t.searchTasks},
		{Name: "update_task_status", Description: "Move a task to a new status.", Handler: t.updateTaskStatus},
		{Name: "move_task", Description: "Move a task to a different column and position.", Handler: t.moveTask},
		{Name: "delete_task", Description: "Delete a task.", Handler: t.deleteTask},
		{Name: "add_dependency", Description: "Add a dependency edge between two tasks.", Handler: t.addDependency},
		{Name: "remove_dependency", Description: "Remove a dependency edge between two tasks.", Handler: t.removeDependency},
		{Name: "list_dependencies", Description: "List a task's outgoing and incoming dependencies.", Handler: t.listDependencies},
		{Name: "get_next_task", Description: "Recommend the next task to work on.", Handler: t.getNextTask},
		{Name: "recompute_scores", Description: "Recompute priority scores for a board.", Handler: t.recomputeScores},
		{Name: "add_note", Description: "Add a note to a task.", Handler: t.addNote},
	}
}

// decodeArgs round-trips the argument bag through JSON into dst, the
// same decode path the HTTP surface uses against request bodies, so a
// single `validate:"..."` struct definition covers both surfaces.
func decodeArgs(args map[string]any, dst any) error {
	raw, err := json.Marshal(args)
	if err != nil {
		return types.NewValidationError("malformed tool arguments", nil)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return types.NewValidationError("tool arguments do not match expected shape: "+err.Error(), nil)
	}
	return nil
}

func stringArg(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return v
}

func boolArg(args map[string]any, key string) bool {
	v, _ := args[key].(bool)
	return v
}

func floatArg(args map[string]any, key string) float64 {
	switch v := args[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return 0
	}
}
