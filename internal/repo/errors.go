package repo

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/kanbanforge/kanband/internal/types"
)

// wrapErr normalizes a raw database/sql error into the typed taxonomy,
// same mapping the storage layer applies, so a repository method never
// leaks a driver-specific string to the service layer.
func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if te, ok := types.AsError(err); ok {
		return te.WithOp(op)
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return types.NewConflictError(types.CodeDuplicate, "duplicate entry", map[string]any{"cause": msg}).WithOp(op)
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return types.NewConflictError(types.CodeValidation, "referenced row does not exist", map[string]any{"cause": msg}).WithOp(op)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// requireAffected turns a zero-rows-affected UPDATE/DELETE into a typed
// not-found error instead of silently succeeding on a no-op.
func requireAffected(res sql.Result, resource, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return wrapErr("rows affected", err)
	}
	if n == 0 {
		return types.NewNotFoundError(resource, id)
	}
	return nil
}
