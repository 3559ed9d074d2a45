package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/kanbanforge/kanband/internal/types"
)

// wrapDBError wraps a raw database/sql error with operation context,
// converting sql.ErrNoRows into the typed not-found error and unique/FK
// constraint violations into typed conflict errors so callers above the
// storage layer never need to sniff driver-specific strings themselves.
func wrapDBError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return (&types.Error{Kind: types.KindNotFound, Code: types.CodeNotFound, Message: "not found"}).WithOp(op)
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return (&types.Error{Kind: types.KindConflict, Code: types.CodeDuplicate, Message: "duplicate entry", Details: map[string]any{"cause": msg}}).WithOp(op)
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return (&types.Error{Kind: types.KindConflict, Code: types.CodeValidation, Message: "referenced row does not exist", Details: map[string]any{"cause": msg}}).WithOp(op)
	case strings.Contains(msg, "database is locked"), strings.Contains(msg, "SQLITE_BUSY"):
		return types.NewTransientError(op, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func isNotFound(err error) bool {
	te, ok := types.AsError(err)
	return ok && te.Kind == types.KindNotFound
}
