package types

import (
	"errors"
	"fmt"
)

// Kind classifies an error by the behavior callers should take, independent
// of which layer raised it. The HTTP layer maps a Kind to a status code; the
// WebSocket and MCP layers map it to their own wire shapes.
type Kind string

const (
	KindValidation Kind = "VALIDATION"
	KindNotFound   Kind = "NOT_FOUND"
	KindConflict   Kind = "CONFLICT"
	KindAuth       Kind = "AUTH"
	KindRate       Kind = "RATE"
	KindTransient  Kind = "TRANSIENT"
	KindInternal   Kind = "INTERNAL"
)

// Code is a stable, machine-readable identifier for a specific failure mode.
// Codes are finer-grained than Kind: several codes share a Kind (e.g. CYCLE
// and SELF_DEPENDENCY are both KindConflict).
type Code string

const (
	CodeValidation       Code = "VALIDATION"
	CodeNotFound         Code = "NOT_FOUND"
	CodeBoardNotFound    Code = "BOARD_NOT_FOUND"
	CodeColumnNotFound   Code = "COLUMN_NOT_FOUND"
	CodeColumnMismatch   Code = "COLUMN_MISMATCH"
	CodeDepthExceeded    Code = "DEPTH_EXCEEDED"
	CodeCrossBoard       Code = "CROSS_BOARD"
	CodeHasOpenChildren  Code = "HAS_OPEN_CHILDREN"
	CodeCycle            Code = "CYCLE"
	CodeSelfDependency   Code = "SELF_DEPENDENCY"
	CodeDuplicate        Code = "DUPLICATE"
	CodeUnauthorized     Code = "UNAUTHORIZED"
	CodeForbidden        Code = "FORBIDDEN"
	CodeRateLimited      Code = "RATE_LIMITED"
	CodeUnavailable      Code = "UNAVAILABLE"
	CodeInternal         Code = "INTERNAL"
	CodeStaleUpdate      Code = "STALE_UPDATE"
	CodeChecksumMismatch Code = "CHECKSUM_MISMATCH"
	CodeBackupVerificationFailed Code = "BACKUP_VERIFICATION_FAILED"
)

// Error is the typed error carried through repository, engine, and service
// layers. Handlers at the edge (HTTP, WS, MCP) translate it to their wire
// format; nothing below the edge should format user-facing strings itself.
type Error struct {
	Kind    Kind
	Code    Code
	Message string
	Details map[string]any
	Op      string // operation context, e.g. "sqlite: insert task"
	err     error  // wrapped cause, if any
}

func (e *Error) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.err }

// WithOp returns a copy of e annotated with an operation label. Repository
// and storage layers call this to attach context as an error bubbles up
// without discarding the original Kind/Code.
func (e *Error) WithOp(op string) *Error {
	cp := *e
	cp.Op = op
	return &cp
}

func newErr(kind Kind, code Code, msg string, cause error) *Error {
	return &Error{Kind: kind, Code: code, Message: msg, err: cause}
}

func NewValidationError(msg string, details map[string]any) *Error {
	return &Error{Kind: KindValidation, Code: CodeValidation, Message: msg, Details: details}
}

func NewNotFoundError(resource, id string) *Error {
	return newErr(KindNotFound, CodeNotFound, fmt.Sprintf("%s %q not found", resource, id), nil)
}

func NewConflictError(code Code, msg string, details map[string]any) *Error {
	return &Error{Kind: KindConflict, Code: code, Message: msg, Details: details}
}

func NewAuthError(msg string) *Error {
	return newErr(KindAuth, CodeUnauthorized, msg, nil)
}

func NewRateError(msg string) *Error {
	return newErr(KindRate, CodeRateLimited, msg, nil)
}

func NewTransientError(op string, cause error) *Error {
	return newErr(KindTransient, CodeUnavailable, "operation timed out or was interrupted", cause).WithOp(op)
}

func NewInternalError(op string, cause error) *Error {
	return newErr(KindInternal, CodeInternal, "internal error", cause).WithOp(op)
}

// AsError extracts a *Error from err, if any part of its chain is one.
func AsError(err error) (*Error, bool) {
	var te *Error
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}

// KindOf returns the Kind of err if it is (or wraps) a *Error, else KindInternal.
func KindOf(err error) Kind {
	if te, ok := AsError(err); ok {
		return te.Kind
	}
	return KindInternal
}
