package types

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorWithOpPreservesKindAndCode(t *testing.T) {
	base := NewNotFoundError("task", "tsk-1")
	wrapped := base.WithOp("sqlite: select task")

	if wrapped.Kind != KindNotFound || wrapped.Code != CodeNotFound {
		t.Fatalf("WithOp changed Kind/Code: %+v", wrapped)
	}
	if wrapped.Op != "sqlite: select task" {
		t.Fatalf("Op = %q", wrapped.Op)
	}
	if base.Op != "" {
		t.Fatalf("WithOp mutated the original error")
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := fmt.Errorf("driver: disk I/O error")
	err := NewTransientError("sqlite: begin transaction", cause)

	if !errors.Is(err, cause) {
		t.Fatalf("errors.Is did not find wrapped cause")
	}
}

func TestAsErrorAndKindOf(t *testing.T) {
	wrapped := fmt.Errorf("repo: insert: %w", NewConflictError(CodeCycle, "would introduce a cycle", nil))

	te, ok := AsError(wrapped)
	if !ok {
		t.Fatalf("AsError did not unwrap a *Error")
	}
	if te.Code != CodeCycle {
		t.Fatalf("Code = %s, want %s", te.Code, CodeCycle)
	}
	if KindOf(wrapped) != KindConflict {
		t.Fatalf("KindOf = %s, want %s", KindOf(wrapped), KindConflict)
	}

	if KindOf(fmt.Errorf("plain error")) != KindInternal {
		t.Fatalf("KindOf of a plain error should default to KindInternal")
	}
}
