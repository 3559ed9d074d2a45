package httpapi

import (
	"github.com/go-playground/validator/v10"

	"github.com/kanbanforge/kanband/internal/types"
)

func badRequest(msg string) error {
	return types.NewValidationError(msg, nil)
}

// validationError converts a validator.ValidationErrors into a typed
// VALIDATION error carrying one detail entry per offending field, in the
// field-path-plus-reason shape spec.md §7 asks for.
func validationError(err error) error {
	details := map[string]any{}
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			details[fe.Field()] = fe.Tag()
		}
	}
	return types.NewValidationError("request validation failed", details)
}
