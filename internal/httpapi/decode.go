package httpapi

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validatorOnce sync.Once
	validatorInst *validator.Validate
)

func getValidator() *validator.Validate {
	validatorOnce.Do(func() { validatorInst = validator.New() })
	return validatorInst
}

// decodeAndValidate JSON-decodes r's body into dst and runs
// go-playground/validator/v10 against its `validate:"..."` struct tags
// (already declared on the internal/types structs) before the Service
// Layer's own business-rule Validate() runs. This catches shape errors
// ("required", "max=") with field-level detail ahead of the deeper
// cross-entity checks the service performs inside a transaction.
func decodeAndValidate(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return badRequest("malformed JSON body: " + err.Error())
	}
	if err := getValidator().Struct(dst); err != nil {
		return validationError(err)
	}
	return nil
}
