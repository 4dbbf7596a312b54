package internal

import (
	"net/http"
	"time"

	"github.com/derWhity/gigboard/internal/models"
)

// -- Request data -----------------------------------------------------------------------------------------------------

// Search describes a typical search request with a search term
type Search struct {
	// The string to search for - an empty string matches everything
	Search string
}

// clock returns the current point in time - used to decide which shows are upcoming
type clock func() time.Time

// validate checks the given input data against its validation rules and returns an error describing the failed
// fields if it does not validate
func validate(input interface{}) error {
	err := models.Validate.Struct(input)
	if err == nil {
		return nil
	}
	fields := models.FieldErrors(err)
	if len(fields) == 0 {
		// Not a validation result - something is wrong with the input type itself
		return MakeErrorWithData(http.StatusBadRequest, ErrCodeValidationFailed, "Input cannot be validated", err)
	}
	for _, rule := range fields {
		if rule != "required" {
			return MakeErrorWithData(http.StatusBadRequest, ErrCodeValidationFailed, "Input data does not validate", fields)
		}
	}
	return MakeErrorWithData(http.StatusBadRequest, ErrCodeRequiredFieldMissing, "Required fields missing", fields)
}
