package models

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validate is the validator used for all incoming venue, artist and show data
var Validate = validator.New()

func init() {
	// Report the JSON field names in validation errors
	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// FieldErrors converts the result of a validation run into a map of field names to the failed validation rule
func FieldErrors(err error) map[string]string {
	ret := map[string]string{}
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			ret[fe.Field()] = fe.Tag()
		}
	}
	return ret
}
