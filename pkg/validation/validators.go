package validation

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// New returns a validator that reports fields by their json names.
func New() *validator.Validate {
	v := validator.New()
	RegisterValidators(v)
	return v
}

// RegisterValidators makes FieldError.Field() return the json tag name
// so messages match the request payload.
func RegisterValidators(v *validator.Validate) {
	v.RegisterTagNameFunc(JSONFieldName)
}

// JSONFieldName resolves the json name of a struct field, falling back to the Go name.
func JSONFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	switch name {
	case "-":
		return ""
	case "":
		return fld.Name
	}
	return name
}
