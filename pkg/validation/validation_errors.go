package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// MissingFields returns the names of fields that failed the "required" rule,
// in the order the validator reported them (struct declaration order).
func MissingFields(err error) []string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}

	var fields []string
	for _, e := range validationErrors {
		if e.Tag() == "required" {
			fields = append(fields, e.Field())
		}
	}
	return fields
}

// FormatValidationErrors converts validator.ValidationErrors to user-friendly messages
func FormatValidationErrors(err error) []string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		// Not a validation error, return generic message
		return []string{err.Error()}
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		messages = append(messages, formatSingleError(e))
	}
	return messages
}

// formatSingleError formats a single validation error to a user-friendly message
func formatSingleError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s: is required", e.Field())
	case "email":
		return fmt.Sprintf("%s: must be a valid email address", e.Field())
	case "max":
		return fmt.Sprintf("%s: must be at most %s characters", e.Field(), e.Param())
	default:
		// Fallback for unknown tags
		return fmt.Sprintf("%s: failed validation (%s)", e.Field(), e.Tag())
	}
}

// MissingFieldsMessage builds the client facing message for absent required fields.
func MissingFieldsMessage(fields []string) string {
	return "Missing required fields: " + strings.Join(fields, ", ")
}
