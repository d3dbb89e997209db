package utils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FormatValidationErrors flattens validator errors into field-level sources
// for the response envelope.
func FormatValidationErrors(err error) []ErrorSource {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []ErrorSource{{Path: "body", Message: err.Error()}}
	}

	sources := make([]ErrorSource, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		sources = append(sources, ErrorSource{
			Path:    strings.ToLower(fieldErr.Field()),
			Message: validationMessage(fieldErr),
		})
	}
	return sources
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return fmt.Sprintf("failed on the %s rule", fe.Tag())
	}
}
