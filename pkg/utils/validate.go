package utils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

func FormatValidationError(err error) map[string]string {
	errs := make(map[string]string)

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		errs["request"] = err.Error()
		return errs
	}

	for _, err := range validationErrors {
		field := strings.ToLower(err.Field())

		switch err.Tag() {
		case "required":
			errs[field] = fmt.Sprintf("%s is required", field)
		case "min":
			errs[field] = fmt.Sprintf("%s must be at least %s characters", field, err.Param())
		case "max":
			errs[field] = fmt.Sprintf("%s must be at most %s characters", field, err.Param())
		case "gt":
			errs[field] = fmt.Sprintf("%s must be greater than %s", field, err.Param())
		case "gte":
			errs[field] = fmt.Sprintf("%s must be greater than or equal to %s", field, err.Param())
		case "oneof":
			errs[field] = fmt.Sprintf("%s must be one of [%s]", field, err.Param())
		case "email":
			errs[field] = fmt.Sprintf("%s must be a valid email", field)
		case "url":
			errs[field] = fmt.Sprintf("%s must be a valid URL", field)
		default:
			errs[field] = fmt.Sprintf("%s is invalid", field)
		}
	}
	return errs
}
