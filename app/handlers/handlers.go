// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"github.com/go-playground/validator/v10"
)

func getValidationErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return err.Field() + " is required"
	case "max":
		return err.Field() + " must be at most " + err.Param() + " characters"
	case "oneof":
		return err.Field() + " must be one of: " + err.Param()
	default:
		return err.Field() + " is invalid"
	}
}

// hasRequiredFailure reports whether any field failed the required tag
func hasRequiredFailure(errs validator.ValidationErrors) bool {
	for _, err := range errs {
		if err.Tag() == "required" {
			return true
		}
	}
	return false
}
