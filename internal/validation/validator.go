// package validation provides helper functions for request data validation.
// It uses the go-playground/validator library and includes custom validation rules.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// init registers custom validation rules with the validator instance.
func init() {
	// The "eth_account" tag validates ledger account addresses submitted
	// on the registration form: a 0x-prefixed 40-digit hex string.
	err := validate.RegisterValidation("eth_account", func(fl validator.FieldLevel) bool {
		if fl.Field().String() == "" {
			// Allow empty strings to be handled by the 'required' tag.
			return true
		}

		re := regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

		return re.MatchString(fl.Field().String())
	})
	if err != nil {
		panic(fmt.Sprintf("failed to register custom validation: %v", err))
	}
}

// ValidationError is a custom error type that holds a slice of validation error messages.
type ValidationError struct {
	Errors []string
}

// Error returns a single string concatenating all validation error messages.
func (v *ValidationError) Error() string {
	return strings.Join(v.Errors, ", ")
}

// ValidateStruct performs validation on a given struct based on its validation tags.
// If validation fails, it returns a *ValidationError with user-friendly messages.
func ValidateStruct(s interface{}) error {
	if err := validate.Struct(s); err != nil {
		var validationErrors []string

		for _, err := range err.(validator.ValidationErrors) {
			var message string

			switch err.Tag() {
			case "eth_account":
				message = fmt.Sprintf(
					"field '%s' must be a 0x-prefixed 40-digit hex address",
					err.Field(),
				)
			default:
				message = fmt.Sprintf(
					"field '%s' failed on the '%s' tag",
					err.Field(),
					err.Tag(),
				)
			}
			validationErrors = append(validationErrors, message)
		}

		return &ValidationError{Errors: validationErrors}
	}

	return nil
}
