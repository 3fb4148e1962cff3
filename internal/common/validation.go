package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	validate *validator.Validate

	// Common regex patterns
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_.]{3,30}$`)
)

func init() {
	validate = validator.New()

	// Report json names so field errors line up with the form keys the backend uses
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	validate.RegisterValidation("username", validateUsername)
}

// ValidateStruct validates a struct using validator tags
func ValidateStruct(s interface{}) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"form": err.Error()}
	}

	fields := make(map[string]string)
	for _, err := range verrs {
		fields[err.Field()] = getValidationMessage(err)
	}
	return fields
}

// Validate is ValidateStruct in error form, for callers that stop before any request is made
func Validate(s interface{}) error {
	if fields := ValidateStruct(s); fields != nil {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// DecodeAndValidate decodes JSON request body and validates it
func DecodeAndValidate(r *http.Request, dst interface{}) map[string]string {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return map[string]string{"body": "Invalid JSON format"}
	}
	return ValidateStruct(dst)
}

func validateUsername(fl validator.FieldLevel) bool {
	return usernameRegex.MatchString(fl.Field().String())
}

// Get human-readable validation messages
func getValidationMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", err.Field())
	case "email":
		return "Invalid email format"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", err.Field(), err.Param())
	case "max":
		return fmt.Sprintf("%s must not exceed %s characters", err.Field(), err.Param())
	case "username":
		return "Username must be 3-30 characters: letters, digits, underscores or dots"
	case "eqfield":
		return fmt.Sprintf("%s must match %s", err.Field(), strings.ToLower(err.Param()))
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
	case "url":
		return "Invalid URL format"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", err.Field(), err.Param())
	case "dive":
		return fmt.Sprintf("%s contains an invalid entry", err.Field())
	default:
		return fmt.Sprintf("%s is invalid", err.Field())
	}
}

// ValidateEmail validates email format
func ValidateEmail(email string) bool {
	return validate.Var(email, "required,email") == nil
}

// SanitizeString trims whitespace and normalizes a string
func SanitizeString(s string) string {
	return strings.TrimSpace(s)
}

// SanitizeEmail normalizes an email address
func SanitizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
