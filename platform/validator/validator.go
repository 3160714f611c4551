// Package validator provides validation infrastructure for the application.
// This is part of the platform layer and contains no business logic.
package validator

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var countryCodePattern = regexp.MustCompile(`^[a-z]{2}$`)

// Validator wraps the go-playground validator for structured validation.
type Validator struct {
	v *validator.Validate
}

// New creates a new Validator instance with the application's custom tags
// registered:
//
//	countrycodes  comma-separated ISO 3166-1 alpha-2 codes ("vn" or "vn,la")
func New() *Validator {
	v := validator.New()
	_ = v.RegisterValidation("countrycodes", validateCountryCodes)
	return &Validator{v: v}
}

// Struct validates a struct based on validation tags.
func (val *Validator) Struct(s interface{}) error {
	return val.v.Struct(s)
}

// Var validates a single variable against a tag.
func (val *Validator) Var(field interface{}, tag string) error {
	return val.v.Var(field, tag)
}

func validateCountryCodes(fl validator.FieldLevel) bool {
	raw := fl.Field().String()
	if raw == "" {
		return true
	}
	for _, code := range strings.Split(raw, ",") {
		if !countryCodePattern.MatchString(strings.ToLower(strings.TrimSpace(code))) {
			return false
		}
	}
	return true
}
