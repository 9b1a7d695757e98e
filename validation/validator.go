package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/kbukum/carmarket/errors"
)

// Validator collects validation errors. Field names may be dotted paths
// ("owner.email").
type Validator struct {
	errors Errors
}

// New creates a new Validator.
func New() *Validator {
	return &Validator{
		errors: make(Errors, 0),
	}
}

// AddError adds a field error.
func (v *Validator) AddError(field, message, rule string) {
	v.errors = append(v.errors, FieldError{
		Path:    splitPath(field),
		Message: message,
		Rule:    rule,
	})
}

// HasErrors returns true if there are validation errors.
func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

// Errors returns all validation errors.
func (v *Validator) Errors() Errors {
	return v.errors
}

// Err returns the collected errors, or nil when there are none.
func (v *Validator) Err() error {
	if !v.HasErrors() {
		return nil
	}
	return v.errors
}

// Validate returns a VALIDATION_FAILED AppError listing every field error,
// or nil.
func (v *Validator) Validate() *errors.AppError {
	if !v.HasErrors() {
		return nil
	}
	return errors.New(errors.Errors.ValidationFailed, errors.WithIssues(v.errors))
}

// Required checks if a string is non-empty.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.AddError(field, "Required", RuleInvalidType)
	}
	return v
}

// MaxLength checks if a string is within max length.
func (v *Validator) MaxLength(field, value string, maxLen int) *Validator {
	if len(value) > maxLen {
		v.AddError(field, fmt.Sprintf("String must contain at most %d character(s)", maxLen), RuleTooBig)
	}
	return v
}

// Pattern checks if a string matches a regex pattern.
func (v *Validator) Pattern(field, value, pattern string) *Validator {
	if value == "" {
		return v
	}
	matched, err := regexp.MatchString(pattern, value)
	if err != nil || !matched {
		v.AddError(field, "Invalid", RuleInvalidString)
	}
	return v
}

// OneOf checks if a value is one of the allowed values.
func (v *Validator) OneOf(field, value string, allowed []string) *Validator {
	if value == "" {
		return v
	}
	for _, a := range allowed {
		if value == a {
			return v
		}
	}
	v.AddError(field, fmt.Sprintf("Invalid enum value. Expected %s, received '%s'", quoteJoin(allowed), value), RuleInvalidEnumValue)
	return v
}

// Custom applies a custom validation condition.
func (v *Validator) Custom(condition bool, field, message string) *Validator {
	if !condition {
		v.AddError(field, message, RuleCustom)
	}
	return v
}

func quoteJoin(values []string) string {
	quoted := make([]string, len(values))
	for i, s := range values {
		quoted[i] = "'" + s + "'"
	}
	return strings.Join(quoted, " | ")
}
