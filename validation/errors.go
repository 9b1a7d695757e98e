package validation

import (
	"strings"

	"github.com/kbukum/carmarket/errors"
)

// Rule codes reported in FieldError.Rule.
const (
	RuleInvalidType      = "invalid_type"
	RuleInvalidString    = "invalid_string"
	RuleTooSmall         = "too_small"
	RuleTooBig           = "too_big"
	RuleInvalidEnumValue = "invalid_enum_value"
	RuleCustom           = "custom"
)

// FieldError represents a validation error for a specific field.
type FieldError struct {
	Path    []string
	Message string
	Rule    string
}

// Field returns the dotted path of the field.
func (e FieldError) Field() string {
	return strings.Join(e.Path, ".")
}

// Errors is an ordered list of field errors. It implements error and
// errors.IssueSource.
type Errors []FieldError

// Error joins every field error into one line.
func (es Errors) Error() string {
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = e.Field() + ": " + e.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Issues returns the field errors as envelope issues, in order.
func (es Errors) Issues() []errors.Issue {
	out := make([]errors.Issue, len(es))
	for i, e := range es {
		path := make([]string, len(e.Path))
		copy(path, e.Path)
		out[i] = errors.Issue{Path: path, Message: e.Message, Code: e.Rule}
	}
	return out
}

// splitPath turns "owner.email" into ["owner", "email"].
func splitPath(field string) []string {
	if field == "" {
		return nil
	}
	return strings.Split(field, ".")
}
