// Package schema describes and checks the wire shape of the error envelope.
//
// It does not consult the error registry: errorCode is validated as an
// opaque non-empty token so the schema and the catalog can evolve
// independently. Violations are reported as validation.Errors.
package schema

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/kbukum/carmarket/errors"
	"github.com/kbukum/carmarket/validation"
)

// Status code bounds accepted for statusCode.
const (
	MinStatusCode = 100
	MaxStatusCode = 599
)

// wireEnvelope mirrors errors.Envelope with pointers so that a missing
// property can be told apart from its zero value.
type wireEnvelope struct {
	StatusCode *int        `json:"statusCode" validate:"required,min=100,max=599"`
	ErrorCode  *string     `json:"errorCode" validate:"required,min=1"`
	Message    *string     `json:"message" validate:"required"`
	Errors     []wireIssue `json:"errors" validate:"omitempty,dive"`
	ID         *string     `json:"id" validate:"required,uuid_anycase"`
}

type wireIssue struct {
	Field   *string `json:"field" validate:"required,min=1"`
	Message *string `json:"message" validate:"required,min=1"`
	Code    *string `json:"code" validate:"required,min=1"`
}

// Validate checks an envelope against the schema.
func Validate(env errors.Envelope) error {
	code := string(env.ErrorCode)
	w := wireEnvelope{
		StatusCode: &env.StatusCode,
		ErrorCode:  &code,
		Message:    &env.Message,
		ID:         &env.ID,
	}
	for i := range env.Errors {
		is := &env.Errors[i]
		w.Errors = append(w.Errors, wireIssue{Field: &is.Field, Message: &is.Message, Code: &is.Code})
	}
	return validation.Validate(w)
}

// ValidateJSON decodes a candidate payload and checks it against the schema.
// statusCode must be a JSON integer and errors, when present, must be an
// array. Unknown properties are ignored.
func ValidateJSON(data []byte) error {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return validation.Errors{{Message: "Expected object, received invalid JSON", Rule: validation.RuleInvalidType}}
	}

	var issues validation.Errors
	if raw, ok := probe["errors"]; ok && bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		issues = append(issues, validation.FieldError{
			Path:    []string{"errors"},
			Message: "Expected array, received null",
			Rule:    validation.RuleInvalidType,
		})
	}

	var w wireEnvelope
	if err := json.Unmarshal(data, &w); err != nil {
		var typeErr *json.UnmarshalTypeError
		if !stderrors.As(err, &typeErr) {
			return validation.Errors{{Message: err.Error(), Rule: validation.RuleInvalidType}}
		}
		issues = append(issues, validation.FieldError{
			Path:    fieldPath(typeErr.Field),
			Message: fmt.Sprintf("Expected %s, received %s", expected(typeErr.Type.String()), typeErr.Value),
			Rule:    validation.RuleInvalidType,
		})
	}

	if err := validation.Validate(w); err != nil {
		var verrs validation.Errors
		if !stderrors.As(err, &verrs) {
			return err
		}
		issues = append(issues, dropCovered(verrs, issues)...)
	}

	if len(issues) == 0 {
		return nil
	}
	return issues
}

// dropCovered removes validator errors for paths that already failed to
// decode, since a field that could not be decoded also reads as missing.
func dropCovered(verrs, decoded validation.Errors) validation.Errors {
	seen := make(map[string]bool, len(decoded))
	for _, d := range decoded {
		seen[d.Field()] = true
	}
	out := make(validation.Errors, 0, len(verrs))
	for _, v := range verrs {
		if !seen[v.Field()] {
			out = append(out, v)
		}
	}
	return out
}

func fieldPath(field string) []string {
	if field == "" {
		return nil
	}
	return strings.Split(field, ".")
}

func expected(goType string) string {
	switch goType {
	case "int", "*int":
		return "integer"
	case "string", "*string":
		return "string"
	case "[]schema.wireIssue":
		return "array"
	default:
		return "object"
	}
}
