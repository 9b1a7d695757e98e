package validation

import (
	stderrors "errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// TagUUID accepts a hyphenated RFC 4122 UUID in either letter case. The
// built-in "uuid" tag only accepts lowercase hex.
const TagUUID = "uuid_anycase"

var (
	validate *validator.Validate
	once     sync.Once
)

// Engine returns the shared validator instance. Field names in reported
// paths come from json tags.
func Engine() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Use json tag names for field names in error messages
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return toSnakeCase(fld.Name)
			}
			return name
		})
		_ = validate.RegisterValidation(TagUUID, isUUID)
	})
	return validate
}

func isUUID(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}

// Validate validates a struct using struct tags such as
// `validate:"required,email,max=255"`. It returns Errors on failure.
func Validate(s any) error {
	err := Engine().Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !stderrors.As(err, &validationErrors) {
		return Errors{{Message: err.Error(), Rule: RuleInvalidType}}
	}

	out := make(Errors, 0, len(validationErrors))
	for _, e := range validationErrors {
		out = append(out, FieldError{
			Path:    namespacePath(e.Namespace()),
			Message: formatValidationError(e),
			Rule:    ruleFor(e.Tag()),
		})
	}
	return out
}

// namespacePath converts "Listing.photos[0].url" to ["photos", "0", "url"].
// The leading segment names the root struct and is dropped.
func namespacePath(ns string) []string {
	segments := strings.Split(ns, ".")
	if len(segments) > 1 {
		segments = segments[1:]
	}
	path := make([]string, 0, len(segments))
	for _, seg := range segments {
		for {
			open := strings.IndexByte(seg, '[')
			if open < 0 {
				if seg != "" {
					path = append(path, seg)
				}
				break
			}
			if open > 0 {
				path = append(path, seg[:open])
			}
			end := strings.IndexByte(seg[open:], ']')
			if end < 0 {
				path = append(path, seg[open+1:])
				break
			}
			path = append(path, seg[open+1:open+end])
			seg = seg[open+end+1:]
		}
	}
	return path
}

func ruleFor(tag string) string {
	switch tag {
	case "required", "required_if", "required_unless", "required_with", "required_without":
		return RuleInvalidType
	case "min", "gte", "gt":
		return RuleTooSmall
	case "max", "lte", "lt":
		return RuleTooBig
	case "oneof":
		return RuleInvalidEnumValue
	case "email", "url", "uri", "uuid", "uuid4", TagUUID, "alphanum", "alpha", "numeric", "len", "hexadecimal", "startswith", "endswith", "contains":
		return RuleInvalidString
	default:
		return RuleCustom
	}
}

// formatValidationError creates a human-readable error message.
func formatValidationError(e validator.FieldError) string {
	isString := e.Kind() == reflect.String
	switch e.Tag() {
	case "required":
		return "Required"
	case "email":
		return "Invalid email"
	case "url", "uri":
		return "Invalid url"
	case "uuid", "uuid4", TagUUID:
		return "Invalid uuid"
	case "min", "gte":
		if isString {
			return "String must contain at least " + e.Param() + " character(s)"
		}
		return "Number must be greater than or equal to " + e.Param()
	case "max", "lte":
		if isString {
			return "String must contain at most " + e.Param() + " character(s)"
		}
		return "Number must be less than or equal to " + e.Param()
	case "len":
		return "String must contain exactly " + e.Param() + " character(s)"
	case "oneof":
		return "Invalid enum value. Expected one of: " + e.Param()
	default:
		return "Invalid"
	}
}

// toSnakeCase converts a field name to snake_case.
func toSnakeCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result.WriteRune('_')
		}
		if r >= 'A' && r <= 'Z' {
			result.WriteRune(r + 32) // lowercase
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}
