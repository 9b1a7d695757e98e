package boundary

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/carmarket/errors"
	"github.com/kbukum/carmarket/validation"
)

// MessageMalformedBody replaces the entry message when the body is not JSON.
const MessageMalformedBody = "Malformed JSON body"

// Bind decodes the JSON body into dst and validates its `validate` tags.
// Every failure is an *errors.AppError: PAYLOAD_TOO_LARGE for bodies over
// the size limit, VALIDATION_FAILED otherwise, with one field issue per
// type mismatch or rule violation.
func Bind(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return decodeError(err)
	}
	if err := validation.Validate(dst); err != nil {
		var verrs validation.Errors
		if stderrors.As(err, &verrs) {
			return errors.New(errors.Errors.ValidationFailed, errors.WithIssues(verrs))
		}
		return errors.Wrap(err)
	}
	return nil
}

func decodeError(err error) *errors.AppError {
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		return errors.New(errors.Errors.PayloadTooLarge, errors.WithCause(err))
	}

	var typeErr *json.UnmarshalTypeError
	if stderrors.As(err, &typeErr) {
		msg := fmt.Sprintf("Expected %s, received %s", jsonType(typeErr.Type.Kind().String()), typeErr.Value)
		if typeErr.Field == "" {
			// The body itself has the wrong shape; there is no field to name.
			return errors.New(errors.Errors.ValidationFailed, errors.WithMessage(msg), errors.WithCause(err))
		}
		issues := validation.Errors{{
			Path:    strings.Split(typeErr.Field, "."),
			Message: msg,
			Rule:    validation.RuleInvalidType,
		}}
		return errors.New(errors.Errors.ValidationFailed, errors.WithIssues(issues), errors.WithCause(err))
	}

	var syntaxErr *json.SyntaxError
	if stderrors.As(err, &syntaxErr) || stderrors.Is(err, io.EOF) || stderrors.Is(err, io.ErrUnexpectedEOF) {
		return errors.New(errors.Errors.ValidationFailed,
			errors.WithMessage(MessageMalformedBody), errors.WithCause(err))
	}
	return errors.Wrap(err)
}

func jsonType(kind string) string {
	switch {
	case strings.HasPrefix(kind, "int"), strings.HasPrefix(kind, "uint"), strings.HasPrefix(kind, "float"):
		return "number"
	case kind == "bool":
		return "boolean"
	case kind == "slice", kind == "array":
		return "array"
	case kind == "struct", kind == "map":
		return "object"
	default:
		return kind
	}
}
