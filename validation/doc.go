// Package validation collects field-level validation failures for carmarket
// request handlers.
//
// Both struct tag validation (go-playground/validator) and the programmatic
// Validator produce an Errors value. Errors satisfies errors.IssueSource, so
// it can be attached directly to a VALIDATION_FAILED AppError:
//
//	type CreateListingRequest struct {
//	    VIN   string `json:"vin" validate:"required,len=17"`
//	    Price int    `json:"price" validate:"min=1"`
//	}
//	if err := validation.Validate(req); err != nil {
//	    return errors.New(errors.Errors.ValidationFailed, errors.WithMeta(errors.Meta{"errors": err}))
//	}
//
// Rule codes follow the vocabulary clients already branch on: invalid_type,
// invalid_string, too_small, too_big, invalid_enum_value and custom.
package validation
