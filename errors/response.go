package errors

import (
	"context"
	stderrors "errors"
)

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Wrap converts any error into an AppError from the Default registry.
// AppErrors in the chain are returned as-is; context expiry maps to
// SERVICE_UNAVAILABLE and everything else to INTERNAL_ERROR with err as the
// cause. Wrap(nil) returns nil.
func Wrap(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := AsAppError(err); ok {
		return appErr
	}
	if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(err, context.Canceled) {
		return New(Errors.ServiceUnavailable, WithCause(err))
	}
	return New(Errors.Internal, WithCause(err))
}
