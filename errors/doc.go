// Package errors provides the carmarket API error model.
//
// A Registry binds symbolic keys to immutable entries (HTTP status plus a
// default message). AppError values are built from registered entries and
// carry the wire Envelope that the HTTP boundary serializes:
//
//	appErr := errors.New(errors.Errors.CarNotFound)
//	// {"statusCode":404,"errorCode":"CAR_NOT_FOUND","message":"Car not found","id":"..."}
//
// Validation failures attach an IssueSource so each issue becomes a field
// entry in the envelope:
//
//	appErr := errors.New(errors.Errors.ValidationFailed, errors.WithIssues(verr))
//
// Building an AppError from an entry that is not in the registry panics.
// That is a coding defect and must never be turned into a response.
package errors
