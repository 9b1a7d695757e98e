package errors

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Envelope is the JSON body returned to clients for every application error.
type Envelope struct {
	StatusCode int          `json:"statusCode"`
	ErrorCode  Key          `json:"errorCode"`
	Message    string       `json:"message"`
	Errors     []FieldIssue `json:"errors,omitempty"`
	ID         string       `json:"id"`
}

// AppError is a raised application failure. It is immutable once built and
// carries the envelope plus the cause and meta used for server-side logging.
type AppError struct {
	entry *Entry
	body  Envelope
	meta  Meta
	cause error
}

// UnregisteredEntryError is the panic value raised when an AppError is built
// from an entry the registry does not know.
type UnregisteredEntryError struct {
	Entry *Entry
}

func (e *UnregisteredEntryError) Error() string {
	if e.Entry == nil {
		return "errors: nil entry passed to New"
	}
	return fmt.Sprintf("errors: entry {%d %q} is not registered; use the Errors catalog", e.Entry.status, e.Entry.message)
}

// New builds an AppError for a registered entry. Every call mints a fresh
// random id. It panics with *UnregisteredEntryError if the entry is not in
// the registry.
func (r *Registry) New(entry *Entry, opts ...Option) *AppError {
	key, ok := r.Key(entry)
	if !ok {
		panic(&UnregisteredEntryError{Entry: entry})
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	body := Envelope{
		StatusCode: entry.status,
		ErrorCode:  key,
		Message:    entry.message,
		ID:         uuid.NewString(),
	}
	if o.hasMessage {
		body.Message = o.message
	}
	if src, ok := issueSourceFrom(o.meta); ok {
		body.Errors = fieldIssues(src)
	}

	return &AppError{
		entry: entry,
		body:  body,
		meta:  o.meta,
		cause: o.cause,
	}
}

// New builds an AppError from the Default registry.
func New(entry *Entry, opts ...Option) *AppError {
	return Default.New(entry, opts...)
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.body.ErrorCode, e.body.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.body.ErrorCode, e.body.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.cause }

// Envelope returns a copy of the full envelope.
func (e *AppError) Envelope() Envelope {
	env := e.body
	if e.body.Errors != nil {
		env.Errors = make([]FieldIssue, len(e.body.Errors))
		copy(env.Errors, e.body.Errors)
	}
	return env
}

// Public returns the envelope to send to clients. For server errors an
// overridden message is replaced by the entry's default so internal detail
// stays in the logs.
func (e *AppError) Public() Envelope {
	env := e.Envelope()
	if e.IsServerError() {
		env.Message = e.entry.message
	}
	return env
}

// MarshalJSON serializes the public envelope.
func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Public())
}

// Entry returns the registry entry the error was built from.
func (e *AppError) Entry() *Entry { return e.entry }

// Status returns the HTTP status to send with the envelope.
func (e *AppError) Status() int { return e.body.StatusCode }

// Code returns the registered error key.
func (e *AppError) Code() Key { return e.body.ErrorCode }

// ID returns the unique id of this occurrence.
func (e *AppError) ID() string { return e.body.ID }

// Message returns the (possibly overridden) message.
func (e *AppError) Message() string { return e.body.Message }

// Meta returns the diagnostic context, or nil.
func (e *AppError) Meta() Meta { return e.meta }

// Retryable reports whether the client may retry.
func (e *AppError) Retryable() bool { return e.entry.Retryable() }

// IsServerError reports whether the error is a 5xx.
func (e *AppError) IsServerError() bool { return e.body.StatusCode >= 500 }
