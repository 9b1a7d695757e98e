package errors

// Meta carries diagnostic context for an AppError. It is never serialized.
type Meta map[string]any

// Option customizes an AppError at construction.
type Option func(*options)

type options struct {
	message    string
	hasMessage bool
	meta       Meta
	cause      error
}

// WithMessage replaces the entry's default message.
func WithMessage(message string) Option {
	return func(o *options) {
		o.message = message
		o.hasMessage = true
	}
}

// WithMeta merges diagnostic context into the error. An IssueSource stored
// under the "errors" key populates the envelope's field errors.
func WithMeta(meta Meta) Option {
	return func(o *options) {
		if o.meta == nil {
			o.meta = make(Meta, len(meta))
		}
		for k, v := range meta {
			o.meta[k] = v
		}
	}
}

// WithIssues attaches a validation result; shorthand for
// WithMeta(Meta{"errors": src}).
func WithIssues(src IssueSource) Option {
	return WithMeta(Meta{metaIssuesKey: src})
}

// WithCause records the underlying failure for logs and errors.Unwrap.
func WithCause(cause error) Option {
	return func(o *options) { o.cause = cause }
}
