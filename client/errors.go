package client

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"syscall"
	"time"

	"github.com/kbukum/carmarket/errors"
	"github.com/kbukum/carmarket/schema"
)

// FallbackMessage is shown when an error carries no usable text.
const FallbackMessage = "An unexpected error occurred"

const maxErrorBody = 1 << 20

// APIError is an error response received from the API.
type APIError struct {
	// Envelope is the decoded body, or one synthesized from the status line
	// when the body was not a valid envelope.
	Envelope errors.Envelope
	// StatusCode is the transport status.
	StatusCode int
	// Malformed reports that the body failed the envelope schema.
	Malformed bool
	// RetryAfter is the parsed Retry-After header, zero when absent.
	RetryAfter time.Duration
	// Body is the raw response body.
	Body []byte
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("api error %s (HTTP %d): %s", e.Envelope.ErrorCode, e.StatusCode, e.Envelope.Message)
}

// Code returns the envelope's errorCode.
func (e *APIError) Code() errors.Key { return e.Envelope.ErrorCode }

// Retryable reports whether repeating the request may succeed.
func (e *APIError) Retryable() bool {
	switch e.StatusCode {
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// FieldErrors maps each invalid field path to its first message, the shape
// form renderers need.
func (e *APIError) FieldErrors() map[string]string {
	if len(e.Envelope.Errors) == 0 {
		return nil
	}
	out := make(map[string]string, len(e.Envelope.Errors))
	for _, issue := range e.Envelope.Errors {
		if _, seen := out[issue.Field]; !seen {
			out[issue.Field] = issue.Message
		}
	}
	return out
}

// Decode returns nil for 2xx responses and an *APIError otherwise. The body
// is consumed and closed. The returned error is set only when the body
// cannot be read.
func Decode(resp *http.Response) (*APIError, error) {
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return nil, fmt.Errorf("reading error body: %w", err)
	}

	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		RetryAfter: retryAfter(resp.Header.Get("Retry-After")),
		Body:       body,
	}
	if schema.ValidateJSON(body) == nil && json.Unmarshal(body, &apiErr.Envelope) == nil {
		return apiErr, nil
	}

	apiErr.Malformed = true
	apiErr.Envelope = synthesize(resp)
	return apiErr, nil
}

// synthesize builds an envelope from the status line. It borrows a
// registered code only when exactly one entry has that status, so an
// ambiguous status never claims a domain condition the server did not raise.
func synthesize(resp *http.Response) errors.Envelope {
	status := resp.StatusCode
	if status < schema.MinStatusCode || status > schema.MaxStatusCode {
		status = http.StatusInternalServerError
	}
	env := errors.Envelope{
		StatusCode: status,
		ErrorCode:  "UNKNOWN_ERROR",
		Message:    http.StatusText(status),
		ID:         resp.Header.Get("X-Error-Id"),
	}
	if key, ok := uniqueKeyFor(status); ok {
		env.ErrorCode = key
	}
	if env.Message == "" {
		env.Message = FallbackMessage
	}
	return env
}

func uniqueKeyFor(status int) (errors.Key, bool) {
	var (
		found errors.Key
		n     int
	)
	for _, key := range errors.Default.Keys() {
		if entry, _ := errors.Default.Entry(key); entry.Status() == status {
			found = key
			n++
		}
	}
	return found, n == 1
}

func retryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}

// AsAPIError extracts an *APIError from err's chain.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsAuth reports a 401 response.
func IsAuth(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.StatusCode == http.StatusUnauthorized
}

// IsNotFound reports a 404 response.
func IsNotFound(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.StatusCode == http.StatusNotFound
}

// IsRetryable reports errors worth retrying: retryable responses and
// network failures.
func IsRetryable(err error) bool {
	if apiErr, ok := AsAPIError(err); ok {
		return apiErr.Retryable()
	}
	return IsNetwork(err)
}

// IsNetwork reports failures to reach the API: refused or reset
// connections, DNS errors and transport timeouts.
func IsNetwork(err error) bool {
	if err == nil {
		return false
	}
	if _, ok := AsAPIError(err); ok {
		return false
	}
	if stderrors.Is(err, syscall.ECONNREFUSED) || stderrors.Is(err, syscall.ECONNRESET) {
		return true
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return stderrors.As(err, &netErr)
}

// Message returns the text to show a user for err.
func Message(err error) string {
	if err == nil {
		return FallbackMessage
	}
	if apiErr, ok := AsAPIError(err); ok {
		if apiErr.Envelope.Message != "" {
			return apiErr.Envelope.Message
		}
		return FallbackMessage
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return FallbackMessage
}
