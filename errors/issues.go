package errors

import "strings"

// Issue is a single field-level validation complaint.
type Issue struct {
	// Path locates the offending property, outermost segment first.
	Path []string
	// Message is human-readable.
	Message string
	// Code names the validation rule that failed (e.g. "too_small").
	Code string
}

// IssueSource is satisfied by any validation result that exposes an ordered
// list of issues. Placing one under the "errors" meta key turns its issues
// into envelope field errors.
type IssueSource interface {
	Issues() []Issue
}

// FieldIssue is the wire form of an Issue.
type FieldIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// metaIssuesKey is the meta key inspected for an IssueSource.
const metaIssuesKey = "errors"

func issueSourceFrom(meta Meta) (IssueSource, bool) {
	if meta == nil {
		return nil, false
	}
	src, ok := meta[metaIssuesKey].(IssueSource)
	if !ok || src == nil {
		return nil, false
	}
	return src, true
}

// fieldIssues projects issues to their wire form. It returns nil for an
// empty list so the envelope omits the field.
func fieldIssues(src IssueSource) []FieldIssue {
	issues := src.Issues()
	if len(issues) == 0 {
		return nil
	}
	out := make([]FieldIssue, len(issues))
	for i, is := range issues {
		out[i] = FieldIssue{
			Field:   strings.Join(is.Path, "."),
			Message: is.Message,
			Code:    is.Code,
		}
	}
	return out
}
