package searchspace

import (
	"fmt"
	"strings"
)

// ResultReason is the verdict of a requirement check together with the
// reasons it failed.
//
// The zero value is a passing result. Reasons carry the dotted path of the
// field that produced them, e.g. "0.core_count: ...".
type ResultReason struct {
	failed  bool
	reasons []reason
}

type reason struct {
	path    string
	message string
}

func (r reason) String() string {
	if r.path == "" {
		return r.message
	}
	return r.path + ": " + r.message
}

// Result reports whether the check passed.
func (r ResultReason) Result() bool {
	return !r.failed
}

// Reasons returns the failure reasons in the order they were added.
func (r ResultReason) Reasons() []string {
	out := make([]string, 0, len(r.reasons))
	for _, item := range r.reasons {
		out = append(out, item.String())
	}
	return out
}

// AddReason marks the result as failed and records why.
func (r *ResultReason) AddReason(message string) {
	r.failed = true
	r.reasons = append(r.reasons, reason{message: message})
}

// AddReasonf is AddReason with formatting.
func (r *ResultReason) AddReasonf(format string, args ...any) {
	r.AddReason(fmt.Sprintf(format, args...))
}

// Merge ANDs the verdict of other into r and appends its reasons under field.
// A passing other is a no-op.
func (r *ResultReason) Merge(other ResultReason, field string) {
	if other.Result() {
		return
	}
	r.failed = true
	for _, item := range other.reasons {
		r.reasons = append(r.reasons, reason{
			path:    joinPath(field, item.path),
			message: item.message,
		})
	}
}

// Err converts a failing result into an error wrapping ErrNotMeetRequirement.
func (r ResultReason) Err() error {
	if r.Result() {
		return nil
	}
	if len(r.reasons) == 0 {
		return ErrNotMeetRequirement
	}
	return fmt.Errorf("%w: %s", ErrNotMeetRequirement, strings.Join(r.Reasons(), "; "))
}

func (r ResultReason) String() string {
	if r.Result() {
		return "matched"
	}
	return "not matched: " + strings.Join(r.Reasons(), "; ")
}

func joinPath(parent, child string) string {
	switch {
	case parent == "":
		return child
	case child == "":
		return parent
	default:
		return parent + "." + child
	}
}
