package goform

import (
	"fmt"
	"strings"
)

// ValidatorConflictError is returned by UpdateValidators when a field
// already has the kind of validator being attached.
type ValidatorConflictError struct {
	Field string
	Async bool
}

func (e *ValidatorConflictError) Error() string {
	kind := "validator"
	if e.Async {
		kind = "async validator"
	}
	return fmt.Sprintf("goform: %s already set for field %q", kind, e.Field)
}

// UnknownFieldError names a field the form does not have.
type UnknownFieldError struct {
	Field string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("goform: unknown field %q", e.Field)
}

// Severity separates blocking findings from warnings.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one flattened finding of a Report.
type Issue struct {
	Path     string   `json:"path"` // JSON Pointer (for example: /items/2/name).
	Code     string   `json:"code"` // Validation key such as "required".
	Severity Severity `json:"severity"`
	Message  string   `json:"message,omitempty"`
	// Params carries the validator payload (e.g. {"requiredLength":3}).
	Params any `json:"params,omitempty"`
}

// Issues is a list of findings that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	lim := min(len(iss), maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(b, "%s at %s", iss[i].Code, pathOrRoot(iss[i].Path))
	}
	if len(iss) > lim {
		fmt.Fprintf(b, "; ... (total %d)", len(iss))
	}
	return b.String()
}

// Filter returns the issues of the given severity.
func (iss Issues) Filter(s Severity) Issues {
	var out Issues
	for _, it := range iss {
		if it.Severity == s {
			out = append(out, it)
		}
	}
	return out
}

func pathOrRoot(p string) string {
	if p == "" {
		return "/"
	}
	return p
}
