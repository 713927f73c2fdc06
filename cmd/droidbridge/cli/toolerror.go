// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import "fmt"

// ErrorCategory classifies tool errors so that MCP clients can decide
// (fix input, escalate, report) without parsing message text.
type ErrorCategory string

const (
	// CategoryValidation: the caller provided invalid input or must
	// narrow it (missing parameter, ambiguous device). Fix and retry.
	CategoryValidation ErrorCategory = "validation"

	// CategoryNotFound: a referenced device, file or resource does not
	// exist. Retrying with the same parameters will not help.
	CategoryNotFound ErrorCategory = "not_found"

	// CategoryForbidden: the host refused the operation (unwritable
	// directory, unsupported clipboard platform).
	CategoryForbidden ErrorCategory = "forbidden"

	// CategoryConflict: the operation conflicts with existing state.
	CategoryConflict ErrorCategory = "conflict"

	// CategoryTransient: a temporary failure that may succeed later.
	CategoryTransient ErrorCategory = "transient"

	// CategoryInternal: an unexpected failure of the bridge, a host
	// utility or droidbridge itself.
	CategoryInternal ErrorCategory = "internal"
)

// ToolError is a categorized error returned by commands. The MCP server
// reports Category and Code alongside the human-readable text.
type ToolError struct {
	Category ErrorCategory

	// Code is a finer-grained machine-readable identifier within the
	// category (for example "AmbiguousTarget"). Optional.
	Code string

	Err error
}

// Error returns the underlying message. Category and Code travel in
// the MCP errorInfo field, not in the text.
func (e *ToolError) Error() string { return e.Err.Error() }

func (e *ToolError) Unwrap() error { return e.Err }

// Retryable reports whether repeating the same call might succeed.
func (e *ToolError) Retryable() bool { return e.Category == CategoryTransient }

// WithCode sets Code and returns the receiver for chaining.
func (e *ToolError) WithCode(code string) *ToolError {
	e.Code = code
	return e
}

// Validation creates a validation error: the caller provided bad input.
func Validation(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryValidation, Err: fmt.Errorf(format, args...)}
}

// NotFound creates a not-found error.
func NotFound(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryNotFound, Err: fmt.Errorf(format, args...)}
}

// Forbidden creates a forbidden error.
func Forbidden(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryForbidden, Err: fmt.Errorf(format, args...)}
}

// Internal creates an internal error.
func Internal(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryInternal, Err: fmt.Errorf(format, args...)}
}
