// File: api/schemas/errors.go
package schemas

import "fmt"

// AuthError is fatal: credentials were rejected or the post-login marker
// never appeared. There is no retry.
type AuthError struct {
	Reason string
	Cause  error
}

func (e *AuthError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("authentication failed: %s: %v", e.Reason, e.Cause)
	}
	return fmt.Sprintf("authentication failed: %s", e.Reason)
}

func (e *AuthError) Unwrap() error { return e.Cause }

// NavError is fatal: a required UI affordance never appeared within its
// bounded wait.
type NavError struct {
	Step  string
	Cause error
}

func (e *NavError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("navigation failed at step %q: %v", e.Step, e.Cause)
	}
	return fmt.Sprintf("navigation failed at step %q: affordance never became visible", e.Step)
}

func (e *NavError) Unwrap() error { return e.Cause }

// ExtractError is fatal in table mode: the table's structure could not be
// read even though the structural probe found a table. Fallback mode never
// produces it.
type ExtractError struct {
	Page  int
	Cause error
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("table extraction failed on page %d: %v", e.Page, e.Cause)
}

func (e *ExtractError) Unwrap() error { return e.Cause }
