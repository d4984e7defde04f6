// File: api/schemas/components.go
// Description: Interfaces for the workflow components. The orchestrator is
// injected with these, making it decoupled and testable.

package schemas

import "context"

// Browser provisions page drivers on demand.
type Browser interface {
	// NewPage opens a fresh tab and returns its driver together with a
	// release func that closes the tab.
	NewPage(ctx context.Context) (PageDriver, func(), error)
}

// SessionStore restores and persists authentication state across runs.
// Restore and SeedStorage report applicability rather than failure; a
// missing or unreadable session file simply means starting fresh.
type SessionStore interface {
	Restore(ctx context.Context, page PageDriver) bool
	SeedStorage(ctx context.Context, page PageDriver) bool
	Persist(ctx context.Context, page PageDriver) error
}

// Authenticator detects the login form and performs credential submission.
type Authenticator interface {
	IsLoginPage(ctx context.Context, page PageDriver) bool
	Authenticate(ctx context.Context, page PageDriver, username, password string) error
}

// Launcher dismisses the challenge entry gate when present. It never fails
// the run; an absent gate is the common case.
type Launcher interface {
	Dismiss(ctx context.Context, page PageDriver)
}

// Navigator drives the page to the product table view.
type Navigator interface {
	ToProductTable(ctx context.Context, page PageDriver) error
}

// Extractor reads the result set from the prepared page.
type Extractor interface {
	Extract(ctx context.Context, page PageDriver) (ResultSet, error)
}

// ResultWriter persists a result set and returns the output location.
type ResultWriter interface {
	Write(results ResultSet) (string, error)
}
