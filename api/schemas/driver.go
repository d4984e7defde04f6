// File: api/schemas/driver.go
package schemas

import (
	"context"
	"time"
)

// PageDriver is the capability surface the extraction workflow needs from a
// live page. The production implementation drives a Chromium tab over CDP;
// tests substitute an in-memory fake.
//
// Selectors starting with "//" or "(" are treated as XPath queries, anything
// else as CSS.
type PageDriver interface {
	// Navigate loads the given URL and waits for the load event.
	Navigate(ctx context.Context, url string) error

	// WaitVisible waits up to timeout for the selector to match a visible
	// element. Expiry of the timeout is a normal outcome reported as
	// (false, nil); an error is returned only when the driver itself fails.
	WaitVisible(ctx context.Context, selector string, timeout time.Duration) (bool, error)

	// Exists reports whether the selector currently matches at least one
	// element, without waiting.
	Exists(ctx context.Context, selector string) (bool, error)

	// Click clicks the first visible element matching the selector.
	Click(ctx context.Context, selector string) error

	// Fill clears the element matching the selector and types the value.
	Fill(ctx context.Context, selector, value string) error

	// Attribute returns the named attribute of the first matching element.
	// ok is false when the attribute is not present.
	Attribute(ctx context.Context, selector, name string) (value string, ok bool, err error)

	// Eval evaluates a JavaScript expression on the page and unmarshals the
	// result into out.
	Eval(ctx context.Context, expr string, out any) error

	// Settle blocks for a fixed duration, yielding early only on context
	// cancellation. This is the settle barrier after actions whose rendering
	// completes asynchronously.
	Settle(ctx context.Context, d time.Duration) error

	// WaitNetworkIdle waits until no request has been in flight for the
	// driver's configured quiet period, bounded by timeout. Expiry of the
	// bound is not an error.
	WaitNetworkIdle(ctx context.Context, timeout time.Duration) error

	// Screenshot captures the viewport to the given file path.
	Screenshot(ctx context.Context, path string) error

	// Content returns the full serialized HTML of the current page.
	Content(ctx context.Context) (string, error)

	// SetCookies installs cookies into the browser. Usable before the first
	// navigation.
	SetCookies(ctx context.Context, cookies []Cookie) error

	// SeedOriginStorage writes the local storage entries of the state whose
	// origin matches the current page origin. It reports how many entries
	// were applied; zero means no stored origin matched.
	SeedOriginStorage(ctx context.Context, state *SessionState) (int, error)

	// SessionState captures cookies plus the current origin's local storage.
	SessionState(ctx context.Context) (*SessionState, error)
}
