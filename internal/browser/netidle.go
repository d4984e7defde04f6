// File: internal/browser/netidle.go
package browser

import (
	"context"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
)

// idleTracker counts in-flight network requests from CDP events and reports
// when the page has been quiet for a configured period. The target UI does
// not signal render completion reliably, so idle detection is best effort:
// expiry of the overall bound is treated as "idle enough", not as a failure.
type idleTracker struct {
	mu       sync.Mutex
	inflight map[network.RequestID]struct{}
	last     time.Time
}

func newIdleTracker() *idleTracker {
	return &idleTracker{
		inflight: make(map[network.RequestID]struct{}),
		last:     time.Now(),
	}
}

// handle consumes CDP target events. Registered via chromedp.ListenTarget.
func (t *idleTracker) handle(ev interface{}) {
	switch e := ev.(type) {
	case *network.EventRequestWillBeSent:
		t.mu.Lock()
		t.inflight[e.RequestID] = struct{}{}
		t.last = time.Now()
		t.mu.Unlock()
	case *network.EventLoadingFinished:
		t.finish(e.RequestID)
	case *network.EventLoadingFailed:
		t.finish(e.RequestID)
	}
}

func (t *idleTracker) finish(id network.RequestID) {
	t.mu.Lock()
	delete(t.inflight, id)
	t.last = time.Now()
	t.mu.Unlock()
}

// quietFor reports whether no request has been in flight for at least d.
func (t *idleTracker) quietFor(d time.Duration) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.inflight) == 0 && time.Since(t.last) >= d
}

// Wait blocks until the network has been quiet for the quiet period, the
// bound expires (not an error), or ctx is canceled.
func (t *idleTracker) Wait(ctx context.Context, quiet, timeout time.Duration) error {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return nil
		case <-tick.C:
			if t.quietFor(quiet) {
				return nil
			}
		}
	}
}
