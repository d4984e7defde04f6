// File: internal/browser/page.go
package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/storage"
	"github.com/chromedp/chromedp"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/inventa-tools/inventa-cli/api/schemas"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Page drives a single Chromium tab over CDP. It implements
// schemas.PageDriver. All operations are strictly sequential; the tab is
// never accessed concurrently.
type Page struct {
	ctx        context.Context
	log        *zap.Logger
	idle       *idleTracker
	quiet      time.Duration
	navTimeout time.Duration
}

var _ schemas.PageDriver = (*Page)(nil)

// queryOpt picks the query mode from the selector shape: XPath for "//" or
// "(" prefixes, CSS otherwise.
func queryOpt(selector string) chromedp.QueryOption {
	if strings.HasPrefix(selector, "//") || strings.HasPrefix(selector, "(") {
		return chromedp.BySearch
	}
	return chromedp.ByQuery
}

// run executes actions against the tab, honoring both the tab lifecycle and
// the caller's context, with an optional per-operation timeout.
func (p *Page) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	opCtx, opCancel := combineContext(p.ctx, ctx)
	defer opCancel()

	if timeout > 0 {
		var tcancel context.CancelFunc
		opCtx, tcancel = context.WithTimeout(opCtx, timeout)
		defer tcancel()
	}
	return chromedp.Run(opCtx, actions...)
}

// Navigate loads the URL and waits for the load event.
func (p *Page) Navigate(ctx context.Context, url string) error {
	p.log.Info("Navigating", zap.String("url", url))
	if err := p.run(ctx, p.navTimeout, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

// WaitVisible waits up to timeout for a visible match. Timeout expiry is a
// normal outcome: (false, nil).
func (p *Page) WaitVisible(ctx context.Context, selector string, timeout time.Duration) (bool, error) {
	err := p.run(ctx, timeout, chromedp.WaitVisible(selector, queryOpt(selector)))
	if err == nil {
		return true, nil
	}
	// The bounded wait expiring means "absent", as long as neither the caller
	// nor the tab itself was canceled.
	if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil && p.ctx.Err() == nil {
		return false, nil
	}
	return false, fmt.Errorf("wait for %q: %w", selector, err)
}

// Exists reports a current match without waiting.
func (p *Page) Exists(ctx context.Context, selector string) (bool, error) {
	var nodes []*cdp.Node
	err := p.run(ctx, p.navTimeout,
		chromedp.Nodes(selector, &nodes, queryOpt(selector), chromedp.AtLeast(0)))
	if err != nil {
		return false, fmt.Errorf("query %q: %w", selector, err)
	}
	return len(nodes) > 0, nil
}

// Click clicks the first visible element matching the selector.
func (p *Page) Click(ctx context.Context, selector string) error {
	if err := p.run(ctx, p.navTimeout,
		chromedp.Click(selector, queryOpt(selector), chromedp.NodeVisible)); err != nil {
		return fmt.Errorf("click %q: %w", selector, err)
	}
	return nil
}

// Fill clears the element and types the value key by key.
func (p *Page) Fill(ctx context.Context, selector, value string) error {
	opt := queryOpt(selector)
	if err := p.run(ctx, p.navTimeout,
		chromedp.Clear(selector, opt),
		chromedp.SendKeys(selector, value, opt),
	); err != nil {
		return fmt.Errorf("fill %q: %w", selector, err)
	}
	return nil
}

// Attribute reads an attribute of the first matching element.
func (p *Page) Attribute(ctx context.Context, selector, name string) (string, bool, error) {
	var value string
	var ok bool
	err := p.run(ctx, p.navTimeout,
		chromedp.AttributeValue(selector, name, &value, &ok, queryOpt(selector)))
	if err != nil {
		return "", false, fmt.Errorf("attribute %q of %q: %w", name, selector, err)
	}
	return value, ok, nil
}

// Eval evaluates a JavaScript expression and unmarshals the result into out.
func (p *Page) Eval(ctx context.Context, expr string, out any) error {
	if err := p.run(ctx, p.navTimeout, chromedp.Evaluate(expr, out)); err != nil {
		return fmt.Errorf("evaluate: %w", err)
	}
	return nil
}

// Settle blocks for a fixed duration. The settle barrier after actions whose
// rendering the page does not signal.
func (p *Page) Settle(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-p.ctx.Done():
		return p.ctx.Err()
	}
}

// WaitNetworkIdle waits for the in-flight request count to stay at zero for
// the configured quiet period, bounded by timeout.
func (p *Page) WaitNetworkIdle(ctx context.Context, timeout time.Duration) error {
	opCtx, opCancel := combineContext(p.ctx, ctx)
	defer opCancel()
	return p.idle.Wait(opCtx, p.quiet, timeout)
}

// Screenshot captures the viewport to path.
func (p *Page) Screenshot(ctx context.Context, path string) error {
	var buf []byte
	if err := p.run(ctx, p.navTimeout, chromedp.CaptureScreenshot(&buf)); err != nil {
		return fmt.Errorf("capture screenshot: %w", err)
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return fmt.Errorf("write screenshot %s: %w", path, err)
	}
	return nil
}

// Content returns the serialized HTML of the current document.
func (p *Page) Content(ctx context.Context) (string, error) {
	var html string
	if err := p.run(ctx, p.navTimeout, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("read page content: %w", err)
	}
	return html, nil
}

// SetCookies installs cookies into the browser. Works before navigation, so
// a restored session takes effect on the first page load.
func (p *Page) SetCookies(ctx context.Context, cookies []schemas.Cookie) error {
	params := make([]*network.CookieParam, 0, len(cookies))
	for _, c := range cookies {
		param := &network.CookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Secure:   c.Secure,
			HTTPOnly: c.HTTPOnly,
			SameSite: network.CookieSameSite(c.SameSite),
		}
		if c.Expires > 0 {
			t := cdp.TimeSinceEpoch(time.Unix(int64(c.Expires), 0))
			param.Expires = &t
		}
		params = append(params, param)
	}

	err := p.run(ctx, p.navTimeout, chromedp.ActionFunc(func(cctx context.Context) error {
		return storage.SetCookies(params).Do(cctx)
	}))
	if err != nil {
		return fmt.Errorf("set cookies: %w", err)
	}
	return nil
}

// originStorage is the shape returned by the local storage capture script.
type originStorage struct {
	Origin  string                 `json:"origin"`
	Entries []schemas.StorageEntry `json:"entries"`
}

const captureStorageScript = `(() => {
	const entries = [];
	for (let i = 0; i < localStorage.length; i++) {
		const k = localStorage.key(i);
		entries.push({name: k, value: localStorage.getItem(k)});
	}
	return {origin: window.location.origin, entries: entries};
})()`

// SessionState captures cookies plus the current origin's local storage.
func (p *Page) SessionState(ctx context.Context) (*schemas.SessionState, error) {
	state := &schemas.SessionState{}

	err := p.run(ctx, p.navTimeout, chromedp.ActionFunc(func(cctx context.Context) error {
		cookies, err := storage.GetCookies().Do(cctx)
		if err != nil {
			return err
		}
		for _, c := range cookies {
			state.Cookies = append(state.Cookies, schemas.Cookie{
				Name:     c.Name,
				Value:    c.Value,
				Domain:   c.Domain,
				Path:     c.Path,
				Expires:  c.Expires,
				HTTPOnly: c.HTTPOnly,
				Secure:   c.Secure,
				SameSite: string(c.SameSite),
			})
		}
		return nil
	}))
	if err != nil {
		return nil, fmt.Errorf("capture cookies: %w", err)
	}

	var ls originStorage
	if err := p.Eval(ctx, captureStorageScript, &ls); err != nil {
		return nil, fmt.Errorf("capture local storage: %w", err)
	}
	if ls.Origin != "" && ls.Origin != "null" && len(ls.Entries) > 0 {
		state.Origins = append(state.Origins, schemas.OriginState{
			Origin:       ls.Origin,
			LocalStorage: ls.Entries,
		})
	}
	return state, nil
}

// SeedOriginStorage writes the stored local storage entries whose origin
// matches the page's current origin. Entries for other origins are skipped;
// the returned count tells the caller whether a reload is worthwhile.
func (p *Page) SeedOriginStorage(ctx context.Context, state *schemas.SessionState) (int, error) {
	if state == nil || len(state.Origins) == 0 {
		return 0, nil
	}

	var current string
	if err := p.Eval(ctx, "window.location.origin", &current); err != nil {
		return 0, err
	}

	applied := 0
	for _, o := range state.Origins {
		if o.Origin != current || len(o.LocalStorage) == 0 {
			continue
		}
		payload, err := json.Marshal(o.LocalStorage)
		if err != nil {
			return applied, fmt.Errorf("encode storage entries: %w", err)
		}
		script := fmt.Sprintf(
			`((entries) => { for (const e of entries) localStorage.setItem(e.name, e.value); })(%s)`,
			payload)
		if err := p.Eval(ctx, script, nil); err != nil {
			return applied, fmt.Errorf("seed local storage for %s: %w", o.Origin, err)
		}
		applied += len(o.LocalStorage)
		p.log.Debug("Seeded local storage.",
			zap.String("origin", o.Origin), zap.Int("entries", len(o.LocalStorage)))
	}
	return applied, nil
}

// combineContext derives an operation context from the tab context that is
// additionally canceled when the caller's context is canceled. The tab
// context must stay the parent so CDP internals remain reachable.
func combineContext(parentCtx, secondaryCtx context.Context) (context.Context, context.CancelFunc) {
	combinedCtx, cancel := context.WithCancel(parentCtx)

	go func() {
		select {
		case <-secondaryCtx.Done():
			cancel()
		case <-combinedCtx.Done():
		}
	}()

	return combinedCtx, cancel
}
