// File: internal/browser/manager.go
package browser

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/inventa-tools/inventa-cli/api/schemas"
	"github.com/inventa-tools/inventa-cli/internal/config"
)

// Manager owns the browser process lifecycle. Initialization is deferred
// until the first page is requested, and Shutdown is safe to call on every
// exit path whether or not a browser was ever launched.
type Manager struct {
	cfg *config.Config
	log *zap.Logger

	allocCtx      context.Context
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc

	initOnce sync.Once
	initErr  error
}

// NewManager creates a new browser manager. No browser is launched yet.
func NewManager(cfg *config.Config, logger *zap.Logger) *Manager {
	return &Manager{
		cfg: cfg,
		log: logger.Named("browser_manager"),
	}
}

// initialize builds the exec allocator and launches the Chromium instance.
func (m *Manager) initialize() error {
	m.initOnce.Do(func() {
		m.log.Info("Launching browser.", zap.Bool("headless", m.cfg.Browser.Headless))

		// The allocator is parented to Background so that tab contexts, not
		// request contexts, bound the process lifetime. Shutdown tears it down.
		m.allocCtx, m.allocCancel = chromedp.NewExecAllocator(
			context.Background(), m.allocatorOptions()...)

		m.browserCtx, m.browserCancel = chromedp.NewContext(m.allocCtx,
			chromedp.WithLogf(m.log.Sugar().Debugf),
			chromedp.WithErrorf(m.log.Sugar().Errorf),
		)

		// Start the browser process now so failures surface here rather than
		// on the first page operation.
		if err := chromedp.Run(m.browserCtx); err != nil {
			m.initErr = fmt.Errorf("failed to launch browser instance: %w", err)
			m.browserCancel()
			m.allocCancel()
		}
	})
	return m.initErr
}

// allocatorOptions merges the stability defaults with user configuration.
func (m *Manager) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{},
		chromedp.DefaultExecAllocatorOptions[:]...)

	opts = append(opts,
		chromedp.Flag("headless", m.cfg.Browser.Headless),
		// Defaults often necessary for stability, especially in containers.
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.NoSandbox,
	)

	if m.cfg.Browser.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(m.cfg.Browser.ExecPath))
	}

	for _, arg := range m.cfg.Browser.Args {
		name := strings.TrimLeft(arg, "-")
		if name == "" {
			continue
		}
		if k, v, ok := strings.Cut(name, "="); ok {
			opts = append(opts, chromedp.Flag(k, v))
		} else {
			opts = append(opts, chromedp.Flag(name, true))
		}
	}
	return opts
}

// NewPage opens a fresh tab and returns it as a page driver together with a
// release function. The release function must be called on every exit path.
func (m *Manager) NewPage(ctx context.Context) (schemas.PageDriver, func(), error) {
	if err := m.initialize(); err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	tabCtx, tabCancel := chromedp.NewContext(m.browserCtx)

	tracker := newIdleTracker()
	// Register the listener before the target exists so no events are missed.
	chromedp.ListenTarget(tabCtx, tracker.handle)

	if err := chromedp.Run(tabCtx, network.Enable()); err != nil {
		tabCancel()
		return nil, nil, fmt.Errorf("failed to open page: %w", err)
	}

	page := &Page{
		ctx:        tabCtx,
		log:        m.log.Named("page"),
		idle:       tracker,
		quiet:      m.cfg.Network.IdleQuiet,
		navTimeout: m.cfg.Network.NavigationTimeout,
	}

	m.log.Debug("Page opened.")
	return page, func() { tabCancel() }, nil
}

// Shutdown closes the browser process and the allocator.
func (m *Manager) Shutdown(ctx context.Context) error {
	if m.browserCtx == nil {
		m.log.Debug("Manager never initialized, nothing to shut down.")
		return nil
	}
	m.log.Info("Shutting down browser.")

	done := make(chan error, 1)
	go func() {
		// Cancel waits for the browser process to exit cleanly.
		done <- chromedp.Cancel(m.browserCtx)
	}()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		err = ctx.Err()
		m.log.Warn("Timeout waiting for browser to close, forcing shutdown.", zap.Error(err))
	}

	m.browserCancel()
	m.allocCancel()
	if err != nil {
		return fmt.Errorf("browser shutdown: %w", err)
	}
	return nil
}
