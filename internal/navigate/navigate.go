// File: internal/navigate/navigate.go

// Package navigate walks the fixed affordance sequence that leads from the
// post-login landing page to the full product table.
package navigate

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/inventa-tools/inventa-cli/api/schemas"
)

const (
	launchSelector = `//button[contains(., 'Launch Challenge')]`

	launchIdleTimeout = 10 * time.Second
	launchSettle      = 3 * time.Second

	// Diagnostic artifact names, fixed for parity with existing tooling.
	finalStepShot  = "debug_screenshot.png"
	finalStepHTML  = "page_content.html"
	navFailureShot = "error_screenshot.png"
)

// Step is one state of the navigation machine: locate the affordance within
// a bounded wait, click it, then settle for a fixed delay. Optional steps
// tolerate absence; required steps abort the run.
type Step struct {
	Name     string
	Selector string
	Timeout  time.Duration
	Settle   time.Duration
	Optional bool
	// Final marks the last required step, whose failure additionally dumps
	// the raw page content.
	Final bool
}

// DefaultSteps reproduces the known UI shape of the target application.
func DefaultSteps() []Step {
	return []Step{
		{Name: "open options", Selector: `//button[contains(., 'Open Options')]`,
			Timeout: 10 * time.Second, Settle: 2 * time.Second},
		{Name: "inventory tab", Selector: `//button[contains(., 'Inventory')]`,
			Timeout: 10 * time.Second, Settle: 2 * time.Second},
		{Name: "detailed view", Selector: `//button[contains(., 'Access Detailed View')]`,
			Timeout: 10 * time.Second, Settle: 2 * time.Second},
		// A transient dialog sometimes asks to confirm the choice; its absence
		// is normal.
		{Name: "detailed view dialog", Selector: `//div[@role='dialog']//div[contains(., 'Detailed View')]`,
			Timeout: 5 * time.Second, Optional: true},
		{Name: "show full product table", Selector: `//button[contains(., 'Show Full Product Table')]`,
			Timeout: 10 * time.Second, Settle: 5 * time.Second, Final: true},
	}
}

// Launcher dismisses the intermediate launch screen when it is present.
// Best effort and idempotent: nothing here ever fails the run.
type Launcher struct {
	log *zap.Logger
}

// NewLauncher creates a Launcher.
func NewLauncher(logger *zap.Logger) *Launcher {
	return &Launcher{log: logger.Named("launcher")}
}

// Dismiss clicks the launch affordance if present and waits for the page to
// quiet down. If the affordance is absent the session is already past it.
func (l *Launcher) Dismiss(ctx context.Context, page schemas.PageDriver) {
	found, err := page.Exists(ctx, launchSelector)
	if err != nil {
		l.log.Info("Launch probe failed, assuming already in challenge.", zap.Error(err))
		return
	}
	if !found {
		l.log.Info("No launch button found, already in challenge.")
		return
	}

	l.log.Info("Launching challenge...")
	if err := page.Click(ctx, launchSelector); err != nil {
		l.log.Info("Launch click failed, continuing.", zap.Error(err))
		return
	}
	if err := page.WaitNetworkIdle(ctx, launchIdleTimeout); err != nil {
		l.log.Debug("Idle wait interrupted after launch.", zap.Error(err))
		return
	}
	if err := page.Settle(ctx, launchSettle); err != nil {
		l.log.Debug("Settle interrupted after launch.", zap.Error(err))
	}
}

// Navigator drives the linear affordance state machine.
type Navigator struct {
	steps   []Step
	diagDir string
	log     *zap.Logger
}

// New creates a Navigator over the given steps; nil steps means the default
// sequence.
func New(steps []Step, diagDir string, logger *zap.Logger) *Navigator {
	if steps == nil {
		steps = DefaultSteps()
	}
	return &Navigator{
		steps:   steps,
		diagDir: diagDir,
		log:     logger.Named("navigator"),
	}
}

// ToProductTable walks every step in order. A required step whose affordance
// never appears aborts the run with a NavError after diagnostics are
// captured; optional steps are skipped silently. There are no retries.
func (n *Navigator) ToProductTable(ctx context.Context, page schemas.PageDriver) error {
	n.log.Info("Navigating to product table...")

	for _, step := range n.steps {
		found, err := page.WaitVisible(ctx, step.Selector, step.Timeout)
		if err != nil {
			return n.fail(ctx, page, step, err)
		}
		if !found {
			if step.Optional {
				n.log.Info("Optional step absent, continuing.", zap.String("step", step.Name))
				continue
			}
			return n.fail(ctx, page, step, nil)
		}

		if err := page.Click(ctx, step.Selector); err != nil {
			return n.fail(ctx, page, step, err)
		}
		n.log.Info("Completed navigation step.", zap.String("step", step.Name))

		if step.Settle > 0 {
			if err := page.Settle(ctx, step.Settle); err != nil {
				return &schemas.NavError{Step: step.Name, Cause: err}
			}
		}
	}

	n.log.Info("Page loaded, continuing to data extraction.")
	return nil
}

// fail captures diagnostics for the failed required step. The final step
// additionally dumps the raw page content so the missing affordance can be
// located by hand.
func (n *Navigator) fail(ctx context.Context, page schemas.PageDriver, step Step, cause error) error {
	navErr := &schemas.NavError{Step: step.Name, Cause: cause}
	n.log.Error("Navigation failed.", zap.String("step", step.Name), zap.Error(navErr))

	shot := navFailureShot
	if step.Final {
		shot = finalStepShot
	}
	if err := page.Screenshot(ctx, filepath.Join(n.diagDir, shot)); err != nil {
		n.log.Debug("Could not capture navigation failure screenshot.", zap.Error(err))
	}

	if step.Final {
		if content, err := page.Content(ctx); err == nil {
			path := filepath.Join(n.diagDir, finalStepHTML)
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				n.log.Debug("Could not write page content dump.", zap.Error(err))
			}
		} else {
			n.log.Debug("Could not read page content for dump.", zap.Error(err))
		}
	}

	return navErr
}
