// File: internal/orchestrator/orchestrator.go
// Description: Manages the high-level lifecycle of an extraction run. It is
// injected with fully configured components via interfaces, making it
// decoupled and testable.

package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/inventa-tools/inventa-cli/api/schemas"
	"github.com/inventa-tools/inventa-cli/internal/config"
)

const postSeedIdle = 10 * time.Second

// Orchestrator sequences session restore, authentication, navigation,
// extraction and reporting for one run.
type Orchestrator struct {
	cfg      *config.Config
	logger   *zap.Logger
	browser  schemas.Browser
	sessions schemas.SessionStore
	auth     schemas.Authenticator
	launcher schemas.Launcher
	nav      schemas.Navigator
	extract  schemas.Extractor
	writer   schemas.ResultWriter
}

// New creates a new Orchestrator with its dependencies provided as schemas.
func New(
	cfg *config.Config,
	logger *zap.Logger,
	browser schemas.Browser,
	sessions schemas.SessionStore,
	auth schemas.Authenticator,
	launcher schemas.Launcher,
	nav schemas.Navigator,
	extract schemas.Extractor,
	writer schemas.ResultWriter,
) (*Orchestrator, error) {
	if cfg == nil ||
		logger == nil ||
		browser == nil ||
		sessions == nil ||
		auth == nil ||
		launcher == nil ||
		nav == nil ||
		extract == nil ||
		writer == nil {
		return nil, fmt.Errorf("cannot initialize orchestrator with nil dependencies")
	}
	return &Orchestrator{
		cfg:      cfg,
		logger:   logger,
		browser:  browser,
		sessions: sessions,
		auth:     auth,
		launcher: launcher,
		nav:      nav,
		extract:  extract,
		writer:   writer,
	}, nil
}

// Run executes the full extraction workflow once and returns the path of the
// written result file.
func (o *Orchestrator) Run(ctx context.Context) (string, error) {
	runID := uuid.NewString()
	log := o.logger.With(zap.String("run_id", runID))
	log.Info("Starting extraction run.", zap.String("target", o.cfg.Target.BaseURL))

	page, release, err := o.browser.NewPage(ctx)
	if err != nil {
		return "", fmt.Errorf("open page: %w", err)
	}
	defer release()

	if err := o.prepareSession(ctx, page, log); err != nil {
		return "", err
	}

	o.launcher.Dismiss(ctx, page)

	if err := o.nav.ToProductTable(ctx, page); err != nil {
		return "", err
	}

	results, err := o.extract.Extract(ctx, page)
	if err != nil {
		return "", err
	}

	path, err := o.writer.Write(results)
	if err != nil {
		return "", fmt.Errorf("write results: %w", err)
	}

	log.Info("Extraction run complete.",
		zap.Int("records", len(results)), zap.String("output", path))
	return path, nil
}

// prepareSession brings the page to an authenticated state: cookies are
// applied before the first navigation, origin storage after it, and a fresh
// login runs only when no stored session survives the round trip.
func (o *Orchestrator) prepareSession(ctx context.Context, page schemas.PageDriver, log *zap.Logger) error {
	restored := o.sessions.Restore(ctx, page)

	if err := page.Navigate(ctx, o.cfg.Target.BaseURL); err != nil {
		return &schemas.NavError{Step: "open target", Cause: err}
	}

	if restored && o.sessions.SeedStorage(ctx, page) {
		// Reload so the application boots with the seeded storage in place.
		if err := page.Navigate(ctx, o.cfg.Target.BaseURL); err != nil {
			return &schemas.NavError{Step: "reload after session seed", Cause: err}
		}
		if err := page.WaitNetworkIdle(ctx, postSeedIdle); err != nil {
			return &schemas.NavError{Step: "reload after session seed", Cause: err}
		}
	}

	if restored && !o.auth.IsLoginPage(ctx, page) {
		log.Info("Using existing session.")
		return nil
	}

	log.Info("No usable session, authenticating.")
	if err := o.auth.Authenticate(ctx, page, o.cfg.Target.Username, o.cfg.Target.Password); err != nil {
		return err
	}
	if err := o.sessions.Persist(ctx, page); err != nil {
		// A failed save costs the next run a login, not this run its result.
		log.Warn("Could not persist session state.", zap.Error(err))
	}
	return nil
}
