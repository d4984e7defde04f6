// File: internal/auth/auth.go

// Package auth detects the login form and performs the credential exchange.
package auth

import (
	"context"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/inventa-tools/inventa-cli/api/schemas"
)

const (
	emailSelector    = `input[type='email']`
	passwordSelector = `input[type='password']`
	submitSelector   = `button[type='submit']`
	// The launch affordance doubles as the post-login marker.
	postLoginMarker = `//button[contains(., 'Launch Challenge')]`

	loginProbeTimeout = 5 * time.Second
	fieldTimeout      = 10 * time.Second
	markerTimeout     = 15 * time.Second

	authErrorShot = "auth_error.png"
)

// Authenticator fills and submits the login form.
type Authenticator struct {
	log     *zap.Logger
	diagDir string
}

// New creates an Authenticator writing diagnostics to diagDir.
func New(diagDir string, logger *zap.Logger) *Authenticator {
	return &Authenticator{
		log:     logger.Named("auth"),
		diagDir: diagDir,
	}
}

// IsLoginPage probes for the login-identifying email input with a bounded
// wait. Absence is a normal outcome, not an error.
func (a *Authenticator) IsLoginPage(ctx context.Context, page schemas.PageDriver) bool {
	found, err := page.WaitVisible(ctx, emailSelector, loginProbeTimeout)
	if err != nil {
		a.log.Debug("Login probe errored, treating as not a login page.", zap.Error(err))
		return false
	}
	return found
}

// Authenticate submits the credentials and waits for the post-login marker.
// Any failure is fatal to the run: a diagnostic screenshot is captured and a
// typed error returned. There is no retry.
func (a *Authenticator) Authenticate(ctx context.Context, page schemas.PageDriver, username, password string) error {
	a.log.Info("Authenticating...")

	if err := a.submitCredentials(ctx, page, username, password); err != nil {
		return a.fail(ctx, page, err)
	}

	found, err := page.WaitVisible(ctx, postLoginMarker, markerTimeout)
	if err != nil {
		return a.fail(ctx, page, &schemas.AuthError{Reason: "waiting for post-login marker", Cause: err})
	}
	if !found {
		return a.fail(ctx, page, &schemas.AuthError{Reason: "post-login marker never appeared; credentials likely rejected"})
	}

	a.log.Info("Authentication successful.")
	return nil
}

func (a *Authenticator) submitCredentials(ctx context.Context, page schemas.PageDriver, username, password string) error {
	for _, sel := range []string{emailSelector, passwordSelector} {
		found, err := page.WaitVisible(ctx, sel, fieldTimeout)
		if err != nil {
			return &schemas.AuthError{Reason: "waiting for login fields", Cause: err}
		}
		if !found {
			return &schemas.AuthError{Reason: "login field never became visible: " + sel}
		}
	}

	if err := page.Fill(ctx, emailSelector, username); err != nil {
		return &schemas.AuthError{Reason: "filling email field", Cause: err}
	}
	if err := page.Fill(ctx, passwordSelector, password); err != nil {
		return &schemas.AuthError{Reason: "filling password field", Cause: err}
	}
	if err := page.Click(ctx, submitSelector); err != nil {
		return &schemas.AuthError{Reason: "submitting login form", Cause: err}
	}
	return nil
}

// fail captures the diagnostic screenshot before surfacing the error.
func (a *Authenticator) fail(ctx context.Context, page schemas.PageDriver, err error) error {
	a.log.Error("Authentication failed.", zap.Error(err))
	shot := filepath.Join(a.diagDir, authErrorShot)
	if shotErr := page.Screenshot(ctx, shot); shotErr != nil {
		a.log.Debug("Could not capture auth failure screenshot.", zap.Error(shotErr))
	}
	return err
}
