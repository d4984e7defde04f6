// File: internal/sessionstore/store.go

// Package sessionstore persists and restores browser authentication state so
// repeated runs can skip the interactive login. The state file uses the
// storage-state layout (cookies + per-origin local storage) and is read or
// written whole in a single operation.
package sessionstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/inventa-tools/inventa-cli/api/schemas"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// emptySessionShot is written when a captured state turns out empty, to make
// the failed login diagnosable.
const emptySessionShot = "empty_session_debug.png"

// Store loads and saves schemas.SessionState for one session file.
type Store struct {
	path    string
	diagDir string
	log     *zap.Logger

	// state restored from disk, kept so origin storage can be seeded after
	// the first navigation.
	state *schemas.SessionState
}

// New creates a store for the given session file path. Diagnostic artifacts
// go to diagDir.
func New(path, diagDir string, logger *zap.Logger) *Store {
	return &Store{
		path:    path,
		diagDir: diagDir,
		log:     logger.Named("session"),
	}
}

// Restore loads a previously saved state and installs its cookies into the
// page. It returns whether a state was found and applied; validity of the
// session is decided later by the login probe. Read and parse failures are
// downgraded to "no session".
func (s *Store) Restore(ctx context.Context, page schemas.PageDriver) bool {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Error("Failed to read session file.", zap.String("path", s.path), zap.Error(err))
		}
		return false
	}

	var state schemas.SessionState
	if err := json.Unmarshal(data, &state); err != nil {
		s.log.Error("Failed to parse session file.", zap.String("path", s.path), zap.Error(err))
		return false
	}

	if err := page.SetCookies(ctx, state.Cookies); err != nil {
		s.log.Error("Failed to apply session cookies.", zap.Error(err))
		return false
	}

	s.state = &state
	s.log.Info("Session loaded from file.",
		zap.String("path", s.path), zap.Int("cookies", len(state.Cookies)))
	return true
}

// SeedStorage applies the restored local storage entries for the page's
// current origin. It reports whether any entries could apply, in which case
// the caller should reload so the application boots with the seeded state.
// Only meaningful after Restore returned true and the page has navigated.
func (s *Store) SeedStorage(ctx context.Context, page schemas.PageDriver) bool {
	if s.state == nil || len(s.state.Origins) == 0 {
		return false
	}
	applied, err := page.SeedOriginStorage(ctx, s.state)
	if err != nil {
		s.log.Warn("Failed to seed origin storage.", zap.Error(err))
		return false
	}
	if applied == 0 {
		s.log.Debug("No stored origin matched the current page, nothing seeded.")
		return false
	}
	return true
}

// Persist captures the page's current session state and writes it to the
// session file. An empty capture is never written: it almost always means the
// login failed upstream, so it is flagged with a warning and a screenshot
// instead.
func (s *Store) Persist(ctx context.Context, page schemas.PageDriver) error {
	state, err := page.SessionState(ctx)
	if err != nil {
		return fmt.Errorf("failed to capture session state: %w", err)
	}

	if state.Empty() {
		s.log.Warn("Session data is empty. Login may have failed.")
		shot := filepath.Join(s.diagDir, emptySessionShot)
		if err := page.Screenshot(ctx, shot); err != nil {
			s.log.Debug("Could not capture empty-session screenshot.", zap.Error(err))
		}
		return nil
	}

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode session state: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}

	s.state = state
	s.log.Info("Session saved to file.", zap.String("path", s.path))
	return nil
}
