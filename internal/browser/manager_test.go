// File: internal/browser/manager_test.go
package browser

import (
	"context"
	"testing"

	"github.com/chromedp/chromedp"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/inventa-tools/inventa-cli/internal/config"
)

func TestManagerShutdownWithoutInit(t *testing.T) {
	m := NewManager(config.NewDefaultConfig(), zap.NewNop())

	// Every exit path calls Shutdown, including ones reached before any page
	// was requested.
	assert.NoError(t, m.Shutdown(context.Background()))
	assert.NoError(t, m.Shutdown(context.Background()))
}

func TestAllocatorOptions(t *testing.T) {
	base := len(chromedp.DefaultExecAllocatorOptions)

	t.Run("defaults add the stability flags", func(t *testing.T) {
		m := NewManager(config.NewDefaultConfig(), zap.NewNop())
		assert.Len(t, m.allocatorOptions(), base+4)
	})

	t.Run("user args are parsed and appended", func(t *testing.T) {
		cfg := config.NewDefaultConfig()
		// Empty and dash-only entries are dropped.
		cfg.Browser.Args = []string{"--window-size=1280,800", "-incognito", "", "--"}

		m := NewManager(cfg, zap.NewNop())
		assert.Len(t, m.allocatorOptions(), base+4+2)
	})

	t.Run("exec path adds one option", func(t *testing.T) {
		cfg := config.NewDefaultConfig()
		cfg.Browser.ExecPath = "/usr/bin/chromium"

		m := NewManager(cfg, zap.NewNop())
		assert.Len(t, m.allocatorOptions(), base+5)
	})
}
