// File: internal/config/config_test.go
package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, "https://hiring.idenhq.com/", cfg.Target.BaseURL)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, "session_data.json", cfg.Session.File)
	assert.Equal(t, 30*time.Second, cfg.Extract.RowTimeout)
	assert.Equal(t, time.Second, cfg.Extract.ProbeTimeout)
	assert.Equal(t, 0, cfg.Extract.MaxPages, "pagination should be unbounded by default")
	assert.Equal(t, 500*time.Millisecond, cfg.Network.IdleQuiet)
	assert.Equal(t, 60*time.Second, cfg.Network.NavigationTimeout)
	assert.NotEmpty(t, cfg.Extract.ContainerSelector)
	assert.NotEmpty(t, cfg.Extract.NameSelectors)
	assert.NotEmpty(t, cfg.Extract.PriceSelectors)

	require.NoError(t, cfg.Validate(), "defaults must validate")
}

func TestNewConfigFromViper(t *testing.T) {
	t.Run("applies overrides on top of defaults", func(t *testing.T) {
		v := viper.New()
		SetDefaults(v)
		v.Set("target.base_url", "https://example.com/portal")
		v.Set("extract.max_pages", 3)

		cfg, err := NewConfigFromViper(v)
		require.NoError(t, err)

		assert.Equal(t, "https://example.com/portal", cfg.Target.BaseURL)
		assert.Equal(t, 3, cfg.Extract.MaxPages)
		// Untouched keys keep their defaults.
		assert.Equal(t, "session_data.json", cfg.Session.File)
	})

	t.Run("reads credentials from the environment only", func(t *testing.T) {
		t.Setenv("INVENTA_TARGET_USERNAME", "analyst@example.com")
		t.Setenv("INVENTA_TARGET_PASSWORD", "hunter2")

		v := viper.New()
		SetDefaults(v)

		cfg, err := NewConfigFromViper(v)
		require.NoError(t, err)

		assert.Equal(t, "analyst@example.com", cfg.Target.Username)
		assert.Equal(t, "hunter2", cfg.Target.Password)
	})

	t.Run("rejects invalid configuration", func(t *testing.T) {
		v := viper.New()
		SetDefaults(v)
		v.Set("extract.max_pages", -1)

		_, err := NewConfigFromViper(v)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_pages")
	})
}

func TestConfigValidate(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr string
	}{
		{
			name:   "valid defaults",
			mutate: func(cfg *Config) {},
		},
		{
			name:    "missing base url",
			mutate:  func(cfg *Config) { cfg.Target.BaseURL = "" },
			wantErr: "base_url",
		},
		{
			name:    "relative base url",
			mutate:  func(cfg *Config) { cfg.Target.BaseURL = "/challenge" },
			wantErr: "absolute URL",
		},
		{
			name:    "negative max pages",
			mutate:  func(cfg *Config) { cfg.Extract.MaxPages = -2 },
			wantErr: "max_pages",
		},
		{
			name:    "negative page rate",
			mutate:  func(cfg *Config) { cfg.Extract.PageRate = -0.5 },
			wantErr: "page_rate",
		},
		{
			name:    "empty container selector",
			mutate:  func(cfg *Config) { cfg.Extract.ContainerSelector = "" },
			wantErr: "container_selector",
		},
		{
			name:    "zero idle quiet window",
			mutate:  func(cfg *Config) { cfg.Network.IdleQuiet = 0 },
			wantErr: "idle_quiet",
		},
		{
			name:    "empty session file",
			mutate:  func(cfg *Config) { cfg.Session.File = "" },
			wantErr: "session.file",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tc.mutate(cfg)

			err := cfg.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
