// File: internal/config/config.go
package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/viper"
)

// Config holds the entire application configuration.
type Config struct {
	Logger  LoggerConfig  `mapstructure:"logger" yaml:"logger"`
	Target  TargetConfig  `mapstructure:"target" yaml:"target"`
	Browser BrowserConfig `mapstructure:"browser" yaml:"browser"`
	Network NetworkConfig `mapstructure:"network" yaml:"network"`
	Session SessionConfig `mapstructure:"session" yaml:"session"`
	Extract ExtractConfig `mapstructure:"extract" yaml:"extract"`
	Output  OutputConfig  `mapstructure:"output" yaml:"output"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// TargetConfig identifies the application under extraction and the account
// used to log in. Credentials come from the environment, never the file.
type TargetConfig struct {
	BaseURL  string `mapstructure:"base_url" yaml:"base_url"`
	Username string `mapstructure:"username" yaml:"-"`
	Password string `mapstructure:"password" yaml:"-"`
}

// BrowserConfig holds settings for the headless browser instance.
type BrowserConfig struct {
	Headless bool     `mapstructure:"headless" yaml:"headless"`
	ExecPath string   `mapstructure:"exec_path" yaml:"exec_path"`
	Args     []string `mapstructure:"args" yaml:"args"`
}

// NetworkConfig tunes navigation and idle detection.
type NetworkConfig struct {
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
	IdleQuiet         time.Duration `mapstructure:"idle_quiet" yaml:"idle_quiet"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`
}

// SessionConfig locates the persisted authentication state.
type SessionConfig struct {
	File string `mapstructure:"file" yaml:"file"`
}

// ExtractConfig tunes the extraction loop and the fallback selector policy.
// The selector lists are a replaceable heuristic, not a contract: they are
// tried in order per container.
type ExtractConfig struct {
	RowTimeout        time.Duration `mapstructure:"row_timeout" yaml:"row_timeout"`
	ProbeTimeout      time.Duration `mapstructure:"probe_timeout" yaml:"probe_timeout"`
	MaxPages          int           `mapstructure:"max_pages" yaml:"max_pages"`
	PageRate          float64       `mapstructure:"page_rate" yaml:"page_rate"`
	ContainerSelector string        `mapstructure:"container_selector" yaml:"container_selector"`
	NameSelectors     []string      `mapstructure:"name_selectors" yaml:"name_selectors"`
	PriceSelectors    []string      `mapstructure:"price_selectors" yaml:"price_selectors"`
}

// OutputConfig locates result files and diagnostic artifacts.
type OutputConfig struct {
	Dir            string `mapstructure:"dir" yaml:"dir"`
	DiagnosticsDir string `mapstructure:"diagnostics_dir" yaml:"diagnostics_dir"`
}

// SetDefaults initializes default values for all configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "inventa-cli")
	v.SetDefault("logger.log_file", "inventa.log")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// -- Target --
	v.SetDefault("target.base_url", "https://hiring.idenhq.com/")

	// -- Browser --
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.exec_path", "")

	// -- Network --
	v.SetDefault("network.navigation_timeout", "60s")
	v.SetDefault("network.idle_quiet", "500ms")
	v.SetDefault("network.idle_timeout", "30s")

	// -- Session --
	v.SetDefault("session.file", "session_data.json")

	// -- Extract --
	v.SetDefault("extract.row_timeout", "30s")
	v.SetDefault("extract.probe_timeout", "1s")
	// 0 preserves the original unbounded pagination loop; a positive value
	// bounds the loop against a site that never disables its Next control.
	v.SetDefault("extract.max_pages", 0)
	v.SetDefault("extract.page_rate", 0.0)
	v.SetDefault("extract.container_selector",
		"div[class*='product'], div[class*='item'], div[class*='card']")
	v.SetDefault("extract.name_selectors",
		[]string{"h2", "h3", "div[class*='name']", "div[class*='title']"})
	v.SetDefault("extract.price_selectors",
		[]string{"div[class*='price']", "span[class*='price']"})

	// -- Output --
	v.SetDefault("output.dir", ".")
	v.SetDefault("output.diagnostics_dir", ".")
}

// NewDefaultConfig creates a configuration struct populated with defaults.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// Cannot happen with the static defaults above.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// NewConfigFromViper creates a configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	// Credentials are environment-only.
	v.BindEnv("target.username", "INVENTA_TARGET_USERNAME")
	v.BindEnv("target.password", "INVENTA_TARGET_PASSWORD")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if c.Target.BaseURL == "" {
		return fmt.Errorf("target.base_url is a required configuration field")
	}
	if u, err := url.Parse(c.Target.BaseURL); err != nil || !u.IsAbs() {
		return fmt.Errorf("target.base_url must be an absolute URL: %q", c.Target.BaseURL)
	}
	if c.Extract.MaxPages < 0 {
		return fmt.Errorf("extract.max_pages must not be negative")
	}
	if c.Extract.PageRate < 0 {
		return fmt.Errorf("extract.page_rate must not be negative")
	}
	if c.Extract.ContainerSelector == "" {
		return fmt.Errorf("extract.container_selector must not be empty")
	}
	if c.Network.IdleQuiet <= 0 {
		return fmt.Errorf("network.idle_quiet must be a positive duration")
	}
	if c.Session.File == "" {
		return fmt.Errorf("session.file must not be empty")
	}
	return nil
}
