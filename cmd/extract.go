// File: cmd/extract.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inventa-tools/inventa-cli/internal/auth"
	"github.com/inventa-tools/inventa-cli/internal/browser"
	"github.com/inventa-tools/inventa-cli/internal/config"
	"github.com/inventa-tools/inventa-cli/internal/extract"
	"github.com/inventa-tools/inventa-cli/internal/navigate"
	"github.com/inventa-tools/inventa-cli/internal/observability"
	"github.com/inventa-tools/inventa-cli/internal/orchestrator"
	"github.com/inventa-tools/inventa-cli/internal/reporting"
	"github.com/inventa-tools/inventa-cli/internal/sessionstore"
)

const shutdownGrace = 10 * time.Second

// newExtractCmd creates and configures the `extract` command.
func newExtractCmd() *cobra.Command {
	extractCmd := &cobra.Command{
		Use:   "extract",
		Short: "Runs a full extraction of the product inventory table",
		Args:  cobra.NoArgs,
		// Bind flags to their corresponding Viper keys here so command-line
		// flags correctly override values from the config file and
		// environment variables.
		PreRunE: func(cmd *cobra.Command, args []string) error {
			bindings := map[string]string{
				"target.base_url":   "base-url",
				"browser.headless":  "headless",
				"session.file":      "session-file",
				"output.dir":        "output-dir",
				"extract.max_pages": "max-pages",
			}
			for key, flag := range bindings {
				if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
					return err
				}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Use the context passed from main.go (signal-aware).
			ctx := cmd.Context()
			logger := observability.GetLogger()

			cfg, err := config.NewConfigFromViper(viper.GetViper())
			if err != nil {
				return fmt.Errorf("failed to finalize config: %w", err)
			}

			logger.Info("Starting extraction",
				zap.String("target", cfg.Target.BaseURL),
				zap.Bool("headless", cfg.Browser.Headless),
				zap.String("session_file", cfg.Session.File),
			)

			manager := browser.NewManager(cfg, logger)
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
				defer cancel()
				if err := manager.Shutdown(shutdownCtx); err != nil {
					logger.Warn("Browser shutdown was not clean", zap.Error(err))
				}
			}()

			diagDir := cfg.Output.DiagnosticsDir
			orch, err := orchestrator.New(
				cfg,
				logger,
				manager,
				sessionstore.New(cfg.Session.File, diagDir, logger),
				auth.New(diagDir, logger),
				navigate.NewLauncher(logger),
				navigate.New(nil, diagDir, logger),
				extract.New(extract.Config{
					RowTimeout:        cfg.Extract.RowTimeout,
					ProbeTimeout:      cfg.Extract.ProbeTimeout,
					MaxPages:          cfg.Extract.MaxPages,
					PageRate:          cfg.Extract.PageRate,
					ContainerSelector: cfg.Extract.ContainerSelector,
					NameSelectors:     cfg.Extract.NameSelectors,
					PriceSelectors:    cfg.Extract.PriceSelectors,
				}, diagDir, logger),
				reporting.NewWriter(cfg.Output.Dir, logger),
			)
			if err != nil {
				return fmt.Errorf("failed to initialize orchestrator: %w", err)
			}

			path, err := orch.Run(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					logger.Warn("Extraction aborted gracefully")
					return fmt.Errorf("extraction aborted by user signal")
				}
				logger.Error("Extraction failed", zap.Error(err))
				return err
			}

			fmt.Printf("\nExtraction complete. Results: %s\n", path)
			return nil
		},
	}

	extractCmd.Flags().String("base-url", "", "base URL of the challenge portal")
	extractCmd.Flags().Bool("headless", true, "run the browser headless")
	extractCmd.Flags().String("session-file", "", "path of the persisted session state file")
	extractCmd.Flags().String("output-dir", "", "directory for result files")
	extractCmd.Flags().Int("max-pages", 0, "stop pagination after this many pages (0 = unbounded)")

	return extractCmd
}

func init() {
	rootCmd.AddCommand(newExtractCmd())
}
