// Package cli provides the command-line interface for akiliquest.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/akiliquest/akiliquest/internal/app"
	"github.com/akiliquest/akiliquest/internal/client"
	"github.com/akiliquest/akiliquest/internal/config"
	"github.com/spf13/cobra"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose   bool
	serverURL string
	sessionID string

	// Backend the commands run against, set up in PersistentPreRunE.
	be      backend
	cleanup func()
)

// openBackend connects to a server when one is configured, otherwise runs the
// service in-process. Tests replace it.
var openBackend = func(ctx context.Context) (backend, func(), error) {
	if serverURL == "" {
		serverURL = os.Getenv("AKILIQUEST_SERVER_URL")
	}
	if serverURL != "" {
		return client.New(serverURL), func() {}, nil
	}

	cfg := config.Load()
	if !verbose {
		// Quiet unless --verbose.
		cfg.LogLevel = slog.LevelWarn
	}
	logger, closeLog := config.SetupLogger(cfg)

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		closeLog()
		return nil, nil, err
	}
	return &localBackend{svc: a.Service, metrics: a.Metrics, version: Version}, func() {
		if err := a.Close(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close store: %v\n", err)
		}
		closeLog()
	}, nil
}

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "akiliquest",
	Short: "AI-guided topic exploration",
	Long: `AkiliQuest turns a topic into a curiosity trail: a short summary plus
connections to related ideas, generated by an AI model and stored so you can
go deeper, revisit and export them later.

Runs against the configured store directly, or against an API server when
--server or AKILIQUEST_SERVER_URL is set.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip backend setup for version and help commands
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}
		if sessionID == "" {
			sessionID = os.Getenv("AKILIQUEST_SESSION_ID")
		}

		var err error
		be, cleanup, err = openBackend(cmd.Context())
		if err != nil {
			return fmt.Errorf("initialize: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if cleanup != nil {
			cleanup()
			cleanup = nil
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "API server URL (default: run in-process)")
	rootCmd.PersistentFlags().StringVarP(&sessionID, "session", "s", "", "session id for progress tracking (env AKILIQUEST_SESSION_ID)")

	// Add subcommands
	rootCmd.AddCommand(exploreCmd)
	rootCmd.AddCommand(deeperCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(suggestCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(popularCmd)
	rootCmd.AddCommand(trailsCmd)
	rootCmd.AddCommand(trailCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(statsCmd)
}
