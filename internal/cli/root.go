// Package cli provides the command-line interface for goldctl.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/goldcare-ai/goldctl/internal/api"
	"github.com/goldcare-ai/goldctl/internal/config"
	"github.com/goldcare-ai/goldctl/internal/table"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	apiURL     string
	configFile string
	verbose    bool
	assumeYes  bool

	// Global config and backend client
	cfg       config.Config
	apiClient *api.Client
	logger    *slog.Logger
	logClose  func() error
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "goldctl",
	Short: "Admin client for the GoldCare content backend",
	Long: `Goldctl is a terminal client for the GoldCare ethical AI content
backend: ingest books, articles, contexts, and moral-domain records, monitor
the ingestion job queue, browse and manage stored sources, and ask
domain-scoped questions.

All business logic lives server-side; goldctl talks to it over REST.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		cfg = config.Load()
		if configFile != "" {
			var err error
			cfg, err = config.LoadFile(configFile, cfg)
			if err != nil {
				return err
			}
		}
		if apiURL != "" {
			cfg.APIURL = apiURL
		}
		if verbose {
			cfg.LogLevel = slog.LevelDebug
		}

		logger, logClose = config.SetupLogger(cfg.LogFile, cfg.LogLevel)
		apiClient = api.New(cfg.APIURL)
		logger.Debug("configured backend", "url", apiClient.BaseURL())
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logClose != nil {
			if err := logClose(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close log file: %v\n", err)
			}
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "backend base URL (overrides GOLDCARE_API_URL)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to a YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "skip confirmation prompts")
}

// newConfirmer returns the confirmation gate for destructive commands:
// --yes auto-approves, otherwise an interactive y/N prompt. Non-interactive
// stdin without --yes refuses rather than hanging.
func newConfirmer() table.Confirmer {
	if assumeYes {
		return table.AutoApprove
	}
	return table.ConfirmerFunc(func(ctx context.Context, message string) (bool, error) {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return false, fmt.Errorf("stdin is not a terminal; pass --yes to confirm destructive operations")
		}
		fmt.Fprintf(os.Stderr, "%s [y/N]: ", message)
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			return false, fmt.Errorf("read confirmation: %w", err)
		}
		answer := strings.ToLower(strings.TrimSpace(line))
		return answer == "y" || answer == "yes", nil
	})
}

// isInteractive reports whether stdout is a terminal, deciding between TUI
// and plain output.
func isInteractive() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// exitWithError prints an error message and exits with code 1.
func exitWithError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

// renderError turns client errors into the message shown to the user,
// distinguishing "server unreachable" from application rejections.
func renderError(err error) string {
	if api.IsUnreachable(err) {
		return fmt.Sprintf("cannot reach the backend at %s — is the API running? (%v)", apiClient.BaseURL(), err)
	}
	return err.Error()
}
