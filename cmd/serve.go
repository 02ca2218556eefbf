package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"mcpgate/internal/app"
)

// serveConfigFile is the path to the YAML configuration file.
var serveConfigFile string

// serveDebug enables verbose logging regardless of the configured level.
var serveDebug bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the gateway",
	Long: `Starts the gateway: the OAuth endpoints, the discovery documents and
the authenticated proxy to the MCP backend, all on one listener.

Configuration is read from --config (default ~/.config/mcpgate/config.yaml),
with secrets overridable from the environment:

  MCPGATE_GITHUB_CLIENT_ID
  MCPGATE_GITHUB_CLIENT_SECRET
  MCPGATE_BACKEND_SECRET

The process runs until interrupted and drains in-flight requests on
SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	application, err := app.NewApplication(serveConfigFile, serveDebug)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return application.Run(ctx)
}

func defaultConfigFile() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(homeDir, ".config", "mcpgate", "config.yaml")
}

func init() {
	serveCmd.Flags().StringVar(&serveConfigFile, "config", defaultConfigFile(), "Path to the configuration file")
	serveCmd.Flags().BoolVar(&serveDebug, "debug", false, "Enable debug logging")
	rootCmd.AddCommand(serveCmd)
}
