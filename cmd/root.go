package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd is the base command for the mcpgate application.
var rootCmd = &cobra.Command{
	Use:   "mcpgate",
	Short: "OAuth gateway for a private MCP backend",
	Long: `mcpgate puts an OAuth 2.1 authorization server in front of a private
MCP backend. Clients authenticate through GitHub, a static allow-list
decides who gets in, and authorized requests are forwarded to the
backend with a shared secret the backend trusts.`,
	// SilenceUsage keeps handled errors from dumping the usage text.
	SilenceUsage: true,
}

// SetVersion sets the version for the root command. Called from main
// with the build-time version.
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute runs the CLI.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "mcpgate version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
