// Package cli wires the services together and exposes them as commands.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/lexsearch/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	configPath string
	envFile    string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "lexsearch",
	Short: "Retrieval-augmented question answering over legal documents",
	Long: `lexsearch indexes Spanish legal and administrative PDF documents
and answers natural-language questions about them, citing the articles
the answer was grounded on.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "lexsearch.toml", "path to the TOML configuration file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "path to the environment file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
