// Package cli implements the ruyi command line with cobra.
// Each command lives in its own file and registers itself on rootCmd.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/manglemix/ruyi-bot-3/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	verbose   bool
	configDir string
)

var rootCmd = &cobra.Command{
	Use:   "ruyi",
	Short: "Keep a search index in sync with files, repositories and chat",
	Long: `ruyi watches a local file tree, re-syncs cloned git repositories and
records opted-in chat messages, and keeps a Meilisearch instance up to date
with all of them.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print info and debug logs")
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "config directory (default ~/.ruyi)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
