package cli

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/manglemix/ruyi-bot-3/internal/adapters/driving/mcp"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("ruyi version %s\n", version)
		cmd.Printf("  mcp server: %s\n", mcp.Version)
		cmd.Printf("  go:         %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
