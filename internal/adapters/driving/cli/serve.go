package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/manglemix/ruyi-bot-3/internal/adapters/driving/mcp"
	"github.com/manglemix/ruyi-bot-3/internal/logger"
)

var serveMCPPort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the ingestion pipeline",
	Long: `Scans and watches the files folder, re-syncs the cloned repositories
on the scheduler's interval, and writes every change to the search backend.

Use --mcp-port to also serve the chat tools over HTTP.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&serveMCPPort, "mcp-port", 0, "serve MCP tools over HTTP on this port (0 = disabled)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	logger.SetTimestamps(true)
	defer logger.SetTimestamps(false)

	p, err := newPipeline(ctx)
	if err != nil {
		return err
	}
	defer p.Close()

	var extra []func(context.Context) error
	if serveMCPPort > 0 {
		server, err := mcp.NewServer(p.mcpPorts())
		if err != nil {
			return err
		}
		addr := fmt.Sprintf(":%d", serveMCPPort)
		cmd.Printf("MCP server listening on http://localhost%s\n", addr)
		extra = append(extra, func(ctx context.Context) error {
			return server.RunHTTP(ctx, addr)
		})
	}

	logger.Info("watching %s, repositories in %s", p.settings.Paths.Files, p.settings.Paths.Gits)
	return p.run(ctx, extra...)
}
