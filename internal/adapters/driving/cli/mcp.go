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

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the ingestion pipeline together with a Model Context Protocol
server exposing the chat tools (ping, ingest_message, opt_in, opt_out,
read_file, write_file, list_files, sync_repositories, list_repositories).

By default, the server communicates over stdio using JSON-RPC, which is
how a chat bot process drives it. The pipeline stops when stdin closes.

Use --port to start an HTTP server instead.

Examples:
  # Stdio mode (default)
  ruyi mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  ruyi mcp serve --port 8080`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	logger.SetTimestamps(true)
	defer logger.SetTimestamps(false)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p, err := newPipeline(ctx)
	if err != nil {
		return err
	}
	defer p.Close()

	server, err := mcp.NewServer(p.mcpPorts())
	if err != nil {
		return err
	}

	serve := func(ctx context.Context) error {
		// A closed stdio session ends the whole pipeline.
		defer cancel()
		if err := server.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Warn("mcp session ended: %v", err)
		}
		return nil
	}
	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		serve = func(ctx context.Context) error {
			return server.RunHTTP(ctx, addr)
		}
	}

	return p.run(ctx, serve)
}
