package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/aretw0/tablebot/internal/cli"
	"github.com/aretw0/tablebot/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes the booking assistant as MCP tools (send_message, get_session)
so AI agents can hold booking conversations on a customer's behalf.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		transport, _ := cmd.Flags().GetString("transport")
		baseURL, _ := cmd.Flags().GetString("base-url")

		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		app, err := cli.NewApp(sigCtx, cfg, logger, cli.AppOptions{})
		if err != nil {
			return err
		}
		defer app.Close()

		srv := mcp.NewServer(app.Bot, app.Sessions, mcp.WithLogger(logger))

		switch transport {
		case "stdio":
			// Ensure logs don't corrupt JSON-RPC on Stdout
			log.SetOutput(os.Stderr)
			logger.Info("Starting tablebot MCP Server (Stdio)...")
			return srv.ServeStdio()
		case "sse":
			if baseURL == "" {
				baseURL = "http://localhost" + cfg.MCP.Addr
			}
			return srv.ServeSSE(sigCtx, cfg.MCP.Addr, baseURL)
		default:
			return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().StringP("transport", "t", "stdio", "Transport to use (stdio, sse)")
	mcpCmd.Flags().String("addr", ":8081", "Address to listen on (SSE only)")
	mcpCmd.Flags().String("base-url", "", "Public base URL announced to SSE clients")

	_ = v.BindPFlag("mcp.addr", mcpCmd.Flags().Lookup("addr"))
}
