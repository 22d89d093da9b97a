package main

import (
	"fmt"
	"log"
	"os"

	"github.com/aretw0/toolshed/internal/cli"
	"github.com/aretw0/toolshed/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes the tool catalog to AI agents over the Model Context Protocol.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		transport, _ := cmd.Flags().GetString("transport")
		addr, _ := cmd.Flags().GetString("addr")

		cat, err := cli.BuildCatalog(cfg.Catalog, logger)
		if err != nil {
			return err
		}
		srv := mcp.NewServer(cat,
			mcp.WithLogger(logger),
			mcp.WithCompareCapacity(cfg.Session.CompareCapacity),
		)

		switch transport {
		case "stdio":
			// stdout carries JSON-RPC
			log.SetOutput(os.Stderr)
			logger.Info("starting toolshed MCP server (stdio)")
			return srv.ServeStdio()
		case "sse":
			sc := cli.NewSignalContext(cmd.Context())
			defer sc.Cancel()
			if err := srv.ServeSSE(sc, addr); err != nil {
				return err
			}
			logger.Info("MCP server stopped gracefully")
			return nil
		}
		return fmt.Errorf("unknown transport %q (supported: stdio, sse)", transport)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().String("addr", ":8090", "Address to listen on (only for SSE)")
}
