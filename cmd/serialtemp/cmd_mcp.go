package main

import (
	"fmt"
	"os/signal"

	"github.com/nvandessel/serialtemp/internal/mcp"
	"github.com/spf13/cobra"
)

func newMCPServerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp-server",
		Short: "Run serialtemp as an MCP server over stdio",
		Long: `Expose serialtemp_generate and serialtemp_encode as MCP tools.

Generated files requested through the server must stay under --root.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			root, _ := cmd.Flags().GetString("root")

			server, err := mcp.NewServer(&mcp.Config{
				Name:     "serialtemp",
				Version:  version,
				Root:     root,
				Settings: cfg,
				Logger:   newLogger(cmd, cfg),
			})
			if err != nil {
				return fmt.Errorf("failed to create MCP server: %w", err)
			}
			defer server.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), shutdownSignals...)
			defer stop()

			return server.Run(ctx)
		},
	}
}
