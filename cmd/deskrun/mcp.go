package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/1broseidon/deskrun/internal/mcp"
)

func newMCPCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "mcp",
		Short:   "Model Context Protocol integration",
		GroupID: "control",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server on stdio",
		Long: `Start the MCP server on stdio. Its tools control the running app through
the control socket, so start "deskrun run" first.`,
		Example: `  claude mcp add deskrun -- deskrun mcp serve`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// stdout carries the protocol.
			logger := flags.logger(cmd.ErrOrStderr())
			if logger == nil {
				logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelWarn}))
			}
			return mcp.NewServer(flags.client(), logger).Run(cmd.Context())
		},
	})
	return cmd
}
