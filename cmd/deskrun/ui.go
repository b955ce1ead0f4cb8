package main

import (
	"github.com/spf13/cobra"

	"github.com/1broseidon/deskrun/internal/tui"
)

func newUICmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "ui",
		Short:   "Interactive dashboard for the running app",
		GroupID: "control",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return tui.Run(cmd.Context(), flags.client())
		},
	}
}
