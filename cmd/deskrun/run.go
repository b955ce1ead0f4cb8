package main

import (
	"github.com/spf13/cobra"

	"github.com/1broseidon/deskrun/internal/app"
)

func newRunCmd(flags *rootFlags) *cobra.Command {
	var headless bool

	cmd := &cobra.Command{
		Use:     "run",
		Short:   "Run the app described by the config",
		Long:    "Create the configured windows, shortcuts and tray icon and run until the last window closes, a quit shortcut fires, or the process is interrupted. SIGHUP and config file changes reload the config.",
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := app.New(app.Options{
				ConfigPath: flags.configPath,
				Headless:   headless,
				SocketPath: flags.socket,
				Logger:     flags.logger(cmd.ErrOrStderr()),
			})
			if err != nil {
				return err
			}
			return a.Run(cmd.Context())
		},
	}
	cmd.Flags().BoolVar(&headless, "headless", false, "Use the in-memory backend instead of X11")
	return cmd
}
