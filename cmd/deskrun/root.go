package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/1broseidon/deskrun/internal/config"
	"github.com/1broseidon/deskrun/internal/ipc"
)

type rootFlags struct {
	configPath string
	socket     string
	debug      bool
}

// path returns --config or the default location.
func (f *rootFlags) path() (string, error) {
	if f.configPath != "" {
		return f.configPath, nil
	}
	return config.DefaultConfigPath()
}

func (f *rootFlags) load() (*config.LoadResult, error) {
	path, err := f.path()
	if err != nil {
		return nil, err
	}
	return config.LoadFromPath(path)
}

func (f *rootFlags) client() *ipc.Client {
	return ipc.NewClient(f.socket)
}

// logger returns a debug logger for --debug and nil otherwise, leaving the
// level to the config.
func (f *rootFlags) logger(w io.Writer) *slog.Logger {
	if !f.debug {
		return nil
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func newRootCmd() *cobra.Command {
	var flags rootFlags

	cmd := &cobra.Command{
		Use:   "deskrun",
		Short: "deskrun - desktop window runtime",
		Long:  "deskrun runs desktop windows, global shortcuts and a tray icon described by a YAML config, and controls the running app over a local socket.",
		Example: `  deskrun run
  deskrun run --headless --config ./deskrun.yaml
  deskrun window list
  deskrun window title main "Hello"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Config file path (default: ~/.config/deskrun/config.yaml)")
	cmd.PersistentFlags().StringVar(&flags.socket, "socket", "", "Control socket path (default: $XDG_RUNTIME_DIR/deskrun/deskrun.sock)")
	cmd.PersistentFlags().BoolVarP(&flags.debug, "debug", "d", false, "Enable debug logging")

	cmd.AddGroup(&cobra.Group{ID: "core", Title: "Core Commands:"})
	cmd.AddGroup(&cobra.Group{ID: "control", Title: "Control Commands:"})

	cmd.AddCommand(newRunCmd(&flags))
	cmd.AddCommand(newStatusCmd(&flags))
	cmd.AddCommand(newMonitorsCmd(&flags))
	cmd.AddCommand(newWindowCmd(&flags))
	cmd.AddCommand(newConfigCmd(&flags))
	cmd.AddCommand(newMCPCmd(&flags))
	cmd.AddCommand(newUICmd(&flags))

	return cmd
}
