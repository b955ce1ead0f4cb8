package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/1broseidon/deskrun/internal/ipc"
)

func newStatusCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		Short:   "Show the running app's status",
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			status, err := flags.client().GetStatus()
			if err != nil {
				return err
			}
			printStatus(cmd.OutOrStdout(), status, isTerminal(cmd.OutOrStdout()))
			return nil
		},
	}
}

func newMonitorsCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "monitors",
		Short:   "List the monitors the running app sees",
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			monitors, err := flags.client().GetMonitors()
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tPOSITION\tSIZE\tSCALE")
			for _, m := range monitors {
				fmt.Fprintf(tw, "%s\t%d,%d\t%dx%d\t%g\n", m.Name, m.X, m.Y, m.Width, m.Height, m.ScaleFactor)
			}
			return tw.Flush()
		},
	}
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func printStatus(w io.Writer, s *ipc.StatusData, pretty bool) {
	uptime := time.Duration(s.UptimeSeconds) * time.Second
	if !pretty {
		fmt.Fprintf(w, "pid: %d\n", s.PID)
		fmt.Fprintf(w, "backend: %s\n", s.Backend)
		fmt.Fprintf(w, "window_count: %d\n", s.WindowCount)
		fmt.Fprintf(w, "uptime_seconds: %d\n", s.UptimeSeconds)
		fmt.Fprintf(w, "config_path: %s\n", s.ConfigPath)
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "PID\t%d\n", s.PID)
	fmt.Fprintf(tw, "Backend\t%s\n", s.Backend)
	fmt.Fprintf(tw, "Windows\t%d\n", s.WindowCount)
	fmt.Fprintf(tw, "Uptime\t%s\n", uptime)
	fmt.Fprintf(tw, "Config\t%s\n", s.ConfigPath)
	tw.Flush()
}
