package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/1broseidon/deskrun/internal/ipc"
	"github.com/1broseidon/deskrun/internal/palette"
	"github.com/1broseidon/deskrun/internal/tiling"
)

func newWindowCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "window",
		Aliases: []string{"win"},
		Short:   "Inspect and control windows of the running app",
		GroupID: "control",
		Example: `  deskrun window list
  deskrun window info main
  deskrun window hide main
  deskrun window eval main "document.body.style.background = 'red'"
  deskrun window create notes --html "<h1>Notes</h1>" --width 400 --height 300`,
	}

	cmd.AddCommand(newWindowListCmd(flags))
	cmd.AddCommand(newWindowInfoCmd(flags))
	cmd.AddCommand(&cobra.Command{
		Use:   "title <label> <title>",
		Short: "Set a window title",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return flags.client().SetTitle(args[0], args[1])
		},
	})
	cmd.AddCommand(newWindowActionCmd("show", "Show a window", func(c *ipc.Client, label string) error { return c.Show(label) }, flags))
	cmd.AddCommand(newWindowActionCmd("hide", "Hide a window", func(c *ipc.Client, label string) error { return c.Hide(label) }, flags))
	cmd.AddCommand(newWindowActionCmd("focus", "Restore, show and focus a window", func(c *ipc.Client, label string) error { return c.Focus(label) }, flags))
	cmd.AddCommand(newWindowActionCmd("center", "Center a window on its monitor", func(c *ipc.Client, label string) error { return c.Center(label) }, flags))
	cmd.AddCommand(newWindowActionCmd("close", "Close a window", func(c *ipc.Client, label string) error { return c.Close(label) }, flags))
	cmd.AddCommand(&cobra.Command{
		Use:   "eval <label> <script>",
		Short: "Evaluate JavaScript in a window's webview",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return flags.client().Eval(args[0], args[1])
		},
	})
	cmd.AddCommand(newWindowCreateCmd(flags))
	cmd.AddCommand(newWindowArrangeCmd(flags))
	cmd.AddCommand(newWindowPickCmd(flags))
	return cmd
}

func newWindowActionCmd(name, short string, call func(*ipc.Client, string) error, flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <label>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return call(flags.client(), args[0])
		},
	}
}

func newWindowListCmd(flags *rootFlags) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List windows",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			windows, err := flags.client().ListWindows()
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), windows)
			}
			printWindows(cmd.OutOrStdout(), windows)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func newWindowInfoCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "info <label>",
		Short: "Describe a window as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := flags.client().WindowInfo(args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), info)
		},
	}
}

func newWindowCreateCmd(flags *rootFlags) *cobra.Command {
	var p ipc.CreateWindowPayload
	cmd := &cobra.Command{
		Use:   "create <label>",
		Short: "Open a new window",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			p.Label = args[0]
			if p.URL != "" && p.HTML != "" {
				return fmt.Errorf("--url and --html are mutually exclusive")
			}
			return flags.client().CreateWindow(p)
		},
	}
	cmd.Flags().StringVar(&p.Title, "title", "", "Window title (default: the label)")
	cmd.Flags().StringVar(&p.URL, "url", "", "URL to load")
	cmd.Flags().StringVar(&p.HTML, "html", "", "Inline HTML to load")
	cmd.Flags().Float64Var(&p.Width, "width", 0, "Logical width")
	cmd.Flags().Float64Var(&p.Height, "height", 0, "Logical height")
	cmd.Flags().BoolVar(&p.Center, "center", false, "Center on the monitor")
	return cmd
}

func newWindowArrangeCmd(flags *rootFlags) *cobra.Command {
	var p ipc.ArrangePayload
	cmd := &cobra.Command{
		Use:   "arrange",
		Short: "Tile the visible windows on a monitor",
		Example: `  deskrun window arrange
  deskrun window arrange --layout master --master-percent 65 --gap 8`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := tiling.ParseMode(p.Layout); err != nil {
				return err
			}
			labels, err := flags.client().Arrange(p)
			if err != nil {
				return err
			}
			if len(labels) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no visible windows")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "arranged: %s\n", strings.Join(labels, ", "))
			return nil
		},
	}
	cmd.Flags().StringVarP(&p.Layout, "layout", "l", "grid", "Layout: grid, columns, rows or master")
	cmd.Flags().IntVarP(&p.Gap, "gap", "g", 0, "Pixels around and between windows")
	cmd.Flags().IntVar(&p.MasterPercent, "master-percent", 0, "Width share of the first window in master layout (default 60)")
	cmd.Flags().StringVar(&p.Monitor, "monitor", "", "Monitor name (default: the first monitor)")
	return cmd
}

func newWindowPickCmd(flags *rootFlags) *cobra.Command {
	var launcher string
	cmd := &cobra.Command{
		Use:   "pick",
		Short: "Choose a window in rofi, fuzzel, wofi or dmenu and focus it",
		Long: `Choose a window in an external launcher and focus it. With rofi,
Alt+Return hides the window and Alt+d closes it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			l, err := palette.Find(launcher)
			if err != nil {
				return err
			}
			client := flags.client()
			windows, err := client.ListWindows()
			if err != nil {
				return err
			}
			if len(windows) == 0 {
				return fmt.Errorf("no windows")
			}
			items := make([]palette.Item, len(windows))
			for i, w := range windows {
				items[i] = palette.Item{Label: w.Label + "  " + w.Title, Key: w.Label, Active: w.Visible}
			}

			sel, err := l.Pick(cmd.Context(), "window", items)
			if errors.Is(err, palette.ErrCancelled) {
				return nil
			}
			if err != nil {
				return err
			}
			switch sel.Action {
			case palette.ActionAlt:
				return client.Hide(sel.Item.Key)
			case palette.ActionDelete:
				return client.Close(sel.Item.Key)
			}
			return client.Focus(sel.Item.Key)
		},
	}
	cmd.Flags().StringVar(&launcher, "launcher", "auto", "Launcher: auto, "+strings.Join(palette.Names(), ", "))
	return cmd
}

func printWindows(w io.Writer, windows []ipc.WindowInfo) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "LABEL\tTITLE\tPOSITION\tSIZE\tVISIBLE")
	for _, win := range windows {
		fmt.Fprintf(tw, "%s\t%s\t%d,%d\t%dx%d\t%v\n",
			win.Label, win.Title, win.X, win.Y, win.Width, win.Height, win.Visible)
	}
	tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
