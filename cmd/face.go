package cmd

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/tactical-os/tos/cli"
	"github.com/tactical-os/tos/config"
	"github.com/tactical-os/tos/internal/face"
	"github.com/tactical-os/tos/pkg/daemon"
	"github.com/tactical-os/tos/tui"
	"github.com/tactical-os/tos/tui/keymap"
	"github.com/tactical-os/tos/tui/theme"
	"golang.org/x/term"
)

// NewFaceCmd returns the face command.
func NewFaceCmd() *cobra.Command {
	var (
		markup      bool
		interactive bool
		watch       bool
		width       int
	)

	cmd := &cobra.Command{
		Use:   "face",
		Short: "Render the brain state",
		Long: `Render the active viewport of the brain.

By default the face is drawn once for the terminal. --markup prints the
HTML markup served to web faces, --watch redraws on every state change and
--tui opens the interactive console.

Examples:
  tos face
  tos face --watch
  tos face --markup > face.html
  tos face --tui`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}
			opts := cli.GetOptions(cmd)
			mode := cfg.Face.Color
			if cmd.Flags().Changed("color") {
				mode = opts.Color
			}
			tui.InitializeTUI(mode, os.Stdout)

			client := daemon.New(cfg)
			defer client.Close()
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if markup {
				frame, err := client.Render(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, frame)
				return nil
			}

			if interactive {
				interval := config.Duration(cfg.Face.RenderInterval, 500*time.Millisecond)
				model := face.NewModel(client, interval, theme.DefaultTheme).WithKeys(keymap.Load(cfg.Face.Keys))
				p := tea.NewProgram(model, tea.WithAltScreen())
				_, err := p.Run()
				return err
			}

			if width <= 0 {
				width = terminalWidth()
			}

			snap, err := client.Snapshot(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, face.View(*snap, theme.DefaultTheme, width))
			if !watch {
				return nil
			}

			updates, err := client.StreamState(ctx)
			if err != nil {
				return err
			}
			for u := range updates {
				if u.Snapshot == nil {
					continue
				}
				fmt.Fprint(out, "\033[H\033[2J")
				fmt.Fprintln(out, face.View(*u.Snapshot, theme.DefaultTheme, width))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&markup, "markup", false, "Print the HTML markup")
	cmd.Flags().BoolVar(&interactive, "tui", false, "Open the interactive console")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Redraw on every state change")
	cmd.Flags().IntVar(&width, "width", 0, "Render width in columns (default: terminal width)")
	return cmd
}

func terminalWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 80
}
