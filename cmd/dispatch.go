package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tactical-os/tos/cli"
	"github.com/tactical-os/tos/pkg/daemon"
)

// NewDispatchCmd returns the console command. With arguments it dispatches
// one request; without, it reads one request per line from stdin.
func NewDispatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "dispatch [request...]",
		Aliases: []string{"do"},
		Short:   "Send requests to the brain",
		Long: `Send requests to the brain and print each response.

When no brain is running the request runs against a throwaway in-process
brain built from the current configuration.

Examples:
  tos dispatch zoom in
  tos dispatch spawn Scanner 1
  printf 'zoom in\nbezel\n' | tos dispatch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}
			client := daemon.New(cfg)
			defer client.Close()

			out := cmd.OutOrStdout()
			if len(args) > 0 {
				resp, err := client.Dispatch(cmd.Context(), strings.Join(args, " "))
				if err != nil {
					return err
				}
				fmt.Fprintln(out, resp)
				return nil
			}

			for _, line := range readLines(cmd) {
				resp, err := client.Dispatch(cmd.Context(), line)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, resp)
			}
			return nil
		},
	}
}

// readLines returns the non-empty lines of the command's stdin.
func readLines(cmd *cobra.Command) []string {
	var lines []string
	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
