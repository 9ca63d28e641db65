package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tactical-os/tos/pkg/paths"
)

// PathsOutput lists the files and directories tos uses.
type PathsOutput struct {
	ConfigDir string `json:"config_dir"`
	StateDir  string `json:"state_dir"`
	Socket    string `json:"socket"`
	PidFile   string `json:"pid_file"`
	Journal   string `json:"journal"`
	StateFile string `json:"state_file"`
}

// NewPathsCmd returns the paths command.
func NewPathsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Print the paths used by tos as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := PathsOutput{
				ConfigDir: paths.ConfigDir(),
				StateDir:  paths.StateDir(),
				Socket:    paths.SocketPath(),
				PidFile:   paths.PidFilePath(),
				Journal:   paths.JournalPath(),
				StateFile: paths.StateFilePath(),
			}

			data, err := json.MarshalIndent(output, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal paths: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}
