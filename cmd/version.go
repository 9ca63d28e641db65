package cmd

import (
	"github.com/spf13/cobra"
	"github.com/tactical-os/tos/cli"
)

// NewVersionCmd returns the version command.
func NewVersionCmd() *cobra.Command {
	return cli.NewVersionCommand("tos")
}
