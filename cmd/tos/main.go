package main

import (
	"os"

	"github.com/tactical-os/tos/cli"
	"github.com/tactical-os/tos/cmd"
	"github.com/tactical-os/tos/pkg/profiling"
	"github.com/tactical-os/tos/version"
)

func main() {
	rootCmd := cli.NewStandardCommand(
		"tos",
		"Tactical desktop environment",
	)
	cli.SetVersionTemplate(rootCmd, version.GetInfo())
	profiling.NewCobraProfiler().Install(rootCmd)

	rootCmd.AddCommand(cmd.NewBrainCmd())
	rootCmd.AddCommand(cmd.NewDispatchCmd())
	rootCmd.AddCommand(cmd.NewFaceCmd())
	rootCmd.AddCommand(cmd.NewRemoteCmd())
	rootCmd.AddCommand(cmd.NewConfigCmd())
	rootCmd.AddCommand(cmd.NewPathsCmd())
	rootCmd.AddCommand(cmd.NewVersionCmd())
	cli.ApplyStyledHelpRecursive(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		verbose, _ := rootCmd.PersistentFlags().GetBool("verbose")
		cli.NewErrorHandler(verbose, os.Stderr).Handle(err)
		os.Exit(1)
	}
}
