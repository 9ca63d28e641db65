package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tactical-os/tos/cli"
	"github.com/tactical-os/tos/internal/remote"
	"github.com/tactical-os/tos/logging"
	"github.com/tactical-os/tos/pkg/daemon"
)

// NewRemoteCmd returns the remote command with its subcommands.
func NewRemoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Reach other brains",
		Long:  "Open portals into this brain and run requests on other nodes over the native link or SSH.",
	}

	cmd.AddCommand(newRemotePortalCmd())
	cmd.AddCommand(newRemoteRevokeCmd())
	cmd.AddCommand(newRemoteExecCmd())
	cmd.AddCommand(newRemoteJoinCmd())

	return cmd
}

func newRemotePortalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "portal <sector>",
		Short: "Create a one-time portal into a sector",
		Long: `Ask the running brain for a portal URL and a one-time token that
binds a native link to the given sector.

Examples:
  tos remote portal 1`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sector, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid sector %q", args[0])
			}

			client := daemon.Connect()
			if client == nil {
				return fmt.Errorf("brain is not running; start it with 'tos brain start'")
			}
			defer client.Close()

			grant, err := client.RequestPortal(cmd.Context(), sector)
			if err != nil {
				return err
			}

			if cli.GetOptions(cmd).JSONOutput {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(grant)
			}
			pretty := logging.NewPrettyLogger().WithWriter(cmd.OutOrStdout())
			pretty.Success(fmt.Sprintf("Portal opened into sector %d", grant.Sector))
			pretty.Field("URL", grant.URL)
			pretty.Field("Token", grant.Token)
			return nil
		},
	}
}

func newRemoteRevokeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "revoke <token>",
		Short: "Withdraw an unused portal token",
		Long: `Withdraw a token handed out by 'tos remote portal' before it is used.

Examples:
  tos remote revoke 3f9a1c0d2e4b5a69-8c7d6e5f4a3b2c1d`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := daemon.Connect()
			if client == nil {
				return fmt.Errorf("brain is not running; start it with 'tos brain start'")
			}
			defer client.Close()

			if err := client.RevokePortal(cmd.Context(), args[0]); err != nil {
				return err
			}
			logging.NewPrettyLogger().WithWriter(cmd.OutOrStdout()).Success("Portal token revoked")
			return nil
		},
	}
}

func newRemoteExecCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exec <host> <command...>",
		Short: "Run a command on a remote node",
		Long: `Connect to host, run one command and disconnect. The native link is
tried first. If it is unavailable the command runs over SSH.

Examples:
  tos remote exec 10.0.0.7:7879 status
  tos remote exec ops@bastion uptime`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}
			logger := cli.GetLogger(cmd, "remote")
			mgr := remote.NewManager(remote.OptionsFromConfig(cfg.Remote), nil, logger)
			defer mgr.Close()

			id, err := mgr.Connect(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out, err := mgr.Execute(cmd.Context(), id, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

func newRemoteJoinCmd() *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "join <host> [request...]",
		Short: "Join a sector through a portal token",
		Long: `Open a native link to host using a portal token and send requests
into the granted sector. Requests are read from the arguments, or one per
line from stdin.

Examples:
  tos remote join 10.0.0.7:7879 --token 1a2b3c-4d5e6f status`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if token == "" {
				return fmt.Errorf("--token is required")
			}
			cfg, _, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}
			logger := cli.GetLogger(cmd, "remote")
			mgr := remote.NewManager(remote.OptionsFromConfig(cfg.Remote), nil, logger)
			defer mgr.Close()

			id, sector, err := mgr.Join(cmd.Context(), args[0], token)
			if err != nil {
				return err
			}
			logging.NewPrettyLogger().WithWriter(cmd.ErrOrStderr()).
				Success(fmt.Sprintf("Joined sector %d on %s", sector, args[0]))

			requests := []string{strings.Join(args[1:], " ")}
			if len(args) == 1 {
				requests = readLines(cmd)
			}
			for _, req := range requests {
				out, err := mgr.Execute(cmd.Context(), id, req)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), out)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Portal token from 'tos remote portal'")
	return cmd
}
