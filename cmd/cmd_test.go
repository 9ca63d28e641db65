package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tactical-os/tos/cli"
	"github.com/tactical-os/tos/testutil"
)

func newRoot() *cobra.Command {
	root := cli.NewStandardCommand("tos", "Tactical desktop environment")
	root.AddCommand(NewBrainCmd())
	root.AddCommand(NewDispatchCmd())
	root.AddCommand(NewFaceCmd())
	root.AddCommand(NewRemoteCmd())
	root.AddCommand(NewConfigCmd())
	root.AddCommand(NewPathsCmd())
	root.AddCommand(NewVersionCmd())
	return root
}

// run executes args against an isolated TOS_HOME with no brain running.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	testutil.IsolatedHome(t)

	root := newRoot()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestDispatchArgs(t *testing.T) {
	out, err := run(t, "", "dispatch", "spawn", "Scanner", "1")
	require.NoError(t, err)
	assert.Equal(t, "Launched 'Scanner' (ID: 1) in Sector 1\n", out)
}

func TestDispatchStdin(t *testing.T) {
	out, err := run(t, "zoom in\n\n", "dispatch")
	require.NoError(t, err)
	assert.Equal(t, "Zooming to Level 2 (SECTOR FOCUS)\n", out)
}

func TestFaceMarkup(t *testing.T) {
	out, err := run(t, "", "face", "--markup", "--color", "never")
	require.NoError(t, err)
	assert.Contains(t, out, "LEVEL 1 // OVERVIEW")
}

func TestPaths(t *testing.T) {
	out, err := run(t, "", "paths")
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join("run", "brain.sock"))
	assert.Contains(t, out, "journal.db")
}

func TestConfigShowAndValidate(t *testing.T) {
	out, err := run(t, "", "config", "show", "--format", "toml")
	require.NoError(t, err)
	assert.Contains(t, out, "# Source: defaults")
	assert.Contains(t, out, "tos.local")

	out, err = run(t, "", "config", "validate")
	require.NoError(t, err)
	assert.Equal(t, "defaults: ok\n", out)

	_, err = run(t, "", "config", "show", "--format", "ini")
	assert.ErrorContains(t, err, `unknown format "ini"`)
}

func TestVersionJSON(t *testing.T) {
	out, err := run(t, "", "version", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"linkProtocol": 1`)
}

func TestRemotePortalWithoutBrain(t *testing.T) {
	_, err := run(t, "", "remote", "portal", "1")
	assert.ErrorContains(t, err, "brain is not running")

	_, err = run(t, "", "remote", "portal", "one")
	assert.ErrorContains(t, err, `invalid sector "one"`)

	_, err = run(t, "", "remote", "revoke", "abc")
	assert.ErrorContains(t, err, "brain is not running")
}
