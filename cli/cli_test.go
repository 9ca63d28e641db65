package cli

import (
	"bytes"
	stderrors "errors"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/tactical-os/tos/errors"
	"github.com/tactical-os/tos/tui/theme"
)

func TestWrapText(t *testing.T) {
	assert.Equal(t, "short", wrapText("short", 20))
	assert.Equal(t, "one two\nthree", wrapText("one two three", 8))
	assert.Equal(t, "a\nb", wrapText("a\nb", 20))
}

func TestParseDescription(t *testing.T) {
	desc, examples := parseDescription("Runs the brain.\n\nExamples:\n  tos brain start")
	assert.Equal(t, "Runs the brain.", desc)
	assert.Equal(t, "tos brain start", examples)

	desc, examples = parseDescription("No examples here.")
	assert.Equal(t, "No examples here.", desc)
	assert.Empty(t, examples)
}

func TestRenderHelp(t *testing.T) {
	root := NewStandardCommand("tos", "Tactical desktop environment")
	root.AddCommand(&cobra.Command{Use: "brain", Short: "Manage the brain", Run: func(*cobra.Command, []string) {}})

	var buf bytes.Buffer
	renderHelp(&buf, root, theme.NewThemeWithName("terminal"), 60)
	out := buf.String()

	assert.Contains(t, out, "TOS")
	assert.Contains(t, out, "COMMANDS")
	assert.Contains(t, out, "brain")
	assert.Contains(t, out, "--color")
	assert.Contains(t, out, "(default: auto)")
}

func TestGetOptions(t *testing.T) {
	cmd := NewStandardCommand("tos", "")
	assert.NoError(t, cmd.ParseFlags([]string{"--verbose", "--json", "-c", "/tmp/tos.yml", "--color", "never"}))

	opts := GetOptions(cmd)
	assert.True(t, opts.Verbose)
	assert.True(t, opts.JSONOutput)
	assert.Equal(t, "/tmp/tos.yml", opts.ConfigFile)
	assert.Equal(t, "never", opts.Color)
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"config missing", errors.ConfigNotFound("/x/tos.yml"), "configuration not found"},
		{"connection", errors.ConnectionFailed("host", stderrors.New("refused")), "Neither the native link nor SSH"},
		{"unreachable", errors.Unreachable("host", 0, nil), "Gave up after 0s"},
		{"command", errors.CommandFailed("ls", stderrors.New("exit")).WithDetail("stderr", "denied"), "denied"},
		{"plain", stderrors.New("boom"), "Error: boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := NewErrorHandler(false, &buf).Handle(tt.err)
			assert.Equal(t, tt.err, err)
			assert.Contains(t, buf.String(), tt.want)
		})
	}

	assert.NoError(t, NewErrorHandler(false, &bytes.Buffer{}).Handle(nil))
}

func TestErrorHandlerVerbose(t *testing.T) {
	var buf bytes.Buffer
	NewErrorHandler(true, &buf).Handle(errors.SectorNotFound(9))
	assert.Contains(t, buf.String(), `"code": "NOT_FOUND"`)
}
