package logging

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tactical-os/tos/tui/theme"
)

func TestPrettyLogger(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrettyLogger().WithWriter(&buf)
	p.styles = StylesFromTheme(theme.NewThemeWithName("terminal"))

	p.Success("Portal opened")
	p.Field("Sector", 2)
	p.WarnPretty("token expires soon")
	p.ErrorPretty("join failed", errors.New("refused"))
	p.InfoPretty("done")

	out := buf.String()
	assert.Contains(t, out, "✓")
	assert.Contains(t, out, "Portal opened")
	assert.Contains(t, out, "Sector")
	assert.Contains(t, out, "2")
	assert.Contains(t, out, "token expires soon")
	assert.Contains(t, out, "refused")
	assert.Contains(t, out, "done\n")
}
