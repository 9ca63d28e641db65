package tui

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColorProfile(t *testing.T) {
	t.Setenv("CLICOLOR_FORCE", "")
	t.Setenv("COLORTERM", "")

	assert.Equal(t, termenv.Ascii, ColorProfile(ColorNever, os.Stdout))
	assert.Equal(t, termenv.TrueColor, ColorProfile(ColorAlways, nil))
	assert.Equal(t, termenv.Ascii, ColorProfile(ColorAuto, nil))

	f, err := os.Create(filepath.Join(t.TempDir(), "out"))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, termenv.Ascii, ColorProfile(ColorAuto, f))

	t.Setenv("CLICOLOR_FORCE", "1")
	assert.Equal(t, termenv.TrueColor, ColorProfile(ColorAuto, f))
	assert.Equal(t, termenv.Ascii, ColorProfile(ColorNever, f))
}
