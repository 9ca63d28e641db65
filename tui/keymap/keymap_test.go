package keymap

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestDefaultFace(t *testing.T) {
	km := DefaultFace()
	assert.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyEnter}, km.Submit))
	assert.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyCtrlC}, km.Quit))
	assert.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyEsc}, km.Quit))
	assert.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyCtrlB}, km.Bezel))
	assert.False(t, key.Matches(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")}, km.Quit))
	assert.Len(t, km.FullHelp(), 3)
}

func TestLoadOverrides(t *testing.T) {
	km := Load(map[string][]string{
		"zoom_in": {"ctrl+j"},
		"bezel":   {},
		"unknown": {"x"},
	})

	assert.Equal(t, []string{"ctrl+j"}, km.ZoomIn.Keys())
	assert.Equal(t, "ctrl+j", km.ZoomIn.Help().Key)
	assert.Equal(t, "zoom in", km.ZoomIn.Help().Desc)
	assert.Equal(t, []string{"ctrl+b"}, km.Bezel.Keys())
}

func TestApplyOverridesIgnoresNonPointers(t *testing.T) {
	km := DefaultFace()
	ApplyOverrides(km, map[string][]string{"quit": {"q"}})
	assert.Equal(t, []string{"ctrl+c", "esc"}, km.Quit.Keys())
}

func TestCamelToSnake(t *testing.T) {
	assert.Equal(t, "zoom_in", camelToSnake("ZoomIn"))
	assert.Equal(t, "scroll_down", camelToSnake("ScrollDown"))
	assert.Equal(t, "help", camelToSnake("Help"))
}
