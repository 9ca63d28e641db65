// Package tui holds terminal setup shared by the face and CLI output.
package tui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// Color modes accepted by face.color.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// ColorProfile resolves a color mode for out. In auto mode colour is used
// only on a terminal, unless CLICOLOR_FORCE or COLORTERM force it.
func ColorProfile(mode string, out *os.File) termenv.Profile {
	switch mode {
	case ColorNever:
		return termenv.Ascii
	case ColorAlways:
		return termenv.TrueColor
	}

	if os.Getenv("CLICOLOR_FORCE") == "1" || os.Getenv("COLORTERM") == "truecolor" {
		return termenv.TrueColor
	}
	if out == nil || !(isatty.IsTerminal(out.Fd()) || isatty.IsCygwinTerminal(out.Fd())) {
		return termenv.Ascii
	}
	return termenv.NewOutput(out).EnvColorProfile()
}

// InitializeTUI applies the color mode to lipgloss and returns the chosen
// profile. Call it before rendering anything.
func InitializeTUI(mode string, out *os.File) termenv.Profile {
	profile := ColorProfile(mode, out)
	lipgloss.SetColorProfile(profile)
	return profile
}
