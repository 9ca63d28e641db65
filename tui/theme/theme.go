// Package theme holds the lipgloss palette and styles shared by the face and
// the log formatter.
package theme

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const defaultThemeName = "lcars"

// --- LCARS palette ---
const (
	lcarsOrange     = "#FF9900"
	lcarsPeach      = "#FF9966"
	lcarsLilac      = "#CC99CC"
	lcarsBlue       = "#9999FF"
	lcarsRed        = "#CC6666"
	lcarsYellow     = "#FFCC66"
	lcarsGreen      = "#99CC99"
	lcarsText       = "#F5F6FA"
	lcarsMutedText  = "#7F7F9F"
	lcarsBorder     = "#3A3A5C"
	lcarsBackground = "#000000"
)

// --- Red alert palette ---
const (
	alertRed    = "#FF3333"
	alertAmber  = "#FF6600"
	alertText   = "#FFE0E0"
	alertMuted  = "#994444"
	alertBorder = "#661111"
)

// Colors is a resolved palette.
type Colors struct {
	Primary    lipgloss.TerminalColor
	Secondary  lipgloss.TerminalColor
	Accent     lipgloss.TerminalColor
	Red        lipgloss.TerminalColor
	Yellow     lipgloss.TerminalColor
	Green      lipgloss.TerminalColor
	Text       lipgloss.TerminalColor
	MutedText  lipgloss.TerminalColor
	Border     lipgloss.TerminalColor
	Background lipgloss.TerminalColor
}

// Theme is the set of styles built from a palette.
type Theme struct {
	Name   string
	Colors Colors

	Header  lipgloss.Style
	Title   lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Muted   lipgloss.Style
	Accent  lipgloss.Style
	Bold    lipgloss.Style

	// Bezel frames the face when the bezel is expanded.
	Bezel lipgloss.Style
	// Alert highlights the performance-critical banner.
	Alert lipgloss.Style
}

var themeRegistry = map[string]func() Colors{
	"lcars":     newLCARSColors,
	"red-alert": newRedAlertColors,
	"terminal":  newTerminalColors,
}

// DefaultTheme is the theme selected by TOS_THEME, or LCARS.
var DefaultTheme = NewThemeWithName(os.Getenv("TOS_THEME"))

// NewThemeWithName constructs a theme from a palette name. Unknown names
// fall back to the default palette.
func NewThemeWithName(name string) *Theme {
	name = strings.ToLower(strings.TrimSpace(name))
	build, ok := themeRegistry[name]
	if !ok {
		name = defaultThemeName
		build = themeRegistry[name]
	}
	colors := build()

	return &Theme{
		Name:   name,
		Colors: colors,

		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(colors.Primary),

		Title: lipgloss.NewStyle().
			Bold(true).
			Underline(true),

		Success: lipgloss.NewStyle().
			Foreground(colors.Green).
			Bold(true),

		Error: lipgloss.NewStyle().
			Foreground(colors.Red).
			Bold(true),

		Warning: lipgloss.NewStyle().
			Foreground(colors.Yellow).
			Bold(true),

		Muted: lipgloss.NewStyle().
			Foreground(colors.MutedText),

		Accent: lipgloss.NewStyle().
			Foreground(colors.Accent),

		Bold: lipgloss.NewStyle().
			Bold(true),

		Bezel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colors.Secondary).
			Padding(0, 1),

		Alert: lipgloss.NewStyle().
			Bold(true).
			Foreground(colors.Text).
			Background(colors.Red),
	}
}

func newLCARSColors() Colors {
	return Colors{
		Primary:    lipgloss.Color(lcarsOrange),
		Secondary:  lipgloss.Color(lcarsLilac),
		Accent:     lipgloss.Color(lcarsPeach),
		Red:        lipgloss.Color(lcarsRed),
		Yellow:     lipgloss.Color(lcarsYellow),
		Green:      lipgloss.Color(lcarsGreen),
		Text:       lipgloss.Color(lcarsText),
		MutedText:  lipgloss.Color(lcarsMutedText),
		Border:     lipgloss.Color(lcarsBorder),
		Background: lipgloss.Color(lcarsBackground),
	}
}

func newRedAlertColors() Colors {
	return Colors{
		Primary:    lipgloss.Color(alertRed),
		Secondary:  lipgloss.Color(alertAmber),
		Accent:     lipgloss.Color(alertAmber),
		Red:        lipgloss.Color(alertRed),
		Yellow:     lipgloss.Color(alertAmber),
		Green:      lipgloss.Color(lcarsGreen),
		Text:       lipgloss.Color(alertText),
		MutedText:  lipgloss.Color(alertMuted),
		Border:     lipgloss.Color(alertBorder),
		Background: lipgloss.Color(lcarsBackground),
	}
}

// newTerminalColors uses the terminal's own ANSI palette.
func newTerminalColors() Colors {
	return Colors{
		Primary:    lipgloss.Color("3"),
		Secondary:  lipgloss.Color("5"),
		Accent:     lipgloss.Color("6"),
		Red:        lipgloss.Color("1"),
		Yellow:     lipgloss.Color("3"),
		Green:      lipgloss.Color("2"),
		Text:       lipgloss.NoColor{},
		MutedText:  lipgloss.Color("8"),
		Border:     lipgloss.Color("8"),
		Background: lipgloss.NoColor{},
	}
}
