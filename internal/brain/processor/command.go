// Package processor turns a request line into a state change and a
// one-line response.
package processor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tactical-os/tos/errors"
	"github.com/tactical-os/tos/internal/brain/nav"
)

// Command is a parsed request. The set of implementations is closed.
type Command interface {
	command()
}

// ZoomMode selects how a Zoom command moves the viewport.
type ZoomMode int

const (
	ZoomIn ZoomMode = iota
	ZoomOut
	ZoomTo
)

// Setting names accepted by config and set_setting.
const (
	SettingAmbient = "ambient"
	SettingAudio   = "audio"
	SettingChirps  = "chirps"
)

type (
	// Move reassigns a surface to a sector.
	Move struct{ Surface, Sector int }
	// SetConfig flips an audio toggle.
	SetConfig struct {
		Key string
		On  bool
	}
	// ShowConfig reports the current toggles.
	ShowConfig struct{}
	// Zoom moves the active viewport.
	Zoom struct {
		Mode  ZoomMode
		Level nav.Level
	}
	// Bezel toggles the bezel of the active viewport.
	Bezel struct{}
	// Haptic queues a haptic cue.
	Haptic struct{ Cue string }
	// Spawn creates a toplevel surface. Sector is nil for the active sector.
	Spawn struct {
		Title  string
		Sector *int
	}
	// Kill removes a surface.
	Kill struct{ Surface int }
	// Inspect records a deep scan and zooms the viewport onto the surface.
	Inspect struct{ Surface int }
	// Focus points the active viewport at a surface.
	Focus struct{ Surface int }
	// CreateSector adds a sector.
	CreateSector struct{ Label string }
	// SelectSector points the active viewport at a sector.
	SelectSector struct{ Sector int }
	// Find searches surfaces by title or app class.
	Find struct{ Query string }
	// History lists a surface's history.
	History struct{ Surface int }
	// SelectViewport changes the active viewport.
	SelectViewport struct{ Viewport int }
	// Attach binds a surface to a host process for statistics sampling.
	Attach struct{ Surface, PID int }
	// Split shows a second surface beside the focused one.
	Split struct{ Surface int }
	// Swap exchanges the two surfaces of a split view.
	Swap struct{}
	// Clone duplicates the focused surface into its sector.
	Clone struct{}
	// Alert raises an operator notification.
	Alert struct{ Message string }
	// ClearNotices drops every pending notification.
	ClearNotices struct{}
	// Help lists the commands.
	Help struct{}
)

func (Move) command()           {}
func (SetConfig) command()      {}
func (ShowConfig) command()     {}
func (Zoom) command()           {}
func (Bezel) command()          {}
func (Haptic) command()         {}
func (Spawn) command()          {}
func (Kill) command()           {}
func (Inspect) command()        {}
func (Focus) command()          {}
func (CreateSector) command()   {}
func (SelectSector) command()   {}
func (Find) command()           {}
func (History) command()        {}
func (SelectViewport) command() {}
func (Attach) command()         {}
func (Split) command()          {}
func (Swap) command()           {}
func (Clone) command()          {}
func (Alert) command()          {}
func (ClearNotices) command()   {}
func (Help) command()           {}

// Parse converts a request line into a Command. Keywords are
// case-insensitive. The legacy prefix forms zoom_to:<level> and
// set_setting:<key>;<value> map onto Zoom and SetConfig.
func Parse(input string) (Command, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, errors.ParseError(input, "empty command")
	}

	if cmd, ok, err := parseLegacy(input); ok {
		return cmd, err
	}

	fields := strings.Fields(input)
	keyword := strings.ToLower(fields[0])
	args := fields[1:]

	switch keyword {
	case "move":
		if len(args) != 2 {
			return nil, usage(input, "move <surface> <sector>")
		}
		surface, err := parseID(input, "surface", args[0])
		if err != nil {
			return nil, err
		}
		sector, err := parseID(input, "sector", args[1])
		if err != nil {
			return nil, err
		}
		return Move{Surface: surface, Sector: sector}, nil

	case "config", "settings":
		switch len(args) {
		case 0:
			return ShowConfig{}, nil
		case 2:
			return parseSetting(input, args[0], args[1])
		}
		return nil, usage(input, "config [ambient|audio|chirps] [on|off]")

	case "zoom":
		if len(args) != 1 {
			return nil, usage(input, "zoom <in|out|1-4>")
		}
		switch strings.ToLower(args[0]) {
		case "in":
			return Zoom{Mode: ZoomIn}, nil
		case "out":
			return Zoom{Mode: ZoomOut}, nil
		}
		level, err := nav.ParseLevel(args[0])
		if err != nil {
			return nil, errors.ParseError(input, errors.Message(err))
		}
		return Zoom{Mode: ZoomTo, Level: level}, nil

	case "bezel":
		if len(args) != 0 {
			return nil, usage(input, "bezel")
		}
		return Bezel{}, nil

	case "haptic":
		if len(args) != 1 {
			return nil, usage(input, "haptic <cue>")
		}
		return Haptic{Cue: args[0]}, nil

	case "spawn", "launch":
		return parseSpawn(args), nil

	case "kill", "terminate":
		id, err := singleID(input, args, "kill <surface>")
		if err != nil {
			return nil, err
		}
		return Kill{Surface: id}, nil

	case "inspect":
		id, err := singleID(input, args, "inspect <surface>")
		if err != nil {
			return nil, err
		}
		return Inspect{Surface: id}, nil

	case "focus":
		id, err := singleID(input, args, "focus <surface>")
		if err != nil {
			return nil, err
		}
		return Focus{Surface: id}, nil

	case "sector":
		if len(args) >= 2 && strings.ToLower(args[0]) == "create" {
			return CreateSector{Label: strings.Join(args[1:], " ")}, nil
		}
		id, err := singleID(input, args, "sector <id> | sector create <label>")
		if err != nil {
			return nil, err
		}
		return SelectSector{Sector: id}, nil

	case "find", "search":
		if len(args) == 0 {
			return nil, usage(input, "find <query>")
		}
		return Find{Query: strings.Join(args, " ")}, nil

	case "history":
		id, err := singleID(input, args, "history <surface>")
		if err != nil {
			return nil, err
		}
		return History{Surface: id}, nil

	case "viewport":
		id, err := singleID(input, args, "viewport <n>")
		if err != nil {
			return nil, err
		}
		return SelectViewport{Viewport: id}, nil

	case "attach":
		if len(args) != 2 {
			return nil, usage(input, "attach <surface> <pid>")
		}
		surface, err := parseID(input, "surface", args[0])
		if err != nil {
			return nil, err
		}
		pid, err := parseID(input, "pid", args[1])
		if err != nil {
			return nil, err
		}
		if pid == 0 {
			return nil, errors.ParseError(input, "pid must be positive").WithDetail("pid", args[1])
		}
		return Attach{Surface: surface, PID: pid}, nil

	case "split":
		id, err := singleID(input, args, "split <surface>")
		if err != nil {
			return nil, err
		}
		return Split{Surface: id}, nil

	case "swap":
		if len(args) != 0 {
			return nil, usage(input, "swap")
		}
		return Swap{}, nil

	case "clone", "duplicate":
		if len(args) != 0 {
			return nil, usage(input, "clone")
		}
		return Clone{}, nil

	case "alert", "notify":
		if len(args) == 0 {
			return nil, usage(input, "alert <message>")
		}
		return Alert{Message: strings.Join(args, " ")}, nil

	case "clear":
		if len(args) != 0 {
			return nil, usage(input, "clear")
		}
		return ClearNotices{}, nil

	case "help":
		return Help{}, nil
	}

	return nil, errors.ParseError(input, fmt.Sprintf("Unknown command: '%s'. Type 'help' for list.", keyword))
}

func parseLegacy(input string) (Command, bool, error) {
	keyword, rest, found := strings.Cut(input, ":")
	if !found || strings.ContainsAny(keyword, " \t") {
		return nil, false, nil
	}
	switch strings.ToLower(keyword) {
	case "zoom_to":
		level, err := nav.ParseLevel(legacyLevelName(rest))
		if err != nil {
			return nil, true, errors.ParseError(input, errors.Message(err))
		}
		return Zoom{Mode: ZoomTo, Level: level}, true, nil
	case "set_setting":
		key, value, ok := strings.Cut(rest, ";")
		if !ok {
			return nil, true, usage(input, "set_setting:<key>;<value>")
		}
		cmd, err := parseSetting(input, key, value)
		return cmd, true, err
	}
	return nil, false, nil
}

// legacyLevelName maps the level names used by the IPC protocol.
func legacyLevelName(name string) string {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "globaloverview":
		return "overview"
	case "sectorview", "commandhub":
		return "sector"
	case "focus", "applicationfocus", "detailinspector":
		return "detail"
	case "buffer", "rawmemory":
		return "raw"
	}
	return name
}

func parseSetting(input, key, value string) (Command, error) {
	key = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(key)), "audio.")
	switch key {
	case SettingAmbient, SettingAudio, SettingChirps:
	case "enabled":
		key = SettingAudio
	case "effects":
		key = SettingChirps
	default:
		return nil, errors.ParseError(input, fmt.Sprintf("Unknown setting: %s", key))
	}

	switch strings.ToLower(strings.TrimSpace(value)) {
	case "on", "true", "1", "yes":
		return SetConfig{Key: key, On: true}, nil
	case "off", "false", "0", "no":
		return SetConfig{Key: key, On: false}, nil
	}
	return nil, errors.ParseError(input, fmt.Sprintf("setting %s expects on or off, got %q", key, value))
}

// parseSpawn treats a trailing integer after a title as the target sector.
func parseSpawn(args []string) Spawn {
	spawn := Spawn{Title: "Terminal"}
	if len(args) >= 2 {
		if sector, err := strconv.Atoi(args[len(args)-1]); err == nil {
			spawn.Sector = &sector
			args = args[:len(args)-1]
		}
	}
	if len(args) > 0 {
		spawn.Title = strings.Join(args, " ")
	}
	return spawn
}

func singleID(input string, args []string, form string) (int, error) {
	if len(args) != 1 {
		return 0, usage(input, form)
	}
	return parseID(input, "id", args[0])
}

func parseID(input, what, raw string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil || id < 0 {
		return 0, errors.ParseError(input, fmt.Sprintf("%s must be a non-negative integer, got %q", what, raw)).
			WithDetail(what, raw)
	}
	return id, nil
}

func usage(input, form string) error {
	return errors.ParseError(input, "Usage: "+form)
}
