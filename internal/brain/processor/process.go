package processor

import (
	"fmt"
	"strings"

	"github.com/tactical-os/tos/errors"
	"github.com/tactical-os/tos/internal/brain"
	"github.com/tactical-os/tos/internal/brain/audio"
	"github.com/tactical-os/tos/internal/brain/nav"
	"github.com/tactical-os/tos/internal/brain/notify"
	"github.com/tactical-os/tos/internal/brain/registry"
)

// ErrorPrefix starts every failure response.
const ErrorPrefix = "Error: "

// HelpText lists the command grammar.
const HelpText = "Commands: move <surface> <sector>, config [ambient|audio|chirps] [on|off], " +
	"zoom <in|out|1-4>, bezel, haptic <cue>, spawn [title] [sector], kill <id>, inspect <id>, " +
	"focus <id>, sector <id>, sector create <label>, find <query>, history <id>, viewport <n>, " +
	"attach <id> <pid>, split <id>, swap, clone, alert <message>, clear, help"

// AlertSource labels notifications raised by the alert command.
const AlertSource = "COMM-LINK"

// Process parses and executes one request against st. It always returns a
// response; failures are reported as "Error: ..." and leave st untouched.
func Process(st *brain.State, input string) string {
	cmd, err := Parse(input)
	if err != nil {
		return Failure(err)
	}
	reply, err := Execute(st, cmd)
	if err != nil {
		return Failure(err)
	}
	return reply
}

// Failure renders err as a response line.
func Failure(err error) string {
	return ErrorPrefix + errors.Message(err)
}

// IsFailure reports whether a response line reports an error.
func IsFailure(response string) bool {
	return strings.HasPrefix(response, ErrorPrefix)
}

// Execute applies a parsed command. Every failing path returns before the
// first mutation.
func Execute(st *brain.State, cmd Command) (string, error) {
	reg := st.Registry
	vp := st.Viewport()

	switch c := cmd.(type) {
	case Move:
		if err := reg.MoveSurface(c.Surface, c.Sector); err != nil {
			return "", err
		}
		return fmt.Sprintf("Surface %d moved to Sector %d", c.Surface, c.Sector), nil

	case SetConfig:
		switch c.Key {
		case SettingAmbient:
			st.Audio.AmbientEnabled = c.On
			return "Ambient Audio: " + onOff(c.On), nil
		case SettingAudio:
			st.Audio.Enabled = c.On
			return "Audio Master: " + onOff(c.On), nil
		case SettingChirps:
			st.Audio.EffectsEnabled = c.On
			return "Tactile Chirps: " + onOff(c.On), nil
		}
		return "", errors.New(errors.ErrCodeInvalidInput, fmt.Sprintf("Unknown setting: %s", c.Key))

	case ShowConfig:
		return fmt.Sprintf("Current Settings: Audio=%s, Chirps=%s, Ambient=%s, Alert Threshold=%.1f",
			onOff(st.Audio.Enabled), onOff(st.Audio.EffectsEnabled), onOff(st.Audio.AmbientEnabled), st.Perf.Threshold), nil

	case Zoom:
		var level nav.Level
		switch c.Mode {
		case ZoomIn:
			level = nav.ZoomIn(vp, reg)
		case ZoomOut:
			level = nav.IntelligentZoomOut(vp)
		default:
			var err error
			if level, err = nav.SetLevel(vp, reg, c.Level); err != nil {
				return "", err
			}
		}
		st.Audio.Play(audio.CueChirp)
		return fmt.Sprintf("Zooming to Level %d (%s)", int(level), strings.ToUpper(level.String())), nil

	case Bezel:
		if nav.ToggleBezel(vp) {
			return "Bezel EXPANDED", nil
		}
		return "Bezel COLLAPSED", nil

	case Haptic:
		if !st.Haptics.Trigger(c.Cue) {
			return fmt.Sprintf("Haptics disabled; cue '%s' dropped", c.Cue), nil
		}
		return fmt.Sprintf("Haptic cue '%s' queued", c.Cue), nil

	case Spawn:
		sector := c.Sector
		if sector == nil {
			sector = activeSector(st)
		}
		if sector != nil {
			if _, ok := reg.Sector(*sector); !ok {
				return "", errors.InvalidSector(*sector)
			}
		}
		id := reg.CreateSurface(c.Title, registry.RoleToplevel, sector)
		st.Audio.Play(audio.CueChirp)
		if sector == nil {
			return fmt.Sprintf("Launched '%s' (ID: %d)", c.Title, id), nil
		}
		return fmt.Sprintf("Launched '%s' (ID: %d) in Sector %d", c.Title, id, *sector), nil

	case Kill:
		if err := reg.RemoveSurface(c.Surface); err != nil {
			return "", err
		}
		for _, v := range st.Viewports {
			if v.SurfaceID != nil && *v.SurfaceID == c.Surface {
				v.SurfaceID = v.SplitID
				v.SplitID = nil
			}
			if v.SplitID != nil && *v.SplitID == c.Surface {
				v.SplitID = nil
			}
		}
		return fmt.Sprintf("Terminated process ID: %d", c.Surface), nil

	case Inspect:
		surface, ok := reg.Surface(c.Surface)
		if !ok {
			return "", errors.SurfaceNotFound(c.Surface)
		}
		if err := reg.AppendHistory(c.Surface, "Deep-scan inspection initiated."); err != nil {
			return "", err
		}
		vp.FocusSurface(surface)
		level, err := nav.SetLevel(vp, reg, nav.Detail)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Inspecting Surface %d at Level %d (%s)", c.Surface, int(level), strings.ToUpper(level.String())), nil

	case Focus:
		surface, ok := reg.Surface(c.Surface)
		if !ok {
			return "", errors.SurfaceNotFound(c.Surface)
		}
		vp.FocusSurface(surface)
		if surface.SectorID == nil {
			return fmt.Sprintf("Focused Surface %d", c.Surface), nil
		}
		return fmt.Sprintf("Focused Surface %d in Sector %d", c.Surface, *surface.SectorID), nil

	case CreateSector:
		id := reg.CreateSector(c.Label)
		return fmt.Sprintf("Created Sector %d: %s", id, c.Label), nil

	case SelectSector:
		sector, ok := reg.Sector(c.Sector)
		if !ok {
			return "", errors.SectorNotFound(c.Sector)
		}
		vp.FocusSector(sector.ID)
		if vp.Level == nav.Overview {
			nav.ZoomIn(vp, reg)
		}
		return fmt.Sprintf("Sector %d (%s) selected", sector.ID, sector.Label), nil

	case Find:
		matches := reg.FindSurfaces(c.Query)
		if len(matches) == 0 {
			return fmt.Sprintf("No surfaces match '%s'", c.Query), nil
		}
		names := make([]string, len(matches))
		for i, s := range matches {
			names[i] = fmt.Sprintf("%d %s", s.ID, s.Title)
		}
		return fmt.Sprintf("Found %d surface(s) matching '%s': %s", len(matches), c.Query, strings.Join(names, ", ")), nil

	case History:
		surface, ok := reg.Surface(c.Surface)
		if !ok {
			return "", errors.SurfaceNotFound(c.Surface)
		}
		return fmt.Sprintf("Surface %d history: %s", c.Surface, strings.Join(surface.History, " | ")), nil

	case SelectViewport:
		if err := st.SelectViewport(c.Viewport); err != nil {
			return "", err
		}
		return fmt.Sprintf("Viewport %d active at Level %d (%s)", c.Viewport, int(st.Viewport().Level), strings.ToUpper(st.Viewport().Level.String())), nil

	case Attach:
		if err := reg.AttachProcess(c.Surface, c.PID); err != nil {
			return "", err
		}
		return fmt.Sprintf("Surface %d attached to process %d", c.Surface, c.PID), nil

	case Split:
		if _, ok := reg.Surface(c.Surface); !ok {
			return "", errors.SurfaceNotFound(c.Surface)
		}
		if vp.SurfaceID != nil {
			if _, ok := reg.Surface(*vp.SurfaceID); !ok {
				return "", errors.SurfaceNotFound(*vp.SurfaceID)
			}
		}
		if err := nav.Split(vp, c.Surface); err != nil {
			return "", err
		}
		primary := *vp.SurfaceID
		_ = reg.AppendHistory(primary, fmt.Sprintf("Entered split-view with Surface %d", c.Surface))
		_ = reg.AppendHistory(c.Surface, fmt.Sprintf("Entered split-view with Surface %d", primary))
		return fmt.Sprintf("Splitting view with Surface ID: %d", c.Surface), nil

	case Swap:
		if err := nav.SwapSplit(vp); err != nil {
			return "", err
		}
		return fmt.Sprintf("Swapped split view: Surface %d primary, Surface %d secondary", *vp.SurfaceID, *vp.SplitID), nil

	case Clone:
		if vp.SurfaceID == nil {
			return "", errors.New(errors.ErrCodeInvalidInput, "must be focusing a surface to clone")
		}
		surface, ok := reg.Surface(*vp.SurfaceID)
		if !ok {
			return "", errors.SurfaceNotFound(*vp.SurfaceID)
		}
		id := reg.CreateSurface(surface.Title, surface.Role, surface.SectorID)
		st.Audio.Play(audio.CueChirp)
		return fmt.Sprintf("Cloned '%s' (ID: %d)", surface.Title, id), nil

	case Alert:
		priority := notify.PriorityOf(c.Message)
		st.Notices.Push(AlertSource, c.Message, priority)
		if priority == notify.Critical {
			st.Audio.Play(audio.CueBeep)
			return "Critical notification sent.", nil
		}
		return "Notification sent.", nil

	case ClearNotices:
		return fmt.Sprintf("Cleared %d notification(s)", st.Notices.Clear()), nil

	case Help:
		return HelpText, nil
	}

	return "", errors.New(errors.ErrCodeInternal, fmt.Sprintf("unhandled command %T", cmd))
}

// activeSector returns the active viewport's sector, else the lowest sector.
func activeSector(st *brain.State) *int {
	if id := st.Viewport().SectorID; id != nil {
		v := *id
		return &v
	}
	if sectors := st.Registry.Sectors(); len(sectors) > 0 {
		v := sectors[0].ID
		return &v
	}
	return nil
}

func onOff(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}
