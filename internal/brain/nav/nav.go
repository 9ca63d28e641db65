// Package nav implements the zoom state machine that moves a viewport
// between the overview and the raw buffer of a single surface.
package nav

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tactical-os/tos/errors"
	"github.com/tactical-os/tos/internal/brain/registry"
)

// Level is a zoom depth. Levels are totally ordered from Overview to RawBuffer.
type Level int

const (
	Overview Level = iota + 1
	SectorFocus
	Detail
	RawBuffer
)

// Deepest is the last level ZoomIn can reach.
const Deepest = RawBuffer

func (l Level) String() string {
	switch l {
	case Overview:
		return "Overview"
	case SectorFocus:
		return "Sector Focus"
	case Detail:
		return "Detail"
	case RawBuffer:
		return "Raw Buffer"
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// Valid reports whether l is one of the defined levels.
func (l Level) Valid() bool {
	return l >= Overview && l <= RawBuffer
}

// ParseLevel accepts a level number (1-4) or a level name.
func ParseLevel(s string) (Level, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if l := Level(n); l.Valid() {
			return l, nil
		}
		return 0, errors.New(errors.ErrCodeInvalidInput, fmt.Sprintf("zoom level must be between %d and %d", Overview, Deepest)).
			WithDetail("level", n)
	}
	switch strings.ToLower(strings.ReplaceAll(s, "_", "")) {
	case "overview":
		return Overview, nil
	case "sector", "sectorfocus":
		return SectorFocus, nil
	case "detail":
		return Detail, nil
	case "raw", "rawbuffer", "buffer":
		return RawBuffer, nil
	}
	return 0, errors.New(errors.ErrCodeInvalidInput, fmt.Sprintf("unknown zoom level %q", s))
}

// Viewport is one independent view onto the registry.
type Viewport struct {
	ID            int
	Level         Level
	SectorID      *int
	SurfaceID     *int
	BezelExpanded bool

	// SplitID is the secondary surface of a split view.
	SplitID *int
}

// NewViewport returns a viewport at Overview with no context.
func NewViewport(id int) *Viewport {
	return &Viewport{ID: id, Level: Overview}
}

// FocusSector sets the sector context and drops any surface context.
func (vp *Viewport) FocusSector(id int) {
	vp.SectorID = intPtr(id)
	vp.SurfaceID = nil
	vp.SplitID = nil
}

// FocusSurface sets the surface context, adopting the surface's sector.
func (vp *Viewport) FocusSurface(s *registry.Surface) {
	vp.SurfaceID = intPtr(s.ID)
	if vp.SplitID != nil && *vp.SplitID == s.ID {
		vp.SplitID = nil
	}
	if s.SectorID != nil {
		vp.SectorID = intPtr(*s.SectorID)
	}
}

// ZoomIn moves one level deeper, picking a default target when the viewport
// has no context for the new level. The level changes even when no target
// exists. At the deepest level it is a no-op.
func ZoomIn(vp *Viewport, reg *registry.Registry) Level {
	if vp.Level >= Deepest {
		return vp.Level
	}
	vp.Level++

	switch vp.Level {
	case SectorFocus:
		if vp.SectorID == nil {
			if sectors := reg.Sectors(); len(sectors) > 0 {
				vp.SectorID = intPtr(sectors[0].ID)
			}
		}
	case Detail:
		if vp.SurfaceID == nil && vp.SectorID != nil {
			if surfaces := reg.SurfacesInSector(*vp.SectorID); len(surfaces) > 0 {
				vp.SurfaceID = intPtr(surfaces[0].ID)
			}
		}
	}
	return vp.Level
}

// ZoomOut moves one level shallower, dropping the context of the level it
// leaves. Any split view ends. At Overview it is a no-op.
func ZoomOut(vp *Viewport) Level {
	if vp.Level <= Overview {
		return vp.Level
	}
	vp.Level--
	vp.SplitID = nil

	switch vp.Level {
	case SectorFocus:
		vp.SurfaceID = nil
	case Overview:
		vp.SurfaceID = nil
		vp.SectorID = nil
	}
	return vp.Level
}

// IntelligentZoomOut is a single ZoomOut step.
func IntelligentZoomOut(vp *Viewport) Level {
	return ZoomOut(vp)
}

// SetLevel walks the viewport to target one step at a time so that every
// intermediate level applies its context defaults.
func SetLevel(vp *Viewport, reg *registry.Registry, target Level) (Level, error) {
	if !target.Valid() {
		return vp.Level, errors.New(errors.ErrCodeInvalidInput, fmt.Sprintf("zoom level must be between %d and %d", Overview, Deepest)).
			WithDetail("level", int(target))
	}
	for vp.Level < target {
		ZoomIn(vp, reg)
	}
	for vp.Level > target {
		ZoomOut(vp)
	}
	return vp.Level, nil
}

// Split shows secondary beside the focused surface. It fails when no
// surface is focused or secondary is the focused surface.
func Split(vp *Viewport, secondary int) error {
	if vp.SurfaceID == nil {
		return errors.New(errors.ErrCodeInvalidInput, "must be focusing a surface to split")
	}
	if *vp.SurfaceID == secondary {
		return errors.New(errors.ErrCodeInvalidInput, fmt.Sprintf("surface %d is already focused", secondary)).
			WithDetail("surface", secondary)
	}
	vp.SplitID = intPtr(secondary)
	return nil
}

// SwapSplit exchanges the primary and secondary surfaces of a split view.
func SwapSplit(vp *Viewport) error {
	if vp.SurfaceID == nil || vp.SplitID == nil {
		return errors.New(errors.ErrCodeInvalidInput, "not in split view")
	}
	vp.SurfaceID, vp.SplitID = vp.SplitID, vp.SurfaceID
	return nil
}

// ToggleBezel flips the bezel flag and returns the new value.
func ToggleBezel(vp *Viewport) bool {
	vp.BezelExpanded = !vp.BezelExpanded
	return vp.BezelExpanded
}

// Buffer returns the raw bytes shown at RawBuffer: the focused surface's
// history joined by newlines. It is nil when no surface is focused.
func Buffer(vp *Viewport, reg *registry.Registry) []byte {
	if vp.SurfaceID == nil {
		return nil
	}
	s, ok := reg.Surface(*vp.SurfaceID)
	if !ok {
		return nil
	}
	return []byte(strings.Join(s.History, "\n"))
}

func intPtr(v int) *int {
	return &v
}
