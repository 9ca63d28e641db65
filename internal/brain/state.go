// Package brain composes the registry, navigator, cue queues and
// performance monitor into the single State the daemon guards.
package brain

import (
	"fmt"
	"time"

	"github.com/tactical-os/tos/config"
	"github.com/tactical-os/tos/errors"
	"github.com/tactical-os/tos/internal/brain/audio"
	"github.com/tactical-os/tos/internal/brain/nav"
	"github.com/tactical-os/tos/internal/brain/notify"
	"github.com/tactical-os/tos/internal/brain/perf"
	"github.com/tactical-os/tos/internal/brain/registry"
	"github.com/tactical-os/tos/pkg/models"
	"github.com/tactical-os/tos/state"
)

// State is the whole mutable world of the brain. It is not safe for
// concurrent use; the daemon store serializes access to it.
type State struct {
	Registry  *registry.Registry
	Viewports []*nav.Viewport
	Active    int
	Audio     *audio.Queue
	Haptics   *audio.HapticQueue
	Notices   *notify.Queue
	Perf      *perf.Monitor
	// Uptime counts ticks since the brain started.
	Uptime uint64
}

// NewState builds the initial state from cfg: its sectors, viewports,
// audio toggles and alert threshold.
func NewState(cfg *config.Config) *State {
	if cfg == nil {
		cfg = config.Default()
	}

	s := &State{
		Registry: registry.New(),
		Audio:    audio.NewQueue(),
		Haptics:  audio.NewHapticQueue(),
		Notices:  notify.NewQueue(),
		Perf:     perf.NewMonitor(cfg.Performance.AlertThreshold),
	}

	sectors := cfg.Sectors
	if len(sectors) == 0 {
		sectors = config.DefaultSectors
	}
	for _, sector := range sectors {
		s.Registry.CreateSector(sector.Label)
	}

	count := cfg.Brain.Viewports
	if count <= 0 {
		count = 1
	}
	for i := 0; i < count; i++ {
		s.Viewports = append(s.Viewports, nav.NewViewport(i))
	}

	s.ApplyConfig(cfg)
	return s
}

// ApplyConfig applies the hot-reloadable settings of cfg.
func (s *State) ApplyConfig(cfg *config.Config) {
	s.Audio.Enabled = config.BoolOr(cfg.Audio.Enabled, s.Audio.Enabled)
	s.Audio.EffectsEnabled = config.BoolOr(cfg.Audio.Effects, s.Audio.EffectsEnabled)
	s.Audio.AmbientEnabled = config.BoolOr(cfg.Audio.Ambient, s.Audio.AmbientEnabled)
	s.Perf.SetThreshold(cfg.Performance.AlertThreshold)
}

// RestoreToggles applies operator toggles persisted by a previous run.
func (s *State) RestoreToggles(st state.State) {
	if v, ok := st.Bool(state.KeyAudioEnabled); ok {
		s.Audio.Enabled = v
	}
	if v, ok := st.Bool(state.KeyAudioEffects); ok {
		s.Audio.EffectsEnabled = v
	}
	if v, ok := st.Bool(state.KeyAudioAmbient); ok {
		s.Audio.AmbientEnabled = v
	}
}

// Toggles returns the operator toggles to persist.
func (s *State) Toggles() map[string]interface{} {
	return map[string]interface{}{
		state.KeyAudioEnabled: s.Audio.Enabled,
		state.KeyAudioEffects: s.Audio.EffectsEnabled,
		state.KeyAudioAmbient: s.Audio.AmbientEnabled,
	}
}

// Viewport returns the active viewport.
func (s *State) Viewport() *nav.Viewport {
	return s.Viewports[s.Active]
}

// SelectViewport makes viewport n active.
func (s *State) SelectViewport(n int) error {
	if n < 0 || n >= len(s.Viewports) {
		return errors.New(errors.ErrCodeNotFound, fmt.Sprintf("viewport %d does not exist", n)).
			WithDetail("viewport", n).
			WithDetail("count", len(s.Viewports))
	}
	s.Active = n
	return nil
}

// Snapshot copies the state into a models.Snapshot that shares no memory
// with s.
func (s *State) Snapshot() models.Snapshot {
	snap := models.Snapshot{
		TakenAt:        time.Now(),
		Uptime:         s.Uptime,
		ActiveViewport: s.Viewport().ID,
		Audio: models.AudioView{
			Enabled: s.Audio.Enabled,
			Effects: s.Audio.EffectsEnabled,
			Ambient: s.Audio.AmbientEnabled,
			Pending: s.Audio.Pending(),
		},
		Haptics: s.Haptics.Pending(),
		Performance: models.PerfView{
			FPS:       s.Perf.FPS,
			Threshold: s.Perf.Threshold,
			Alert:     s.Perf.Alert,
		},
	}

	for _, vp := range s.Viewports {
		view := models.ViewportView{
			ID:            vp.ID,
			Level:         int(vp.Level),
			LevelName:     vp.Level.String(),
			SectorID:      copyInt(vp.SectorID),
			SurfaceID:     copyInt(vp.SurfaceID),
			BezelExpanded: vp.BezelExpanded,
		}
		view.SplitID = copyInt(vp.SplitID)
		if vp.Level == nav.RawBuffer {
			view.Buffer = nav.Buffer(vp, s.Registry)
		}
		snap.Viewports = append(snap.Viewports, view)
	}

	for _, n := range s.Notices.Pending() {
		snap.Notifications = append(snap.Notifications, models.NotificationView{
			Source:   n.Source,
			Message:  n.Message,
			Priority: string(n.Priority),
		})
	}

	for _, sector := range s.Registry.Sectors() {
		snap.Sectors = append(snap.Sectors, models.SectorView{
			ID:       sector.ID,
			Label:    sector.Label,
			Surfaces: append([]int{}, sector.Surfaces...),
		})
	}

	for _, surface := range s.Registry.Surfaces() {
		snap.Surfaces = append(snap.Surfaces, models.SurfaceView{
			ID:       surface.ID,
			Title:    surface.Title,
			AppClass: surface.AppClass,
			Role:     string(surface.Role),
			SectorID: copyInt(surface.SectorID),
			History:  append([]string{}, surface.History...),
			PID:      surface.PID,
			CPU:      surface.CPU,
			Mem:      surface.Mem,
		})
	}

	return snap
}

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
