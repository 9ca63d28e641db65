package models

import "time"

// Snapshot is a point-in-time copy of the brain state. It never aliases
// memory owned by the brain, so it may be read without holding any lock.
type Snapshot struct {
	TakenAt        time.Time      `json:"taken_at"`
	Uptime         uint64         `json:"uptime_ticks"`
	ActiveViewport int            `json:"active_viewport"`
	Viewports      []ViewportView `json:"viewports"`
	Sectors        []SectorView   `json:"sectors"`
	Surfaces       []SurfaceView  `json:"surfaces"`
	Audio          AudioView      `json:"audio"`
	Haptics        []string       `json:"haptics,omitempty"`
	Performance    PerfView       `json:"performance"`

	// Notifications are pending operator notifications, oldest first.
	Notifications []NotificationView `json:"notifications,omitempty"`
}

// ViewportView is the render-side view of a viewport.
type ViewportView struct {
	ID            int    `json:"id"`
	Level         int    `json:"level"`
	LevelName     string `json:"level_name"`
	SectorID      *int   `json:"sector_id,omitempty"`
	SurfaceID     *int   `json:"surface_id,omitempty"`
	BezelExpanded bool   `json:"bezel_expanded"`
	// Buffer holds the focused surface's raw bytes at the raw buffer level.
	Buffer []byte `json:"buffer,omitempty"`

	// SplitID is the secondary surface shown beside SurfaceID in split view.
	SplitID *int `json:"split_id,omitempty"`
}

// SectorView describes a sector and its member surfaces.
type SectorView struct {
	ID       int    `json:"id"`
	Label    string `json:"label"`
	Surfaces []int  `json:"surfaces"`
}

// SurfaceView describes a surface.
type SurfaceView struct {
	ID       int      `json:"id"`
	Title    string   `json:"title"`
	AppClass string   `json:"app_class"`
	Role     string   `json:"role"`
	SectorID *int     `json:"sector_id,omitempty"`
	History  []string `json:"history"`
	PID      int      `json:"pid,omitempty"`
	CPU      float64  `json:"cpu"`
	Mem      float64  `json:"mem"`
}

// AudioView carries the audio toggles and the cues pending playback.
type AudioView struct {
	Enabled bool     `json:"enabled"`
	Effects bool     `json:"effects"`
	Ambient bool     `json:"ambient"`
	Pending []string `json:"pending,omitempty"`
}

// NotificationView is a pending operator notification.
type NotificationView struct {
	Source   string `json:"source"`
	Message  string `json:"message"`
	Priority string `json:"priority"`
}

// PerfView carries the frame-rate monitor state.
type PerfView struct {
	FPS       float64 `json:"fps"`
	Threshold float64 `json:"threshold"`
	Alert     bool    `json:"alert"`
}

// Viewport returns the active viewport, or nil if there is none.
func (s Snapshot) Viewport() *ViewportView {
	for i := range s.Viewports {
		if s.Viewports[i].ID == s.ActiveViewport {
			return &s.Viewports[i]
		}
	}
	return nil
}

// Surface returns the surface with id, or nil.
func (s Snapshot) Surface(id int) *SurfaceView {
	for i := range s.Surfaces {
		if s.Surfaces[i].ID == id {
			return &s.Surfaces[i]
		}
	}
	return nil
}

// Sector returns the sector with id, or nil.
func (s Snapshot) Sector(id int) *SectorView {
	for i := range s.Sectors {
		if s.Sectors[i].ID == id {
			return &s.Sectors[i]
		}
	}
	return nil
}

// StateUpdate is one event on the brain's update stream.
type StateUpdate struct {
	UpdateType string    `json:"update_type"`
	Source     string    `json:"source,omitempty"`
	Payload    any       `json:"payload,omitempty"`
	Snapshot   *Snapshot `json:"snapshot,omitempty"`
	ConfigFile string    `json:"config_file,omitempty"`
}

// PortalGrant is the answer to a portal request.
type PortalGrant struct {
	Sector int    `json:"sector"`
	URL    string `json:"url"`
	Token  string `json:"token"`
}
