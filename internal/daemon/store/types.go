// Package store owns the brain state for the tos daemon.
package store

// UpdateType defines what kind of data changed.
type UpdateType string

const (
	UpdateDispatch     UpdateType = "dispatch"
	UpdateTick         UpdateType = "tick"
	UpdateStats        UpdateType = "stats"
	UpdateCues         UpdateType = "cues"
	UpdateConfigReload UpdateType = "config_reload"
)

// Update represents a change to the state.
type Update struct {
	Type    UpdateType  `json:"type"`
	Source  string      `json:"source"` // Which component sent this update (e.g. "tcp", "tick", "stats")
	Payload interface{} `json:"payload,omitempty"`
}

// Cues carries the audio and haptic cues drained by one tick.
type Cues struct {
	Audio   []string `json:"audio,omitempty"`
	Haptics []string `json:"haptics,omitempty"`
}
