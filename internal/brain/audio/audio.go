// Package audio holds the pending audio and haptic cues produced by the
// brain. Playback is the face's concern; the brain only queues cue ids.
package audio

// Well-known cue ids.
const (
	CueChirp        = "chirp"
	CueBeep         = "beep"
	CueConsolePulse = "console_pulse"
	CueBridgeHum    = "bridge_hum"
)

// Ambient cue cadence, in ticks.
const (
	ConsolePulseEvery = 47
	BridgeHumEvery    = 100
)

// effects are one-shot interface sounds gated by EffectsEnabled.
var effects = map[string]bool{
	CueChirp: true,
	CueBeep:  true,
}

// Queue is an ordered list of pending cues plus the toggles that gate them.
type Queue struct {
	Enabled        bool
	EffectsEnabled bool
	AmbientEnabled bool

	// AmbientTimer counts ticks while ambient audio is running.
	AmbientTimer uint64

	cues []string
}

// NewQueue returns a queue with every toggle on.
func NewQueue() *Queue {
	return &Queue{Enabled: true, EffectsEnabled: true, AmbientEnabled: true}
}

// Play enqueues cue unless the master switch, or for effect cues the
// effects switch, is off. It reports whether the cue was queued.
func (q *Queue) Play(cue string) bool {
	if !q.Enabled {
		return false
	}
	if effects[cue] && !q.EffectsEnabled {
		return false
	}
	q.cues = append(q.cues, cue)
	return true
}

// AmbientActive reports whether ambient cues are produced on tick.
func (q *Queue) AmbientActive() bool {
	return q.Enabled && q.AmbientEnabled
}

// AdvanceAmbient moves the ambient timer forward one tick and queues the
// ambient cues that fall due. Nothing happens while ambient is inactive.
func (q *Queue) AdvanceAmbient() {
	if !q.AmbientActive() {
		return
	}
	q.AmbientTimer++
	if q.AmbientTimer%ConsolePulseEvery == 0 {
		q.cues = append(q.cues, CueConsolePulse)
	}
	if q.AmbientTimer%BridgeHumEvery == 0 {
		q.cues = append(q.cues, CueBridgeHum)
	}
}

// Pending returns a copy of the queued cues without draining them.
func (q *Queue) Pending() []string {
	return append([]string(nil), q.cues...)
}

// Len returns the number of queued cues.
func (q *Queue) Len() int {
	return len(q.cues)
}

// Drain returns the queued cues in order and empties the queue.
func (q *Queue) Drain() []string {
	out := q.cues
	q.cues = nil
	return out
}

// HapticQueue is an ordered list of pending haptic cues.
type HapticQueue struct {
	Enabled bool
	cues    []string
}

// NewHapticQueue returns an enabled haptic queue.
func NewHapticQueue() *HapticQueue {
	return &HapticQueue{Enabled: true}
}

// Trigger enqueues cue when haptics are enabled.
func (h *HapticQueue) Trigger(cue string) bool {
	if !h.Enabled {
		return false
	}
	h.cues = append(h.cues, cue)
	return true
}

// Pending returns a copy of the queued cues.
func (h *HapticQueue) Pending() []string {
	return append([]string(nil), h.cues...)
}

// Drain returns the queued cues in order and empties the queue.
func (h *HapticQueue) Drain() []string {
	out := h.cues
	h.cues = nil
	return out
}
