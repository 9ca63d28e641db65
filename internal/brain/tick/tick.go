// Package tick advances the brain by one step: ambient audio, frame-rate
// monitoring and the uptime counter. It never sleeps; the caller owns the
// cadence.
package tick

import (
	"github.com/tactical-os/tos/internal/brain"
)

// Report summarizes one tick.
type Report struct {
	Uptime uint64
	// Queued is the number of ambient cues produced by this tick.
	Queued int
	// Accepted and Skipped count frame-rate samples.
	Accepted int
	Skipped  int
	FPS      float64
	Alert    bool
	// AlertChanged is set when this tick raised or cleared the alert.
	AlertChanged bool
}

// Tick advances st once, applying samples in order. Malformed samples are
// counted and skipped.
func Tick(st *brain.State, samples []float64) Report {
	st.Uptime++

	before := st.Audio.Len()
	st.Audio.AdvanceAmbient()

	wasAlert := st.Perf.Alert
	report := Report{Uptime: st.Uptime, Queued: st.Audio.Len() - before}
	for _, fps := range samples {
		if st.Perf.Record(fps) {
			report.Accepted++
		} else {
			report.Skipped++
		}
	}

	report.FPS = st.Perf.FPS
	report.Alert = st.Perf.Alert
	report.AlertChanged = wasAlert != st.Perf.Alert
	return report
}
