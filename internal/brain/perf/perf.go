// Package perf tracks the renderer frame rate and raises an alert when it
// drops below a threshold.
package perf

import "math"

// DefaultThreshold is the alert threshold in frames per second.
const DefaultThreshold = 20.0

// Monitor holds the latest frame rate and the derived alert flag.
type Monitor struct {
	FPS       float64
	Threshold float64
	Alert     bool
	// Samples counts accepted samples; Skipped counts rejected ones.
	Samples uint64
	Skipped uint64
}

// NewMonitor returns a monitor with the given threshold. A non-positive
// threshold selects DefaultThreshold.
func NewMonitor(threshold float64) *Monitor {
	m := &Monitor{}
	m.SetThreshold(threshold)
	return m
}

// SetThreshold changes the alert threshold and re-evaluates the alert.
func (m *Monitor) SetThreshold(threshold float64) {
	if threshold <= 0 || math.IsNaN(threshold) || math.IsInf(threshold, 0) {
		threshold = DefaultThreshold
	}
	m.Threshold = threshold
	if m.Samples > 0 {
		m.Alert = m.FPS < m.Threshold
	}
}

// Valid reports whether fps is a usable sample.
func Valid(fps float64) bool {
	return fps > 0 && !math.IsNaN(fps) && !math.IsInf(fps, 0)
}

// Record applies a frame-rate sample. Invalid samples are counted and
// otherwise ignored. It reports whether the sample was accepted.
func (m *Monitor) Record(fps float64) bool {
	if !Valid(fps) {
		m.Skipped++
		return false
	}
	m.FPS = fps
	m.Samples++
	m.Alert = fps < m.Threshold
	return true
}
