package face

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tactical-os/tos/pkg/models"
)

// RefreshRate caps the reported frame rate.
const RefreshRate = 60.0

// SnapshotFunc yields the state to render.
type SnapshotFunc func() models.Snapshot

// Frame is one rendered frame.
type Frame struct {
	Markup     string        `json:"markup"`
	RenderedAt time.Time     `json:"rendered_at"`
	Duration   time.Duration `json:"duration"`
	FPS        float64       `json:"fps"`
}

// Loop renders on a fixed cadence and reports the sustainable frame rate.
// It only reads snapshots and never mutates brain state.
type Loop struct {
	source   SnapshotFunc
	interval time.Duration
	report   func(fps float64)
	logger   *logrus.Entry

	mu     sync.RWMutex
	latest Frame
	frames uint64
}

// NewLoop creates a render loop. report may be nil.
func NewLoop(source SnapshotFunc, interval time.Duration, report func(float64), logger *logrus.Entry) *Loop {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Loop{
		source:   source,
		interval: interval,
		report:   report,
		logger:   logger,
	}
}

// Run renders until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	l.Step()
	for {
		select {
		case <-ctx.Done():
			l.logger.WithField("frames", l.Frames()).Debug("Render loop stopped")
			return nil
		case <-ticker.C:
			l.Step()
		}
	}
}

// Step renders one frame. The frame time covers taking the snapshot, so lock
// contention in the brain shows up as a lower frame rate.
func (l *Loop) Step() Frame {
	start := time.Now()
	snap := l.source()
	markup := Render(snap)
	elapsed := time.Since(start)

	frame := Frame{
		Markup:     markup,
		RenderedAt: start,
		Duration:   elapsed,
		FPS:        FrameRate(elapsed),
	}
	if l.report != nil {
		l.report(frame.FPS)
	}

	l.mu.Lock()
	l.latest = frame
	l.frames++
	l.mu.Unlock()
	return frame
}

// Latest returns the most recent frame, if any.
func (l *Loop) Latest() (Frame, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.latest, l.frames > 0
}

// Frames returns the number of frames rendered.
func (l *Loop) Frames() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.frames
}

// FrameRate converts a frame time to frames per second, capped at
// RefreshRate.
func FrameRate(d time.Duration) float64 {
	if d <= 0 {
		return RefreshRate
	}
	fps := float64(time.Second) / float64(d)
	if fps > RefreshRate {
		return RefreshRate
	}
	return fps
}
