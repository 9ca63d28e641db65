package collector

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tactical-os/tos/internal/brain"
	"github.com/tactical-os/tos/internal/brain/tick"
	"github.com/tactical-os/tos/internal/daemon/store"
)

// SampleSink carries frame-rate samples from renderers to the tick collector.
type SampleSink chan float64

// NewSampleSink creates a sink buffering up to size samples.
func NewSampleSink(size int) SampleSink {
	return make(SampleSink, size)
}

// Report offers a sample. It never blocks: when the buffer is full the
// sample is dropped.
func (s SampleSink) Report(fps float64) {
	select {
	case s <- fps:
	default:
	}
}

// drain takes every buffered sample without blocking.
func (s SampleSink) drain() []float64 {
	var out []float64
	for {
		select {
		case fps := <-s:
			out = append(out, fps)
		default:
			return out
		}
	}
}

// TickCollector runs the tick engine on a fixed interval.
type TickCollector struct {
	interval time.Duration
	samples  SampleSink
	logger   *logrus.Entry
}

// NewTickCollector creates a TickCollector. samples may be nil.
func NewTickCollector(interval time.Duration, samples SampleSink, logger *logrus.Entry) *TickCollector {
	return &TickCollector{
		interval: interval,
		samples:  samples,
		logger:   logger,
	}
}

// Name returns the collector's name.
func (c *TickCollector) Name() string { return "tick" }

// Run starts the tick loop.
func (c *TickCollector) Run(ctx context.Context, st *store.Store, updates chan<- store.Update) error {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			c.step(ctx, st, updates)
		}
	}
}

func (c *TickCollector) step(ctx context.Context, st *store.Store, updates chan<- store.Update) {
	samples := c.samples.drain()

	var (
		report tick.Report
		cues   store.Cues
	)
	st.Mutate(func(s *brain.State) {
		report = tick.Tick(s, samples)
		cues.Audio = s.Audio.Drain()
		cues.Haptics = s.Haptics.Drain()
	})

	if report.Skipped > 0 {
		c.logger.WithField("skipped", report.Skipped).Debug("Discarded malformed frame samples")
	}
	if report.AlertChanged {
		entry := c.logger.WithField("fps", report.FPS)
		if report.Alert {
			entry.Warn("Frame rate below alert threshold")
		} else {
			entry.Info("Frame rate recovered")
		}
	}

	emit(ctx, updates, store.Update{Type: store.UpdateTick, Source: c.Name(), Payload: report})
	if len(cues.Audio) > 0 || len(cues.Haptics) > 0 {
		emit(ctx, updates, store.Update{Type: store.UpdateCues, Source: c.Name(), Payload: cues})
	}
}
