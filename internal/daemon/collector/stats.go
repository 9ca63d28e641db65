package collector

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tactical-os/tos/internal/brain"
	"github.com/tactical-os/tos/internal/daemon/store"
	"github.com/tactical-os/tos/pkg/process"
)

// StatsFunc samples one process.
type StatsFunc func(pid int) (process.Stats, error)

// StatsCollector samples CPU and memory for surfaces bound to a process.
// Sampling happens outside the store lock.
type StatsCollector struct {
	interval time.Duration
	stats    StatsFunc
	logger   *logrus.Entry
}

// NewStatsCollector creates a StatsCollector backed by process.GetStats.
func NewStatsCollector(interval time.Duration, logger *logrus.Entry) *StatsCollector {
	return &StatsCollector{
		interval: interval,
		stats:    process.GetStats,
		logger:   logger,
	}
}

// Name returns the collector's name.
func (c *StatsCollector) Name() string { return "stats" }

// Run starts the sampling loop.
func (c *StatsCollector) Run(ctx context.Context, st *store.Store, updates chan<- store.Update) error {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			c.scan(ctx, st, updates)
		}
	}
}

type sample struct {
	surface int
	stats   process.Stats
}

func (c *StatsCollector) scan(ctx context.Context, st *store.Store, updates chan<- store.Update) {
	targets := map[int]int{}
	st.View(func(s *brain.State) {
		for _, surface := range s.Registry.Surfaces() {
			if surface.PID > 0 {
				targets[surface.ID] = surface.PID
			}
		}
	})
	if len(targets) == 0 {
		return
	}

	var samples []sample
	for surface, pid := range targets {
		stats, err := c.stats(pid)
		if err != nil {
			c.logger.WithError(err).WithFields(logrus.Fields{
				"surface": surface,
				"pid":     pid,
			}).Debug("Process statistics unavailable")
			continue
		}
		samples = append(samples, sample{surface: surface, stats: stats})
	}
	if len(samples) == 0 {
		return
	}

	st.Mutate(func(s *brain.State) {
		for _, smp := range samples {
			s.Registry.SetTelemetry(smp.surface, smp.stats.CPUPercent, smp.stats.MemPercent)
		}
	})

	emit(ctx, updates, store.Update{Type: store.UpdateStats, Source: c.Name(), Payload: len(samples)})
}
