package collector

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tactical-os/tos/errors"
	"github.com/tactical-os/tos/internal/brain"
	"github.com/tactical-os/tos/internal/brain/audio"
	"github.com/tactical-os/tos/internal/brain/registry"
	"github.com/tactical-os/tos/internal/brain/tick"
	"github.com/tactical-os/tos/internal/daemon/store"
	"github.com/tactical-os/tos/pkg/process"
)

func quietLogger() *logrus.Entry {
	logger, _ := test.NewNullLogger()
	return logrus.NewEntry(logger)
}

func TestSampleSinkNeverBlocks(t *testing.T) {
	sink := NewSampleSink(2)
	sink.Report(60)
	sink.Report(30)
	sink.Report(10)
	assert.Equal(t, []float64{60, 30}, sink.drain())
	assert.Empty(t, sink.drain())

	var nilSink SampleSink
	assert.Empty(t, nilSink.drain())
}

func TestTickStepAppliesSamplesAndEmitsCues(t *testing.T) {
	st := store.New(brain.NewState(nil))
	sink := NewSampleSink(8)
	c := NewTickCollector(time.Millisecond, sink, quietLogger())
	updates := make(chan store.Update, 200)
	ctx := context.Background()

	sink.Report(12)
	sink.Report(-1)
	c.step(ctx, st, updates)

	u := <-updates
	require.Equal(t, store.UpdateTick, u.Type)
	report := u.Payload.(tick.Report)
	assert.Equal(t, 1, report.Accepted)
	assert.Equal(t, 1, report.Skipped)
	assert.True(t, report.Alert)
	assert.True(t, st.Snapshot().Performance.Alert)

	for i := 1; i < audio.ConsolePulseEvery; i++ {
		c.step(ctx, st, updates)
	}
	var cues *store.Cues
	for len(updates) > 0 {
		u := <-updates
		if u.Type == store.UpdateCues {
			got := u.Payload.(store.Cues)
			cues = &got
		}
	}
	require.NotNil(t, cues)
	assert.Equal(t, []string{audio.CueConsolePulse}, cues.Audio)
	assert.Empty(t, st.Snapshot().Audio.Pending, "cues are drained into the update")
}

func TestTickRunStopsOnCancel(t *testing.T) {
	st := store.New(brain.NewState(nil))
	c := NewTickCollector(time.Millisecond, nil, quietLogger())
	updates := make(chan store.Update, 1000)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- c.Run(ctx, st, updates) }()

	require.Eventually(t, func() bool { return st.Snapshot().Uptime >= 3 }, 2*time.Second, time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("tick collector did not stop")
	}
}

func TestStatsScan(t *testing.T) {
	st := store.New(brain.NewState(nil))
	var live, gone int
	st.Mutate(func(s *brain.State) {
		sector := 0
		live = s.Registry.CreateSurface("Reactor", registry.RoleToplevel, &sector)
		gone = s.Registry.CreateSurface("Ghost", registry.RoleToplevel, &sector)
		s.Registry.CreateSurface("Unbound", registry.RoleToplevel, &sector)
		require.NoError(t, s.Registry.AttachProcess(live, 100))
		require.NoError(t, s.Registry.AttachProcess(gone, 200))
	})

	var queried []int
	c := NewStatsCollector(time.Second, quietLogger())
	c.stats = func(pid int) (process.Stats, error) {
		queried = append(queried, pid)
		if pid == 200 {
			return process.Stats{}, errors.New(errors.ErrCodeNotFound, "process 200 not found")
		}
		return process.Stats{PID: pid, CPUPercent: 12.5, MemPercent: 3.25}, nil
	}
	updates := make(chan store.Update, 1)

	c.scan(context.Background(), st, updates)

	assert.ElementsMatch(t, []int{100, 200}, queried)
	snap := st.Snapshot()
	assert.Equal(t, 12.5, snap.Surface(live).CPU)
	assert.Equal(t, 3.25, snap.Surface(live).Mem)
	assert.Zero(t, snap.Surface(gone).CPU)

	u := <-updates
	assert.Equal(t, store.UpdateStats, u.Type)
	assert.Equal(t, 1, u.Payload)
}
