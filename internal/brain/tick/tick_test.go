package tick

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tactical-os/tos/internal/brain"
	"github.com/tactical-os/tos/internal/brain/audio"
	"github.com/tactical-os/tos/internal/brain/processor"
)

func TestAmbientCueWithinFiftyTicks(t *testing.T) {
	st := brain.NewState(nil)
	for i := 0; i < 50; i++ {
		Tick(st, nil)
	}
	assert.Contains(t, st.Audio.Drain(), audio.CueConsolePulse)
}

func TestAmbientDisabledStaysQuiet(t *testing.T) {
	st := brain.NewState(nil)
	for i := 0; i < 60; i++ {
		Tick(st, nil)
	}

	processor.Process(st, "config ambient off")
	st.Audio.Drain()
	for i := 0; i < 100; i++ {
		report := Tick(st, nil)
		assert.Zero(t, report.Queued)
	}
	assert.Empty(t, st.Audio.Drain())
	assert.Equal(t, uint64(160), st.Uptime)
}

func TestPerformanceAlert(t *testing.T) {
	st := brain.NewState(nil)

	report := Tick(st, []float64{60, 12.3})
	assert.Equal(t, 2, report.Accepted)
	assert.True(t, report.Alert)
	assert.True(t, report.AlertChanged)
	assert.Equal(t, 12.3, report.FPS)

	report = Tick(st, []float64{math.NaN(), -1, 0, math.Inf(1)})
	assert.Equal(t, 4, report.Skipped)
	assert.True(t, report.Alert)
	assert.False(t, report.AlertChanged)
	assert.Equal(t, 12.3, st.Perf.FPS)

	report = Tick(st, []float64{58})
	assert.False(t, report.Alert)
	assert.True(t, report.AlertChanged)
}
