package engine

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tactical-os/tos/internal/brain"
	"github.com/tactical-os/tos/internal/daemon/collector"
	"github.com/tactical-os/tos/internal/daemon/store"
)

func TestEngineForwardsCollectorUpdates(t *testing.T) {
	logger, hook := test.NewNullLogger()
	st := store.New(brain.NewState(nil))
	e := New(st, logrus.NewEntry(logger))
	e.Register(collector.NewTickCollector(time.Millisecond, nil, logrus.NewEntry(logger)))

	sub := st.Subscribe()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		e.Start(ctx)
		close(done)
	}()

	select {
	case u := <-sub:
		assert.Equal(t, store.UpdateTick, u.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("no update forwarded")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("engine did not stop")
	}

	require.NotEmpty(t, hook.AllEntries())
	assert.Equal(t, "Starting collector", hook.AllEntries()[0].Message)
}
