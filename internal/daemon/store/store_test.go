package store

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tactical-os/tos/internal/brain"
	"github.com/tactical-os/tos/internal/brain/processor"
	"github.com/tactical-os/tos/internal/brain/registry"
)

func TestMutateAndSnapshot(t *testing.T) {
	st := New(brain.NewState(nil))

	var id int
	st.Mutate(func(s *brain.State) {
		sector := 1
		id = s.Registry.CreateSurface("Helm", registry.RoleToplevel, &sector)
	})

	snap := st.Snapshot()
	require.NotNil(t, snap.Surface(id))
	assert.Equal(t, "Helm", snap.Surface(id).Title)

	snap.Surface(id).History[0] = "tampered"
	assert.Equal(t, "Surface created: Helm", st.Snapshot().Surface(id).History[0])
}

func TestPanicPoisonsStore(t *testing.T) {
	var fatalMsg string
	st := New(brain.NewState(nil), WithFatal(func(args ...interface{}) {
		fatalMsg = fmt.Sprint(args...)
	}))

	assert.PanicsWithValue(t, "boom", func() {
		st.Mutate(func(*brain.State) { panic("boom") })
	})
	assert.True(t, st.Poisoned())
	assert.Empty(t, fatalMsg, "the panicking call itself does not trigger the fatal hook")

	assert.Panics(t, func() { st.Snapshot() })
	assert.Contains(t, fatalMsg, "poisoned by panic: boom")
}

func TestSubscribe(t *testing.T) {
	st := New(brain.NewState(nil))
	ch := st.Subscribe()

	st.Publish(Update{Type: UpdateDispatch, Source: "test"})
	u := <-ch
	assert.Equal(t, UpdateDispatch, u.Type)

	st.BroadcastConfigReload("/etc/tos.yml")
	u = <-ch
	assert.Equal(t, UpdateConfigReload, u.Type)
	assert.Equal(t, "/etc/tos.yml", u.Payload)

	st.Unsubscribe(ch)
	_, open := <-ch
	assert.False(t, open)
	st.Unsubscribe(ch)
}

func TestPublishDoesNotBlockOnSlowSubscriber(t *testing.T) {
	st := New(brain.NewState(nil))
	st.Subscribe()
	for i := 0; i < 500; i++ {
		st.Publish(Update{Type: UpdateTick})
	}
}

// Snapshots taken while moves are in flight must always show each surface
// listed in exactly the sector its SectorID names, with one history entry
// per completed move.
func TestConcurrentMutationsAreAtomic(t *testing.T) {
	st := New(brain.NewState(nil))
	const surfaces = 4
	st.Mutate(func(s *brain.State) {
		for i := 0; i < surfaces; i++ {
			sector := 0
			s.Registry.CreateSurface(fmt.Sprintf("Node %d", i), registry.RoleToplevel, &sector)
		}
	})

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				req := fmt.Sprintf("move %d %d", (w+i)%surfaces+1, i%4)
				st.Mutate(func(s *brain.State) { processor.Process(s, req) })
			}
		}(w)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	for {
		snap := st.Snapshot()
		for _, surface := range snap.Surfaces {
			require.NotNil(t, surface.SectorID)
			members := 0
			for _, sector := range snap.Sectors {
				for _, sid := range sector.Surfaces {
					if sid == surface.ID {
						members++
						assert.Equal(t, sector.ID, *surface.SectorID)
					}
				}
			}
			assert.Equal(t, 1, members)
		}
		select {
		case <-done:
			total := 0
			for _, surface := range st.Snapshot().Surfaces {
				total += len(surface.History) - 1
			}
			assert.Equal(t, 800, total)
			return
		default:
		}
	}
}
