package dispatch

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tactical-os/tos/internal/brain"
	"github.com/tactical-os/tos/internal/brain/registry"
	"github.com/tactical-os/tos/internal/daemon/store"
	"github.com/tactical-os/tos/pkg/models"
)

type memJournal struct {
	mu      sync.Mutex
	entries []models.JournalEntry
	err     error
}

func (m *memJournal) Record(_ context.Context, e models.JournalEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, e)
	return nil
}

func newDispatcher(t *testing.T, j Recorder) (*Dispatcher, *store.Store, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	st := store.New(brain.NewState(nil))
	return New(st, j, logrus.NewEntry(logger)), st, hook
}

func TestDispatchMove(t *testing.T) {
	j := &memJournal{}
	d, st, _ := newDispatcher(t, j)
	st.Mutate(func(s *brain.State) {
		sector := 0
		s.Registry.CreateSurface("Logic Core", registry.RoleToplevel, &sector)
	})
	updates := st.Subscribe()

	resp := d.Dispatch("move 1 2")
	assert.Equal(t, "Surface 1 moved to Sector 2", resp)
	assert.Equal(t, 2, *st.Snapshot().Surface(1).SectorID)

	u := <-updates
	assert.Equal(t, store.UpdateDispatch, u.Type)
	assert.Equal(t, SourceConsole, u.Source)

	require.Len(t, j.entries, 1)
	assert.Equal(t, "move 1 2", j.entries[0].Request)
	assert.False(t, j.entries[0].Failed)
	assert.NotEmpty(t, j.entries[0].RequestID)
}

func TestDispatchFailureIsJournaledAndLogged(t *testing.T) {
	j := &memJournal{}
	d, _, hook := newDispatcher(t, j)

	resp := d.DispatchFrom(SourceTCP, "move 5 1", map[string]string{"remote": "10.0.0.2:4100"})
	assert.Equal(t, "Error: surface 5 not found", resp)

	require.Len(t, j.entries, 1)
	assert.True(t, j.entries[0].Failed)
	assert.Equal(t, "10.0.0.2:4100", j.entries[0].Metadata.Data["remote"])

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, SourceTCP, entry.Data["source"])
}

func TestJournalErrorsDoNotFailDispatch(t *testing.T) {
	d, _, hook := newDispatcher(t, &memJournal{err: fmt.Errorf("disk full")})

	assert.Equal(t, "Bezel EXPANDED", d.Dispatch("bezel"))
	assert.Equal(t, "Failed to journal dispatch", hook.LastEntry().Message)
}

func TestConcurrentDispatch(t *testing.T) {
	d, st, _ := newDispatcher(t, nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			d.DispatchFrom(SourceAPI, fmt.Sprintf("spawn Scout-%d", i), nil)
		}(i)
	}
	wg.Wait()

	snap := st.Snapshot()
	assert.Len(t, snap.Surfaces, 20)
	ids := map[int]bool{}
	for _, s := range snap.Surfaces {
		assert.False(t, ids[s.ID])
		ids[s.ID] = true
	}
}

// checkConsistent asserts that no multi-step command is visible half-applied.
// It only uses assert so that it may run off the test goroutine.
func checkConsistent(t *testing.T, snap models.Snapshot) bool {
	t.Helper()
	ok := true
	inspected := false
	for _, s := range snap.Surfaces {
		for i := len(s.History) - 1; i >= 0; i-- {
			var sector int
			if _, err := fmt.Sscanf(s.History[i], "Moved to Sector %d", &sector); err == nil {
				ok = assert.NotNil(t, s.SectorID) &&
					assert.Equal(t, sector, *s.SectorID, "surface %d history ahead of its sector", s.ID) && ok
				break
			}
		}
		if s.SectorID != nil {
			sec := snap.Sector(*s.SectorID)
			ok = assert.NotNil(t, sec) && assert.Contains(t, sec.Surfaces, s.ID) && ok
		}
		for _, h := range s.History {
			if strings.HasPrefix(h, "Deep-scan") {
				inspected = true
			}
		}
	}

	vp := snap.Viewport()
	if !inspected {
		return assert.Equal(t, 1, vp.Level) && ok
	}
	if !assert.Equal(t, 3, vp.Level) || !assert.NotNil(t, vp.SurfaceID) {
		return false
	}
	focused := snap.Surface(*vp.SurfaceID)
	return assert.NotNil(t, focused) && assert.Contains(t, focused.History, "Deep-scan inspection initiated.") && ok
}

func TestConcurrentDispatchNeverExposesPartialState(t *testing.T) {
	d, st, _ := newDispatcher(t, nil)
	const surfaces = 8
	st.Mutate(func(s *brain.State) {
		for i := 0; i < surfaces; i++ {
			sector := 0
			s.Registry.CreateSurface(fmt.Sprintf("Node-%d", i), registry.RoleToplevel, &sector)
		}
	})

	var done atomic.Bool
	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		for !done.Load() {
			if !checkConsistent(t, st.Snapshot()) {
				return
			}
		}
	}()

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				id := (w+i)%surfaces + 1
				if i%2 == 0 {
					d.DispatchFrom(SourceAPI, fmt.Sprintf("move %d %d", id, (w+i)%4), nil)
				} else {
					d.DispatchFrom(SourceTCP, fmt.Sprintf("inspect %d", id), nil)
				}
			}
		}(w)
	}
	wg.Wait()
	done.Store(true)
	<-readerDone

	checkConsistent(t, st.Snapshot())
}
