package store

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/tactical-os/tos/internal/brain"
	"github.com/tactical-os/tos/pkg/models"
)

// FatalFunc is called when the store is used after a mutation panicked.
// It must not return normally.
type FatalFunc func(args ...interface{})

// Store holds the only brain.State. Every read and write goes through its
// mutex, and it supports pub/sub for real-time updates.
type Store struct {
	mu       sync.Mutex
	state    *brain.State
	poisoned interface{}
	fatal    FatalFunc

	subMu       sync.RWMutex
	subscribers map[chan Update]struct{}
}

// Option configures a Store.
type Option func(*Store)

// WithFatal replaces the handler invoked on a poisoned store.
func WithFatal(fn FatalFunc) Option {
	return func(s *Store) { s.fatal = fn }
}

// New creates a store around st.
func New(st *brain.State, opts ...Option) *Store {
	s := &Store{
		state:       st,
		fatal:       logrus.Fatal,
		subscribers: make(map[chan Update]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// lock acquires the state mutex. A store poisoned by an earlier panic is
// never served: the fatal handler runs instead.
func (s *Store) lock() {
	s.mu.Lock()
	if s.poisoned != nil {
		cause := s.poisoned
		s.mu.Unlock()
		s.fatal(fmt.Sprintf("brain state poisoned by panic: %v", cause))
		panic(fmt.Sprintf("brain state poisoned by panic: %v", cause))
	}
}

// Mutate runs fn with exclusive access to the state. If fn panics the store
// is poisoned, the lock is released and the panic continues.
func (s *Store) Mutate(fn func(*brain.State)) {
	s.lock()
	defer s.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			s.poisoned = r
			panic(r)
		}
	}()
	fn(s.state)
}

// View runs fn with exclusive access to the state for reading. fn must not
// retain references into the state.
func (s *Store) View(fn func(*brain.State)) {
	s.Mutate(fn)
}

// Snapshot returns a deep copy of the state.
func (s *Store) Snapshot() models.Snapshot {
	var snap models.Snapshot
	s.View(func(st *brain.State) {
		snap = st.Snapshot()
	})
	return snap
}

// Poisoned reports whether a mutation has panicked.
func (s *Store) Poisoned() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.poisoned != nil
}

// Publish notifies subscribers of an update.
func (s *Store) Publish(u Update) {
	s.subMu.RLock()
	defer s.subMu.RUnlock()

	for ch := range s.subscribers {
		select {
		case ch <- u:
		default:
			// Non-blocking send to prevent slow clients from stalling the daemon
		}
	}
}

// Subscribe creates a new subscription channel for state updates.
func (s *Store) Subscribe() chan Update {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	ch := make(chan Update, 100) // Buffered
	s.subscribers[ch] = struct{}{}
	return ch
}

// Unsubscribe removes a subscription and closes its channel.
func (s *Store) Unsubscribe(ch chan Update) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	if _, ok := s.subscribers[ch]; !ok {
		return
	}
	delete(s.subscribers, ch)
	close(ch)
}

// BroadcastConfigReload sends a config reload notification to all subscribers.
func (s *Store) BroadcastConfigReload(file string) {
	s.Publish(Update{
		Type:    UpdateConfigReload,
		Source:  "config",
		Payload: file,
	})
}
