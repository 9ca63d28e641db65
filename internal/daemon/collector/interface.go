// Package collector provides background workers that advance and sample the
// brain state on a fixed cadence.
package collector

import (
	"context"

	"github.com/tactical-os/tos/internal/daemon/store"
)

// Collector is a background worker that updates the store and emits updates.
type Collector interface {
	// Name returns the collector's name for logging.
	Name() string

	// Run starts the collector. It should block until context is canceled.
	// State changes go through st.Mutate; notifications go to updates.
	Run(ctx context.Context, st *store.Store, updates chan<- store.Update) error
}

// emit sends u unless ctx is done first.
func emit(ctx context.Context, updates chan<- store.Update, u store.Update) {
	select {
	case updates <- u:
	case <-ctx.Done():
	}
}
