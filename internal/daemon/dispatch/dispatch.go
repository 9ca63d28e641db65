// Package dispatch is the single entry point through which every request
// source (console, TCP listener, HTTP API, native link) reaches the brain.
package dispatch

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tactical-os/tos/internal/brain"
	"github.com/tactical-os/tos/internal/brain/processor"
	"github.com/tactical-os/tos/internal/daemon/store"
	"github.com/tactical-os/tos/pkg/models"
)

// Request sources.
const (
	SourceConsole = "console"
	SourceTCP     = "tcp"
	SourceAPI     = "api"
	SourceLink    = "link"
)

// Recorder persists dispatch entries.
type Recorder interface {
	Record(ctx context.Context, e models.JournalEntry) error
}

// Dispatcher applies request lines to the store.
type Dispatcher struct {
	store   *store.Store
	journal Recorder
	logger  *logrus.Entry
}

// New creates a dispatcher. journal may be nil.
func New(st *store.Store, journal Recorder, logger *logrus.Entry) *Dispatcher {
	return &Dispatcher{store: st, journal: journal, logger: logger}
}

// Dispatch processes a console request.
func (d *Dispatcher) Dispatch(request string) string {
	return d.DispatchFrom(SourceConsole, request, nil)
}

// DispatchFrom processes request on behalf of source. The whole command runs
// under one store mutation; the journal is written after the lock is
// released.
func (d *Dispatcher) DispatchFrom(source, request string, metadata map[string]string) string {
	requestID := uuid.New().String()
	start := time.Now()

	var response string
	d.store.Mutate(func(st *brain.State) {
		response = processor.Process(st, request)
	})
	elapsed := time.Since(start)
	failed := processor.IsFailure(response)

	d.store.Publish(store.Update{
		Type:    store.UpdateDispatch,
		Source:  source,
		Payload: response,
	})

	logger := d.logger.WithFields(logrus.Fields{
		"request_id": requestID,
		"source":     source,
		"duration":   elapsed,
	})
	if failed {
		logger.WithField("request", request).Warn(response)
	} else {
		logger.WithField("request", request).Debug(response)
	}

	if d.journal != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		err := d.journal.Record(ctx, models.JournalEntry{
			RequestID: requestID,
			Source:    source,
			Request:   request,
			Response:  response,
			Failed:    failed,
			Duration:  elapsed,
			Metadata:  models.JSONField[map[string]string]{Data: metadata},
			CreatedAt: start,
		})
		if err != nil {
			logger.WithError(err).Warn("Failed to journal dispatch")
		}
	}

	return response
}
