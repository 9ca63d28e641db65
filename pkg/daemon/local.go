package daemon

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"github.com/tactical-os/tos/config"
	"github.com/tactical-os/tos/internal/brain"
	"github.com/tactical-os/tos/internal/daemon/dispatch"
	"github.com/tactical-os/tos/internal/daemon/store"
	"github.com/tactical-os/tos/internal/face"
	"github.com/tactical-os/tos/pkg/models"
)

// LocalClient implements Client against an in-process brain. It is used
// when no brain is running; its state lives only as long as the client.
type LocalClient struct {
	store      *store.Store
	dispatcher *dispatch.Dispatcher
}

// NewLocalClient creates a LocalClient. A nil cfg uses the defaults.
func NewLocalClient(cfg *config.Config) *LocalClient {
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	st := store.New(brain.NewState(cfg))
	return &LocalClient{
		store:      st,
		dispatcher: dispatch.New(st, nil, logrus.NewEntry(logger).WithField("component", "local")),
	}
}

// Snapshot returns the in-process brain state.
func (c *LocalClient) Snapshot(ctx context.Context) (*models.Snapshot, error) {
	snap := c.store.Snapshot()
	return &snap, nil
}

// Render renders the in-process brain state.
func (c *LocalClient) Render(ctx context.Context) (string, error) {
	return face.Render(c.store.Snapshot()), nil
}

// Dispatch runs request against the in-process brain.
func (c *LocalClient) Dispatch(ctx context.Context, request string) (string, error) {
	return c.dispatcher.Dispatch(request), nil
}

// Journal returns an error since the journal is owned by the brain.
func (c *LocalClient) Journal(ctx context.Context, filter models.Filter) ([]models.JournalEntry, error) {
	return nil, errors.New("journal not available in local mode; start the brain with 'tos brain start'")
}

// RequestPortal returns an error since tokens must be validated by the brain
// that issued them.
func (c *LocalClient) RequestPortal(ctx context.Context, sector int) (*models.PortalGrant, error) {
	return nil, errors.New("portal tokens require a running brain; start it with 'tos brain start'")
}

// RevokePortal returns an error since tokens live in the brain.
func (c *LocalClient) RevokePortal(ctx context.Context, token string) error {
	return errors.New("portal tokens require a running brain; start it with 'tos brain start'")
}

// StreamState returns an error for LocalClient since streaming is only available via the brain.
func (c *LocalClient) StreamState(ctx context.Context) (<-chan models.StateUpdate, error) {
	return nil, errors.New("streaming not available in local mode; start the brain for live updates")
}

// IsRunning returns false since this is the local fallback client.
func (c *LocalClient) IsRunning() bool {
	return false
}

// Close is a no-op for LocalClient.
func (c *LocalClient) Close() error {
	return nil
}

// Ensure LocalClient implements Client interface.
var _ Client = (*LocalClient)(nil)
