// Package daemon provides a client for the tos brain. It implements a
// transparent fallback: if the brain is running, requests go over its unix
// socket; if not, they run against an in-process brain.
package daemon

import (
	"context"

	"github.com/tactical-os/tos/pkg/models"
)

// Client defines the interface for talking to the brain.
// Both RemoteClient (socket) and LocalClient (in-process) implement it.
type Client interface {
	// Snapshot returns the current brain state.
	Snapshot(ctx context.Context) (*models.Snapshot, error)

	// Render returns the current frame markup.
	Render(ctx context.Context) (string, error)

	// Dispatch runs one request line and returns the response line. Command
	// failures are reported in the response, not as an error.
	Dispatch(ctx context.Context, request string) (string, error)

	// Journal lists journaled dispatches, newest first.
	Journal(ctx context.Context, filter models.Filter) ([]models.JournalEntry, error)

	// RequestPortal issues a one-time portal token for a sector.
	RequestPortal(ctx context.Context, sector int) (*models.PortalGrant, error)

	// RevokePortal withdraws an unused portal token.
	RevokePortal(ctx context.Context, token string) error

	// StreamState subscribes to state updates. The channel is closed when
	// ctx is cancelled or the connection is lost.
	StreamState(ctx context.Context) (<-chan models.StateUpdate, error)

	// IsRunning returns true if the brain is available and responding.
	IsRunning() bool

	// Close cleans up any resources used by the client.
	Close() error
}
