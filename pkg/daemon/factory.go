package daemon

import (
	"net"
	"os"
	"time"

	"github.com/tactical-os/tos/config"
	"github.com/tactical-os/tos/pkg/paths"
)

// New returns a Client that uses the brain if it is available, otherwise an
// in-process LocalClient built from cfg.
//
// Callers don't need to know whether the brain is running: the same API
// works in both modes.
func New(cfg *config.Config) Client {
	if client := dial(paths.SocketPath()); client != nil {
		return client
	}
	return NewLocalClient(cfg)
}

// Connect returns a RemoteClient, or nil if no brain answers on the socket.
func Connect() Client {
	if client := dial(paths.SocketPath()); client != nil {
		return client
	}
	return nil
}

func dial(socketPath string) Client {
	if _, err := os.Stat(socketPath); err != nil {
		return nil
	}
	conn, err := net.DialTimeout("unix", socketPath, 100*time.Millisecond)
	if err != nil {
		return nil
	}
	conn.Close()
	client, err := NewRemoteClient(socketPath)
	if err != nil {
		return nil
	}
	return client
}
