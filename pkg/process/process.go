// Package process answers questions about other processes on this host:
// liveness for the brain pid file and CPU/memory usage for surfaces
// attached to a pid.
package process

import (
	"fmt"
	"os"
	"syscall"
)

// IsProcessAlive reports whether pid exists. Signal 0 probes without
// delivering anything; EPERM still means the process is there.
func IsProcessAlive(pid int) bool {
	if pid <= 0 {
		return false
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}

	err = proc.Signal(syscall.Signal(0))
	return err == nil || os.IsPermission(err)
}

// Terminate sends SIGTERM to pid.
func Terminate(pid int) error {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to find process %d: %w", pid, err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("failed to send stop signal: %w", err)
	}
	return nil
}
