// Package testutil holds helpers shared by the tos test suites.
package testutil

import (
	"crypto/rand"
	"encoding/hex"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// SocketPath returns a unix socket path in a fresh directory. The directory
// lives directly under the system temp dir because t.TempDir paths can
// exceed the sun_path limit on macOS.
func SocketPath(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "tos")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	return filepath.Join(dir, "brain.sock")
}

// IsolatedHome points TOS_HOME and the working directory at a fresh temp
// dir, so no real config, socket or journal is picked up.
func IsolatedHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("TOS_HOME", home)
	t.Setenv("TOS_LOG_LEVEL", "error")
	t.Chdir(home)
	return home
}

// ClosedAddr returns a loopback address nothing listens on.
func ClosedAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	return addr
}

// RandomString generates a random hex string of the specified length.
func RandomString(length int) string {
	bytes := make([]byte, length/2+1)
	if _, err := rand.Read(bytes); err != nil {
		panic(err)
	}
	return hex.EncodeToString(bytes)[:length]
}
