package daemon

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tactical-os/tos/config"
)

func TestConfigWatcherReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tos.yml")
	require.NoError(t, os.WriteFile(path, []byte("performance:\n  alert_threshold: 20\n"), 0644))

	reloads := make(chan *config.Config, 4)
	w, err := NewConfigWatcher(path, 20, func(cfg *config.Config, file string) {
		assert.Equal(t, "tos.yml", file)
		reloads <- cfg
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	// Invalid documents are ignored.
	require.NoError(t, os.WriteFile(path, []byte("performance:\n  alert_threshold: -1\n"), 0644))
	select {
	case <-reloads:
		t.Fatal("invalid config was applied")
	case <-time.After(300 * time.Millisecond):
	}

	require.NoError(t, os.WriteFile(path, []byte("performance:\n  alert_threshold: 30\n"), 0644))
	select {
	case cfg := <-reloads:
		assert.Equal(t, 30.0, cfg.Performance.AlertThreshold)
	case <-time.After(3 * time.Second):
		t.Fatal("config change not observed")
	}

	// Other files in the directory do not trigger a reload.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yml"), []byte("x: 1\n"), 0644))
	select {
	case <-reloads:
		t.Fatal("unrelated file triggered a reload")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestConfigWatcherClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tos.yml")
	require.NoError(t, os.WriteFile(path, []byte("version: \"1.0\"\n"), 0644))

	w, err := NewConfigWatcher(path, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, 100*time.Millisecond, w.debounce)
	assert.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}
