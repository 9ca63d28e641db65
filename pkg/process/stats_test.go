package process

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tactical-os/tos/errors"
)

func writeProcFixture(t *testing.T, root string, pid string, files map[string]string) {
	t.Helper()
	dir := filepath.Join(root, pid)
	require.NoError(t, os.MkdirAll(dir, 0755))
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
}

func TestGetStatsFromFixture(t *testing.T) {
	root := t.TempDir()
	old := procRoot
	procRoot = root
	t.Cleanup(func() { procRoot = old })

	require.NoError(t, os.WriteFile(filepath.Join(root, "uptime"), []byte("200.00 150.00\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "meminfo"), []byte("MemTotal:        1000 kB\nMemFree: 10 kB\n"), 0644))

	// comm contains a space and a parenthesis; utime=500 stime=500 starttime=10000 (100s).
	stat := "4242 (web (main)) S 1 1 1 0 -1 0 0 0 0 0 500 500 0 0 20 0 1 0 10000 0 0\n"
	writeProcFixture(t, root, "4242", map[string]string{
		"stat":   stat,
		"status": "Name:\tweb\nVmRSS:\t     250 kB\n",
	})

	stats, err := GetStats(4242)
	require.NoError(t, err)
	assert.Equal(t, 4242, stats.PID)
	// 10s of cpu over 100s of lifetime.
	assert.InDelta(t, 10.0, stats.CPUPercent, 0.001)
	assert.Equal(t, uint64(250*1024), stats.RSSBytes)
	assert.InDelta(t, 25.0, stats.MemPercent, 0.001)
}

func TestGetStatsMissingProcess(t *testing.T) {
	old := procRoot
	procRoot = t.TempDir()
	t.Cleanup(func() { procRoot = old })

	_, err := GetStats(99999)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeNotFound))

	_, err = GetStats(0)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
}

func TestGetStatsMalformed(t *testing.T) {
	root := t.TempDir()
	old := procRoot
	procRoot = root
	t.Cleanup(func() { procRoot = old })

	writeProcFixture(t, root, "7", map[string]string{"stat": "7 (x) S 1 2\n"})
	_, err := GetStats(7)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInternal))
}

func TestIsProcessAlive(t *testing.T) {
	assert.True(t, IsProcessAlive(os.Getpid()))
	assert.False(t, IsProcessAlive(0))
	assert.False(t, IsProcessAlive(-5))
}
