package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoolOr(t *testing.T) {
	yes, no := true, false
	assert.True(t, BoolOr(nil, true))
	assert.False(t, BoolOr(nil, false))
	assert.True(t, BoolOr(&yes, false))
	assert.False(t, BoolOr(&no, true))
}

func TestSetDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := &Config{
		Brain:   BrainConfig{Listen: "0.0.0.0:9000", Viewports: 3},
		Sectors: []SectorConfig{{Label: "Bridge"}},
		Face:    FaceConfig{Color: "never"},
	}
	cfg.SetDefaults()

	assert.Equal(t, "0.0.0.0:9000", cfg.Brain.Listen)
	assert.Equal(t, 3, cfg.Brain.Viewports)
	assert.Equal(t, []SectorConfig{{Label: "Bridge"}}, cfg.Sectors)
	assert.Equal(t, "never", cfg.Face.Color)
	assert.Equal(t, "127.0.0.1:7879", cfg.Brain.LinkListen)
}

func TestDefaultDoesNotShareSectors(t *testing.T) {
	cfg := Default()
	cfg.Sectors[0].Label = "Changed"
	assert.Equal(t, "Primary", DefaultSectors[0].Label)
}

func TestToggles(t *testing.T) {
	cfg, err := LoadFromBytes([]byte("brain:\n  config_watch: false\njournal:\n  enabled: false\n"), FormatYAML)
	require.NoError(t, err)
	assert.False(t, cfg.ConfigWatchEnabled())
	assert.False(t, cfg.JournalEnabled())
}

func TestFaceKeys(t *testing.T) {
	cfg, err := LoadFromBytes([]byte("face:\n  keys:\n    zoom_in: [ctrl+j, alt+j]\n"), FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, []string{"ctrl+j", "alt+j"}, cfg.Face.Keys["zoom_in"])
}

func TestUnmarshalExtensionMissingKey(t *testing.T) {
	var target struct {
		Level string `yaml:"level"`
	}
	require.NoError(t, Default().UnmarshalExtension("logging", &target))
	assert.Empty(t, target.Level)
}
