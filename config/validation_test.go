package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tactical-os/tos/errors"
)

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestValidateDetails(t *testing.T) {
	cfg := Default()
	cfg.Remote.TokenTTL = "0s"

	err := cfg.Validate()
	require.Error(t, err)
	tosErr, ok := err.(*errors.TosError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeConfigValidation, tosErr.Code)
	assert.Equal(t, "remote.token_ttl", tosErr.Details["field"])
	assert.Equal(t, "0s", tosErr.Details["value"])
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"option-like ssh binary", func(c *Config) { c.Remote.SSHBinary = "-oProxyCommand=x" }, "remote.ssh_binary"},
		{"link listen without port", func(c *Config) { c.Brain.LinkListen = "localhost" }, "brain.link_listen"},
		{"empty face key", func(c *Config) { c.Face.Keys = map[string][]string{"quit": {" "}} }, "face.keys.quit"},
		{"blank sector label", func(c *Config) { c.Sectors = []SectorConfig{{Label: "  "}} }, "sectors[0].label"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeConfigValidation))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidateAcceptsEmptyLinkListen(t *testing.T) {
	cfg := Default()
	cfg.Brain.LinkListen = ""
	assert.NoError(t, cfg.Validate())

	cfg.Brain.LinkListen = LinkListenOff
	assert.NoError(t, cfg.Validate())
}

func TestSetDefaultsKeepsLinkListenOff(t *testing.T) {
	cfg := &Config{Brain: BrainConfig{LinkListen: LinkListenOff}}
	cfg.SetDefaults()
	assert.Equal(t, LinkListenOff, cfg.Brain.LinkListen)
}
