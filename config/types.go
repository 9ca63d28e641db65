package config

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
)

// BrainConfig holds configuration for the brain daemon.
type BrainConfig struct {
	// Listen is the TCP address of the line-protocol command listener.
	Listen string `yaml:"listen,omitempty" toml:"listen,omitempty"`
	// LinkListen is the HTTP address serving the native remote link to other nodes.
	LinkListen string `yaml:"link_listen,omitempty" toml:"link_listen,omitempty"`
	// TickInterval is the cadence of the tick engine (default: 100ms).
	TickInterval string `yaml:"tick_interval,omitempty" toml:"tick_interval,omitempty"`
	// StatsInterval is how often attached process statistics are sampled (default: 2s).
	StatsInterval string `yaml:"stats_interval,omitempty" toml:"stats_interval,omitempty"`
	// Viewports is the number of viewports created at start (default: 1).
	Viewports int `yaml:"viewports,omitempty" toml:"viewports,omitempty"`
	// ConfigWatch enables hot reload of the configuration file (default: true).
	ConfigWatch *bool `yaml:"config_watch,omitempty" toml:"config_watch,omitempty"`
	// ConfigDebounceMs is the debounce window for rapid config changes (default: 100).
	ConfigDebounceMs int `yaml:"config_debounce_ms,omitempty" toml:"config_debounce_ms,omitempty"`
}

// SectorConfig declares a sector created when the brain starts.
type SectorConfig struct {
	Label string `yaml:"label" toml:"label"`
}

// RemoteConfig controls the remote link manager.
type RemoteConfig struct {
	// Domain is used to build portal URLs (default: tos.local).
	Domain string `yaml:"domain,omitempty" toml:"domain,omitempty"`
	// ConnectTimeout bounds both the native dial and the SSH connect check (default: 5s).
	ConnectTimeout string `yaml:"connect_timeout,omitempty" toml:"connect_timeout,omitempty"`
	// CommandTimeout bounds a single remote command (default: 30s).
	CommandTimeout string `yaml:"command_timeout,omitempty" toml:"command_timeout,omitempty"`
	// SSHBinary is the ssh executable (default: ssh).
	SSHBinary string `yaml:"ssh_binary,omitempty" toml:"ssh_binary,omitempty"`
	// TokenTTL is the lifetime of one-time portal tokens (default: 15m).
	TokenTTL string `yaml:"token_ttl,omitempty" toml:"token_ttl,omitempty"`
}

// AudioConfig holds the initial audio toggles.
type AudioConfig struct {
	Enabled *bool `yaml:"enabled,omitempty" toml:"enabled,omitempty"`
	Effects *bool `yaml:"effects,omitempty" toml:"effects,omitempty"`
	Ambient *bool `yaml:"ambient,omitempty" toml:"ambient,omitempty"`
}

// PerformanceConfig holds the frame-rate alert threshold.
type PerformanceConfig struct {
	AlertThreshold float64 `yaml:"alert_threshold,omitempty" toml:"alert_threshold,omitempty"`
}

// FaceConfig controls the renderer.
type FaceConfig struct {
	// RenderInterval is the render cadence (default: 500ms).
	RenderInterval string `yaml:"render_interval,omitempty" toml:"render_interval,omitempty"`
	// Color is "auto", "always" or "never".
	Color string `yaml:"color,omitempty" toml:"color,omitempty"`
	// Keys rebinds console keys by action name, e.g. zoom_in: [ctrl+j].
	Keys map[string][]string `yaml:"keys,omitempty" toml:"keys,omitempty"`
}

// JournalConfig controls the SQLite dispatch journal.
type JournalConfig struct {
	Enabled *bool  `yaml:"enabled,omitempty" toml:"enabled,omitempty"`
	Path    string `yaml:"path,omitempty" toml:"path,omitempty"`
}

// Config represents the tos.yml configuration
type Config struct {
	Version     string            `yaml:"version" toml:"version"`
	Brain       BrainConfig       `yaml:"brain,omitempty" toml:"brain,omitempty"`
	Sectors     []SectorConfig    `yaml:"sectors,omitempty" toml:"sectors,omitempty"`
	Remote      RemoteConfig      `yaml:"remote,omitempty" toml:"remote,omitempty"`
	Audio       AudioConfig       `yaml:"audio,omitempty" toml:"audio,omitempty"`
	Performance PerformanceConfig `yaml:"performance,omitempty" toml:"performance,omitempty"`
	Face        FaceConfig        `yaml:"face,omitempty" toml:"face,omitempty"`
	Journal     JournalConfig     `yaml:"journal,omitempty" toml:"journal,omitempty"`

	// Extensions captures all other top-level keys (e.g. "logging").
	Extensions map[string]interface{} `yaml:",inline" toml:"-"`
}

// LinkListenOff as brain.link_listen disables the native link listener.
const LinkListenOff = "off"

// DefaultSectors are created when the config declares none.
var DefaultSectors = []SectorConfig{
	{Label: "Primary"},
	{Label: "Operations"},
	{Label: "Science"},
	{Label: "Engineering"},
}

// Default returns a configuration with every default applied.
func Default() *Config {
	c := &Config{}
	c.SetDefaults()
	return c
}

// SetDefaults sets default values for configuration
func (c *Config) SetDefaults() {
	if c.Version == "" {
		c.Version = "1.0"
	}
	if c.Brain.Listen == "" {
		c.Brain.Listen = "127.0.0.1:7878"
	}
	if c.Brain.LinkListen == "" {
		c.Brain.LinkListen = "127.0.0.1:7879"
	}
	if c.Brain.TickInterval == "" {
		c.Brain.TickInterval = "100ms"
	}
	if c.Brain.StatsInterval == "" {
		c.Brain.StatsInterval = "2s"
	}
	if c.Brain.Viewports <= 0 {
		c.Brain.Viewports = 1
	}
	if c.Brain.ConfigDebounceMs <= 0 {
		c.Brain.ConfigDebounceMs = 100
	}
	if len(c.Sectors) == 0 {
		c.Sectors = append([]SectorConfig(nil), DefaultSectors...)
	}
	if c.Remote.Domain == "" {
		c.Remote.Domain = "tos.local"
	}
	if c.Remote.ConnectTimeout == "" {
		c.Remote.ConnectTimeout = "5s"
	}
	if c.Remote.CommandTimeout == "" {
		c.Remote.CommandTimeout = "30s"
	}
	if c.Remote.SSHBinary == "" {
		c.Remote.SSHBinary = "ssh"
	}
	if c.Remote.TokenTTL == "" {
		c.Remote.TokenTTL = "15m"
	}
	if c.Performance.AlertThreshold == 0 {
		c.Performance.AlertThreshold = 20
	}
	if c.Face.RenderInterval == "" {
		c.Face.RenderInterval = "500ms"
	}
	if c.Face.Color == "" {
		c.Face.Color = "auto"
	}
}

// ConfigWatchEnabled reports whether hot reload is on (default true).
func (c *Config) ConfigWatchEnabled() bool {
	return c.Brain.ConfigWatch == nil || *c.Brain.ConfigWatch
}

// JournalEnabled reports whether dispatches are journaled (default true).
func (c *Config) JournalEnabled() bool {
	return c.Journal.Enabled == nil || *c.Journal.Enabled
}

// BoolOr dereferences b, returning def when it is unset.
func BoolOr(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}

// Duration parses a duration setting, falling back to def when the value is
// empty or malformed. Validate reports malformed values up front.
func Duration(value string, def time.Duration) time.Duration {
	if value == "" {
		return def
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

// UnmarshalExtension decodes a specific extension's configuration from the
// loaded tos.yml into the provided target struct. The target must be a pointer.
//
// Example:
//
//	var logCfg logging.Config
//	err := cfg.UnmarshalExtension("logging", &logCfg)
func (c *Config) UnmarshalExtension(key string, target interface{}) error {
	extensionConfig, ok := c.Extensions[key]
	if !ok {
		// A missing key leaves the target zero-valued.
		return nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  target,
		TagName: "yaml",
	})
	if err != nil {
		return fmt.Errorf("failed to create mapstructure decoder: %w", err)
	}

	if err := decoder.Decode(extensionConfig); err != nil {
		return fmt.Errorf("failed to decode extension config for '%s': %w", key, err)
	}

	return nil
}
