package config

import (
	"fmt"
	"math"
	"net"
	"strings"
	"time"

	"github.com/tactical-os/tos/errors"
)

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	for field, addr := range map[string]string{
		"brain.listen":      c.Brain.Listen,
		"brain.link_listen": c.Brain.LinkListen,
	} {
		if addr == "" || addr == LinkListenOff {
			continue
		}
		if _, _, err := net.SplitHostPort(addr); err != nil {
			return errors.Wrap(err, errors.ErrCodeConfigValidation, fmt.Sprintf("%s is not a host:port address", field)).
				WithDetail("field", field).
				WithDetail("value", addr)
		}
	}

	for field, value := range map[string]string{
		"brain.tick_interval":    c.Brain.TickInterval,
		"brain.stats_interval":   c.Brain.StatsInterval,
		"remote.connect_timeout": c.Remote.ConnectTimeout,
		"remote.command_timeout": c.Remote.CommandTimeout,
		"remote.token_ttl":       c.Remote.TokenTTL,
		"face.render_interval":   c.Face.RenderInterval,
	} {
		if err := validateDuration(field, value); err != nil {
			return err
		}
	}

	for i, sector := range c.Sectors {
		if strings.TrimSpace(sector.Label) == "" {
			return errors.New(errors.ErrCodeConfigValidation, fmt.Sprintf("sectors[%d].label cannot be empty", i)).
				WithDetail("index", i)
		}
	}

	threshold := c.Performance.AlertThreshold
	if threshold < 0 || math.IsNaN(threshold) || math.IsInf(threshold, 0) {
		return errors.New(errors.ErrCodeConfigValidation, "performance.alert_threshold must be a positive frame rate").
			WithDetail("value", threshold)
	}

	switch c.Face.Color {
	case "", "auto", "always", "never":
	default:
		return errors.New(errors.ErrCodeConfigValidation, fmt.Sprintf("face.color must be auto, always or never, got %q", c.Face.Color))
	}

	for action, keys := range c.Face.Keys {
		for _, k := range keys {
			if strings.TrimSpace(k) == "" {
				return errors.New(errors.ErrCodeConfigValidation, fmt.Sprintf("face.keys.%s contains an empty key", action)).
					WithDetail("field", "face.keys."+action)
			}
		}
	}

	if strings.HasPrefix(c.Remote.SSHBinary, "-") {
		return errors.New(errors.ErrCodeConfigValidation, "remote.ssh_binary cannot start with '-'")
	}

	return nil
}

func validateDuration(field, value string) error {
	if value == "" {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeConfigValidation, fmt.Sprintf("%s is not a valid duration", field)).
			WithDetail("field", field).
			WithDetail("value", value)
	}
	if d <= 0 {
		return errors.New(errors.ErrCodeConfigValidation, fmt.Sprintf("%s must be positive", field)).
			WithDetail("field", field).
			WithDetail("value", value)
	}
	return nil
}
