package errors

import (
	"fmt"
	"os/exec"
	"time"
)

// ConfigNotFound creates a configuration not found error
func ConfigNotFound(path string) *TosError {
	return New(ErrCodeConfigNotFound, fmt.Sprintf("configuration file not found: %s", path)).
		WithDetail("path", path)
}

// ConfigInvalid creates an invalid configuration error
func ConfigInvalid(reason string) *TosError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", reason))
}

// SurfaceNotFound is returned when a surface id is not in the registry.
func SurfaceNotFound(id int) *TosError {
	return New(ErrCodeNotFound, fmt.Sprintf("surface %d not found", id)).
		WithDetail("surface", id)
}

// SectorNotFound is returned when a lookup names a sector that does not exist.
func SectorNotFound(id int) *TosError {
	return New(ErrCodeNotFound, fmt.Sprintf("sector %d not found", id)).
		WithDetail("sector", id)
}

// SessionNotFound is returned for an unknown remote session id.
func SessionNotFound(id string) *TosError {
	return New(ErrCodeNotFound, fmt.Sprintf("remote session %s not found", id)).
		WithDetail("session", id)
}

// InvalidSector is returned when a surface is moved to a sector that does not exist.
func InvalidSector(id int) *TosError {
	return New(ErrCodeInvalidSector, fmt.Sprintf("sector %d does not exist", id)).
		WithDetail("sector", id)
}

// ParseError creates a malformed command error
func ParseError(input, reason string) *TosError {
	return New(ErrCodeParseError, reason).
		WithDetail("input", input)
}

// ConnectionFailed is returned when every transport to host has been exhausted.
func ConnectionFailed(host string, err error) *TosError {
	return Wrap(err, ErrCodeConnectionFailed, fmt.Sprintf("could not connect to %s", host)).
		WithDetail("host", host)
}

// Unreachable is returned when a host or process did not answer within timeout.
func Unreachable(target string, timeout time.Duration, err error) *TosError {
	return Wrap(err, ErrCodeUnreachable, fmt.Sprintf("%s did not respond within %s", target, timeout)).
		WithDetail("target", target).
		WithDetail("timeout", timeout.String())
}

// CommandFailed creates a command execution failure error
func CommandFailed(cmd string, err error) *TosError {
	tosErr := Wrap(err, ErrCodeCommandFailed, fmt.Sprintf("command failed: %s", cmd)).
		WithDetail("command", cmd)

	// Extract exit code if available
	if exitErr, ok := err.(*exec.ExitError); ok {
		tosErr = tosErr.WithDetail("exitCode", exitErr.ExitCode())
	}

	return tosErr
}
