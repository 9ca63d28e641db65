package command

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/tactical-os/tos/errors"
)

const (
	// DefaultTimeout is the default command execution timeout
	DefaultTimeout = 30 * time.Second

	// MaxTimeout is the maximum allowed timeout
	MaxTimeout = 10 * time.Minute

	// WaitDelay bounds how long Run waits for output pipes after the
	// command is killed.
	WaitDelay = 500 * time.Millisecond
)

// SafeBuilder provides validated command execution.
type SafeBuilder struct {
	defaultTimeout time.Duration
	validators     map[string]func(string) error
	executor       Executor
}

// NewSafeBuilder creates a new SafeBuilder instance with a RealExecutor
func NewSafeBuilder() *SafeBuilder {
	return NewSafeBuilderWithExecutor(&RealExecutor{})
}

// NewSafeBuilderWithExecutor creates a new SafeBuilder with a custom Executor
func NewSafeBuilderWithExecutor(exec Executor) *SafeBuilder {
	return &SafeBuilder{
		defaultTimeout: DefaultTimeout,
		validators:     makeDefaultValidators(),
		executor:       exec,
	}
}

// makeDefaultValidators returns the default set of validators
func makeDefaultValidators() map[string]func(string) error {
	return map[string]func(string) error{
		"host":    validateHost,
		"binary":  validateBinary,
		"command": validateRemoteCommand,
	}
}

var hostPattern = regexp.MustCompile(`^([A-Za-z0-9._-]+@)?[A-Za-z0-9._:\[\]-]+$`)

// validateHost ensures an ssh destination cannot be read as an option.
func validateHost(host string) error {
	if host == "" {
		return fmt.Errorf("host cannot be empty")
	}
	if strings.HasPrefix(host, "-") {
		return fmt.Errorf("invalid host: %s (cannot start with '-')", host)
	}
	if !hostPattern.MatchString(host) {
		return fmt.Errorf("invalid host: %s", host)
	}
	return nil
}

// validateBinary ensures the executable name is a plain name or path.
func validateBinary(name string) error {
	if name == "" {
		return fmt.Errorf("command name cannot be empty")
	}
	if strings.HasPrefix(name, "-") {
		return fmt.Errorf("invalid command name: %s", name)
	}
	if strings.ContainsAny(name, ";|&$` \t\n") {
		return fmt.Errorf("command name contains invalid characters")
	}
	return nil
}

// validateRemoteCommand rejects empty and multi-line remote commands.
func validateRemoteCommand(cmd string) error {
	if strings.TrimSpace(cmd) == "" {
		return fmt.Errorf("remote command cannot be empty")
	}
	if strings.ContainsAny(cmd, "\n\r\x00") {
		return fmt.Errorf("remote command must be a single line")
	}
	return nil
}

// Command represents a safe command configuration
type Command struct {
	parent   context.Context
	name     string
	args     []string
	timeout  time.Duration
	executor Executor
}

// Result is the outcome of a finished command.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// Build creates a new command with validation
func (sb *SafeBuilder) Build(ctx context.Context, name string, args ...string) (*Command, error) {
	if err := validateBinary(name); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInvalidInput, err.Error())
	}

	return &Command{
		parent:   ctx,
		name:     name,
		args:     args,
		timeout:  sb.defaultTimeout,
		executor: sb.executor,
	}, nil
}

// WithTimeout sets a custom timeout for the command
func (c *Command) WithTimeout(timeout time.Duration) *Command {
	if timeout > MaxTimeout {
		timeout = MaxTimeout
	}
	if timeout > 0 {
		c.timeout = timeout
	}
	return c
}

// Validate validates specific arguments
func (sb *SafeBuilder) Validate(argType string, value string) error {
	validator, exists := sb.validators[argType]
	if !exists {
		return fmt.Errorf("no validator for argument type: %s", argType)
	}

	return validator(value)
}

// String renders the command line for logs and errors.
func (c *Command) String() string {
	return strings.Join(append([]string{c.name}, c.args...), " ")
}

// Run executes the command and waits for it. A non-zero exit yields a
// COMMAND_FAILED error carrying the exit code and stderr; a command that
// outlives its timeout yields UNREACHABLE.
func (c *Command) Run() (Result, error) {
	ctx, cancel := context.WithTimeout(c.parent, c.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := c.executor.CommandContext(ctx, c.name, c.args...) //nolint:gosec // SafeBuilder provides validation
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	killProcessGroup(cmd)
	cmd.WaitDelay = WaitDelay

	start := time.Now()
	err := cmd.Run()
	res := Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}
	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}

	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return res, errors.Unreachable(c.String(), c.timeout, err)
		}
		if _, ok := err.(*exec.ExitError); ok {
			return res, errors.CommandFailed(c.String(), err).
				WithDetail("stderr", strings.TrimSpace(res.Stderr))
		}
		return res, errors.CommandFailed(c.String(), err)
	}
	return res, nil
}
