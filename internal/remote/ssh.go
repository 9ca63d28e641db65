package remote

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tactical-os/tos/command"
	"github.com/tactical-os/tos/errors"
)

// Runner executes a local binary and reports its outcome.
type Runner interface {
	Run(ctx context.Context, timeout time.Duration, name string, args ...string) (command.Result, error)
}

// BuilderRunner runs commands through a command.SafeBuilder.
type BuilderRunner struct {
	builder *command.SafeBuilder
}

// NewBuilderRunner returns a Runner backed by real processes.
func NewBuilderRunner() *BuilderRunner {
	return &BuilderRunner{builder: command.NewSafeBuilder()}
}

func (r *BuilderRunner) Run(ctx context.Context, timeout time.Duration, name string, args ...string) (command.Result, error) {
	cmd, err := r.builder.Build(ctx, name, args...)
	if err != nil {
		return command.Result{}, err
	}
	return cmd.WithTimeout(timeout).Run()
}

// SSHSession reaches a host through the system ssh client.
type SSHSession struct {
	Host string

	binary         string
	connectTimeout time.Duration
	commandTimeout time.Duration
	runner         Runner
	validator      *command.SafeBuilder
}

// NewSSHSession prepares an SSH session for host. Nothing is run until
// Connect.
func NewSSHSession(host, binary string, connectTimeout, commandTimeout time.Duration, runner Runner) *SSHSession {
	if binary == "" {
		binary = "ssh"
	}
	return &SSHSession{
		Host:           host,
		binary:         binary,
		connectTimeout: connectTimeout,
		commandTimeout: commandTimeout,
		runner:         runner,
		validator:      command.NewSafeBuilder(),
	}
}

// buildSSHArgs assembles the ssh argument list. The host is validated so it
// can never be read as an option.
func (s *SSHSession) buildSSHArgs(remote ...string) ([]string, error) {
	if err := s.validator.Validate("host", s.Host); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInvalidInput, err.Error()).
			WithDetail("host", s.Host)
	}
	secs := int(s.connectTimeout.Seconds())
	if secs < 1 {
		secs = 1
	}
	args := []string{
		"-o", "BatchMode=yes",
		"-o", fmt.Sprintf("ConnectTimeout=%d", secs),
		s.Host,
	}
	return append(args, remote...), nil
}

// Connect probes the host with a no-op command.
func (s *SSHSession) Connect(ctx context.Context) error {
	args, err := s.buildSSHArgs("exit")
	if err != nil {
		return err
	}
	// ssh's own ConnectTimeout covers the handshake; allow a little slack
	// for process start-up before killing it.
	if _, err := s.runner.Run(ctx, s.connectTimeout+time.Second, s.binary, args...); err != nil {
		return err
	}
	return nil
}

// Execute runs cmd on the host and returns its stdout. A non-zero exit
// returns COMMAND_FAILED carrying stderr and the exit code.
func (s *SSHSession) Execute(ctx context.Context, cmd string) (string, error) {
	if err := s.validator.Validate("command", cmd); err != nil {
		return "", errors.Wrap(err, errors.ErrCodeInvalidInput, err.Error())
	}
	args, err := s.buildSSHArgs(cmd)
	if err != nil {
		return "", err
	}
	res, err := s.runner.Run(ctx, s.commandTimeout, s.binary, args...)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(res.Stdout, "\n"), nil
}
