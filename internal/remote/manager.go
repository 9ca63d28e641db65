package remote

import (
	"context"
	"fmt"
	"net"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tactical-os/tos/config"
	"github.com/tactical-os/tos/errors"
)

// TransportKind is fixed for the lifetime of a session.
type TransportKind string

const (
	TransportNative TransportKind = "native"
	TransportSSH    TransportKind = "ssh"
)

// Session statuses.
const (
	StatusConnected = "connected"
	StatusClosed    = "closed"
)

// Session describes an established remote link.
type Session struct {
	ID        string        `json:"id"`
	Host      string        `json:"host"`
	Status    string        `json:"status"`
	Transport TransportKind `json:"transport"`
	CreatedAt time.Time     `json:"created_at"`
}

type transport interface {
	Execute(ctx context.Context, cmd string) (string, error)
}

type entry struct {
	Session
	transport transport
}

// Options configures a Manager.
type Options struct {
	Domain         string
	ConnectTimeout time.Duration
	CommandTimeout time.Duration
	SSHBinary      string
	TokenTTL       time.Duration
}

// OptionsFromConfig derives manager options from the remote section.
func OptionsFromConfig(cfg config.RemoteConfig) Options {
	return Options{
		Domain:         cfg.Domain,
		ConnectTimeout: config.Duration(cfg.ConnectTimeout, 5*time.Second),
		CommandTimeout: config.Duration(cfg.CommandTimeout, 30*time.Second),
		SSHBinary:      cfg.SSHBinary,
		TokenTTL:       config.Duration(cfg.TokenTTL, DefaultTokenTTL),
	}
}

// Manager owns remote sessions. It never touches brain state, so connects
// and commands can block without holding the state lock.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*entry

	opts   Options
	runner Runner
	tokens *Tokens
	logger *logrus.Entry
}

// NewManager creates a manager. A nil runner runs real ssh processes.
func NewManager(opts Options, runner Runner, logger *logrus.Entry) *Manager {
	if opts.Domain == "" {
		opts.Domain = DefaultDomain
	}
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = 5 * time.Second
	}
	if opts.CommandTimeout <= 0 {
		opts.CommandTimeout = 30 * time.Second
	}
	if runner == nil {
		runner = NewBuilderRunner()
	}
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Manager{
		sessions: make(map[string]*entry),
		opts:     opts,
		runner:   runner,
		tokens:   NewTokens(opts.TokenTTL, logger),
		logger:   logger,
	}
}

// Tokens returns the portal token store.
func (m *Manager) Tokens() *Tokens {
	return m.tokens
}

// CreatePortalURL returns the join URL for sectorID on the configured domain.
func (m *Manager) CreatePortalURL(sectorID int) string {
	return CreatePortalURL(m.opts.Domain, sectorID)
}

// Connect establishes a session with addr. The native link is tried first,
// then SSH. If both fail nothing is registered and CONNECTION_FAILED is
// returned with both causes.
func (m *Manager) Connect(ctx context.Context, addr string) (string, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" || strings.HasPrefix(addr, "-") {
		return "", errors.New(errors.ErrCodeInvalidInput, fmt.Sprintf("invalid host: %q", addr)).
			WithDetail("host", addr)
	}
	logger := m.logger.WithField("host", addr)

	link, nativeErr := DialNative(ctx, addr, "", m.opts.ConnectTimeout)
	if nativeErr == nil {
		logger.Info("Native link established")
		return m.register(addr, TransportNative, link), nil
	}
	logger.WithError(nativeErr).Debug("Native link unavailable, trying SSH")

	ssh := NewSSHSession(sshHost(addr), m.opts.SSHBinary, m.opts.ConnectTimeout, m.opts.CommandTimeout, m.runner)
	sshErr := ssh.Connect(ctx)
	if sshErr == nil {
		logger.Info("SSH session established")
		return m.register(addr, TransportSSH, ssh), nil
	}
	if errors.Is(sshErr, errors.ErrCodeInvalidInput) {
		return "", sshErr
	}

	logger.WithError(sshErr).Warn("Remote connect failed")
	return "", errors.ConnectionFailed(addr, fmt.Errorf("native link: %w; ssh: %w", nativeErr, sshErr))
}

// Join opens a native link bound to the sector granted by a portal token.
// Portal joins never fall back to SSH.
func (m *Manager) Join(ctx context.Context, addr, token string) (string, int, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" || strings.HasPrefix(addr, "-") {
		return "", 0, errors.New(errors.ErrCodeInvalidInput, fmt.Sprintf("invalid host: %q", addr)).
			WithDetail("host", addr)
	}

	link, err := DialNative(ctx, addr, token, m.opts.ConnectTimeout)
	if err != nil {
		return "", 0, errors.ConnectionFailed(addr, err)
	}
	m.logger.WithFields(logrus.Fields{"host": addr, "sector": link.Sector()}).Info("Joined through portal")
	return m.register(addr, TransportNative, link), link.Sector(), nil
}

// sshHost strips a link port from addr.
func sshHost(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}

func (m *Manager) register(host string, kind TransportKind, t transport) string {
	id := uuid.New().String()
	m.mu.Lock()
	m.sessions[id] = &entry{
		Session: Session{
			ID:        id,
			Host:      host,
			Status:    StatusConnected,
			Transport: kind,
			CreatedAt: time.Now(),
		},
		transport: t,
	}
	m.mu.Unlock()
	return id
}

// Execute runs cmd over session id.
func (m *Manager) Execute(ctx context.Context, id, cmd string) (string, error) {
	m.mu.Lock()
	e, ok := m.sessions[id]
	m.mu.Unlock()
	if !ok {
		return "", errors.SessionNotFound(id)
	}

	ctx, cancel := context.WithTimeout(ctx, m.opts.CommandTimeout)
	defer cancel()
	return e.transport.Execute(ctx, cmd)
}

// Disconnect closes and forgets session id.
func (m *Manager) Disconnect(id string) error {
	m.mu.Lock()
	e, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return errors.SessionNotFound(id)
	}
	if link, ok := e.transport.(*NativeLink); ok {
		return link.Close()
	}
	return nil
}

// Sessions lists live sessions, oldest first.
func (m *Manager) Sessions() []Session {
	m.mu.Lock()
	out := make([]Session, 0, len(m.sessions))
	for _, e := range m.sessions {
		out = append(out, e.Session)
	}
	m.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Close disconnects every session.
func (m *Manager) Close() {
	for _, s := range m.Sessions() {
		if err := m.Disconnect(s.ID); err != nil {
			m.logger.WithError(err).WithField("session", s.ID).Debug("Disconnect failed")
		}
	}
}
