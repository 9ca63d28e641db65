// Package server exposes the brain over a unix socket HTTP API, a TCP line
// listener and the native link endpoint.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tactical-os/tos/internal/daemon/dispatch"
	"github.com/tactical-os/tos/internal/daemon/store"
	"github.com/tactical-os/tos/internal/face"
	"github.com/tactical-os/tos/internal/remote"
	"github.com/tactical-os/tos/pkg/models"
	"github.com/tactical-os/tos/version"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// maxRequestLine bounds a single dispatched request.
const maxRequestLine = 64 * 1024

// JournalLister reads back journaled dispatches.
type JournalLister interface {
	List(ctx context.Context, filter models.Filter) ([]models.JournalEntry, error)
}

// RunningConfig is reported by /api/config so clients can see what the
// brain is actually using.
type RunningConfig struct {
	Listen        string        `json:"listen"`
	LinkListen    string        `json:"link_listen"`
	TickInterval  time.Duration `json:"tick_interval"`
	StatsInterval time.Duration `json:"stats_interval"`
	ConfigFile    string        `json:"config_file,omitempty"`
	StartedAt     time.Time     `json:"started_at"`
}

// Server manages the brain's HTTP servers.
type Server struct {
	logger     *logrus.Entry
	store      *store.Store
	dispatcher *dispatch.Dispatcher

	journal       JournalLister
	remote        *remote.Manager
	face          *face.Loop
	runningConfig *RunningConfig

	server     *http.Server
	linkServer *http.Server
}

// New creates a new Server instance.
func New(st *store.Store, d *dispatch.Dispatcher, logger *logrus.Entry) *Server {
	return &Server{
		logger:     logger,
		store:      st,
		dispatcher: d,
	}
}

// SetJournal enables /api/journal.
func (s *Server) SetJournal(j JournalLister) {
	s.journal = j
}

// SetRemote enables portal tokens and token-bound links.
func (s *Server) SetRemote(m *remote.Manager) {
	s.remote = m
}

// SetFace serves the render loop's latest frame from /api/render.
func (s *Server) SetFace(loop *face.Loop) {
	s.face = loop
}

// SetRunningConfig sets the running configuration for the server.
func (s *Server) SetRunningConfig(cfg *RunningConfig) {
	s.runningConfig = cfg
}

// Handler returns the API mux served on the unix socket.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", handleHealth)
	mux.HandleFunc("/api/state", s.handleGetState)
	mux.HandleFunc("/api/dispatch", s.handleDispatch)
	mux.HandleFunc("/api/stream", s.handleStreamState)
	mux.HandleFunc("/api/journal", s.handleJournal)
	mux.HandleFunc("/api/portal", s.handlePortal)
	mux.HandleFunc("/api/render", s.handleRender)
	mux.HandleFunc("/api/config", s.handleGetConfig)
	mux.Handle(remote.LinkPath, s.linkHandler())

	return mux
}

// LinkHandler returns the mux served on the TCP link address.
func (s *Server) LinkHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", handleHealth)
	mux.Handle(remote.LinkPath, s.linkHandler())
	return mux
}

func (s *Server) linkHandler() http.Handler {
	var tokens *remote.Tokens
	if s.remote != nil {
		tokens = s.remote.Tokens()
	}
	return remote.NewLinkHandler(func(request string, metadata map[string]string) string {
		return s.dispatcher.DispatchFrom(dispatch.SourceLink, request, metadata)
	}, tokens, s.logger.WithField("listener", "link"))
}

// ListenAndServe starts the API on the given unix socket path.
// It blocks until the server stops or fails.
func (s *Server) ListenAndServe(socketPath string) error {
	// Cleanup stale socket
	if _, err := os.Stat(socketPath); err == nil {
		if err := os.Remove(socketPath); err != nil {
			return fmt.Errorf("failed to remove stale socket: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(socketPath), 0755); err != nil {
		return fmt.Errorf("failed to create socket directory: %w", err)
	}

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return fmt.Errorf("failed to listen on socket: %w", err)
	}

	if err := os.Chmod(socketPath, 0600); err != nil {
		_ = listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.server = &http.Server{
		Handler: h2c.NewHandler(s.Handler(), &http2.Server{}),
	}

	s.logger.WithField("socket", socketPath).Info("Brain listening")
	return s.server.Serve(listener)
}

// ListenLink serves the native link on a TCP address so other nodes can
// reach this brain. It blocks until the server stops or fails.
func (s *Server) ListenLink(addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.linkServer = &http.Server{
		Handler:           s.LinkHandler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.WithField("addr", listener.Addr().String()).Info("Link listening")
	return s.linkServer.Serve(listener)
}

// Shutdown gracefully stops both HTTP servers, waiting for in-flight
// handlers.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	var firstErr error
	for _, srv := range []*http.Server{s.server, s.linkServer} {
		if srv == nil {
			continue
		}
		if err := srv.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Tos-Version", version.Version)
	w.Header().Set("X-Tos-Link-Protocol", strconv.Itoa(version.LinkProtocol))
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// handleGetState returns the brain snapshot as JSON.
func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	snap := s.store.Snapshot()
	writeJSON(w, snap)
}

// handleDispatch runs the request line in the body and answers with the
// response line. Command failures are still 200: the response carries them.
func (s *Server) handleDispatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var request string
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var req models.DispatchRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestLine)).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		request = req.Request
	} else {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestLine))
		if err != nil {
			http.Error(w, "failed to read request", http.StatusBadRequest)
			return
		}
		request = string(body)
	}

	response := s.dispatcher.DispatchFrom(dispatch.SourceAPI, strings.TrimSpace(request), nil)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, response)
}

// handleStreamState provides Server-Sent Events (SSE) for state updates.
// Every event carries a fresh snapshot so renderers need no second request.
func (s *Server) handleStreamState(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := s.store.Subscribe()
	defer s.store.Unsubscribe(ch)

	fmt.Fprintf(w, ": connected\n\n")
	flusher.Flush()

	s.logger.Debug("SSE client connected")

	snap := s.store.Snapshot()
	s.writeEvent(w, flusher, &models.StateUpdate{UpdateType: "initial", Snapshot: &snap})

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE client disconnected")
			return
		case u, ok := <-ch:
			if !ok {
				return
			}
			s.writeEvent(w, flusher, s.toAPIUpdate(u))
		}
	}
}

func (s *Server) writeEvent(w io.Writer, flusher http.Flusher, u *models.StateUpdate) {
	data, err := json.Marshal(u)
	if err != nil {
		s.logger.WithError(err).Error("Failed to marshal update")
		return
	}
	// SSE format: "data: {json}\n\n"
	fmt.Fprintf(w, "data: %s\n\n", data)
	flusher.Flush()
}

// toAPIUpdate converts an internal store.Update to the public stream format.
func (s *Server) toAPIUpdate(u store.Update) *models.StateUpdate {
	out := &models.StateUpdate{
		UpdateType: string(u.Type),
		Source:     u.Source,
	}
	if u.Type == store.UpdateConfigReload {
		if file, ok := u.Payload.(string); ok {
			out.ConfigFile = file
		}
	} else {
		out.Payload = u.Payload
	}
	snap := s.store.Snapshot()
	out.Snapshot = &snap
	return out
}

// handleJournal lists journaled dispatches, newest first.
func (s *Server) handleJournal(w http.ResponseWriter, r *http.Request) {
	if s.journal == nil {
		http.Error(w, "journal disabled", http.StatusServiceUnavailable)
		return
	}

	filter, err := parseFilter(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	entries, err := s.journal.List(r.Context(), filter)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list journal")
		http.Error(w, "failed to read journal", http.StatusInternalServerError)
		return
	}
	writeJSON(w, entries)
}

func parseFilter(r *http.Request) (models.Filter, error) {
	q := r.URL.Query()
	var f models.Filter
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return f, fmt.Errorf("invalid limit: %s", v)
		}
		f.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return f, fmt.Errorf("invalid offset: %s", v)
		}
		f.Offset = n
	}
	if v := q.Get("since"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return f, fmt.Errorf("invalid since: %s", v)
		}
		f.StartTime = &t
	}
	f.Sources = q["source"]
	f.FailedOnly = q.Get("failed") == "true"
	if err := f.Validate(); err != nil {
		return f, err
	}
	return f, nil
}

// handlePortal issues a one-time portal token for a sector on POST and
// revokes one on DELETE.
func (s *Server) handlePortal(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodDelete {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.remote == nil {
		http.Error(w, "remote links disabled", http.StatusServiceUnavailable)
		return
	}

	if r.Method == http.MethodDelete {
		token := r.URL.Query().Get("token")
		if token == "" {
			http.Error(w, "token is required", http.StatusBadRequest)
			return
		}
		if !s.remote.Tokens().Revoke(token) {
			http.Error(w, "token not found", http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
		return
	}

	sector, err := strconv.Atoi(r.URL.Query().Get("sector"))
	if err != nil {
		http.Error(w, "sector must be an integer", http.StatusBadRequest)
		return
	}
	snap := s.store.Snapshot()
	if snap.Sector(sector) == nil {
		http.Error(w, fmt.Sprintf("sector %d not found", sector), http.StatusNotFound)
		return
	}

	writeJSON(w, models.PortalGrant{
		Sector: sector,
		URL:    s.remote.CreatePortalURL(sector),
		Token:  s.remote.Tokens().Create(sector),
	})
}

// handleRender returns the current frame markup. Without a render loop the
// frame is rendered on demand.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var frame face.Frame
	ok := false
	if s.face != nil {
		frame, ok = s.face.Latest()
	}
	if !ok {
		frame = face.Frame{Markup: face.Render(s.store.Snapshot()), RenderedAt: time.Now()}
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Frame-Rate", strconv.FormatFloat(frame.FPS, 'f', 1, 64))
	io.WriteString(w, frame.Markup)
}

// handleGetConfig returns the running configuration as JSON.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	if s.runningConfig == nil {
		http.Error(w, "config not initialized", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, s.runningConfig)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
