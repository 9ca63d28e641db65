package server

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/tactical-os/tos/internal/daemon/dispatch"
)

// LineServer accepts plain-text request lines over TCP and answers each
// with one response line.
type LineServer struct {
	dispatcher *dispatch.Dispatcher
	logger     *logrus.Entry

	mu       sync.Mutex
	listener net.Listener
	conns    map[net.Conn]struct{}
	closing  bool
	wg       sync.WaitGroup
}

// NewLineServer creates a line server dispatching through d.
func NewLineServer(d *dispatch.Dispatcher, logger *logrus.Entry) *LineServer {
	return &LineServer{
		dispatcher: d,
		logger:     logger,
		conns:      make(map[net.Conn]struct{}),
	}
}

// Listen binds addr. Serve must be called to accept connections.
func (l *LineServer) Listen(addr string) (net.Addr, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	l.mu.Lock()
	l.listener = ln
	l.mu.Unlock()
	l.logger.WithField("addr", ln.Addr().String()).Info("Line listener ready")
	return ln.Addr(), nil
}

// Serve accepts connections until ctx is cancelled, then closes the
// listener and every open connection and waits for handlers to return.
func (l *LineServer) Serve(ctx context.Context) error {
	l.mu.Lock()
	ln := l.listener
	l.mu.Unlock()
	if ln == nil {
		return fmt.Errorf("line server is not listening")
	}

	go func() {
		<-ctx.Done()
		_ = ln.Close()
		l.closeAll()
	}()

	l.acceptLoop(ctx, ln)
	l.wg.Wait()
	return nil
}

// acceptLoop accepts new connections.
func (l *LineServer) acceptLoop(ctx context.Context, ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			l.logger.WithError(err).Warn("Accept failed")
			return
		}
		if !l.track(conn, true) {
			_ = conn.Close()
			return
		}
		l.wg.Add(1)
		go l.handleConn(ctx, conn)
	}
}

// closeAll closes every tracked connection. Connections accepted afterwards
// are refused by track.
func (l *LineServer) closeAll() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closing = true
	for c := range l.conns {
		_ = c.Close()
	}
}

// track adds or removes conn. Adding fails once shutdown has started.
func (l *LineServer) track(conn net.Conn, add bool) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !add {
		delete(l.conns, conn)
		return true
	}
	if l.closing {
		return false
	}
	l.conns[conn] = struct{}{}
	return true
}

// handleConn reads request lines from one client.
func (l *LineServer) handleConn(ctx context.Context, conn net.Conn) {
	defer l.wg.Done()
	defer func() {
		l.track(conn, false)
		_ = conn.Close()
	}()

	peer := conn.RemoteAddr().String()
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 4096), maxRequestLine)
	w := bufio.NewWriter(conn)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		response := l.dispatcher.DispatchFrom(dispatch.SourceTCP, line, map[string]string{"peer": peer})
		// Responses are single-line on the wire.
		response = strings.ReplaceAll(response, "\n", " ")
		if _, err := fmt.Fprintln(w, response); err != nil {
			return
		}
		if err := w.Flush(); err != nil {
			return
		}
	}
	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		l.logger.WithError(err).WithField("peer", peer).Debug("Line connection closed")
	}
}
