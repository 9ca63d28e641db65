package remote

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/tactical-os/tos/errors"
)

// LinkPath is the websocket endpoint served by every brain.
const LinkPath = "/v1/link"

const maxPacketSize = 1 << 20

// NativeLink is a client connection to a remote brain's link endpoint.
type NativeLink struct {
	mu      sync.Mutex
	conn    *websocket.Conn
	seq     uint64
	sector  int
	timeout time.Duration
}

// DialNative opens the link at ws://addr/v1/link and performs the hello
// exchange. token may be empty for node-to-node links.
func DialNative(ctx context.Context, addr, token string, timeout time.Duration) (*NativeLink, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: timeout,
	}

	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	conn, _, err := dialer.DialContext(dialCtx, "ws://"+addr+LinkPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial link: %w", err)
	}
	conn.SetReadLimit(maxPacketSize)

	l := &NativeLink{conn: conn, timeout: timeout}
	reply, err := l.roundTrip(dialCtx, Packet{Kind: KindHello, Body: token})
	if err != nil {
		conn.Close()
		return nil, err
	}
	if reply.Kind != KindHello {
		conn.Close()
		return nil, fmt.Errorf("link handshake rejected: %s", reply.Body)
	}
	l.sector = reply.Sector
	return l, nil
}

// Sector is the sector the remote brain bound this link to.
func (l *NativeLink) Sector() int {
	return l.sector
}

// Execute sends cmd to the remote dispatcher and returns its response line.
func (l *NativeLink) Execute(ctx context.Context, cmd string) (string, error) {
	reply, err := l.roundTrip(ctx, Packet{Kind: KindCommand, Sector: l.sector, Body: cmd})
	if err != nil {
		return "", err
	}
	if reply.Kind == KindError {
		return "", errors.New(errors.ErrCodeCommandFailed, reply.Body).
			WithDetail("command", cmd)
	}
	return reply.Body, nil
}

// Close closes the link with a normal closure frame.
func (l *NativeLink) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = l.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	return l.conn.Close()
}

func (l *NativeLink) roundTrip(ctx context.Context, p Packet) (Packet, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.seq++
	p.Seq = l.seq

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(l.timeout)
	}
	_ = l.conn.SetWriteDeadline(deadline)
	_ = l.conn.SetReadDeadline(deadline)

	data, err := EncodePacket(p)
	if err != nil {
		return Packet{}, err
	}
	if err := l.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		return Packet{}, fmt.Errorf("failed to send %s packet: %w", p.Kind, err)
	}

	for {
		_, msg, err := l.conn.ReadMessage()
		if err != nil {
			return Packet{}, fmt.Errorf("failed to read reply: %w", err)
		}
		reply, err := DecodePacket(msg)
		if err != nil {
			return Packet{}, err
		}
		// Replies to an earlier, timed-out request are dropped.
		if reply.Seq != p.Seq {
			continue
		}
		return reply, nil
	}
}

// DispatchFunc hands a request line to the local brain.
type DispatchFunc func(request string, metadata map[string]string) string

// LinkHandler serves the native link endpoint.
type LinkHandler struct {
	dispatch DispatchFunc
	tokens   *Tokens
	logger   *logrus.Entry
	upgrader websocket.Upgrader
}

// NewLinkHandler creates a handler. tokens may be nil, in which case hello
// packets carrying a token are rejected.
func NewLinkHandler(dispatch DispatchFunc, tokens *Tokens, logger *logrus.Entry) *LinkHandler {
	return &LinkHandler{
		dispatch: dispatch,
		tokens:   tokens,
		logger:   logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (h *LinkHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("Link upgrade failed")
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxPacketSize)

	logger := h.logger.WithField("peer", r.RemoteAddr)
	logger.Debug("Link opened")

	greeted := false
	sector := 0
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.WithError(err).Debug("Link closed")
			}
			return
		}

		p, err := DecodePacket(msg)
		if err != nil {
			h.reply(conn, Packet{Kind: KindError, Body: err.Error()})
			continue
		}

		switch p.Kind {
		case KindHello:
			if p.Body != "" {
				s, ok := h.validate(p.Body)
				if !ok {
					h.reply(conn, Packet{Kind: KindError, Seq: p.Seq, Body: "invalid or expired portal token"})
					return
				}
				sector = s
			}
			greeted = true
			h.reply(conn, Packet{Kind: KindHello, Seq: p.Seq, Sector: sector})
		case KindCommand:
			if !greeted {
				h.reply(conn, Packet{Kind: KindError, Seq: p.Seq, Body: "hello required"})
				continue
			}
			resp := h.dispatch(p.Body, map[string]string{
				"peer":   r.RemoteAddr,
				"sector": strconv.Itoa(sector),
			})
			h.reply(conn, Packet{Kind: KindResponse, Seq: p.Seq, Sector: sector, Body: resp})
		default:
			h.reply(conn, Packet{Kind: KindError, Seq: p.Seq, Body: fmt.Sprintf("unexpected %s packet", p.Kind)})
		}
	}
}

func (h *LinkHandler) validate(token string) (int, bool) {
	if h.tokens == nil {
		return 0, false
	}
	return h.tokens.Validate(token)
}

func (h *LinkHandler) reply(conn *websocket.Conn, p Packet) {
	data, err := EncodePacket(p)
	if err != nil {
		h.logger.WithError(err).Error("Failed to encode link packet")
		return
	}
	_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	if err := conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		h.logger.WithError(err).Debug("Failed to write link packet")
	}
}
