package session

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/studiowebux/wsprobe/internal/logbook"
	"github.com/studiowebux/wsprobe/internal/logging"
	"github.com/studiowebux/wsprobe/internal/payload"
	"github.com/studiowebux/wsprobe/internal/transport"
	"github.com/studiowebux/wsprobe/internal/types"
)

var (
	// ErrEmptyURL is returned by Connect when there is nothing to connect to.
	ErrEmptyURL = errors.New("please enter a WebSocket URL")

	// ErrNotConnected is returned by Send unless the controller is connected.
	ErrNotConnected = errors.New("not connected")
)

const (
	// DefaultCloseReason is sent when Disconnect is called without a reason.
	DefaultCloseReason = "User disconnected"

	// DefaultClosedText replaces an empty reason in close notifications.
	DefaultClosedText = "Connection closed"

	supersededReason = "Superseded by new connection"
	shutdownReason   = "Application closed"

	// binaryPreview is how many bytes of a binary frame are shown in the log.
	binaryPreview = 64
)

// Option configures a Controller.
type Option func(*Controller)

// WithDialOptions sets handshake headers, subprotocols, timeout and TLS.
func WithDialOptions(opts types.DialOptions) Option {
	return func(c *Controller) { c.dialOpts = opts }
}

// WithLog uses an existing log instead of a fresh one.
func WithLog(l *logbook.Log) Option {
	return func(c *Controller) { c.log = l }
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = logging.OrNop(l) }
}

// Controller owns at most one transport and the session log. Every status
// change or error appends exactly one entry to the log.
//
// Transport notifications arrive on the transport's goroutine. Each transport
// gets a sink stamped with the generation it was opened under; once the
// transport is released or superseded the generation moves on and its late
// notifications are dropped.
type Controller struct {
	dialer   transport.Dialer
	dialOpts types.DialOptions
	log      *logbook.Log
	logger   *slog.Logger

	// mu also orders log appends, so entries follow state transitions.
	mu          sync.Mutex
	status      types.Status
	target      string
	lastErr     string
	connectedAt time.Time
	current     transport.Transport
	gen         uint64

	changes chan struct{}
}

// NewController creates a disconnected controller.
func NewController(dialer transport.Dialer, opts ...Option) *Controller {
	c := &Controller{
		dialer:  dialer,
		logger:  logging.Nop(),
		changes: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logbook.New()
	}
	return c
}

// NormalizeURL turns user input into a ws:// or wss:// URL. Input that already
// carries one of those schemes is returned as is; anything else is prefixed
// according to secure. Blank input normalizes to "".
func NormalizeURL(rawInput string, secure bool) string {
	trimmed := strings.TrimSpace(rawInput)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "ws://") || strings.HasPrefix(trimmed, "wss://") {
		return trimmed
	}
	if secure {
		return "wss://" + trimmed
	}
	return "ws://" + trimmed
}

// Connect opens a transport to the normalized URL. It returns once the
// transport is opening; the outcome shows up later in State and the log.
// An existing transport is closed first.
func (c *Controller) Connect(rawInput string, secure bool) error {
	target := NormalizeURL(rawInput, secure)

	c.mu.Lock()
	defer c.notify()
	defer c.mu.Unlock()

	c.lastErr = ""
	if target == "" {
		c.lastErr = ErrEmptyURL.Error()
		c.log.System("Error: " + c.lastErr)
		return ErrEmptyURL
	}

	prefix := ""
	if stale := c.release(); stale != nil {
		prefix = "Closed previous connection. "
		go c.closeQuietly(stale, supersededReason)
	}

	c.status = types.StatusConnecting
	c.target = target

	tr, err := c.dialer.Open(target, c.dialOpts, &sink{c: c, gen: c.gen})
	if err != nil {
		c.status = types.StatusDisconnected
		c.lastErr = err.Error()
		c.log.System(prefix + fmt.Sprintf("Connection error: %v", err))
		return fmt.Errorf("failed to open %s: %w", target, err)
	}
	c.current = tr
	c.logger.Debug("connecting", "url", target)
	c.log.System(prefix + fmt.Sprintf("Connecting to %s...", target))
	return nil
}

// Disconnect closes the transport with a normal closure and reason. The
// status becomes Disconnected immediately. Without a transport only the log
// entry is written.
func (c *Controller) Disconnect(reason string) {
	if strings.TrimSpace(reason) == "" {
		reason = DefaultCloseReason
	}

	c.mu.Lock()
	defer c.notify()
	defer c.mu.Unlock()

	if tr := c.release(); tr != nil {
		if err := tr.Close(transport.CloseNormal, reason); err != nil {
			c.logger.Debug("close failed", "url", c.target, "error", err)
		}
	}
	c.log.System("Disconnected: " + reason)
}

// Send writes payload to the transport. Blank payloads are ignored without a
// log entry. In JSON mode the payload must parse and is sent in compact form.
func (c *Controller) Send(text string, jsonMode bool) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	c.mu.Lock()
	defer c.notify()
	defer c.mu.Unlock()

	c.lastErr = ""
	if c.status != types.StatusConnected || c.current == nil {
		c.lastErr = "Cannot send: " + ErrNotConnected.Error()
		c.log.System(c.lastErr)
		return ErrNotConnected
	}

	wire := text
	if jsonMode {
		canonical, err := payload.Canonicalize(text)
		if err != nil {
			c.lastErr = err.Error()
			c.log.System("Cannot send: " + c.lastErr)
			return err
		}
		wire = canonical
	}

	// The lock is held across the write so an echo cannot be logged before
	// the Sent entry.
	if err := c.current.Send(wire); err != nil {
		c.lastErr = fmt.Sprintf("send failed: %v", err)
		c.log.System("Error: " + c.lastErr)
		return fmt.Errorf("send failed: %w", err)
	}
	c.log.Append(types.DirectionSent, payload.PrettyOrRaw(wire))
	return nil
}

// ClearLog empties the log, leaving the "Log cleared" entry.
func (c *Controller) ClearLog() {
	c.log.Clear()
	c.notify()
}

// Close tears the controller down, closing any transport with a normal
// closure. Close errors are ignored.
func (c *Controller) Close() {
	c.mu.Lock()
	tr := c.release()
	c.mu.Unlock()

	if tr != nil {
		c.closeQuietly(tr, shutdownReason)
	}
}

// HandshakeTimeout is how long a connect may stay pending before the
// transport gives up.
func (c *Controller) HandshakeTimeout() time.Duration {
	if c.dialOpts.HandshakeTimeout > 0 {
		return c.dialOpts.HandshakeTimeout
	}
	return transport.DefaultHandshakeTimeout
}

// State returns a copy of the connection state.
func (c *Controller) State() types.ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return types.ConnectionState{
		Status:      c.status,
		TargetURL:   c.target,
		LastError:   c.lastErr,
		ConnectedAt: c.connectedAt,
	}
}

// Log returns the session log.
func (c *Controller) Log() *logbook.Log {
	return c.log
}

// Changes delivers a signal after state or log changes. Signals coalesce, so a
// reader should re-read State and the log snapshot on each one.
func (c *Controller) Changes() <-chan struct{} {
	return c.changes
}

// release detaches the current transport and invalidates its sink. Caller
// holds c.mu.
func (c *Controller) release() transport.Transport {
	tr := c.current
	c.current = nil
	c.gen++
	c.status = types.StatusDisconnected
	c.connectedAt = time.Time{}
	return tr
}

func (c *Controller) closeQuietly(tr transport.Transport, reason string) {
	if err := tr.Close(transport.CloseNormal, reason); err != nil {
		c.logger.Debug("close failed", "error", err)
	}
}

func (c *Controller) notify() {
	select {
	case c.changes <- struct{}{}:
	default:
	}
}

// sink routes one transport's notifications back to the controller.
type sink struct {
	c   *Controller
	gen uint64
}

func (s *sink) OnOpen() {
	s.c.handle(s.gen, func(c *Controller) {
		c.status = types.StatusConnected
		c.connectedAt = time.Now()
		c.log.System("Connected to " + c.target)
	})
}

func (s *sink) OnMessage(data []byte, binary bool) {
	s.c.handle(s.gen, func(c *Controller) {
		c.log.Append(types.DirectionReceived, formatInbound(data, binary))
	})
}

func (s *sink) OnError(err error) {
	s.c.handle(s.gen, func(c *Controller) {
		c.lastErr = err.Error()
		c.log.System("Error: " + c.lastErr)
	})
}

func (s *sink) OnClose(code int, reason string) {
	s.c.handle(s.gen, func(c *Controller) {
		if reason == "" {
			reason = DefaultClosedText
		}
		c.current = nil
		c.status = types.StatusDisconnected
		c.connectedAt = time.Time{}
		c.log.System(fmt.Sprintf("Disconnected (code %d): %s", code, reason))
	})
}

// handle runs fn under the lock unless the notification is from a released transport.
func (c *Controller) handle(gen uint64, fn func(*Controller)) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		c.logger.Debug("dropping notification from released transport", "generation", gen)
		return
	}
	fn(c)
	c.mu.Unlock()
	c.notify()
}

func formatInbound(data []byte, binary bool) string {
	if !binary {
		return payload.PrettyOrRaw(string(data))
	}
	preview := data
	suffix := ""
	if len(preview) > binaryPreview {
		preview = preview[:binaryPreview]
		suffix = "..."
	}
	return fmt.Sprintf("[binary %d bytes] %s%s", len(data), hex.EncodeToString(preview), suffix)
}
