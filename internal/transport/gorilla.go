package transport

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/studiowebux/wsprobe/internal/logging"
	"github.com/studiowebux/wsprobe/internal/types"
)

// Gorilla dials with github.com/gorilla/websocket.
type Gorilla struct {
	Logger *slog.Logger
}

// Open implements Dialer.
func (g *Gorilla) Open(rawURL string, opts types.DialOptions, sink Sink) (Transport, error) {
	u, err := ValidateURL(rawURL)
	if err != nil {
		return nil, err
	}

	// Build WebSocket dialer
	dialer := &websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: handshakeTimeout(opts),
		Subprotocols:     opts.Subprotocols,
	}

	// Configure TLS if needed
	if u.Scheme == "wss" {
		tlsClientConfig, err := BuildTLSConfig(opts.TLS)
		if err != nil {
			return nil, err
		}
		dialer.TLSClientConfig = tlsClientConfig
	}

	// Prepare headers
	headers := http.Header{}
	for key, value := range opts.Headers {
		headers.Set(key, value)
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &gorillaConn{
		sink:   sink,
		cancel: cancel,
		log:    logging.OrNop(g.Logger).With("engine", EngineGorilla, "url", rawURL),
	}
	go c.run(ctx, dialer, rawURL, headers)
	return c, nil
}

type gorillaConn struct {
	sink   Sink
	cancel context.CancelFunc
	log    *slog.Logger

	mu      sync.Mutex
	state   connState
	conn    *websocket.Conn
	closing closeRequest

	writeMu sync.Mutex
}

// run owns every sink notification for this transport.
func (c *gorillaConn) run(ctx context.Context, dialer *websocket.Dialer, rawURL string, headers http.Header) {
	defer c.cancel()

	c.log.Debug("dialing")
	conn, resp, err := dialer.DialContext(ctx, rawURL, headers)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	c.mu.Lock()
	if err != nil {
		req := c.closing
		c.state = stateClosed
		c.mu.Unlock()

		if req.requested {
			c.sink.OnClose(req.code, req.reason)
			return
		}
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		c.log.Debug("handshake failed", "error", err)
		c.sink.OnError(handshakeError(err, status))
		c.sink.OnClose(CloseAbnormal, "")
		return
	}
	if c.closing.requested {
		// Close was called while the handshake completed.
		req := c.closing
		c.state = stateClosed
		c.mu.Unlock()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(req.code, req.reason), time.Now().Add(time.Second))
		conn.Close()
		c.sink.OnClose(req.code, req.reason)
		return
	}
	c.conn = conn
	c.state = stateOpen
	c.mu.Unlock()
	defer conn.Close()

	c.sink.OnOpen()

	for {
		messageType, message, err := conn.ReadMessage()
		if err != nil {
			c.finish(err)
			return
		}
		switch messageType {
		case websocket.TextMessage:
			c.sink.OnMessage(message, false)
		case websocket.BinaryMessage:
			c.sink.OnMessage(message, true)
		}
	}
}

func (c *gorillaConn) finish(err error) {
	c.mu.Lock()
	req := c.closing
	c.state = stateClosed
	c.mu.Unlock()

	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) {
		code, reason := req.result(closeErr.Code, closeErr.Text)
		c.sink.OnClose(code, reason)
		return
	}
	if req.requested {
		c.sink.OnClose(req.code, req.reason)
		return
	}
	c.log.Debug("read failed", "error", err)
	c.sink.OnError(err)
	c.sink.OnClose(CloseAbnormal, "")
}

// Send implements Transport.
func (c *gorillaConn) Send(text string) error {
	c.mu.Lock()
	if c.state != stateOpen {
		c.mu.Unlock()
		return ErrNotOpen
	}
	conn := c.conn
	c.mu.Unlock()

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, []byte(text))
}

// Close implements Transport.
func (c *gorillaConn) Close(code int, reason string) error {
	reason = truncateReason(reason)

	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case stateConnecting:
		c.closing = closeRequest{requested: true, code: code, reason: reason}
		c.cancel()
		return nil
	case stateOpen:
		c.closing = closeRequest{requested: true, code: code, reason: reason}
		c.state = stateClosing
		deadline := time.Now().Add(closeGrace)
		err := c.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline)
		// Stop waiting for the peer's close frame after the grace period.
		_ = c.conn.SetReadDeadline(deadline)
		return err
	default:
		return ErrNotOpen
	}
}
