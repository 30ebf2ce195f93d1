package transport

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/studiowebux/wsprobe/internal/logging"
	"github.com/studiowebux/wsprobe/internal/types"
)

// readLimit caps inbound frames for the coder engine, which otherwise stops at 32 KiB.
const readLimit = 16 << 20

// Coder dials with github.com/coder/websocket.
type Coder struct {
	Logger *slog.Logger
}

// Open implements Dialer.
func (d *Coder) Open(rawURL string, opts types.DialOptions, sink Sink) (Transport, error) {
	u, err := ValidateURL(rawURL)
	if err != nil {
		return nil, err
	}

	httpTransport := &http.Transport{Proxy: http.ProxyFromEnvironment}
	if u.Scheme == "wss" {
		tlsClientConfig, err := BuildTLSConfig(opts.TLS)
		if err != nil {
			return nil, err
		}
		httpTransport.TLSClientConfig = tlsClientConfig
	}

	headers := http.Header{}
	for key, value := range opts.Headers {
		headers.Set(key, value)
	}

	dialOpts := &websocket.DialOptions{
		HTTPClient:   &http.Client{Transport: httpTransport},
		HTTPHeader:   headers,
		Subprotocols: opts.Subprotocols,
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &coderConn{
		sink:   sink,
		ctx:    ctx,
		cancel: cancel,
		log:    logging.OrNop(d.Logger).With("engine", EngineCoder, "url", rawURL),
	}
	go c.run(rawURL, dialOpts, handshakeTimeout(opts))
	return c, nil
}

type coderConn struct {
	sink   Sink
	ctx    context.Context
	cancel context.CancelFunc
	log    *slog.Logger

	mu      sync.Mutex
	state   connState
	conn    *websocket.Conn
	closing closeRequest
}

func (c *coderConn) run(rawURL string, opts *websocket.DialOptions, timeout time.Duration) {
	defer c.cancel()

	dialCtx, cancelDial := context.WithTimeout(c.ctx, timeout)
	c.log.Debug("dialing")
	conn, resp, err := websocket.Dial(dialCtx, rawURL, opts)
	cancelDial()

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
		req := c.closing
		c.state = stateClosed
		c.mu.Unlock()
		_ = conn.Close(websocket.StatusCode(req.code), req.reason)
		c.sink.OnClose(req.code, req.reason)
		return
	}
	conn.SetReadLimit(readLimit)
	c.conn = conn
	c.state = stateOpen
	c.mu.Unlock()

	c.sink.OnOpen()

	for {
		messageType, message, err := conn.Read(c.ctx)
		if err != nil {
			c.finish(conn, err)
			return
		}
		c.sink.OnMessage(message, messageType == websocket.MessageBinary)
	}
}

func (c *coderConn) finish(conn *websocket.Conn, err error) {
	c.mu.Lock()
	req := c.closing
	c.state = stateClosed
	c.mu.Unlock()

	var closeErr websocket.CloseError
	if errors.As(err, &closeErr) {
		code, reason := req.result(int(closeErr.Code), closeErr.Reason)
		c.sink.OnClose(code, reason)
		return
	}
	if req.requested {
		c.sink.OnClose(req.code, req.reason)
		return
	}
	c.log.Debug("read failed", "error", err)
	_ = conn.CloseNow()
	c.sink.OnError(err)
	c.sink.OnClose(CloseAbnormal, "")
}

// Send implements Transport.
func (c *coderConn) Send(text string) error {
	c.mu.Lock()
	if c.state != stateOpen {
		c.mu.Unlock()
		return ErrNotOpen
	}
	conn := c.conn
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(c.ctx, writeTimeout)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, []byte(text))
}

// Close implements Transport. The closing handshake runs in the background
// because coder's Close waits for the peer.
func (c *coderConn) Close(code int, reason string) error {
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
		conn := c.conn
		go func() {
			if err := conn.Close(websocket.StatusCode(code), reason); err != nil {
				c.log.Debug("close handshake", "error", err)
			}
		}()
		return nil
	default:
		return ErrNotOpen
	}
}
