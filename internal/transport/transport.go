package transport

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/studiowebux/wsprobe/internal/types"
)

// Close codes used by wsprobe.
const (
	CloseNormal   = 1000
	CloseAbnormal = 1006
)

// DefaultHandshakeTimeout matches the dialer timeout used for scripted sessions.
const DefaultHandshakeTimeout = 45 * time.Second

// closeGrace bounds how long a transport waits for the peer's close frame.
const closeGrace = 5 * time.Second

// writeTimeout bounds a single frame write so a peer that stops reading
// cannot stall the caller.
var writeTimeout = closeGrace

// maxCloseReason is the largest reason a close frame can carry.
const maxCloseReason = 123

var (
	// ErrNotOpen is returned by Send and Close when the transport is not open.
	ErrNotOpen = errors.New("transport is not open")

	// ErrInvalidURL wraps every synchronous URL validation failure.
	ErrInvalidURL = errors.New("invalid WebSocket URL")
)

// Sink receives transport notifications. For a single transport the calls are
// never concurrent and arrive in order: OnOpen, then any mix of OnMessage and
// OnError, then exactly one OnClose.
type Sink interface {
	OnOpen()
	OnMessage(data []byte, binary bool)
	OnError(err error)
	OnClose(code int, reason string)
}

// Transport is an open (or opening) WebSocket connection.
type Transport interface {
	// Send writes a text frame. It fails with ErrNotOpen unless the transport is open.
	Send(text string) error

	// Close starts the closing handshake. The outcome is reported through
	// Sink.OnClose carrying code and reason.
	Close(code int, reason string) error
}

// Dialer opens transports. Open validates its input synchronously and returns
// immediately; the handshake result is delivered to sink.
type Dialer interface {
	Open(rawURL string, opts types.DialOptions, sink Sink) (Transport, error)
}

// Engine names accepted by New.
const (
	EngineGorilla = "gorilla"
	EngineCoder   = "coder"
)

// New returns the dialer for an engine name. An empty name selects gorilla.
func New(engine string, logger *slog.Logger) (Dialer, error) {
	switch strings.ToLower(engine) {
	case "", EngineGorilla:
		return &Gorilla{Logger: logger}, nil
	case EngineCoder:
		return &Coder{Logger: logger}, nil
	default:
		return nil, fmt.Errorf("unknown transport engine %q (expected %s or %s)", engine, EngineGorilla, EngineCoder)
	}
}

// ValidateURL checks that rawURL is an absolute ws:// or wss:// URL.
func ValidateURL(rawURL string) (*url.URL, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return nil, fmt.Errorf("%w: scheme must be ws or wss, got %q", ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: missing host in %q", ErrInvalidURL, rawURL)
	}
	return u, nil
}

// truncateReason keeps a close reason within the frame limit without
// splitting a UTF-8 sequence.
func truncateReason(reason string) string {
	if len(reason) <= maxCloseReason {
		return reason
	}
	cut := maxCloseReason
	for cut > 0 && !isRuneStart(reason[cut]) {
		cut--
	}
	return reason[:cut]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

// BuildTLSConfig creates a TLS configuration for wss:// handshakes
func BuildTLSConfig(tlsConfig *types.TLSConfig) (*tls.Config, error) {
	if tlsConfig.IsZero() {
		return nil, nil
	}

	config := &tls.Config{
		InsecureSkipVerify: tlsConfig.InsecureSkipVerify,
	}

	// Load client certificate if specified
	if tlsConfig.CertFile != "" && tlsConfig.KeyFile != "" {
		cert, err := tls.LoadX509KeyPair(tlsConfig.CertFile, tlsConfig.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load client certificate: %w", err)
		}
		config.Certificates = []tls.Certificate{cert}
	}

	// Load CA certificate if specified
	if tlsConfig.CAFile != "" {
		caCert, err := os.ReadFile(tlsConfig.CAFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA certificate: %w", err)
		}

		caCertPool := x509.NewCertPool()
		if !caCertPool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("failed to parse CA certificate")
		}
		config.RootCAs = caCertPool
	}

	return config, nil
}

func handshakeTimeout(opts types.DialOptions) time.Duration {
	if opts.HandshakeTimeout > 0 {
		return opts.HandshakeTimeout
	}
	return DefaultHandshakeTimeout
}

// connState is the lifecycle shared by both engines.
type connState int

const (
	stateConnecting connState = iota
	stateOpen
	stateClosing
	stateClosed
)

// closeRequest remembers what the user asked for so the final notification
// can report it.
type closeRequest struct {
	requested bool
	code      int
	reason    string
}

func (r closeRequest) result(fallbackCode int, fallbackReason string) (int, string) {
	if r.requested {
		return r.code, r.reason
	}
	return fallbackCode, fallbackReason
}

func handshakeError(err error, status int) error {
	if status != 0 {
		return fmt.Errorf("connection failed (HTTP %d): %w", status, err)
	}
	return fmt.Errorf("connection failed: %w", err)
}
