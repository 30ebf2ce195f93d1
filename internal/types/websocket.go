package types

import "time"

// WebSocketRequest represents a WebSocket connection definition from .ws files
type WebSocketRequest struct {
	Name         string             `json:"name,omitempty" yaml:"name,omitempty"`
	URL          string             `json:"url" yaml:"url"`
	Headers      map[string]string  `json:"headers,omitempty" yaml:"headers,omitempty"`
	Subprotocols []string           `json:"subprotocols,omitempty" yaml:"subprotocols,omitempty"`
	Messages     []WebSocketMessage `json:"messages,omitempty" yaml:"messages,omitempty"`
	TLS          *TLSConfig         `json:"tls,omitempty" yaml:"tls,omitempty"`
}

// WebSocketMessage represents a message to send or expect in the sequence
type WebSocketMessage struct {
	Name      string `json:"name,omitempty" yaml:"name,omitempty"`       // Message name/label
	Type      string `json:"type" yaml:"type"`                           // "text" | "json" | "binary"
	Content   string `json:"content" yaml:"content"`                     // Message body
	Direction string `json:"direction" yaml:"direction"`                 // "send" | "receive"
	Timeout   int    `json:"timeout,omitempty" yaml:"timeout,omitempty"` // Timeout in seconds
}

// TLSConfig holds client TLS settings for wss:// handshakes
type TLSConfig struct {
	CertFile           string `json:"certFile,omitempty" yaml:"certFile,omitempty"`
	KeyFile            string `json:"keyFile,omitempty" yaml:"keyFile,omitempty"`
	CAFile             string `json:"caFile,omitempty" yaml:"caFile,omitempty"`
	InsecureSkipVerify bool   `json:"insecureSkipVerify,omitempty" yaml:"insecureSkipVerify,omitempty"`
}

// IsZero reports whether no TLS option is set
func (c *TLSConfig) IsZero() bool {
	return c == nil || (c.CertFile == "" && c.KeyFile == "" && c.CAFile == "" && !c.InsecureSkipVerify)
}

// DialOptions configures the opening handshake of a transport
type DialOptions struct {
	Headers          map[string]string
	Subprotocols     []string
	HandshakeTimeout time.Duration
	TLS              *TLSConfig
}

// Status is the connection status of the session controller
type Status int

const (
	StatusDisconnected Status = iota
	StatusConnecting
	StatusConnected
)

// String returns the lowercase status name
func (s Status) String() string {
	switch s {
	case StatusDisconnected:
		return "disconnected"
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	default:
		return "unknown"
	}
}

// Direction tags a log entry with where it came from
type Direction int

const (
	DirectionSystem Direction = iota
	DirectionSent
	DirectionReceived
)

// String returns "sent", "received" or "system"
func (d Direction) String() string {
	switch d {
	case DirectionSent:
		return "sent"
	case DirectionReceived:
		return "received"
	default:
		return "system"
	}
}

// ParseDirection is the inverse of Direction.String
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "sent":
		return DirectionSent, true
	case "received":
		return DirectionReceived, true
	case "system":
		return DirectionSystem, true
	}
	return DirectionSystem, false
}

// MarshalText implements encoding.TextMarshaler so directions serialize by name
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Direction) UnmarshalText(b []byte) error {
	parsed, _ := ParseDirection(string(b))
	*d = parsed
	return nil
}

// ConnectionState is a point-in-time copy of the controller state
type ConnectionState struct {
	Status      Status
	TargetURL   string
	LastError   string
	ConnectedAt time.Time
}
