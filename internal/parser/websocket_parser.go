// Package parser reads .ws files: a WEBSOCKET endpoint with handshake headers
// and annotations, followed by ### blocks of messages to send (>) and expect (<).
package parser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/studiowebux/wsprobe/internal/types"
)

const (
	// DefaultName is used when neither a @name annotation nor a file name is available.
	DefaultName = "WebSocket Connection"

	// DefaultTimeout is the per-message timeout in seconds.
	DefaultTimeout = 30

	DirectionSend    = "send"
	DirectionReceive = "receive"
)

// ErrNoURL is returned when a file has no WEBSOCKET line.
var ErrNoURL = errors.New("no WEBSOCKET url found in file")

// ParseWebSocketFile parses a .ws file. Without a @name annotation the
// request is named after the file.
func ParseWebSocketFile(filePath string) (*types.WebSocketRequest, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	req, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filePath, err)
	}
	if req.Name == DefaultName {
		if base := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath)); base != "" {
			req.Name = base
		}
	}
	return req, nil
}

// Parse reads .ws content from r.
func Parse(r io.Reader) (*types.WebSocketRequest, error) {
	p := &wsParser{
		req: &types.WebSocketRequest{
			Headers:  make(map[string]string),
			Messages: []types.WebSocketMessage{},
		},
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		p.line++
		if err := p.handle(scanner.Text()); err != nil {
			return nil, fmt.Errorf("line %d: %w", p.line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}
	p.flush()

	if p.req.URL == "" {
		return nil, ErrNoURL
	}
	if p.req.Name == "" {
		p.req.Name = DefaultName
	}
	return p.req, nil
}

// block holds the defaults a ### section applies to its messages.
type block struct {
	name    string
	typ     string
	timeout int
}

type wsParser struct {
	req   *types.WebSocketRequest
	block *block

	// pending is the message whose body lines are being collected.
	pending *types.WebSocketMessage
	body    []string
	line    int
}

func (p *wsParser) handle(line string) error {
	trimmed := strings.TrimSpace(line)

	if p.pending != nil && !isDirective(trimmed) {
		p.body = append(p.body, line)
		return nil
	}

	switch {
	case trimmed == "":
		return nil
	case strings.HasPrefix(trimmed, "###"):
		p.flush()
		p.block = &block{
			name:    strings.TrimSpace(strings.TrimPrefix(trimmed, "###")),
			typ:     types.PayloadText,
			timeout: DefaultTimeout,
		}
		return nil
	case strings.HasPrefix(trimmed, "#"):
		return p.annotation(strings.TrimSpace(strings.TrimPrefix(trimmed, "#")))
	case strings.HasPrefix(trimmed, ">"):
		return p.direction(DirectionSend, strings.TrimSpace(trimmed[1:]))
	case strings.HasPrefix(trimmed, "<"):
		return p.direction(DirectionReceive, strings.TrimSpace(trimmed[1:]))
	case p.block == nil:
		return p.connectionLine(trimmed)
	default:
		return fmt.Errorf("unexpected content %q (start a message with > or <)", trimmed)
	}
}

func isDirective(trimmed string) bool {
	return strings.HasPrefix(trimmed, "###") || strings.HasPrefix(trimmed, ">") || strings.HasPrefix(trimmed, "<")
}

func (p *wsParser) connectionLine(trimmed string) error {
	if len(trimmed) > len("WEBSOCKET ") && strings.EqualFold(trimmed[:len("WEBSOCKET ")], "WEBSOCKET ") {
		p.req.URL = strings.TrimSpace(trimmed[len("WEBSOCKET "):])
		return nil
	}
	key, value, ok := strings.Cut(trimmed, ":")
	if !ok || strings.TrimSpace(key) == "" {
		return fmt.Errorf("expected header 'Key: Value', got %q", trimmed)
	}
	p.req.Headers[strings.TrimSpace(key)] = strings.TrimSpace(value)
	return nil
}

func (p *wsParser) annotation(text string) error {
	name, value, _ := strings.Cut(text, " ")
	value = strings.TrimSpace(value)

	if p.block == nil {
		switch name {
		case "@name":
			p.req.Name = value
		case "@subprotocol":
			if value != "" {
				p.req.Subprotocols = append(p.req.Subprotocols, value)
			}
		case "@tls.certFile":
			p.tls().CertFile = value
		case "@tls.keyFile":
			p.tls().KeyFile = value
		case "@tls.caFile":
			p.tls().CAFile = value
		case "@tls.insecureSkipVerify":
			p.tls().InsecureSkipVerify = value == "true"
		}
		// Anything else is a comment.
		return nil
	}

	switch name {
	case "@type":
		if value != types.PayloadText && value != types.PayloadJSON && value != "binary" {
			return fmt.Errorf("invalid @type %q", value)
		}
		p.block.typ = value
	case "@timeout":
		seconds, err := strconv.Atoi(value)
		if err != nil || seconds < 0 {
			return fmt.Errorf("invalid @timeout %q", value)
		}
		p.block.timeout = seconds
	}
	return nil
}

func (p *wsParser) tls() *types.TLSConfig {
	if p.req.TLS == nil {
		p.req.TLS = &types.TLSConfig{}
	}
	return p.req.TLS
}

// direction handles a > or < line. "json" or "text" (and a bare > ) open a
// body; a bare < waits for any message; anything else is inline content.
func (p *wsParser) direction(dir, rest string) error {
	if p.block == nil {
		return fmt.Errorf("message outside a ### block")
	}
	p.flush()

	msg := types.WebSocketMessage{
		Name:      p.block.name,
		Type:      p.block.typ,
		Direction: dir,
		Timeout:   p.block.timeout,
	}

	switch {
	case rest == types.PayloadJSON || rest == types.PayloadText:
		msg.Type = rest
		p.pending = &msg
	case rest == "" && dir == DirectionSend:
		p.pending = &msg
	case rest == "":
		p.req.Messages = append(p.req.Messages, msg)
	default:
		msg.Content = rest
		p.req.Messages = append(p.req.Messages, msg)
	}
	return nil
}

// flush emits the pending message with trailing blank lines removed.
func (p *wsParser) flush() {
	if p.pending == nil {
		return
	}
	end := len(p.body)
	for end > 0 && strings.TrimSpace(p.body[end-1]) == "" {
		end--
	}
	p.pending.Content = strings.Join(p.body[:end], "\n")
	p.req.Messages = append(p.req.Messages, *p.pending)
	p.pending = nil
	p.body = nil
}
