// Package payload formats message payloads for display and for the wire.
package payload

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
)

// ErrInvalidJSON is returned by Canonicalize when the payload does not parse.
var ErrInvalidJSON = errors.New("invalid JSON")

// Indent is the indentation used for pretty-printed JSON.
const Indent = "  "

// IsJSON reports whether text is a single valid JSON value.
func IsJSON(text string) bool {
	return json.Valid([]byte(text))
}

// PrettyOrRaw returns text pretty-printed when it is valid JSON and verbatim
// otherwise. Sent and received payloads go through the same rule.
func PrettyOrRaw(text string) string {
	compact, err := compact(text)
	if err != nil {
		return text
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, compact, "", Indent); err != nil {
		return text
	}
	return buf.String()
}

// Canonicalize re-serializes a JSON payload in compact form. Only insignificant
// whitespace is removed: key order, number spelling and string escapes are sent
// as written. The error wraps ErrInvalidJSON and carries the decoder's message.
func Canonicalize(text string) (string, error) {
	out, err := compact(text)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func compact(text string) ([]byte, error) {
	src := []byte(text)
	if !json.Valid(src) {
		// Decode again to get a positioned error message.
		var v any
		err := json.Unmarshal(src, &v)
		if err == nil {
			err = errors.New("unexpected trailing data")
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, describe(err, src))
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, src); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return buf.Bytes(), nil
}

// describe adds a line/column position to syntax errors.
func describe(err error, src []byte) string {
	var syntaxErr *json.SyntaxError
	if !errors.As(err, &syntaxErr) {
		return err.Error()
	}

	offset := int(syntaxErr.Offset)
	if offset > len(src) {
		offset = len(src)
	}
	before := string(src[:offset])
	line := strings.Count(before, "\n") + 1
	col := offset - strings.LastIndex(before, "\n")
	return fmt.Sprintf("%s (line %d, column %d)", syntaxErr.Error(), line, col)
}

// Highlight colours JSON text for a 256-colour terminal. Anything that is not
// JSON, or that chroma fails to render, is returned unchanged.
func Highlight(text string) string {
	if !IsJSON(text) {
		return text
	}

	var buf bytes.Buffer
	if err := quick.Highlight(&buf, text, "json", "terminal256", "monokai"); err != nil {
		return text
	}
	return strings.TrimRight(buf.String(), "\n")
}
