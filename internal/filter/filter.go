// Package filter narrows log snapshots by substring or JMESPath expression.
package filter

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jmespath/go-jmespath"
	"github.com/studiowebux/wsprobe/internal/logbook"
	"github.com/studiowebux/wsprobe/internal/types"
)

// JMESPrefix marks an expression as JMESPath rather than a substring.
const JMESPrefix = "jmes:"

// Matcher reports whether an entry passes a filter.
type Matcher func(logbook.Entry) bool

// Compile turns an expression into a Matcher.
// "jmes:<expr>" keeps JSON entries for which expr yields a truthy value;
// anything else is a case-insensitive substring of the entry text. An empty
// expression matches everything.
func Compile(expr string) (Matcher, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return func(logbook.Entry) bool { return true }, nil
	}

	if rest, ok := strings.CutPrefix(expr, JMESPrefix); ok {
		jp, err := compileJMESPath(strings.TrimSpace(rest))
		if err != nil {
			return nil, err
		}
		return func(e logbook.Entry) bool {
			if e.Direction == types.DirectionSystem {
				return false
			}
			var data interface{}
			if err := json.Unmarshal([]byte(e.Text), &data); err != nil {
				return false
			}
			result, err := jp.Search(data)
			return err == nil && truthy(result)
		}, nil
	}

	needle := strings.ToLower(expr)
	return func(e logbook.Entry) bool {
		return strings.Contains(strings.ToLower(e.Text), needle)
	}, nil
}

// Apply returns the entries matching expr, in order.
func Apply(entries []logbook.Entry, expr string) ([]logbook.Entry, error) {
	match, err := Compile(expr)
	if err != nil {
		return nil, err
	}
	out := make([]logbook.Entry, 0, len(entries))
	for _, e := range entries {
		if match(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

// Validate reports whether expr compiles.
func Validate(expr string) error {
	_, err := Compile(expr)
	return err
}

// Extract evaluates a JMESPath expression against a JSON document and
// returns the result as indented JSON.
func Extract(body string, expression string) (string, error) {
	var data interface{}
	if err := json.Unmarshal([]byte(body), &data); err != nil {
		return "", fmt.Errorf("invalid JSON: %w", err)
	}

	jp, err := compileJMESPath(expression)
	if err != nil {
		return "", err
	}

	result, err := jp.Search(data)
	if err != nil {
		return "", fmt.Errorf("JMESPath search failed: %w", err)
	}

	// Handle null result
	if result == nil {
		return "null", nil
	}

	output, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal result: %w", err)
	}
	return string(output), nil
}

func compileJMESPath(expression string) (*jmespath.JMESPath, error) {
	if expression == "" {
		return nil, fmt.Errorf("empty JMESPath expression")
	}
	jp, err := jmespath.Compile(expression)
	if err != nil {
		return nil, fmt.Errorf("invalid JMESPath expression '%s': %w", expression, err)
	}
	return jp, nil
}

// truthy follows JMESPath: false, null and empty strings, arrays and objects
// are false.
func truthy(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case []interface{}:
		return len(t) > 0
	case map[string]interface{}:
		return len(t) > 0
	default:
		return true
	}
}
