package logbook

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Export formats
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// FormatFromPath picks an export format from a file extension, defaulting to text.
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatText
	}
}

// Export writes entries to w in the given format.
func Export(w io.Writer, entries []Entry, format string) error {
	switch strings.ToLower(format) {
	case "", FormatText:
		for _, e := range entries {
			if _, err := io.WriteString(w, FormatLine(e)+"\n"); err != nil {
				return fmt.Errorf("failed to write log: %w", err)
			}
		}
		return nil

	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(entries); err != nil {
			return fmt.Errorf("failed to encode log as JSON: %w", err)
		}
		return nil

	case FormatYAML:
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		if err := enc.Encode(entries); err != nil {
			return fmt.Errorf("failed to encode log as YAML: %w", err)
		}
		return nil

	default:
		return fmt.Errorf("unsupported export format: %s", format)
	}
}

// FormatLine renders an entry as "[15:04:05] sent: text". Multi-line text
// keeps its line breaks, indented under the header.
func FormatLine(e Entry) string {
	text := strings.ReplaceAll(e.Text, "\n", "\n    ")
	return fmt.Sprintf("[%s] %s: %s", e.Timestamp, e.Direction, text)
}
