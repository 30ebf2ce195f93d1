package library

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/studiowebux/wsprobe/internal/types"
	"gopkg.in/yaml.v3"
)

// Bundle is the export/import document.
type Bundle struct {
	URLs      []types.SavedURL `json:"urls" yaml:"urls"`
	Snippets  []types.Snippet  `json:"snippets" yaml:"snippets"`
	Templates []types.Template `json:"templates" yaml:"templates"`
}

// ImportResult counts what an import added.
type ImportResult struct {
	URLs      int
	Snippets  int
	Templates int
	Skipped   int
}

// Export writes the user's collections. Built-in snippets are left out.
func (l *Library) Export(w io.Writer, format string) error {
	b := Bundle{URLs: l.URLs(), Templates: l.Templates()}
	for _, s := range l.Snippets() {
		if !s.BuiltIn {
			b.Snippets = append(b.Snippets, s)
		}
	}

	switch strings.ToLower(format) {
	case "", "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(b); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(b); err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// Import reads a bundle and adds its entries. Duplicate URLs are skipped.
// Imported entries get fresh IDs.
func (l *Library) Import(r io.Reader, format string) (ImportResult, error) {
	var b Bundle
	switch strings.ToLower(format) {
	case "", "yaml", "yml":
		if err := yaml.NewDecoder(r).Decode(&b); err != nil && !errors.Is(err, io.EOF) {
			return ImportResult{}, fmt.Errorf("failed to parse yaml: %w", err)
		}
	case "json":
		if err := json.NewDecoder(r).Decode(&b); err != nil {
			return ImportResult{}, fmt.Errorf("failed to parse json: %w", err)
		}
	default:
		return ImportResult{}, fmt.Errorf("unsupported format: %s", format)
	}

	var res ImportResult
	for _, u := range b.URLs {
		if _, err := l.AddURL(u.Label, u.URL, u.Secure); err != nil {
			res.Skipped++
			continue
		}
		res.URLs++
	}
	for _, s := range b.Snippets {
		if _, err := l.AddSnippet(s.Name, s.Content, s.Type); err != nil {
			res.Skipped++
			continue
		}
		res.Snippets++
	}
	for _, t := range b.Templates {
		if _, err := l.AddTemplate(t.Name, t.Content, t.Type, t.Description); err != nil {
			res.Skipped++
			continue
		}
		res.Templates++
	}
	return res, nil
}

// ImportWS saves the endpoint of a parsed .ws file and one snippet per send
// message. Receive expectations are ignored.
func (l *Library) ImportWS(req *types.WebSocketRequest) (ImportResult, error) {
	if req == nil || strings.TrimSpace(req.URL) == "" {
		return ImportResult{}, errors.New("websocket file has no URL")
	}

	var res ImportResult
	label := req.Name
	if label == "" {
		label = req.URL
	}
	if _, err := l.AddURL(label, req.URL, strings.HasPrefix(req.URL, "wss://")); err != nil {
		if !errors.Is(err, ErrDuplicate) {
			return res, err
		}
		res.Skipped++
	} else {
		res.URLs++
	}

	for i, msg := range req.Messages {
		if msg.Direction != "send" {
			continue
		}
		name := msg.Name
		if name == "" {
			name = fmt.Sprintf("%s #%d", label, i+1)
		}
		typ := msg.Type
		if typ != types.PayloadJSON {
			typ = types.PayloadText
		}
		if _, err := l.AddSnippet(name, msg.Content, typ); err != nil {
			res.Skipped++
			continue
		}
		res.Snippets++
	}
	return res, nil
}
