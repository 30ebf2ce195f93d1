package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/studiowebux/wsprobe/internal/library"
	"github.com/studiowebux/wsprobe/internal/logbook"
	"github.com/studiowebux/wsprobe/internal/payload"
	"github.com/studiowebux/wsprobe/internal/types"
	"gopkg.in/yaml.v3"
)

var (
	sentStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	recvStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	systemStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// formatEntry renders one log entry for the REPL
func formatEntry(e logbook.Entry, color bool) string {
	if !color {
		return logbook.FormatLine(e)
	}

	var label string
	switch e.Direction {
	case types.DirectionSent:
		label = sentStyle.Render("sent")
	case types.DirectionReceived:
		label = recvStyle.Render("received")
	default:
		label = systemStyle.Render("system")
	}

	text := e.Text
	if e.Direction != types.DirectionSystem && payload.IsJSON(text) {
		text = payload.Highlight(text)
	}
	text = strings.ReplaceAll(text, "\n", "\n    ")
	return fmt.Sprintf("%s %s: %s", subtleStyle.Render("["+e.Timestamp+"]"), label, text)
}

// writeStructured encodes v as indented JSON or YAML
func writeStructured(w io.Writer, v any, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(v)
	}
	return fmt.Errorf("unsupported output format %q (expected text, json or yaml)", format)
}

// table creates an aligned table writer. Call Flush when done writing.
func table(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// PrintURLs lists saved URLs as text, json or yaml
func PrintURLs(w io.Writer, urls []types.SavedURL, format string) error {
	if format != "" && format != "text" {
		if urls == nil {
			urls = []types.SavedURL{}
		}
		return writeStructured(w, urls, format)
	}
	if len(urls) == 0 {
		_, err := fmt.Fprintln(w, "No saved URLs")
		return err
	}

	tw := table(w)
	fmt.Fprintln(tw, "ID\tLABEL\tURL\tSECURE")
	for _, u := range urls {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\n", u.ID, u.Label, u.URL, u.Secure)
	}
	return tw.Flush()
}

// PrintSnippets lists snippets as text, json or yaml. Built-ins are marked
// in text output.
func PrintSnippets(w io.Writer, snippets []types.Snippet, format string) error {
	if format != "" && format != "text" {
		if snippets == nil {
			snippets = []types.Snippet{}
		}
		return writeStructured(w, snippets, format)
	}
	if len(snippets) == 0 {
		_, err := fmt.Fprintln(w, "No snippets")
		return err
	}

	tw := table(w)
	fmt.Fprintln(tw, "ID\tNAME\tTYPE\tCONTENT")
	for _, s := range snippets {
		name := s.Name
		if s.BuiltIn {
			name += " (built-in)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.ID, name, s.Type, preview(s.Content))
	}
	return tw.Flush()
}

// PrintTemplates lists templates as text, json or yaml
func PrintTemplates(w io.Writer, templates []types.Template, format string) error {
	if format != "" && format != "text" {
		if templates == nil {
			templates = []types.Template{}
		}
		return writeStructured(w, templates, format)
	}
	if len(templates) == 0 {
		_, err := fmt.Fprintln(w, "No templates")
		return err
	}

	tw := table(w)
	fmt.Fprintln(tw, "ID\tNAME\tTYPE\tDESCRIPTION")
	for _, t := range templates {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", t.ID, t.Name, t.Type, t.Description)
	}
	return tw.Flush()
}

// itemView is the structured form of a search result
type itemView struct {
	Kind    string `json:"kind" yaml:"kind"`
	ID      string `json:"id" yaml:"id"`
	Name    string `json:"name" yaml:"name"`
	Detail  string `json:"detail,omitempty" yaml:"detail,omitempty"`
	Content string `json:"content" yaml:"content"`
}

// PrintItems lists fuzzy search results as text, json or yaml
func PrintItems(w io.Writer, items []library.Item, format string) error {
	if format != "" && format != "text" {
		views := make([]itemView, 0, len(items))
		for _, it := range items {
			views = append(views, itemView{Kind: string(it.Kind), ID: it.ID, Name: it.Name, Detail: it.Detail, Content: it.Content})
		}
		return writeStructured(w, views, format)
	}
	if len(items) == 0 {
		_, err := fmt.Fprintln(w, "No matches")
		return err
	}

	tw := table(w)
	fmt.Fprintln(tw, "ID\tNAME\tDETAIL")
	for _, it := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", it.ID, it.Name, preview(it.Detail))
	}
	return tw.Flush()
}

// preview collapses content to a single short line
func preview(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) > 40 {
		return string(r[:37]) + "..."
	}
	return s
}
