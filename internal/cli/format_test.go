package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studiowebux/wsprobe/internal/library"
	"github.com/studiowebux/wsprobe/internal/logbook"
	"github.com/studiowebux/wsprobe/internal/types"
	"gopkg.in/yaml.v3"
)

func TestPrintURLs(t *testing.T) {
	urls := []types.SavedURL{{ID: "u1", Label: "Echo", URL: "echo.local", Secure: true, CreatedAt: time.Unix(0, 0).UTC()}}

	var buf bytes.Buffer
	require.NoError(t, PrintURLs(&buf, urls, "text"))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, []string{"ID", "LABEL", "URL", "SECURE"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"u1", "Echo", "echo.local", "true"}, strings.Fields(lines[1]))

	buf.Reset()
	require.NoError(t, PrintURLs(&buf, urls, "json"))
	var decoded []types.SavedURL
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, urls, decoded)

	buf.Reset()
	require.NoError(t, PrintURLs(&buf, nil, "json"))
	assert.Equal(t, "[]\n", buf.String())

	buf.Reset()
	require.NoError(t, PrintURLs(&buf, nil, ""))
	assert.Equal(t, "No saved URLs\n", buf.String())
}

func TestPrintSnippetsMarksBuiltIns(t *testing.T) {
	snippets := []types.Snippet{
		{ID: "builtin-ping", Name: "ping", Content: `{"type":"ping"}`, Type: types.PayloadJSON, BuiltIn: true},
		{ID: "s2", Name: "multi", Content: "line one\nline two", Type: types.PayloadText},
	}

	var buf bytes.Buffer
	require.NoError(t, PrintSnippets(&buf, snippets, "text"))
	out := buf.String()
	assert.Contains(t, out, "ping (built-in)")
	assert.Contains(t, out, "line one line two")
}

func TestPrintTemplatesYAML(t *testing.T) {
	templates := []types.Template{{ID: "t1", Name: "greet", Content: "hi", Type: types.PayloadText, Description: "Say hi"}}

	var buf bytes.Buffer
	require.NoError(t, PrintTemplates(&buf, templates, "yaml"))
	var decoded []types.Template
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, templates, decoded)
}

func TestPrintItems(t *testing.T) {
	items := []library.Item{{Kind: library.KindSnippet, ID: "s1", Name: "ping", Detail: "json", Content: "{}"}}

	var buf bytes.Buffer
	require.NoError(t, PrintItems(&buf, items, "json"))
	assert.Contains(t, buf.String(), `"kind": "snippet"`)

	buf.Reset()
	require.NoError(t, PrintItems(&buf, nil, "text"))
	assert.Equal(t, "No matches\n", buf.String())
}

func TestPrintUnsupportedFormat(t *testing.T) {
	err := PrintTemplates(&bytes.Buffer{}, nil, "xml")
	assert.ErrorContains(t, err, "unsupported output format")
}

func TestFormatEntryPlain(t *testing.T) {
	e := logbook.Entry{Timestamp: "10:00:00", Direction: types.DirectionReceived, Text: "{\n  \"a\": 1\n}"}
	assert.Equal(t, "[10:00:00] received: {\n      \"a\": 1\n    }", formatEntry(e, false))
}

func TestParseSwitch(t *testing.T) {
	v, err := parseSwitch("", false)
	require.NoError(t, err)
	assert.True(t, v)

	v, err = parseSwitch("off", true)
	require.NoError(t, err)
	assert.False(t, v)

	_, err = parseSwitch("maybe", true)
	assert.Error(t, err)
}
