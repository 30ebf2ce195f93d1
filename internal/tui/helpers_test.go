package tui

import (
	"path/filepath"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
	"github.com/studiowebux/wsprobe/internal/library"
	"github.com/studiowebux/wsprobe/internal/session"
	"github.com/studiowebux/wsprobe/internal/store"
	"github.com/studiowebux/wsprobe/internal/transport"
	"github.com/studiowebux/wsprobe/internal/types"
)

type stubTransport struct {
	mu     sync.Mutex
	url    string
	sink   transport.Sink
	sent   []string
	closed bool
}

func (s *stubTransport) Send(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, text)
	return nil
}

func (s *stubTransport) Close(int, string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

type stubDialer struct {
	mu     sync.Mutex
	opened []*stubTransport
}

func (d *stubDialer) Open(rawURL string, _ types.DialOptions, sink transport.Sink) (transport.Transport, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	tr := &stubTransport{url: rawURL, sink: sink}
	d.opened = append(d.opened, tr)
	return tr, nil
}

func (d *stubDialer) last() *stubTransport {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.opened) == 0 {
		return nil
	}
	return d.opened[len(d.opened)-1]
}

type harness struct {
	model     *Model
	dialer    *stubDialer
	prefsPath string
}

// newHarness builds a sized model backed by in-memory collaborators
func newHarness(t *testing.T) *harness {
	t.Helper()
	dialer := &stubDialer{}
	ctrl := session.NewController(dialer)
	t.Cleanup(ctrl.Close)

	prefsPath := filepath.Join(t.TempDir(), "session.json")
	prefs := session.NewPrefsAt(prefsPath, false)
	require.NoError(t, prefs.Load())

	m := New(Options{
		Controller: ctrl,
		Library:    library.New(store.NewMemory()),
		Prefs:      prefs,
	})
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return &harness{model: m, dialer: dialer, prefsPath: prefsPath}
}

func (h *harness) press(keys ...tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = h.model.Update(k)
	}
	return cmd
}

func (h *harness) typeText(s string) {
	for _, r := range s {
		h.press(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func key(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}
