package tui

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studiowebux/wsprobe/internal/library"
	"github.com/studiowebux/wsprobe/internal/logbook"
	"github.com/studiowebux/wsprobe/internal/session"
	"github.com/studiowebux/wsprobe/internal/store"
	"github.com/studiowebux/wsprobe/internal/types"
)

func TestNewRestoresPrefs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	secure := true
	data, err := json.Marshal(types.Session{LastURL: "echo.local/ws", Secure: &secure, JSONMode: true})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0600))

	prefs := session.NewPrefsAt(path, false)
	require.NoError(t, prefs.Load())

	ctrl := session.NewController(&stubDialer{})
	defer ctrl.Close()
	m := New(Options{Controller: ctrl, Prefs: prefs})

	assert.Equal(t, "echo.local/ws", m.urlInput.Value())
	assert.True(t, m.secure)
	assert.True(t, m.jsonMode)
	assert.Equal(t, PaneURL, m.focus)
}

func TestToggles(t *testing.T) {
	h := newHarness(t)

	h.press(key(tea.KeyCtrlW))
	assert.True(t, h.model.secure)
	assert.Contains(t, h.model.statusMsg, "wss://")

	h.press(key(tea.KeyCtrlT))
	assert.True(t, h.model.jsonMode)
	assert.Contains(t, h.model.View(), "[json]")

	h.press(key(tea.KeyCtrlT))
	assert.False(t, h.model.jsonMode)
}

func TestConnectEmptyURL(t *testing.T) {
	h := newHarness(t)

	h.press(key(tea.KeyEnter))

	assert.Nil(t, h.dialer.last())
	assert.Equal(t, session.ErrEmptyURL.Error(), h.model.errorMsg)
	assert.Equal(t, types.StatusDisconnected, h.model.state.Status)
}

func TestConnectAndSend(t *testing.T) {
	h := newHarness(t)

	h.typeText("localhost:9000/ws")
	h.press(key(tea.KeyEnter))

	tr := h.dialer.last()
	require.NotNil(t, tr)
	assert.Equal(t, "ws://localhost:9000/ws", tr.url)
	assert.Equal(t, types.StatusConnecting, h.model.state.Status)

	tr.sink.OnOpen()
	h.model.Update(changedMsg{})
	assert.Equal(t, types.StatusConnected, h.model.state.Status)
	assert.Contains(t, h.model.View(), "connected")

	h.model.setFocus(PaneComposer)
	h.typeText("hello")
	h.press(key(tea.KeyCtrlS))

	require.Len(t, tr.sent, 1)
	assert.Equal(t, "hello", tr.sent[0])
	last := h.model.entries[len(h.model.entries)-1]
	assert.Equal(t, types.DirectionSent, last.Direction)
	assert.Equal(t, "hello", h.model.composer.Value(), "composer keeps the payload")
}

func TestSendInvalidJSONShowsError(t *testing.T) {
	h := newHarness(t)
	h.model.urlInput.SetValue("localhost:1")
	h.press(key(tea.KeyEnter))
	h.dialer.last().sink.OnOpen()

	h.model.jsonMode = true
	h.model.composer.SetValue("{bad")
	h.model.setFocus(PaneComposer)
	h.press(key(tea.KeyCtrlS))

	assert.NotEmpty(t, h.model.errorMsg)
	assert.Empty(t, h.dialer.last().sent)
}

func TestDisconnect(t *testing.T) {
	h := newHarness(t)
	h.model.urlInput.SetValue("localhost:1")
	h.press(key(tea.KeyEnter))
	tr := h.dialer.last()
	tr.sink.OnOpen()

	h.press(key(tea.KeyCtrlX))

	assert.Equal(t, types.StatusDisconnected, h.model.state.Status)
	assert.Eventually(t, func() bool {
		tr.mu.Lock()
		defer tr.mu.Unlock()
		return tr.closed
	}, time.Second, 10*time.Millisecond)
}

func TestKeyRoutingByFocus(t *testing.T) {
	h := newHarness(t)

	// q types into the URL bar
	h.press(runes("q"))
	assert.Equal(t, "q", h.model.urlInput.Value())

	// tab moves to the log, where j and k scroll instead of typing
	h.press(key(tea.KeyTab))
	assert.Equal(t, PaneLog, h.model.focus)
	h.press(runes("j"))
	assert.Equal(t, "q", h.model.urlInput.Value())

	h.press(key(tea.KeyShiftTab))
	assert.Equal(t, PaneURL, h.model.focus)
}

func TestCycleFocusSkipsHiddenLibrary(t *testing.T) {
	h := newHarness(t)
	h.model.Update(tea.WindowSizeMsg{Width: 40, Height: 30})
	require.False(t, h.model.libraryVisible())

	h.model.setFocus(PaneLog)
	h.model.cycleFocus(1)
	assert.Equal(t, PaneComposer, h.model.focus)
	assert.NotContains(t, h.model.View(), "snippets")
}

func TestInsertSnippet(t *testing.T) {
	h := newHarness(t)
	h.model.setFocus(PaneLibrary)

	h.press(runes("l"))
	require.Equal(t, library.KindSnippet, h.model.libKind)
	require.NotEmpty(t, h.model.libItems)
	assert.Equal(t, "builtin-ping", h.model.libItems[0].ID)

	h.press(key(tea.KeyEnter))

	assert.Equal(t, `{"type":"ping"}`, h.model.composer.Value())
	assert.True(t, h.model.jsonMode)
	assert.Equal(t, PaneComposer, h.model.focus)
}

func TestSaveAndInsertURL(t *testing.T) {
	h := newHarness(t)
	h.model.urlInput.SetValue("echo.local")
	h.model.secure = true

	h.press(key(tea.KeyCtrlB))
	require.Equal(t, ModeSaveURL, h.model.mode)
	h.typeText("Echo")
	h.press(key(tea.KeyEnter))

	assert.Equal(t, ModeNormal, h.model.mode)
	require.Len(t, h.model.libItems, 1)
	assert.Equal(t, "Echo", h.model.libItems[0].Name)

	h.model.urlInput.SetValue("")
	h.model.secure = false
	h.model.setFocus(PaneLibrary)
	h.press(key(tea.KeyEnter))

	assert.Equal(t, "echo.local", h.model.urlInput.Value())
	assert.True(t, h.model.secure)
	assert.Equal(t, PaneURL, h.model.focus)
}

func TestDeleteBuiltInSnippetFails(t *testing.T) {
	h := newHarness(t)
	h.model.setFocus(PaneLibrary)
	h.model.cycleKind(1)

	h.press(runes("d"))

	assert.Contains(t, h.model.errorMsg, library.ErrBuiltIn.Error())
	assert.Equal(t, "builtin-ping", h.model.libItems[0].ID)
}

func TestLogFilter(t *testing.T) {
	h := newHarness(t)
	h.model.urlInput.SetValue("localhost:1")
	h.press(key(tea.KeyEnter))
	tr := h.dialer.last()
	tr.sink.OnOpen()
	tr.sink.OnMessage([]byte(`{"kind":"tick"}`), false)
	tr.sink.OnMessage([]byte("plain"), false)
	h.model.refresh()

	h.model.setFocus(PaneLog)
	h.press(runes("/"))
	require.Equal(t, ModeFilter, h.model.mode)
	h.typeText("jmes:kind == 'tick'")
	h.press(key(tea.KeyEnter))

	require.Len(t, h.model.entries, 1)
	assert.Contains(t, h.model.entries[0].Text, "tick")
	assert.Greater(t, h.model.total, 1)

	h.press(key(tea.KeyEsc))
	assert.Empty(t, h.model.logFilter)
	assert.Equal(t, h.model.total, len(h.model.entries))
}

func TestInvalidFilterKeepsPrevious(t *testing.T) {
	h := newHarness(t)
	h.model.setFocus(PaneLog)

	h.press(runes("/"))
	h.typeText("jmes:[[")
	h.press(key(tea.KeyEnter))

	assert.NotEmpty(t, h.model.errorMsg)
	assert.Empty(t, h.model.logFilter)
}

func TestClearLog(t *testing.T) {
	h := newHarness(t)
	h.model.urlInput.SetValue("localhost:1")
	h.press(key(tea.KeyEnter))

	h.press(key(tea.KeyCtrlL))

	require.Len(t, h.model.entries, 1)
	assert.Equal(t, logbook.ClearedText, h.model.entries[0].Text)
}

func TestCopyLastEntry(t *testing.T) {
	var copied string
	orig := clipboardWrite
	clipboardWrite = func(s string) error { copied = s; return nil }
	defer func() { clipboardWrite = orig }()

	h := newHarness(t)
	h.model.setFocus(PaneLog)
	h.press(runes("y"))
	assert.Equal(t, "Log is empty", h.model.errorMsg)

	h.model.urlInput.SetValue("localhost:1")
	h.model.connect()
	h.press(runes("y"))
	assert.Equal(t, "Connecting to ws://localhost:1...", copied)
}

func TestExportLog(t *testing.T) {
	h := newHarness(t)
	h.model.urlInput.SetValue("localhost:1")
	h.model.connect()

	path := filepath.Join(t.TempDir(), "log.json")
	h.model.exportLog(path)

	require.Empty(t, h.model.errorMsg)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Connecting to ws://localhost:1...")
}

func TestQuitSavesPrefs(t *testing.T) {
	h := newHarness(t)
	h.model.urlInput.SetValue("echo.local")
	h.model.secure = true
	h.model.jsonMode = true

	cmd := h.press(key(tea.KeyCtrlC))
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)

	prefs := session.NewPrefsAt(h.prefsPath, false)
	require.NoError(t, prefs.Load())
	assert.Equal(t, "echo.local", prefs.LastURL())
	assert.True(t, prefs.Secure())
	assert.True(t, prefs.JSONMode())
}

func TestViewSections(t *testing.T) {
	h := newHarness(t)

	view := h.model.View()
	for _, want := range []string{"wsprobe", "disconnected", "[ws ]", "Log (0)", "urls", "[text]"} {
		assert.True(t, strings.Contains(view, want), "view should contain %q", want)
	}

	ctrl := session.NewController(&stubDialer{})
	defer ctrl.Close()
	m := New(Options{Controller: ctrl, Library: library.New(store.NewMemory())})
	assert.Equal(t, "Loading...", m.View())
}
