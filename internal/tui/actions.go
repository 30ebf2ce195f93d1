package tui

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/studiowebux/wsprobe/internal/config"
	"github.com/studiowebux/wsprobe/internal/filter"
	"github.com/studiowebux/wsprobe/internal/library"
	"github.com/studiowebux/wsprobe/internal/logbook"
	"github.com/studiowebux/wsprobe/internal/types"
)

// clipboardWrite is swapped in tests
var clipboardWrite = clipboard.WriteAll

func (m *Model) connect() tea.Cmd {
	raw := m.urlInput.Value()
	err := m.ctrl.Connect(raw, m.secure)
	m.refresh()
	if err != nil {
		return m.setErrorMessage(err.Error())
	}
	if m.prefs != nil {
		m.prefs.Remember(raw, m.secure)
	}
	return nil
}

func (m *Model) disconnect() tea.Cmd {
	m.ctrl.Disconnect(m.closeReason)
	m.refresh()
	return nil
}

func (m *Model) send() tea.Cmd {
	err := m.ctrl.Send(m.composer.Value(), m.jsonMode)
	m.refresh()
	if err != nil {
		return m.setErrorMessage(err.Error())
	}
	return nil
}

func (m *Model) toggleSecure() tea.Cmd {
	m.secure = !m.secure
	if m.prefs != nil {
		m.prefs.Remember(m.urlInput.Value(), m.secure)
	}
	if m.secure {
		return m.setStatusMessage("Scheme: wss://")
	}
	return m.setStatusMessage("Scheme: ws://")
}

func (m *Model) toggleJSON() tea.Cmd {
	m.jsonMode = !m.jsonMode
	if m.prefs != nil {
		m.prefs.SetJSONMode(m.jsonMode)
	}
	if m.jsonMode {
		return m.setStatusMessage("JSON mode on")
	}
	return m.setStatusMessage("JSON mode off")
}

func (m *Model) copyLastEntry() tea.Cmd {
	if len(m.entries) == 0 {
		return m.setErrorMessage("Log is empty")
	}
	if err := clipboardWrite(m.entries[len(m.entries)-1].Text); err != nil {
		return m.setErrorMessage(fmt.Sprintf("Failed to copy: %v", err))
	}
	return m.setStatusMessage("Last entry copied to clipboard")
}

func (m *Model) copyLog() tea.Cmd {
	if len(m.entries) == 0 {
		return m.setErrorMessage("Log is empty")
	}
	lines := make([]string, len(m.entries))
	for i, e := range m.entries {
		lines[i] = logbook.FormatLine(e)
	}
	if err := clipboardWrite(strings.Join(lines, "\n")); err != nil {
		return m.setErrorMessage(fmt.Sprintf("Failed to copy: %v", err))
	}
	return m.setStatusMessage(fmt.Sprintf("%d entries copied to clipboard", len(m.entries)))
}

func defaultExportPath() string {
	return fmt.Sprintf("wsprobe-log-%s.txt", time.Now().Format("20060102-150405"))
}

func (m *Model) exportLog(path string) tea.Cmd {
	path = strings.TrimSpace(path)
	if path == "" {
		return m.setErrorMessage("Export path is empty")
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, config.FilePermissions)
	if err != nil {
		return m.setErrorMessage(fmt.Sprintf("Failed to export: %v", err))
	}
	defer f.Close()

	if err := logbook.Export(f, m.entries, logbook.FormatFromPath(path)); err != nil {
		return m.setErrorMessage(fmt.Sprintf("Failed to export: %v", err))
	}
	return m.setStatusMessage(fmt.Sprintf("Log saved to %s", path))
}

func (m *Model) openPrompt(mode Mode, label, value string) tea.Cmd {
	m.mode = mode
	m.prompt.Prompt = label
	m.prompt.SetValue(value)
	m.prompt.CursorEnd()
	m.urlInput.Blur()
	m.composer.Blur()
	return m.prompt.Focus()
}

func (m *Model) closePrompt() {
	m.mode = ModeNormal
	m.prompt.Blur()
	m.prompt.SetValue("")
	m.setFocus(m.focus)
}

func (m *Model) submitPrompt() tea.Cmd {
	value := m.prompt.Value()
	mode := m.mode
	m.closePrompt()

	switch mode {
	case ModeFilter:
		if m.filterTarget == PaneLibrary {
			m.libFilter = strings.TrimSpace(value)
			m.reloadLibrary()
			return nil
		}
		if err := filter.Validate(value); err != nil {
			return m.setErrorMessage(err.Error())
		}
		m.logFilter = strings.TrimSpace(value)
		m.updateLogView()
	case ModeSaveURL:
		return m.saveURL(value)
	case ModeExportLog:
		return m.exportLog(value)
	}
	return nil
}

func (m *Model) saveURL(label string) tea.Cmd {
	if m.lib == nil {
		return m.setErrorMessage("Library unavailable")
	}
	entry, err := m.lib.AddURL(label, m.urlInput.Value(), m.secure)
	if err != nil {
		return m.setErrorMessage(err.Error())
	}
	m.reloadLibrary()
	return m.setStatusMessage(fmt.Sprintf("Saved %s", entry.Label))
}

func (m *Model) reloadLibrary() {
	if m.lib == nil {
		m.libItems = nil
		m.libIndex = 0
		return
	}
	m.libItems = m.lib.Find(m.libKind, m.libFilter)
	if m.libIndex >= len(m.libItems) {
		m.libIndex = len(m.libItems) - 1
	}
	if m.libIndex < 0 {
		m.libIndex = 0
	}
}

func (m *Model) cycleKind(step int) {
	idx := 0
	for i, k := range libraryKinds {
		if k == m.libKind {
			idx = i
		}
	}
	m.libKind = libraryKinds[(idx+step+len(libraryKinds))%len(libraryKinds)]
	m.libIndex = 0
	m.reloadLibrary()
}

func (m *Model) selectedItem() (library.Item, bool) {
	if m.libIndex < 0 || m.libIndex >= len(m.libItems) {
		return library.Item{}, false
	}
	return m.libItems[m.libIndex], true
}

// insertSelected loads a saved URL into the URL bar, or a snippet or
// template into the composer
func (m *Model) insertSelected() tea.Cmd {
	item, ok := m.selectedItem()
	if !ok {
		return nil
	}

	if item.Kind == library.KindURL {
		m.urlInput.SetValue(item.Content)
		m.urlInput.CursorEnd()
		m.secure = item.Secure
		m.setFocus(PaneURL)
		return m.setStatusMessage(fmt.Sprintf("Loaded %s", item.Name))
	}

	m.composer.SetValue(item.Content)
	m.jsonMode = item.Type == types.PayloadJSON
	m.setFocus(PaneComposer)
	return m.setStatusMessage(fmt.Sprintf("Inserted %s", item.Name))
}

func (m *Model) deleteSelected() tea.Cmd {
	item, ok := m.selectedItem()
	if !ok || m.lib == nil {
		return nil
	}
	if err := m.lib.Remove(item.Kind, item.ID); err != nil {
		return m.setErrorMessage(err.Error())
	}
	m.reloadLibrary()
	return m.setStatusMessage(fmt.Sprintf("Deleted %s", item.Name))
}

// quit tears down the connection and persists preferences
func (m *Model) quit() tea.Cmd {
	m.ctrl.Close()
	if m.prefs != nil {
		m.prefs.Remember(m.urlInput.Value(), m.secure)
		m.prefs.SetJSONMode(m.jsonMode)
		if err := m.prefs.Save(); err != nil {
			m.log.Warn("failed to save session", "error", err)
		}
	}
	return tea.Quit
}
