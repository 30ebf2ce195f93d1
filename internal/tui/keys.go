package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/studiowebux/wsprobe/internal/keybinds"
)

// contextFor maps the focused pane to its keybinding context
func contextFor(p Pane) keybinds.Context {
	switch p {
	case PaneURL:
		return keybinds.ContextURL
	case PaneComposer:
		return keybinds.ContextComposer
	case PaneLibrary:
		return keybinds.ContextLibrary
	default:
		return keybinds.ContextLog
	}
}

// handleKeyPress routes key presses based on current mode and focus
func (m *Model) handleKeyPress(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()

	if action, ok := m.keybinds.Match(keybinds.ContextGlobal, key); ok && action == keybinds.ActionQuitForce {
		return m.quit()
	}

	if m.mode != ModeNormal {
		return m.handlePromptKeys(msg)
	}

	context := contextFor(m.focus)

	// Text panes take every unbound key, so sequences are only matched
	// where typing is not possible.
	var action keybinds.Action
	var ok bool
	if m.focus == PaneURL || m.focus == PaneComposer {
		action, ok = m.keybinds.Match(context, key)
	} else {
		var partial bool
		action, ok, partial = m.keybinds.MatchMultiKey(context, key)
		if partial {
			return nil
		}
	}

	if !ok {
		return m.updateFocused(msg)
	}
	return m.runAction(action)
}

// handlePromptKeys handles the single-line prompt used for filters, labels and paths
func (m *Model) handlePromptKeys(msg tea.KeyMsg) tea.Cmd {
	action, ok := m.keybinds.Match(keybinds.ContextFilter, msg.String())
	if ok {
		switch action {
		case keybinds.ActionSubmit:
			return m.submitPrompt()
		case keybinds.ActionCancel:
			m.closePrompt()
			return nil
		}
	}
	return m.updateFocused(msg)
}

// runAction executes a bound action
func (m *Model) runAction(action keybinds.Action) tea.Cmd {
	switch action {
	case keybinds.ActionQuit, keybinds.ActionQuitForce:
		return m.quit()

	case keybinds.ActionFocusNext:
		m.cycleFocus(1)
	case keybinds.ActionFocusPrev:
		m.cycleFocus(-1)

	case keybinds.ActionConnect:
		return m.connect()
	case keybinds.ActionDisconnect:
		return m.disconnect()
	case keybinds.ActionSend:
		return m.send()
	case keybinds.ActionToggleSecure:
		return m.toggleSecure()
	case keybinds.ActionToggleJSON:
		return m.toggleJSON()
	case keybinds.ActionSaveURL:
		return m.openPrompt(ModeSaveURL, "Label: ", "")
	case keybinds.ActionClearLog:
		m.ctrl.ClearLog()
		m.refresh()

	case keybinds.ActionScrollUp:
		m.logView.ScrollUp(1)
	case keybinds.ActionScrollDown:
		m.logView.ScrollDown(1)
	case keybinds.ActionPageUp:
		m.logView.HalfViewUp()
	case keybinds.ActionPageDown:
		m.logView.HalfViewDown()
	case keybinds.ActionGoToTop:
		m.logView.GotoTop()
	case keybinds.ActionGoToBottom:
		m.logView.GotoBottom()
	case keybinds.ActionCopyEntry:
		return m.copyLastEntry()
	case keybinds.ActionCopyLog:
		return m.copyLog()
	case keybinds.ActionExportLog:
		return m.openPrompt(ModeExportLog, "Export to: ", defaultExportPath())
	case keybinds.ActionToggleHighlite:
		m.highlight = !m.highlight
		m.updateLogView()

	case keybinds.ActionOpenFilter:
		current := m.logFilter
		if m.focus == PaneLibrary {
			current = m.libFilter
		}
		m.filterTarget = m.focus
		return m.openPrompt(ModeFilter, "Filter: ", current)
	case keybinds.ActionClearFilter:
		if m.focus == PaneLibrary {
			m.libFilter = ""
			m.reloadLibrary()
		} else {
			m.logFilter = ""
			m.updateLogView()
		}

	case keybinds.ActionNavigateUp:
		if m.libIndex > 0 {
			m.libIndex--
		}
	case keybinds.ActionNavigateDown:
		if m.libIndex < len(m.libItems)-1 {
			m.libIndex++
		}
	case keybinds.ActionInsertItem:
		return m.insertSelected()
	case keybinds.ActionDeleteItem:
		return m.deleteSelected()
	case keybinds.ActionNextKind:
		m.cycleKind(1)
	case keybinds.ActionPrevKind:
		m.cycleKind(-1)
	}
	return nil
}
