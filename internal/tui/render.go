package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/studiowebux/wsprobe/internal/filter"
	"github.com/studiowebux/wsprobe/internal/keybinds"
	"github.com/studiowebux/wsprobe/internal/library"
	"github.com/studiowebux/wsprobe/internal/logbook"
	"github.com/studiowebux/wsprobe/internal/payload"
	"github.com/studiowebux/wsprobe/internal/types"
)

// Adaptive color definitions for light/dark terminal support
var (
	colorGreen  = lipgloss.AdaptiveColor{Light: "#006400", Dark: "#00ff00"}
	colorRed    = lipgloss.AdaptiveColor{Light: "#8b0000", Dark: "#ff5f5f"}
	colorYellow = lipgloss.AdaptiveColor{Light: "#b8860b", Dark: "#ffff00"}
	colorGray   = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#888888"}
	colorCyan   = lipgloss.AdaptiveColor{Light: "#008b8b", Dark: "#00ffff"}
	colorAccent = lipgloss.Color("62")
)

// Style definitions
var (
	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(colorAccent).
			Padding(0, 1)

	styleSelected = lipgloss.NewStyle().
			Background(lipgloss.AdaptiveColor{Light: "#d3d3d3", Dark: "#3a3a3a"}).
			Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#ffffff"})

	styleSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleError   = lipgloss.NewStyle().Foreground(colorRed)
	styleWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleSubtle  = lipgloss.NewStyle().Foreground(colorGray)
	styleSent    = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
	styleRecv    = lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
	styleToggle  = lipgloss.NewStyle().Bold(true).Foreground(colorYellow)

	stylePane = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	styleFocusedPane = stylePane.BorderForeground(colorAccent)
)

func (m *Model) libraryVisible() bool {
	return m.width == 0 || m.width-m.logWidth() >= MinLibraryWidth
}

// logWidth is the outer width of the log pane
func (m *Model) logWidth() int {
	w := int(float64(m.width) * LogWidthRatio)
	if m.width-w < MinLibraryWidth {
		return m.width
	}
	return w
}

// mainHeight is the outer height of the log and library row
func (m *Model) mainHeight() int {
	h := m.height - HeaderLines - URLBarLines - ComposerLines - StatusBarLines
	if h < 3 {
		h = 3
	}
	return h
}

// layout sizes widgets from the terminal dimensions
func (m *Model) layout() {
	inner := PaneBorderWidth + PanePadding
	m.urlInput.Width = max(m.width-inner-8, 10)
	m.composer.SetWidth(max(m.width-inner, 10))
	m.prompt.Width = max(m.width-20, 10)

	m.logView.Width = max(m.logWidth()-inner, 1)
	m.logView.Height = max(m.mainHeight()-PaneBorderWidth-1, 1) // title line
}

// updateLogView re-filters the log snapshot and refreshes the viewport,
// following the tail when the view was at the bottom
func (m *Model) updateLogView() {
	snapshot := m.ctrl.Log().Snapshot()
	m.total = len(snapshot)

	entries, err := filter.Apply(snapshot, m.logFilter)
	if err != nil {
		entries = snapshot
	}
	m.entries = entries

	follow := m.logView.AtBottom() || m.logView.TotalLineCount() == 0
	m.logView.SetContent(m.renderEntries(m.logView.Width))
	if follow {
		m.logView.GotoBottom()
	}
}

func (m *Model) renderEntries(width int) string {
	if len(m.entries) == 0 {
		if m.logFilter != "" {
			return styleSubtle.Render("No entries match the filter")
		}
		return styleSubtle.Render("No messages yet")
	}

	var sb strings.Builder
	for i, e := range m.entries {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(m.renderEntry(e, width))
	}
	return sb.String()
}

func (m *Model) renderEntry(e logbook.Entry, width int) string {
	var label string
	switch e.Direction {
	case types.DirectionSent:
		label = styleSent.Render("→ sent")
	case types.DirectionReceived:
		label = styleRecv.Render("← recv")
	default:
		label = styleWarning.Render("• sys ")
	}

	text := e.Text
	if m.highlight && e.Direction != types.DirectionSystem && payload.IsJSON(text) {
		text = payload.Highlight(text)
	}
	if e.Direction == types.DirectionSystem && (strings.HasPrefix(text, "Error") || strings.Contains(text, "error:")) {
		text = styleError.Render(text)
	}

	prefix := fmt.Sprintf("%s %s ", styleSubtle.Render("["+e.Timestamp+"]"), label)
	indent := strings.Repeat(" ", lipgloss.Width(prefix))
	lines := strings.Split(text, "\n")
	for i := 1; i < len(lines); i++ {
		lines[i] = indent + lines[i]
	}
	body := prefix + strings.Join(lines, "\n")
	if width > 0 {
		body = lipgloss.NewStyle().MaxWidth(width).Render(body)
	}
	return body
}

// View renders the whole screen
func (m *Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	sections := []string{
		m.renderHeader(),
		m.renderURLBar(),
		m.renderMain(),
		m.renderComposer(),
		m.renderStatusBar(),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) renderHeader() string {
	var indicator string
	var style lipgloss.Style
	switch m.state.Status {
	case types.StatusConnected:
		indicator, style = "●", styleSuccess
	case types.StatusConnecting:
		indicator, style = "◐", styleWarning
	default:
		indicator, style = "○", styleSubtle
	}

	status := style.Bold(true).Render(fmt.Sprintf("%s %s", indicator, m.state.Status))
	target := ""
	if m.state.TargetURL != "" {
		target = " " + m.state.TargetURL
	}
	if m.state.Status == types.StatusConnected && !m.state.ConnectedAt.IsZero() {
		target += styleSubtle.Render(" since " + m.state.ConnectedAt.Format(time.TimeOnly))
	}
	return styleTitle.Render("wsprobe") + " " + status + target
}

func (m *Model) paneStyle(p Pane) lipgloss.Style {
	if m.focus == p && m.mode == ModeNormal {
		return styleFocusedPane
	}
	return stylePane
}

func (m *Model) renderURLBar() string {
	scheme := "[ws ]"
	if m.secure {
		scheme = "[wss]"
	}
	line := styleToggle.Render(scheme) + " " + m.urlInput.View()
	return m.paneStyle(PaneURL).Width(m.width - PaneBorderWidth).Render(line)
}

func (m *Model) renderMain() string {
	height := m.mainHeight() - PaneBorderWidth

	title := fmt.Sprintf("Log (%d)", m.total)
	if m.logFilter != "" {
		title = fmt.Sprintf("Log (%d/%d) filter: %s", len(m.entries), m.total, m.logFilter)
	}
	logContent := lipgloss.JoinVertical(lipgloss.Left, lipgloss.NewStyle().Bold(true).Render(title), m.logView.View())
	logPane := m.paneStyle(PaneLog).
		Width(m.logWidth() - PaneBorderWidth).
		Height(height).
		Render(logContent)

	if !m.libraryVisible() || m.logWidth() == m.width {
		return logPane
	}

	libWidth := m.width - m.logWidth()
	libPane := m.paneStyle(PaneLibrary).
		Width(libWidth - PaneBorderWidth).
		Height(height).
		Render(m.renderLibrary(libWidth-PaneBorderWidth-PanePadding, height))
	return lipgloss.JoinHorizontal(lipgloss.Top, logPane, libPane)
}

func (m *Model) renderLibrary(width, height int) string {
	var tabs []string
	for _, k := range libraryKinds {
		name := string(k) + "s"
		if k == m.libKind {
			tabs = append(tabs, styleSelected.Bold(true).Render(name))
		} else {
			tabs = append(tabs, styleSubtle.Render(name))
		}
	}
	lines := []string{strings.Join(tabs, " ")}
	if m.libFilter != "" {
		lines = append(lines, styleSubtle.Render("filter: "+m.libFilter))
	}

	if len(m.libItems) == 0 {
		lines = append(lines, styleSubtle.Render("Nothing saved"))
		return strings.Join(lines, "\n")
	}

	// Keep the selection visible.
	visible := height - len(lines)
	if visible < 1 {
		visible = 1
	}
	start := 0
	if m.libIndex >= visible {
		start = m.libIndex - visible + 1
	}

	for i := start; i < len(m.libItems) && i < start+visible; i++ {
		line := truncate(libraryLine(m.libItems[i]), max(width, 4))
		if i == m.libIndex {
			line = styleSelected.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func libraryLine(it library.Item) string {
	switch it.Kind {
	case library.KindURL:
		scheme := "ws "
		if it.Secure {
			scheme = "wss"
		}
		return fmt.Sprintf("%s %s (%s)", scheme, it.Name, it.Detail)
	case library.KindSnippet:
		marker := ""
		if it.BuiltIn {
			marker = "*"
		}
		return fmt.Sprintf("%s%s [%s]", it.Name, marker, it.Type)
	default:
		if it.Detail != "" {
			return fmt.Sprintf("%s [%s] %s", it.Name, it.Type, it.Detail)
		}
		return fmt.Sprintf("%s [%s]", it.Name, it.Type)
	}
}

func (m *Model) renderComposer() string {
	mode := styleSubtle.Render("[text]")
	if m.jsonMode {
		mode = styleToggle.Render("[json]")
	}
	hint := styleSubtle.Render(" send: " + m.keybinds.GetBindingString(keybinds.ContextComposer, keybinds.ActionSend))
	content := lipgloss.JoinVertical(lipgloss.Left, mode+hint, m.composer.View())
	return m.paneStyle(PaneComposer).Width(m.width - PaneBorderWidth).Render(content)
}

// renderStatusBar renders the prompt, a message or key hints
func (m *Model) renderStatusBar() string {
	if m.mode != ModeNormal {
		return m.prompt.View()
	}

	switch {
	case m.errorMsg != "":
		return styleError.Render(m.errorMsg)
	case m.statusMsg != "":
		return styleSuccess.Render(m.statusMsg)
	case m.state.LastError != "":
		return styleError.Render(truncate(m.state.LastError, StatusMessageMax))
	}
	return styleSubtle.Render(m.hints())
}

// hints lists the main bindings for the focused pane
func (m *Model) hints() string {
	context := contextFor(m.focus)
	actions := []keybinds.Action{keybinds.ActionConnect, keybinds.ActionDisconnect, keybinds.ActionToggleSecure, keybinds.ActionToggleJSON}
	switch m.focus {
	case PaneLog:
		actions = append(actions, keybinds.ActionOpenFilter, keybinds.ActionCopyEntry, keybinds.ActionExportLog)
	case PaneLibrary:
		actions = append(actions, keybinds.ActionInsertItem, keybinds.ActionDeleteItem, keybinds.ActionNextKind)
	case PaneURL:
		actions = append(actions, keybinds.ActionSaveURL)
	}
	actions = append(actions, keybinds.ActionFocusNext, keybinds.ActionQuitForce)

	parts := make([]string, 0, len(actions))
	for _, a := range actions {
		parts = append(parts, fmt.Sprintf("%s: %s", m.keybinds.GetBindingString(context, a), keybinds.Describe(a)))
	}
	return strings.Join(parts, " | ")
}
