package tui

import (
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/studiowebux/wsprobe/internal/keybinds"
	"github.com/studiowebux/wsprobe/internal/library"
	"github.com/studiowebux/wsprobe/internal/logbook"
	"github.com/studiowebux/wsprobe/internal/logging"
	"github.com/studiowebux/wsprobe/internal/session"
	"github.com/studiowebux/wsprobe/internal/types"
)

// Pane identifies the focused part of the screen
type Pane int

const (
	PaneURL Pane = iota
	PaneLog
	PaneLibrary
	PaneComposer
)

// paneOrder is the tab order
var paneOrder = []Pane{PaneURL, PaneLog, PaneLibrary, PaneComposer}

// Mode represents the current TUI mode
type Mode int

const (
	ModeNormal    Mode = iota
	ModeFilter         // Filter prompt for the log or library
	ModeSaveURL        // Label prompt for the current URL
	ModeExportLog      // File path prompt for log export
)

// libraryKinds is the cycle order of the library pane
var libraryKinds = []library.Kind{library.KindURL, library.KindSnippet, library.KindTemplate}

// Options wires the model to its collaborators
type Options struct {
	Controller  *session.Controller
	Library     *library.Library
	Prefs       *session.Prefs
	Keybinds    *keybinds.Registry
	CloseReason string
	Logger      *slog.Logger
}

// Model represents the TUI state
type Model struct {
	// Collaborators
	ctrl        *session.Controller
	lib         *library.Library
	prefs       *session.Prefs
	keybinds    *keybinds.Registry
	log         *slog.Logger
	closeReason string

	mode  Mode
	focus Pane

	// Toggles
	secure    bool
	jsonMode  bool
	highlight bool

	// Widgets
	urlInput textinput.Model
	composer textarea.Model
	prompt   textinput.Model
	logView  viewport.Model

	// Connection snapshot, refreshed on every controller change
	state   types.ConnectionState
	entries []logbook.Entry // Log entries after logFilter
	total   int             // Log entries before filtering

	logFilter    string
	filterTarget Pane

	// Library pane
	libKind   library.Kind
	libFilter string
	libItems  []library.Item
	libIndex  int

	// Footer
	statusMsg string
	errorMsg  string

	width  int
	height int
	ready  bool
}

type changedMsg struct{}

type clearStatusMsg struct{}

// StatusTimeout is how long footer messages stay visible
const StatusTimeout = 4 * time.Second

// New builds the model from opts, restoring the last URL and toggles from prefs
func New(opts Options) *Model {
	kb := opts.Keybinds
	if kb == nil {
		kb = keybinds.NewDefaultRegistry()
	}
	closeReason := opts.CloseReason
	if closeReason == "" {
		closeReason = session.DefaultCloseReason
	}

	m := &Model{
		ctrl:        opts.Controller,
		lib:         opts.Library,
		prefs:       opts.Prefs,
		keybinds:    kb,
		log:         logging.OrNop(opts.Logger),
		closeReason: closeReason,
		highlight:   true,
		libKind:     library.KindURL,
	}

	m.urlInput = textinput.New()
	m.urlInput.Placeholder = "host:port/path"
	m.urlInput.Prompt = ""
	m.urlInput.CharLimit = 2048

	m.composer = textarea.New()
	m.composer.Placeholder = "Payload"
	m.composer.ShowLineNumbers = false
	m.composer.CharLimit = 0
	m.composer.SetHeight(ComposerTextLines)

	m.prompt = textinput.New()
	m.prompt.CharLimit = 512

	m.logView = viewport.New(0, 0)

	if m.prefs != nil {
		m.urlInput.SetValue(m.prefs.LastURL())
		m.secure = m.prefs.Secure()
		m.jsonMode = m.prefs.JSONMode()
	}

	m.setFocus(PaneURL)
	m.refresh()
	m.reloadLibrary()
	return m
}

// Init starts cursor blinking and listens for controller changes
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForChange())
}

// waitForChange blocks until the controller signals a change
func (m *Model) waitForChange() tea.Cmd {
	changes := m.ctrl.Changes()
	return func() tea.Msg {
		<-changes
		return changedMsg{}
	}
}

// Update handles messages and updates the model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.layout()
		m.updateLogView()
		return m, nil

	case changedMsg:
		m.refresh()
		return m, m.waitForChange()

	case clearStatusMsg:
		m.statusMsg = ""
		m.errorMsg = ""
		return m, nil
	}

	return m, m.updateFocused(msg)
}

// updateFocused forwards a message to the focused text widget
func (m *Model) updateFocused(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch {
	case m.mode != ModeNormal:
		m.prompt, cmd = m.prompt.Update(msg)
	case m.focus == PaneURL:
		m.urlInput, cmd = m.urlInput.Update(msg)
	case m.focus == PaneComposer:
		m.composer, cmd = m.composer.Update(msg)
	}
	return cmd
}

// refresh re-reads controller state and the log snapshot
func (m *Model) refresh() {
	m.state = m.ctrl.State()
	m.updateLogView()
}

func (m *Model) setFocus(p Pane) {
	m.focus = p
	m.urlInput.Blur()
	m.composer.Blur()
	switch p {
	case PaneURL:
		m.urlInput.Focus()
	case PaneComposer:
		m.composer.Focus()
	}
}

func (m *Model) cycleFocus(step int) {
	idx := 0
	for i, p := range paneOrder {
		if p == m.focus {
			idx = i
		}
	}
	next := (idx + step + len(paneOrder)) % len(paneOrder)
	if paneOrder[next] == PaneLibrary && !m.libraryVisible() {
		next = (next + step + len(paneOrder)) % len(paneOrder)
	}
	m.setFocus(paneOrder[next])
}

func (m *Model) setStatusMessage(msg string) tea.Cmd {
	m.errorMsg = ""
	m.statusMsg = truncate(msg, StatusMessageMax)
	return tea.Tick(StatusTimeout, func(time.Time) tea.Msg { return clearStatusMsg{} })
}

func (m *Model) setErrorMessage(msg string) tea.Cmd {
	m.statusMsg = ""
	m.errorMsg = truncate(msg, StatusMessageMax)
	return tea.Tick(StatusTimeout, func(time.Time) tea.Msg { return clearStatusMsg{} })
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
