package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the TUI and blocks until the user quits
func Run(opts Options) error {
	if opts.Controller == nil {
		return fmt.Errorf("tui: controller is required")
	}

	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		// Make sure the socket is released even when the program crashes.
		opts.Controller.Close()
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
