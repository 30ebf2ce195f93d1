package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/studiowebux/wsprobe/internal/library"
)

// ErrCancelled is returned when the user leaves a picker or form without choosing
var ErrCancelled = errors.New("selection cancelled")

var (
	titleStyle        = lipgloss.NewStyle().MarginLeft(2).Bold(true)
	itemStyle         = lipgloss.NewStyle().PaddingLeft(4)
	selectedItemStyle = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("170"))
	helpStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).MarginTop(1).MarginLeft(2)
)

type pickItem struct {
	item library.Item
}

func (i pickItem) FilterValue() string {
	return i.item.Name + " " + i.item.Detail
}

func (i pickItem) Title() string {
	switch {
	case i.item.Kind == library.KindURL:
		scheme := "ws"
		if i.item.Secure {
			scheme = "wss"
		}
		return fmt.Sprintf("%s (%s, %s)", i.item.Name, i.item.Detail, scheme)
	case i.item.BuiltIn:
		return i.item.Name + " [built-in]"
	}
	return i.item.Name
}

type pickerModel struct {
	list     list.Model
	choice   *library.Item
	quitting bool
}

func (m pickerModel) Init() tea.Cmd {
	return nil
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)
		return m, nil

	case tea.KeyMsg:
		// Let the list consume keys while its filter input is open
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.quitting = true
			return m, tea.Quit

		case "enter":
			if i, ok := m.list.SelectedItem().(pickItem); ok {
				m.choice = &i.item
			}
			m.quitting = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m pickerModel) View() string {
	if m.quitting {
		return ""
	}

	help := helpStyle.Render("↑/↓: navigate • /: filter • enter: select • q/esc: cancel")
	return fmt.Sprintf("%s\n\n%s", m.list.View(), help)
}

// PickItem shows an interactive list of library items and returns the chosen one
func PickItem(title string, items []library.Item) (library.Item, error) {
	if len(items) == 0 {
		return library.Item{}, fmt.Errorf("nothing to pick from")
	}

	listItems := make([]list.Item, 0, len(items))
	for _, it := range items {
		listItems = append(listItems, pickItem{item: it})
	}

	const defaultWidth = 80
	const listHeight = 14

	l := list.New(listItems, pickDelegate{}, defaultWidth, listHeight)
	l.Title = title
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle

	p := tea.NewProgram(pickerModel{list: l})
	finalModel, err := p.Run()
	if err != nil {
		return library.Item{}, fmt.Errorf("error running picker: %w", err)
	}

	result := finalModel.(pickerModel)
	if result.choice == nil {
		return library.Item{}, ErrCancelled
	}
	return *result.choice, nil
}

// pickDelegate renders one item per line
type pickDelegate struct{}

func (d pickDelegate) Height() int                             { return 1 }
func (d pickDelegate) Spacing() int                            { return 0 }
func (d pickDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d pickDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(pickItem)
	if !ok {
		return
	}

	str := fmt.Sprintf("%d. %s", index+1, i.Title())

	fn := itemStyle.Render
	if index == m.Index() {
		fn = func(s ...string) string {
			return selectedItemStyle.Render("> " + strings.Join(s, " "))
		}
	}

	fmt.Fprint(w, fn(str))
}
