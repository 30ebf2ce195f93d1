package keybinds

// Action represents a user action that can be triggered by a keybinding
type Action string

// Context represents the pane in which keybindings are active
type Context string

const (
	ContextGlobal   Context = "global"   // Available everywhere
	ContextURL      Context = "url"      // URL input focused
	ContextComposer Context = "composer" // Payload editor focused
	ContextLog      Context = "log"      // Log viewport focused
	ContextLibrary  Context = "library"  // Saved items panel focused
	ContextFilter   Context = "filter"   // Filter prompt open
)

// Contexts lists every context in display order
var Contexts = []Context{ContextGlobal, ContextURL, ContextComposer, ContextLog, ContextLibrary, ContextFilter}

const (
	// Application
	ActionQuit      Action = "quit"
	ActionQuitForce Action = "quit_force"

	// Focus
	ActionFocusNext Action = "focus_next"
	ActionFocusPrev Action = "focus_prev"

	// Session
	ActionConnect      Action = "connect"
	ActionDisconnect   Action = "disconnect"
	ActionSend         Action = "send"
	ActionToggleSecure Action = "toggle_secure"
	ActionToggleJSON   Action = "toggle_json"
	ActionSaveURL      Action = "save_url"

	// Log
	ActionClearLog       Action = "clear_log"
	ActionScrollUp       Action = "scroll_up"
	ActionScrollDown     Action = "scroll_down"
	ActionPageUp         Action = "page_up"
	ActionPageDown       Action = "page_down"
	ActionGoToTop        Action = "go_to_top"
	ActionGoToBottom     Action = "go_to_bottom"
	ActionCopyEntry      Action = "copy_entry"
	ActionCopyLog        Action = "copy_log"
	ActionExportLog      Action = "export_log"
	ActionOpenFilter     Action = "open_filter"
	ActionClearFilter    Action = "clear_filter"
	ActionToggleHighlite Action = "toggle_highlight"

	// Library
	ActionNavigateUp   Action = "navigate_up"
	ActionNavigateDown Action = "navigate_down"
	ActionInsertItem   Action = "insert_item"
	ActionDeleteItem   Action = "delete_item"
	ActionNextKind     Action = "next_kind"
	ActionPrevKind     Action = "prev_kind"

	// Prompts
	ActionSubmit Action = "submit"
	ActionCancel Action = "cancel"
)

// ActionInfo describes an action for help output
type ActionInfo struct {
	Action      Action
	Description string
}

// actionInfo holds the description of every known action
var actionInfo = map[Action]string{
	ActionQuit:           "Quit",
	ActionQuitForce:      "Force quit",
	ActionFocusNext:      "Next pane",
	ActionFocusPrev:      "Previous pane",
	ActionConnect:        "Connect",
	ActionDisconnect:     "Disconnect",
	ActionSend:           "Send payload",
	ActionToggleSecure:   "Toggle wss://",
	ActionToggleJSON:     "Toggle JSON mode",
	ActionSaveURL:        "Save current URL",
	ActionClearLog:       "Clear log",
	ActionScrollUp:       "Scroll up",
	ActionScrollDown:     "Scroll down",
	ActionPageUp:         "Page up",
	ActionPageDown:       "Page down",
	ActionGoToTop:        "Go to top",
	ActionGoToBottom:     "Go to bottom",
	ActionCopyEntry:      "Copy last entry",
	ActionCopyLog:        "Copy whole log",
	ActionExportLog:      "Export log to file",
	ActionOpenFilter:     "Filter",
	ActionClearFilter:    "Clear filter",
	ActionToggleHighlite: "Toggle JSON colours",
	ActionNavigateUp:     "Up",
	ActionNavigateDown:   "Down",
	ActionInsertItem:     "Use item",
	ActionDeleteItem:     "Delete item",
	ActionNextKind:       "Next collection",
	ActionPrevKind:       "Previous collection",
	ActionSubmit:         "Apply",
	ActionCancel:         "Cancel",
}

// IsKnownAction reports whether action is defined
func IsKnownAction(action Action) bool {
	_, ok := actionInfo[action]
	return ok
}

// IsKnownContext reports whether context is defined
func IsKnownContext(context Context) bool {
	for _, c := range Contexts {
		if c == context {
			return true
		}
	}
	return false
}

// Describe returns the help text of an action
func Describe(action Action) string {
	if d, ok := actionInfo[action]; ok {
		return d
	}
	return string(action)
}
