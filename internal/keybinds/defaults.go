package keybinds

// NewDefaultRegistry creates a registry with all default keybindings.
// Text panes (url, composer, filter) only bind keys a text input does not
// consume.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()

	registerGlobalBindings(r)
	registerURLBindings(r)
	registerComposerBindings(r)
	registerLogBindings(r)
	registerLibraryBindings(r)
	registerFilterBindings(r)

	return r
}

func registerGlobalBindings(r *Registry) {
	r.Register(ContextGlobal, "ctrl+c", ActionQuitForce)
	r.Register(ContextGlobal, "tab", ActionFocusNext)
	r.Register(ContextGlobal, "shift+tab", ActionFocusPrev)
	r.Register(ContextGlobal, "ctrl+o", ActionConnect)
	r.Register(ContextGlobal, "ctrl+x", ActionDisconnect)
	r.Register(ContextGlobal, "ctrl+w", ActionToggleSecure)
	r.Register(ContextGlobal, "ctrl+t", ActionToggleJSON)
	r.Register(ContextGlobal, "ctrl+l", ActionClearLog)
	r.Register(ContextGlobal, "ctrl+b", ActionSaveURL)
}

func registerURLBindings(r *Registry) {
	r.Register(ContextURL, "enter", ActionConnect)
}

func registerComposerBindings(r *Registry) {
	r.RegisterMultiple(ContextComposer, []string{"ctrl+s", "alt+enter"}, ActionSend)
}

func registerLogBindings(r *Registry) {
	r.Register(ContextLog, "q", ActionQuit)
	r.RegisterMultiple(ContextLog, []string{"up", "k"}, ActionScrollUp)
	r.RegisterMultiple(ContextLog, []string{"down", "j"}, ActionScrollDown)
	r.RegisterMultiple(ContextLog, []string{"pgup", "ctrl+u"}, ActionPageUp)
	r.RegisterMultiple(ContextLog, []string{"pgdown", "ctrl+d"}, ActionPageDown)
	r.RegisterMultiple(ContextLog, []string{"gg", "home"}, ActionGoToTop)
	r.RegisterMultiple(ContextLog, []string{"G", "end"}, ActionGoToBottom)
	r.Register(ContextLog, "y", ActionCopyEntry)
	r.Register(ContextLog, "Y", ActionCopyLog)
	r.Register(ContextLog, "e", ActionExportLog)
	r.Register(ContextLog, "/", ActionOpenFilter)
	r.Register(ContextLog, "esc", ActionClearFilter)
	r.Register(ContextLog, "c", ActionToggleHighlite)
}

func registerLibraryBindings(r *Registry) {
	r.Register(ContextLibrary, "q", ActionQuit)
	r.RegisterMultiple(ContextLibrary, []string{"up", "k"}, ActionNavigateUp)
	r.RegisterMultiple(ContextLibrary, []string{"down", "j"}, ActionNavigateDown)
	r.Register(ContextLibrary, "enter", ActionInsertItem)
	r.Register(ContextLibrary, "d", ActionDeleteItem)
	r.RegisterMultiple(ContextLibrary, []string{"right", "l"}, ActionNextKind)
	r.RegisterMultiple(ContextLibrary, []string{"left", "h"}, ActionPrevKind)
	r.Register(ContextLibrary, "/", ActionOpenFilter)
	r.Register(ContextLibrary, "esc", ActionClearFilter)
}

func registerFilterBindings(r *Registry) {
	r.Register(ContextFilter, "enter", ActionSubmit)
	r.Register(ContextFilter, "esc", ActionCancel)
}
