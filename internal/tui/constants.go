package tui

// UI Layout Constants
const (
	HeaderLines       = 1 // Title and connection status
	URLBarLines       = 3 // Bordered single-line input
	ComposerTextLines = 4 // Visible payload lines
	ComposerLines     = ComposerTextLines + 2
	StatusBarLines    = 1
	PaneBorderWidth   = 2 // Left + right border
	PanePadding       = 2 // Left + right padding

	// LogWidthRatio is the share of the main row given to the log
	LogWidthRatio = 0.65

	// MinLibraryWidth hides the library pane on narrow terminals
	MinLibraryWidth = 24

	// StatusMessageMax truncates footer messages
	StatusMessageMax = 100
)
