/*
Package keybinds maps keys to actions for each pane of the terminal UI.

# Contexts

Every pane has a context (url, composer, log, library, filter). A key is
looked up in the focused pane's context first, then in global. Text panes
only bind keys that a text input does not consume (enter, ctrl+ and alt+
combinations), so typing is never hijacked.

Multi-key sequences such as "gg" are supported: a single typed key that
prefixes a longer binding waits for the next key.

# Configuration File Format

keybinds.json in the config directory overrides defaults per action:

	{
	  "version": "1",
	  "bindings": {
	    "log": {"copy_entry": "y,c"},
	    "composer": {"send": "ctrl+s"}
	  }
	}

An action listed in a context loses all of its default keys in that context.
ctrl+c is reserved for force quit.
*/
package keybinds
