/*
Package tui implements the interactive terminal front-end of wsprobe.

# Architecture

The TUI follows the Bubble Tea Model-Update-View pattern:
  - model.go: state, Init and Update
  - keys.go: key routing through the keybinds registry
  - actions.go: operations on the session controller and library
  - render.go: view rendering

# Panes

  - URL bar: endpoint input with the ws/wss toggle
  - Log: timestamped session log, filterable by substring or "jmes:" expression
  - Library: saved URLs, snippets and templates with fuzzy filtering
  - Composer: payload editor with the JSON mode toggle

# Threading Model

Transport notifications reach the session controller on transport
goroutines. The model never reads them directly: a tea.Cmd blocks on
Controller.Changes() and turns each signal into a changedMsg, after which the
model re-reads the controller state and log snapshot on the Bubble Tea loop.
*/
package tui
