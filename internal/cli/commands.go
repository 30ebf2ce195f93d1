package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/studiowebux/wsprobe/internal/config"
	"github.com/studiowebux/wsprobe/internal/filter"
	"github.com/studiowebux/wsprobe/internal/library"
	"github.com/studiowebux/wsprobe/internal/logbook"
	"github.com/studiowebux/wsprobe/internal/types"
)

type command struct {
	usage string
	help  string
	run   func(r *repl, arg string) bool
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"help":       {"/help", "Show this help", (*repl).cmdHelp},
		"json":       {"/json [on|off]", "Toggle or set JSON mode", (*repl).cmdJSON},
		"secure":     {"/secure [on|off]", "Toggle or set wss:// for scheme-less URLs", (*repl).cmdSecure},
		"connect":    {"/connect [url]", "Connect to url, or reconnect to the last one", (*repl).cmdConnect},
		"disconnect": {"/disconnect [reason]", "Close the connection", (*repl).cmdDisconnect},
		"clear":      {"/clear", "Clear the log", (*repl).cmdClear},
		"filter":     {"/filter [expr]", "Only print matching entries (jmes:<expr> for JMESPath)", (*repl).cmdFilter},
		"query":      {"/query <jmespath>", "Query the last received JSON message", (*repl).cmdQuery},
		"copy":       {"/copy", "Copy the last entry to the clipboard", (*repl).cmdCopy},
		"export":     {"/export [file]", "Write the log to file (.txt, .json or .yaml)", (*repl).cmdExport},
		"save":       {"/save [label]", "Save the current URL", (*repl).cmdSave},
		"snippet":    {"/snippet <name>", "Send a saved snippet", (*repl).cmdSnippet},
		"template":   {"/template <name>", "Print a template to edit and send", (*repl).cmdTemplate},
		"status":     {"/status", "Show the connection status", (*repl).cmdStatus},
		"quit":       {"/quit", "Disconnect and exit", (*repl).cmdQuit},
	}
}

// commandOrder is the order used by /help
var commandOrder = []string{
	"help", "connect", "disconnect", "json", "secure", "clear", "filter",
	"query", "copy", "export", "save", "snippet", "template", "status", "quit",
}

// runCommand executes a slash command. It reports whether the REPL should stop.
func (r *repl) runCommand(line string) bool {
	name, arg, _ := strings.Cut(strings.TrimPrefix(line, "/"), " ")
	arg = strings.TrimSpace(arg)

	cmd, ok := commands[strings.ToLower(name)]
	if !ok {
		r.printf("Unknown command /%s (try /help)\n", name)
		return false
	}
	return cmd.run(r, arg)
}

func (r *repl) cmdHelp(string) bool {
	var sb strings.Builder
	for _, name := range commandOrder {
		c := commands[name]
		fmt.Fprintf(&sb, "  %-22s %s\n", c.usage, c.help)
	}
	sb.WriteString("  Lines starting with // are sent with a single leading slash.\n")
	r.printf("%s", sb.String())
	return false
}

// parseSwitch resolves "on", "off" or an empty argument (toggle)
func parseSwitch(arg string, current bool) (bool, error) {
	switch strings.ToLower(arg) {
	case "":
		return !current, nil
	case "on", "true", "1":
		return true, nil
	case "off", "false", "0":
		return false, nil
	}
	return current, fmt.Errorf("expected on or off, got %q", arg)
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func (r *repl) cmdJSON(arg string) bool {
	v, err := parseSwitch(arg, r.jsonMode)
	if err != nil {
		r.printf("Error: %v\n", err)
		return false
	}
	r.jsonMode = v
	r.printf("JSON mode %s\n", onOff(v))
	return false
}

func (r *repl) cmdSecure(arg string) bool {
	v, err := parseSwitch(arg, r.secure)
	if err != nil {
		r.printf("Error: %v\n", err)
		return false
	}
	r.secure = v
	r.printf("Secure %s\n", onOff(v))
	return false
}

func (r *repl) cmdConnect(arg string) bool {
	target := arg
	if target == "" {
		target = r.url
	}
	// A saved URL label works as well as a URL
	if r.lib != nil && target != "" && !strings.Contains(target, "://") {
		if item, err := r.lib.Resolve(library.KindURL, target); err == nil && (item.ID == target || strings.EqualFold(item.Name, target)) {
			target = item.Content
			r.secure = item.Secure
		}
	}
	r.connect(target)
	return false
}

func (r *repl) cmdDisconnect(arg string) bool {
	reason := arg
	if reason == "" {
		reason = r.closeReason
	}
	r.ctrl.Disconnect(reason)
	return false
}

func (r *repl) cmdClear(string) bool {
	r.ctrl.ClearLog()
	return false
}

func (r *repl) cmdFilter(arg string) bool {
	match, err := filter.Compile(arg)
	if err != nil {
		r.printf("Error: %v\n", err)
		return false
	}
	r.mu.Lock()
	r.match = match
	r.expr = arg
	r.mu.Unlock()

	if arg == "" {
		r.printf("Filter cleared\n")
	} else {
		r.printf("Filter: %s\n", arg)
	}
	return false
}

func (r *repl) cmdQuery(arg string) bool {
	if arg == "" {
		r.printf("Error: /query needs a JMESPath expression\n")
		return false
	}
	entries := r.ctrl.Log().Snapshot()
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Direction != types.DirectionReceived {
			continue
		}
		result, err := filter.Extract(entries[i].Text, arg)
		if err != nil {
			r.printf("Error: %v\n", err)
			return false
		}
		r.printf("%s\n", result)
		return false
	}
	r.printf("Error: no message received yet\n")
	return false
}

func (r *repl) cmdCopy(string) bool {
	entries := r.ctrl.Log().Snapshot()
	if len(entries) == 0 {
		r.printf("Error: log is empty\n")
		return false
	}
	if err := clipboardWrite(entries[len(entries)-1].Text); err != nil {
		r.printf("Error: failed to copy: %v\n", err)
		return false
	}
	r.printf("Copied last entry to clipboard\n")
	return false
}

func (r *repl) cmdExport(arg string) bool {
	path := arg
	if path == "" {
		path = fmt.Sprintf("wsprobe-log-%s.txt", time.Now().Format("20060102-150405"))
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, config.FilePermissions)
	if err != nil {
		r.printf("Error: failed to export: %v\n", err)
		return false
	}
	defer f.Close()

	entries := r.ctrl.Log().Snapshot()
	if err := logbook.Export(f, entries, logbook.FormatFromPath(path)); err != nil {
		r.printf("Error: failed to export: %v\n", err)
		return false
	}
	r.printf("Log saved to %s (%d entries)\n", path, len(entries))
	return false
}

func (r *repl) cmdSave(arg string) bool {
	if r.lib == nil {
		r.printf("Error: library unavailable\n")
		return false
	}
	saved, err := r.lib.AddURL(arg, r.url, r.secure)
	if err != nil {
		r.printf("Error: %v\n", err)
		return false
	}
	r.printf("Saved %s\n", saved.Label)
	return false
}

func (r *repl) cmdSnippet(arg string) bool {
	item, ok := r.resolve(library.KindSnippet, arg)
	if !ok {
		return false
	}
	if err := r.ctrl.Send(item.Content, item.Type == types.PayloadJSON); err != nil {
		r.log.Debug("snippet send failed", "snippet", item.Name, "error", err)
	}
	return false
}

func (r *repl) cmdTemplate(arg string) bool {
	item, ok := r.resolve(library.KindTemplate, arg)
	if !ok {
		return false
	}
	if item.Detail != "" {
		r.printf("# %s: %s\n", item.Name, item.Detail)
	}
	r.printf("%s\n", item.Content)
	return false
}

func (r *repl) resolve(kind library.Kind, ref string) (library.Item, bool) {
	if r.lib == nil {
		r.printf("Error: library unavailable\n")
		return library.Item{}, false
	}
	if ref == "" {
		r.printf("Error: /%s needs a name\n", kind)
		return library.Item{}, false
	}
	item, err := r.lib.Resolve(kind, ref)
	if err != nil {
		r.printf("Error: %v\n", err)
		return library.Item{}, false
	}
	return item, true
}

func (r *repl) cmdStatus(string) bool {
	st := r.ctrl.State()
	var sb strings.Builder
	fmt.Fprintf(&sb, "Status: %s\n", st.Status)
	if st.TargetURL != "" {
		fmt.Fprintf(&sb, "URL: %s\n", st.TargetURL)
	}
	if !st.ConnectedAt.IsZero() {
		fmt.Fprintf(&sb, "Connected at: %s\n", st.ConnectedAt.Format("15:04:05"))
	}
	if st.LastError != "" {
		fmt.Fprintf(&sb, "Last error: %s\n", st.LastError)
	}
	fmt.Fprintf(&sb, "JSON mode: %s | Secure: %s", onOff(r.jsonMode), onOff(r.secure))
	r.mu.Lock()
	if r.expr != "" {
		fmt.Fprintf(&sb, " | Filter: %s", r.expr)
	}
	r.mu.Unlock()
	r.printf("%s\n", sb.String())
	return false
}

func (r *repl) cmdQuit(string) bool {
	return true
}
