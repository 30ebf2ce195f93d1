package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/studiowebux/wsprobe/internal/session"
	"github.com/studiowebux/wsprobe/internal/tui"
)

var (
	version = "0.1.0"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "wsprobe [url]",
	Short: "wsprobe - WebSocket manual testing tool",
	Long: `wsprobe connects to a WebSocket endpoint, sends text or JSON payloads and
shows a timestamped log of everything sent and received.

Run without a subcommand to start the TUI. The optional URL prefills the URL
bar; a scheme-less URL gets ws:// or wss:// depending on the secure toggle.

Examples:
  wsprobe                                  # Start the TUI
  wsprobe localhost:8080/ws --secure=false # Prefill the URL bar
  wsprobe connect echo.websocket.org       # Line-mode session on stdin/stdout
  wsprobe snippets add ping '{"type":"ping"}' --type json
  wsprobe import chat.ws                   # Save URL and messages from a .ws file
  wsprobe export -o library.yaml           # Back up the library`,
	Version:      version,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE:         runTUI,
}

// Flags shared by the TUI and connect
var (
	flagSecure       bool
	flagJSON         bool
	flagHeaders      []string
	flagSubprotocols []string
	flagCAFile       string
	flagCertFile     string
	flagKeyFile      string
	flagInsecure     bool
	flagTimeout      string
	flagEngine       string
	flagCloseReason  string
)

// Diagnostic logging flags
var (
	flagLogLevel  string
	flagLogFormat string
	flagLogFile   string
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagLogLevel, "log-level", "", "Diagnostic log level (debug/info/warn/error)")
	pf.StringVar(&flagLogFormat, "log-format", "", "Diagnostic log format (text/json)")
	pf.StringVar(&flagLogFile, "log-file", "", "Write diagnostics to this file")

	addSessionFlags(rootCmd)
	addSessionFlags(connectCmd)

	rootCmd.AddCommand(connectCmd)
	rootCmd.AddCommand(newCollectionCmd(urlsCollection))
	rootCmd.AddCommand(newCollectionCmd(snippetsCollection))
	rootCmd.AddCommand(newCollectionCmd(templatesCollection))
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(keybindsCmd)
}

func addSessionFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.BoolVar(&flagSecure, "secure", true, "Use wss:// for URLs without a scheme")
	f.BoolVar(&flagJSON, "json", false, "Start in JSON mode (payloads must be valid JSON)")
	f.StringArrayVarP(&flagHeaders, "header", "H", nil, "Handshake header 'Name: value', can be repeated")
	f.StringArrayVar(&flagSubprotocols, "subprotocol", nil, "Subprotocol to offer, can be repeated")
	f.StringVar(&flagCAFile, "ca", "", "CA certificate file for wss://")
	f.StringVar(&flagCertFile, "cert", "", "Client certificate file")
	f.StringVar(&flagKeyFile, "key", "", "Client key file")
	f.BoolVar(&flagInsecure, "insecure", false, "Skip TLS certificate verification")
	f.StringVar(&flagTimeout, "timeout", "", "Handshake timeout (e.g. 10s)")
	f.StringVar(&flagEngine, "engine", "", "WebSocket engine (gorilla/coder)")
	f.StringVar(&flagCloseReason, "close-reason", "", "Reason sent when disconnecting")
}

// runTUI starts the interactive TUI
func runTUI(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, true)
	if err != nil {
		return err
	}
	defer a.Close()

	ctrl, err := a.newController(cmd)
	if err != nil {
		return err
	}

	prefs := a.loadPrefs()
	if len(args) > 0 || cmd.Flags().Changed("secure") {
		url := prefs.LastURL()
		if len(args) > 0 {
			url = args[0]
		}
		secure := prefs.Secure()
		if cmd.Flags().Changed("secure") {
			secure = flagSecure
		}
		prefs.Remember(url, secure)
	}
	if cmd.Flags().Changed("json") {
		prefs.SetJSONMode(flagJSON)
	}

	kb, err := a.keybinds()
	if err != nil {
		return err
	}

	return tui.Run(tui.Options{
		Controller:  ctrl,
		Library:     a.lib,
		Prefs:       prefs,
		Keybinds:    kb,
		CloseReason: a.closeReason(),
		Logger:      a.logger,
	})
}

// closeReason returns the flag value, then the configured one
func (a *app) closeReason() string {
	if flagCloseReason != "" {
		return flagCloseReason
	}
	if a.settings.CloseReason != "" {
		return a.settings.CloseReason
	}
	return session.DefaultCloseReason
}
