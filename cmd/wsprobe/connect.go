package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"github.com/studiowebux/wsprobe/internal/cli"
	"github.com/studiowebux/wsprobe/internal/library"
)

var (
	flagNoColor bool
	flagWait    time.Duration
)

var connectCmd = &cobra.Command{
	Use:   "connect [url|label]",
	Short: "Line-mode session: stdin lines are sent, the log is printed",
	Long: `Connect to a WebSocket endpoint and send every stdin line as a payload.
Lines starting with / are commands; type /help for the list. Input is held
until the handshake settles, so payloads can be piped in:

  echo '{"type":"ping"}' | wsprobe connect localhost:8080/ws

The argument may be a URL or the label of a saved URL. Without an argument,
a saved URL can be picked interactively.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConnect,
}

func init() {
	connectCmd.Flags().BoolVar(&flagNoColor, "no-color", false, "Disable colours and JSON highlighting")
	connectCmd.Flags().DurationVar(&flagWait, "wait", time.Second, "Keep printing replies this long after stdin ends")
}

func runConnect(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	ctrl, err := a.newController(cmd)
	if err != nil {
		return err
	}
	prefs := a.loadPrefs()

	secure := prefs.Secure()
	if cmd.Flags().Changed("secure") {
		secure = flagSecure
	}
	jsonMode := prefs.JSONMode()
	if cmd.Flags().Changed("json") {
		jsonMode = flagJSON
	}

	target := ""
	if len(args) > 0 {
		target = args[0]
		if item, err := a.lib.Resolve(library.KindURL, target); err == nil && item.Name == target {
			target = item.Content
			if !cmd.Flags().Changed("secure") {
				secure = item.Secure
			}
		}
	} else if isTerminal(os.Stdin) {
		if items := a.lib.Items(library.KindURL); len(items) > 0 {
			item, err := cli.PickItem("Connect to", items)
			if err != nil && !errors.Is(err, cli.ErrCancelled) {
				return err
			}
			if err == nil {
				target = item.Content
				secure = item.Secure
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if target == "" {
		fmt.Fprintln(os.Stderr, "Not connected. Use /connect <url> or /help.")
	}

	return cli.RunREPL(ctx, cli.REPLOptions{
		Controller:  ctrl,
		Library:     a.lib,
		Prefs:       prefs,
		URL:         target,
		Secure:      secure,
		JSONMode:    jsonMode,
		CloseReason: a.closeReason(),
		Color:       !flagNoColor && isTerminal(os.Stdout),
		Linger:      flagWait,
		In:          os.Stdin,
		Out:         os.Stdout,
		Logger:      a.logger,
	})
}

// isTerminal reports whether f is a character device
func isTerminal(f *os.File) bool {
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}
