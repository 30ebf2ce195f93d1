package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/atotto/clipboard"
	"github.com/studiowebux/wsprobe/internal/filter"
	"github.com/studiowebux/wsprobe/internal/library"
	"github.com/studiowebux/wsprobe/internal/logbook"
	"github.com/studiowebux/wsprobe/internal/logging"
	"github.com/studiowebux/wsprobe/internal/session"
	"github.com/studiowebux/wsprobe/internal/types"
	"golang.org/x/sync/errgroup"
)

// maxLineSize bounds a single stdin line (one payload)
const maxLineSize = 1024 * 1024

// errStop ends the REPL without reporting an error
var errStop = errors.New("repl stopped")

// clipboardWrite is swapped in tests
var clipboardWrite = clipboard.WriteAll

// REPLOptions contains options for running the line-mode session
type REPLOptions struct {
	Controller  *session.Controller
	Library     *library.Library // Optional, enables /save /snippet /template
	Prefs       *session.Prefs   // Optional, remembers the last URL
	URL         string           // Connect to this URL on start when set
	Secure      bool
	JSONMode    bool
	CloseReason string
	Color       bool          // Colour directions and highlight JSON
	Linger      time.Duration // Keep printing replies this long after stdin ends
	In          io.Reader
	Out         io.Writer
	Logger      *slog.Logger
}

type repl struct {
	ctrl        *session.Controller
	lib         *library.Library
	prefs       *session.Prefs
	log         *slog.Logger
	closeReason string
	color       bool

	url      string
	secure   bool
	jsonMode bool
	linger   time.Duration
	done     <-chan struct{} // Closed when the REPL is stopping

	mu      sync.Mutex // Guards out, printed and match
	out     io.Writer
	printed int
	match   filter.Matcher
	expr    string
}

// RunREPL reads payloads and commands from opts.In until EOF, /quit or ctx
// cancellation, printing log entries to opts.Out as they appear
func RunREPL(ctx context.Context, opts REPLOptions) error {
	if opts.Controller == nil {
		return fmt.Errorf("repl: controller is required")
	}
	if opts.In == nil || opts.Out == nil {
		return fmt.Errorf("repl: input and output are required")
	}

	closeReason := opts.CloseReason
	if closeReason == "" {
		closeReason = session.DefaultCloseReason
	}

	r := &repl{
		ctrl:        opts.Controller,
		lib:         opts.Library,
		prefs:       opts.Prefs,
		log:         logging.OrNop(opts.Logger),
		closeReason: closeReason,
		color:       opts.Color,
		url:         opts.URL,
		secure:      opts.Secure,
		jsonMode:    opts.JSONMode,
		linger:      opts.Linger,
		out:         opts.Out,
		match:       func(logbook.Entry) bool { return true },
	}
	// Entries logged before the REPL started are not replayed.
	if snapshot := r.ctrl.Log().Snapshot(); len(snapshot) > 0 {
		r.printed = snapshot[len(snapshot)-1].Seq
	}

	g, gctx := errgroup.WithContext(ctx)
	r.done = gctx.Done()
	lines := readLines(gctx, opts.In)

	g.Go(func() error {
		// Lines are held until the handshake settles so piped payloads are
		// not rejected while connecting.
		if strings.TrimSpace(r.url) != "" {
			r.connect(r.url)
		}
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case line, ok := <-lines:
				if !ok {
					r.drain()
					return errStop
				}
				if stop := r.handleLine(line); stop {
					return errStop
				}
			}
		}
	})

	g.Go(func() error {
		changes := r.ctrl.Changes()
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case <-changes:
				r.flush()
			}
		}
	})

	err := g.Wait()

	if r.ctrl.State().Status != types.StatusDisconnected {
		r.ctrl.Disconnect(r.closeReason)
	}
	r.flush()
	r.ctrl.Close()
	r.savePrefs()

	if errors.Is(err, errStop) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// readLines scans in on its own goroutine. A blocked read cannot be
// interrupted, so the goroutine is left behind when ctx ends first.
func readLines(ctx context.Context, in io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}

// handleLine sends a payload or runs a command. It reports whether the REPL should stop.
func (r *repl) handleLine(line string) bool {
	// "//" escapes a payload that starts with a slash
	if strings.HasPrefix(line, "//") {
		r.send(line[1:])
		return false
	}
	if strings.HasPrefix(line, "/") {
		stop := r.runCommand(line)
		r.flush()
		return stop
	}
	r.send(line)
	return false
}

func (r *repl) send(text string) {
	if err := r.ctrl.Send(text, r.jsonMode); err != nil {
		r.log.Debug("send failed", "error", err)
	}
	r.flush()
}

func (r *repl) connect(rawURL string) {
	r.url = rawURL
	if err := r.ctrl.Connect(rawURL, r.secure); err != nil {
		r.log.Debug("connect failed", "error", err)
		r.flush()
		return
	}
	if r.prefs != nil {
		r.prefs.Remember(rawURL, r.secure)
	}
	r.flush()
	r.awaitHandshake()
}

// handshakePoll is how often awaitHandshake checks the status
const handshakePoll = 20 * time.Millisecond

// awaitHandshake blocks while the controller is connecting, bounded by its
// handshake timeout
func (r *repl) awaitHandshake() {
	deadline := time.NewTimer(r.ctrl.HandshakeTimeout())
	defer deadline.Stop()
	ticker := time.NewTicker(handshakePoll)
	defer ticker.Stop()

	for r.ctrl.State().Status == types.StatusConnecting {
		select {
		case <-r.done:
			return
		case <-deadline.C:
			r.log.Debug("handshake still pending, reading input")
			return
		case <-ticker.C:
		}
	}
	r.flush()
}

// drain keeps the printer running for the linger period after stdin ends so
// replies to the last payloads are shown
func (r *repl) drain() {
	if r.linger <= 0 || r.ctrl.State().Status != types.StatusConnected {
		return
	}
	timer := time.NewTimer(r.linger)
	defer timer.Stop()
	select {
	case <-r.done:
	case <-timer.C:
	}
}

// flush prints every entry appended since the last flush that passes the filter
func (r *repl) flush() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.ctrl.Log().Since(r.printed) {
		r.printed = e.Seq
		if !r.match(e) {
			continue
		}
		fmt.Fprintln(r.out, formatEntry(e, r.color))
	}
}

func (r *repl) printf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, format, args...)
}

func (r *repl) savePrefs() {
	if r.prefs == nil {
		return
	}
	r.prefs.SetJSONMode(r.jsonMode)
	if err := r.prefs.Save(); err != nil {
		r.log.Warn("failed to save session", "error", err)
	}
}
