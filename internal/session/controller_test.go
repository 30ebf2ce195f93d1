package session

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studiowebux/wsprobe/internal/logbook"
	"github.com/studiowebux/wsprobe/internal/payload"
	"github.com/studiowebux/wsprobe/internal/transport"
	"github.com/studiowebux/wsprobe/internal/types"
)

type closeCall struct {
	code   int
	reason string
}

// fakeTransport records writes and closes; tests drive notifications through sink.
type fakeTransport struct {
	mu      sync.Mutex
	url     string
	sink    transport.Sink
	sent    []string
	closes  []closeCall
	sendErr error
}

func (f *fakeTransport) Send(text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, text)
	return nil
}

func (f *fakeTransport) Close(code int, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closes = append(f.closes, closeCall{code, reason})
	return nil
}

func (f *fakeTransport) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func (f *fakeTransport) closeCalls() []closeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]closeCall(nil), f.closes...)
}

type fakeDialer struct {
	mu      sync.Mutex
	opened  []*fakeTransport
	openErr error
}

func (d *fakeDialer) Open(rawURL string, _ types.DialOptions, sink transport.Sink) (transport.Transport, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.openErr != nil {
		return nil, d.openErr
	}
	tr := &fakeTransport{url: rawURL, sink: sink}
	d.opened = append(d.opened, tr)
	return tr, nil
}

func (d *fakeDialer) last() *fakeTransport {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.opened) == 0 {
		return nil
	}
	return d.opened[len(d.opened)-1]
}

func (d *fakeDialer) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.opened)
}

func newTestController() (*Controller, *fakeDialer) {
	d := &fakeDialer{}
	return NewController(d), d
}

// connected returns a controller whose transport has reported open.
func connected(t *testing.T) (*Controller, *fakeDialer, *fakeTransport) {
	t.Helper()
	c, d := newTestController()
	require.NoError(t, c.Connect("ws://localhost:8080", false))
	tr := d.last()
	require.NotNil(t, tr)
	tr.sink.OnOpen()
	require.Equal(t, types.StatusConnected, c.State().Status)
	return c, d, tr
}

func lastEntry(c *Controller) logbook.Entry {
	snap := c.Log().Snapshot()
	return snap[len(snap)-1]
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		in     string
		secure bool
		want   string
	}{
		{"localhost:8080", false, "ws://localhost:8080"},
		{"localhost:8080", true, "wss://localhost:8080"},
		{"echo.example.com/socket?x=1", true, "wss://echo.example.com/socket?x=1"},
		{"ws://localhost:8080", true, "ws://localhost:8080"},
		{"wss://secure.example.com", false, "wss://secure.example.com"},
		{"  example.com  ", false, "ws://example.com"},
		{"", true, ""},
		{"   ", false, ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeURL(tt.in, tt.secure), "NormalizeURL(%q, %v)", tt.in, tt.secure)
	}
}

func TestNormalizeURL_PrefixedInputIsVerbatim(t *testing.T) {
	for _, in := range []string{"ws://a", "wss://b/c?d=e", "ws://[::1]:9000/x"} {
		for _, secure := range []bool{true, false} {
			assert.Equal(t, in, NormalizeURL(in, secure))
		}
	}
}

func TestNewController_StartsDisconnected(t *testing.T) {
	c, _ := newTestController()
	st := c.State()
	assert.Equal(t, types.StatusDisconnected, st.Status)
	assert.Empty(t, st.LastError)
	assert.Equal(t, 0, c.Log().Len())
}

func TestHandshakeTimeout(t *testing.T) {
	c, _ := newTestController()
	assert.Equal(t, transport.DefaultHandshakeTimeout, c.HandshakeTimeout())

	c = NewController(&fakeDialer{}, WithDialOptions(types.DialOptions{HandshakeTimeout: 3 * time.Second}))
	assert.Equal(t, 3*time.Second, c.HandshakeTimeout())
}

func TestConnect_EmptyURL(t *testing.T) {
	c, d := newTestController()

	err := c.Connect("", true)

	require.ErrorIs(t, err, ErrEmptyURL)
	st := c.State()
	assert.Equal(t, types.StatusDisconnected, st.Status)
	assert.NotEmpty(t, st.LastError)
	assert.Equal(t, 0, d.count(), "no transport should be opened")

	snap := c.Log().Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, types.DirectionSystem, snap[0].Direction)
}

func TestConnect_OpensNormalizedURL(t *testing.T) {
	c, d := newTestController()

	require.NoError(t, c.Connect("example.com/ws", true))

	require.Equal(t, 1, d.count())
	assert.Equal(t, "wss://example.com/ws", d.last().url)
	st := c.State()
	assert.Equal(t, types.StatusConnecting, st.Status)
	assert.Equal(t, "wss://example.com/ws", st.TargetURL)
	assert.Equal(t, 1, c.Log().Len())
}

func TestConnect_OpenFailureResetsStatus(t *testing.T) {
	c, d := newTestController()
	d.openErr = transport.ErrInvalidURL

	err := c.Connect("ws://bad host", false)

	require.Error(t, err)
	assert.ErrorIs(t, err, transport.ErrInvalidURL)
	st := c.State()
	assert.Equal(t, types.StatusDisconnected, st.Status)
	assert.NotEmpty(t, st.LastError)
	snap := c.Log().Snapshot()
	require.Len(t, snap, 1)
	assert.Contains(t, snap[0].Text, "Connection error")
}

func TestConnect_ClearsPreviousError(t *testing.T) {
	c, _ := newTestController()
	_ = c.Connect("", false)
	require.NotEmpty(t, c.State().LastError)

	require.NoError(t, c.Connect("localhost", false))
	assert.Empty(t, c.State().LastError)
}

func TestOnOpen_Connected(t *testing.T) {
	c, _, _ := connected(t)

	assert.False(t, c.State().ConnectedAt.IsZero())
	e := lastEntry(c)
	assert.Equal(t, types.DirectionSystem, e.Direction)
	assert.Equal(t, "Connected to ws://localhost:8080", e.Text)
}

func TestOnMessage_PrettyOrRaw(t *testing.T) {
	c, _, tr := connected(t)

	tr.sink.OnMessage([]byte("not json"), false)
	e := lastEntry(c)
	assert.Equal(t, types.DirectionReceived, e.Direction)
	assert.Equal(t, "not json", e.Text)

	tr.sink.OnMessage([]byte(`{"a":1}`), false)
	assert.Equal(t, "{\n  \"a\": 1\n}", lastEntry(c).Text)
}

func TestOnMessage_Binary(t *testing.T) {
	c, _, tr := connected(t)

	tr.sink.OnMessage([]byte{0xde, 0xad}, true)
	assert.Equal(t, "[binary 2 bytes] dead", lastEntry(c).Text)
}

func TestOnError_KeepsStatus(t *testing.T) {
	c, _, tr := connected(t)
	before := c.Log().Len()

	tr.sink.OnError(errors.New("boom"))

	st := c.State()
	assert.Equal(t, types.StatusConnected, st.Status)
	assert.Equal(t, "boom", st.LastError)
	assert.Equal(t, before+1, c.Log().Len())
	assert.Equal(t, "Error: boom", lastEntry(c).Text)
}

func TestOnClose_Disconnects(t *testing.T) {
	c, _, tr := connected(t)

	tr.sink.OnClose(4001, "going away")

	assert.Equal(t, types.StatusDisconnected, c.State().Status)
	assert.Equal(t, "Disconnected (code 4001): going away", lastEntry(c).Text)
}

func TestOnClose_DefaultReason(t *testing.T) {
	c, _, tr := connected(t)

	tr.sink.OnClose(1006, "")

	assert.Equal(t, "Disconnected (code 1006): Connection closed", lastEntry(c).Text)
}

func TestHandshakeFailure_ErrorThenClose(t *testing.T) {
	c, d := newTestController()
	require.NoError(t, c.Connect("localhost:1", false))
	tr := d.last()

	tr.sink.OnError(errors.New("connection refused"))
	tr.sink.OnClose(1006, "")

	st := c.State()
	assert.Equal(t, types.StatusDisconnected, st.Status)
	assert.Equal(t, "connection refused", st.LastError)
	assert.Equal(t, 3, c.Log().Len())
}

func TestDisconnect_NeverConnected(t *testing.T) {
	c, _ := newTestController()

	assert.NotPanics(t, func() { c.Disconnect("bye") })

	snap := c.Log().Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, types.DirectionSystem, snap[0].Direction)
	assert.Equal(t, types.StatusDisconnected, c.State().Status)
}

func TestDisconnect_ClosesWithNormalClosure(t *testing.T) {
	c, _, tr := connected(t)

	c.Disconnect("done testing")

	assert.Equal(t, types.StatusDisconnected, c.State().Status)
	assert.Equal(t, []closeCall{{transport.CloseNormal, "done testing"}}, tr.closeCalls())
	assert.Equal(t, "Disconnected: done testing", lastEntry(c).Text)
}

func TestDisconnect_DefaultReason(t *testing.T) {
	c, _, tr := connected(t)

	c.Disconnect("")

	assert.Equal(t, DefaultCloseReason, tr.closeCalls()[0].reason)
}

func TestDisconnect_IgnoresLateCloseNotification(t *testing.T) {
	c, _, tr := connected(t)
	c.Disconnect("bye")
	before := c.Log().Len()

	tr.sink.OnMessage([]byte("late"), false)
	tr.sink.OnClose(1000, "bye")

	assert.Equal(t, before, c.Log().Len())
	assert.Equal(t, types.StatusDisconnected, c.State().Status)
}

func TestDisconnect_WhileConnecting(t *testing.T) {
	c, d := newTestController()
	require.NoError(t, c.Connect("localhost", false))

	c.Disconnect("abort")

	assert.Equal(t, types.StatusDisconnected, c.State().Status)
	assert.Len(t, d.last().closeCalls(), 1)

	// A late open from the released transport must not revive the session.
	d.last().sink.OnOpen()
	assert.Equal(t, types.StatusDisconnected, c.State().Status)
}

func TestConnect_SupersedesExistingTransport(t *testing.T) {
	c, d, first := connected(t)

	require.NoError(t, c.Connect("ws://other:9000", false))

	require.Equal(t, 2, d.count())
	assert.Eventually(t, func() bool { return len(first.closeCalls()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, transport.CloseNormal, first.closeCalls()[0].code)
	assert.Equal(t, types.StatusConnecting, c.State().Status)
	assert.Contains(t, lastEntry(c).Text, "Closed previous connection")

	// Notifications from the superseded transport are ignored.
	before := c.Log().Len()
	first.sink.OnClose(1000, "superseded")
	first.sink.OnMessage([]byte("stale"), false)
	assert.Equal(t, before, c.Log().Len())
	assert.Equal(t, types.StatusConnecting, c.State().Status)

	d.last().sink.OnOpen()
	assert.Equal(t, types.StatusConnected, c.State().Status)
	assert.Equal(t, "ws://other:9000", c.State().TargetURL)
}

func TestSend_NotConnected(t *testing.T) {
	c, d := newTestController()

	err := c.Send("hello", false)

	require.ErrorIs(t, err, ErrNotConnected)
	assert.NotEmpty(t, c.State().LastError)
	assert.Equal(t, 1, c.Log().Len())
	assert.Equal(t, 0, d.count())
}

func TestSend_WhileConnectingNeverWrites(t *testing.T) {
	c, d := newTestController()
	require.NoError(t, c.Connect("localhost", false))

	require.ErrorIs(t, c.Send("hello", false), ErrNotConnected)
	assert.Equal(t, 0, d.last().sentCount())
}

func TestSend_BlankIgnored(t *testing.T) {
	c, _, tr := connected(t)
	before := c.Log().Len()

	for _, p := range []string{"", "   ", "\n\t"} {
		require.NoError(t, c.Send(p, true))
	}

	assert.Equal(t, before, c.Log().Len())
	assert.Equal(t, 0, tr.sentCount())
	assert.Empty(t, c.State().LastError)
}

func TestSend_Text(t *testing.T) {
	c, _, tr := connected(t)

	require.NoError(t, c.Send("hello there", false))

	assert.Equal(t, []string{"hello there"}, tr.sent)
	e := lastEntry(c)
	assert.Equal(t, types.DirectionSent, e.Direction)
	assert.Equal(t, "hello there", e.Text)
}

func TestSend_JSONModeCanonicalizes(t *testing.T) {
	c, _, tr := connected(t)

	require.NoError(t, c.Send(`{"a":1}`, true))

	assert.Equal(t, []string{`{"a":1}`}, tr.sent)
	sentEntries := 0
	for _, e := range c.Log().Snapshot() {
		if e.Direction == types.DirectionSent {
			sentEntries++
			assert.Equal(t, "{\n  \"a\": 1\n}", e.Text)
		}
	}
	assert.Equal(t, 1, sentEntries)
}

func TestSend_JSONModeCompactsWhitespace(t *testing.T) {
	c, _, tr := connected(t)

	require.NoError(t, c.Send("{\n  \"type\": \"ping\",\n  \"id\": 7\n}", true))

	assert.Equal(t, []string{`{"type":"ping","id":7}`}, tr.sent)
}

func TestSend_JSONModeInvalid(t *testing.T) {
	c, _, tr := connected(t)

	err := c.Send("{invalid", true)

	require.ErrorIs(t, err, payload.ErrInvalidJSON)
	assert.Equal(t, 0, tr.sentCount())
	assert.NotEmpty(t, c.State().LastError)
	for _, e := range c.Log().Snapshot() {
		assert.NotEqual(t, types.DirectionSent, e.Direction)
	}
	assert.Equal(t, types.DirectionSystem, lastEntry(c).Direction)
	assert.Equal(t, types.StatusConnected, c.State().Status)
}

func TestSend_TransportError(t *testing.T) {
	c, _, tr := connected(t)
	tr.sendErr = transport.ErrNotOpen

	err := c.Send("hi", false)

	require.ErrorIs(t, err, transport.ErrNotOpen)
	assert.Contains(t, c.State().LastError, "send failed")
	assert.Equal(t, types.DirectionSystem, lastEntry(c).Direction)
}

func TestSend_ClearsPreviousError(t *testing.T) {
	c, _, _ := connected(t)
	_ = c.Send("{bad", true)
	require.NotEmpty(t, c.State().LastError)

	require.NoError(t, c.Send("ok", false))
	assert.Empty(t, c.State().LastError)
}

func TestClearLog(t *testing.T) {
	c, _, _ := connected(t)
	_ = c.Send("x", false)

	c.ClearLog()

	snap := c.Log().Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, logbook.ClearedText, snap[0].Text)
}

func TestClose_Teardown(t *testing.T) {
	c, _, tr := connected(t)
	before := c.Log().Len()

	c.Close()

	assert.Equal(t, types.StatusDisconnected, c.State().Status)
	calls := tr.closeCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, transport.CloseNormal, calls[0].code)
	assert.Equal(t, before, c.Log().Len())

	// Safe to call twice and without a transport.
	assert.NotPanics(t, c.Close)
}

func TestChanges_Coalesce(t *testing.T) {
	c, _ := newTestController()

	c.Disconnect("")
	c.Disconnect("")
	c.Disconnect("")

	select {
	case <-c.Changes():
	default:
		t.Fatal("Expected a change notification")
	}
	select {
	case <-c.Changes():
		t.Fatal("Expected notifications to coalesce")
	default:
	}
}

func TestController_EndToEndWithGorilla(t *testing.T) {
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			mt, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			_ = conn.WriteMessage(mt, msg)
		}
	}))
	defer server.Close()

	c := NewController(&transport.Gorilla{})
	defer c.Close()

	require.NoError(t, c.Connect(strings.TrimPrefix(server.URL, "http://"), false))
	require.Eventually(t, func() bool {
		return c.State().Status == types.StatusConnected
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, c.Send(`{"type":"ping"}`, true))
	require.Eventually(t, func() bool {
		for _, e := range c.Log().Snapshot() {
			if e.Direction == types.DirectionReceived {
				return true
			}
		}
		return false
	}, 5*time.Second, 10*time.Millisecond)

	var sent, received []logbook.Entry
	for _, e := range c.Log().Snapshot() {
		switch e.Direction {
		case types.DirectionSent:
			sent = append(sent, e)
		case types.DirectionReceived:
			received = append(received, e)
		}
	}
	require.Len(t, sent, 1)
	require.Len(t, received, 1)
	assert.Equal(t, sent[0].Text, received[0].Text)
	assert.Less(t, sent[0].Seq, received[0].Seq)

	c.Disconnect("bye")
	assert.Equal(t, types.StatusDisconnected, c.State().Status)
}
