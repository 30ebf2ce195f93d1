/*
Package transport is the WebSocket collaborator behind the session controller.

# Contract

A Dialer opens a Transport for a ws:// or wss:// URL. Open validates the URL
and TLS files synchronously and returns at once; the opening handshake runs on
a goroutine owned by the transport. Every notification for one transport is
delivered from that goroutine, so a Sink sees them in order:

	OnOpen -> (OnMessage | OnError)* -> OnClose

A failed handshake produces OnError followed by OnClose(1006, ""). OnClose is
delivered exactly once per transport, including when Close is called while the
handshake is still in flight.

When the client starts the close, OnClose carries the code and reason passed
to Close. When the server starts it, OnClose carries the server's frame.

# Engines

Gorilla (default) uses github.com/gorilla/websocket with the proxy from the
environment and a 45s handshake timeout. Coder uses github.com/coder/websocket;
its closing handshake runs in the background because the library waits for the
peer before returning.

Send and Close return ErrNotOpen unless the transport is open.
*/
package transport
