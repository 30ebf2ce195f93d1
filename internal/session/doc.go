/*
Package session implements the connection state machine and persisted UI preferences.

# Controller

Controller owns at most one transport and moves between three states:

	Disconnected --Connect--> Connecting --open--> Connected
	     ^                        |                    |
	     +-----close/Disconnect---+--------------------+

Connect normalizes the input (NormalizeURL), fails fast on blank input, and
otherwise opens a transport and returns. Open, message, error and close
notifications update the state and append to the log. Connect while a
transport exists closes the old one first (code 1000) so it is never orphaned.

Disconnect sets Disconnected immediately and releases the transport; the
close notification from a released transport is not logged again.

Send ignores blank payloads, refuses to write unless Connected, and in JSON
mode sends the compact form of the payload. Sent and received payloads are
logged through payload.PrettyOrRaw.

Each operation that changes status or hits an error appends exactly one
System entry to the log. Front-ends wait on Changes and re-render from State
and Log().Snapshot().

# Prefs

Prefs persists the last URL, the secure flag and JSON mode in .session.json
(local file first, then ~/.wsprobe/.session.json). A missing file means
defaults.
*/
package session
