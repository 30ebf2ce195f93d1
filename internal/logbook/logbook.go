// Package logbook holds the session log: an append-only, ordered record of
// sent, received and system events.
package logbook

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/studiowebux/wsprobe/internal/types"
)

// DefaultTimestampFormat is the human-readable layout stored on each entry.
const DefaultTimestampFormat = "15:04:05"

// ClearedText is the System entry appended by Clear.
const ClearedText = "Log cleared"

// Entry is one immutable log line.
type Entry struct {
	ID        string          `json:"id" yaml:"id"`
	Seq       int             `json:"seq" yaml:"seq"`
	Time      time.Time       `json:"time" yaml:"time"`
	Timestamp string          `json:"timestamp" yaml:"timestamp"`
	Direction types.Direction `json:"direction" yaml:"direction"`
	Text      string          `json:"text" yaml:"text"`
}

// Option configures a Log.
type Option func(*Log)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Log) { l.now = now }
}

// WithTimestampFormat sets the layout used for Entry.Timestamp.
func WithTimestampFormat(layout string) Option {
	return func(l *Log) {
		if layout != "" {
			l.layout = layout
		}
	}
}

// Log is safe for concurrent use. Transport notifications append from their
// own goroutines while the UI takes snapshots.
type Log struct {
	mu      sync.RWMutex
	entries []Entry
	seq     int
	now     func() time.Time
	layout  string
}

// New creates an empty log.
func New(opts ...Option) *Log {
	l := &Log{
		now:    time.Now,
		layout: DefaultTimestampFormat,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Append records a new entry at the end of the log and returns it.
func (l *Log) Append(dir types.Direction, text string) Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.appendLocked(dir, text)
}

func (l *Log) appendLocked(dir types.Direction, text string) Entry {
	l.seq++
	now := l.now()
	e := Entry{
		ID:        uuid.NewString(),
		Seq:       l.seq,
		Time:      now,
		Timestamp: now.Format(l.layout),
		Direction: dir,
		Text:      text,
	}
	l.entries = append(l.entries, e)
	return e
}

// System is shorthand for Append(types.DirectionSystem, text).
func (l *Log) System(text string) Entry {
	return l.Append(types.DirectionSystem, text)
}

// Clear drops every entry, then records that the log was cleared. After a
// manual clear the log therefore holds exactly one entry.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = nil
	l.appendLocked(types.DirectionSystem, ClearedText)
}

// Snapshot returns a copy of all entries in append order.
func (l *Log) Snapshot() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Since returns the entries whose Seq is greater than seq. The REPL uses it to
// print only what it has not printed yet.
func (l *Log) Since(seq int) []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	// Seq is strictly increasing, so scan back from the end.
	i := len(l.entries)
	for i > 0 && l.entries[i-1].Seq > seq {
		i--
	}
	out := make([]Entry, len(l.entries)-i)
	copy(out, l.entries[i:])
	return out
}

// Len returns the number of entries.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
