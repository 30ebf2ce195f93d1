// Package library manages the user's saved URLs, snippets and templates.
//
// Each collection is a JSON array stored under its own key. Persistence
// failures never reach the caller: a collection that cannot be read is empty,
// and a write that fails is logged at debug level.
package library

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/studiowebux/wsprobe/internal/logging"
	"github.com/studiowebux/wsprobe/internal/store"
	"github.com/studiowebux/wsprobe/internal/types"
)

// Store keys
const (
	KeyURLs      = "wsprobe.savedUrls"
	KeySnippets  = "wsprobe.savedSnippets"
	KeyTemplates = "wsprobe.savedTemplates"
)

var (
	ErrDuplicate = errors.New("already saved")
	ErrNotFound  = errors.New("not found")
	ErrBuiltIn   = errors.New("built-in snippets cannot be removed")
	ErrRequired  = errors.New("name and content are required")
	ErrType      = errors.New("type must be text or json")
)

// builtinSnippets are always listed first and never written to the store.
var builtinSnippets = []types.Snippet{
	{ID: "builtin-ping", Name: "ping", Content: `{"type":"ping"}`, Type: types.PayloadJSON, BuiltIn: true},
	{ID: "builtin-subscribe", Name: "subscribe", Content: `{"type":"subscribe","channel":"updates"}`, Type: types.PayloadJSON, BuiltIn: true},
	{ID: "builtin-echo", Name: "echo", Content: "hello", Type: types.PayloadText, BuiltIn: true},
}

// Option configures a Library.
type Option func(*Library)

// WithLogger sets the diagnostic logger.
func WithLogger(l *slog.Logger) Option {
	return func(lib *Library) { lib.log = logging.OrNop(l) }
}

// WithClock overrides time.Now for CreatedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(lib *Library) { lib.now = now }
}

// Library is safe for concurrent use.
type Library struct {
	mu    sync.Mutex
	store store.Store
	log   *slog.Logger
	now   func() time.Time
}

// New returns a Library over s.
func New(s store.Store, opts ...Option) *Library {
	lib := &Library{store: s, log: logging.Nop(), now: time.Now}
	for _, opt := range opts {
		opt(lib)
	}
	return lib
}

// URLs returns the saved URLs in insertion order.
func (l *Library) URLs() []types.SavedURL {
	l.mu.Lock()
	defer l.mu.Unlock()
	var urls []types.SavedURL
	l.load(KeyURLs, &urls)
	return urls
}

// AddURL saves an endpoint. An entry with the same url, secure flag and label
// is rejected with ErrDuplicate.
func (l *Library) AddURL(label, rawURL string, secure bool) (types.SavedURL, error) {
	label = strings.TrimSpace(label)
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return types.SavedURL{}, errors.New("url is required")
	}
	if label == "" {
		label = rawURL
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	var urls []types.SavedURL
	l.load(KeyURLs, &urls)
	for _, u := range urls {
		if u.URL == rawURL && u.Secure == secure && u.Label == label {
			return u, fmt.Errorf("%s: %w", rawURL, ErrDuplicate)
		}
	}

	entry := types.SavedURL{
		ID:        uuid.NewString(),
		Label:     label,
		URL:       rawURL,
		Secure:    secure,
		CreatedAt: l.now(),
	}
	l.save(KeyURLs, append(urls, entry))
	return entry, nil
}

// RemoveURL deletes a saved URL by ID.
func (l *Library) RemoveURL(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var urls []types.SavedURL
	l.load(KeyURLs, &urls)
	for i, u := range urls {
		if u.ID == id {
			l.save(KeyURLs, append(urls[:i], urls[i+1:]...))
			return nil
		}
	}
	return fmt.Errorf("url %s: %w", id, ErrNotFound)
}

// Snippets returns the built-in snippets followed by the user's.
func (l *Library) Snippets() []types.Snippet {
	l.mu.Lock()
	defer l.mu.Unlock()
	var user []types.Snippet
	l.load(KeySnippets, &user)
	all := make([]types.Snippet, 0, len(builtinSnippets)+len(user))
	all = append(all, builtinSnippets...)
	return append(all, user...)
}

// AddSnippet saves a user snippet. typ defaults to text.
func (l *Library) AddSnippet(name, content, typ string) (types.Snippet, error) {
	typ, err := normalize(name, content, typ)
	if err != nil {
		return types.Snippet{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	var user []types.Snippet
	l.load(KeySnippets, &user)
	entry := types.Snippet{ID: uuid.NewString(), Name: strings.TrimSpace(name), Content: content, Type: typ}
	l.save(KeySnippets, append(user, entry))
	return entry, nil
}

// RemoveSnippet deletes a user snippet by ID.
func (l *Library) RemoveSnippet(id string) error {
	for _, b := range builtinSnippets {
		if b.ID == id {
			return ErrBuiltIn
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	var user []types.Snippet
	l.load(KeySnippets, &user)
	for i, s := range user {
		if s.ID == id {
			l.save(KeySnippets, append(user[:i], user[i+1:]...))
			return nil
		}
	}
	return fmt.Errorf("snippet %s: %w", id, ErrNotFound)
}

// Templates returns the saved templates.
func (l *Library) Templates() []types.Template {
	l.mu.Lock()
	defer l.mu.Unlock()
	var templates []types.Template
	l.load(KeyTemplates, &templates)
	return templates
}

// AddTemplate saves a template. typ defaults to text.
func (l *Library) AddTemplate(name, content, typ, description string) (types.Template, error) {
	typ, err := normalize(name, content, typ)
	if err != nil {
		return types.Template{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	var templates []types.Template
	l.load(KeyTemplates, &templates)
	entry := types.Template{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(name),
		Content:     content,
		Type:        typ,
		Description: strings.TrimSpace(description),
	}
	l.save(KeyTemplates, append(templates, entry))
	return entry, nil
}

// RemoveTemplate deletes a template by ID.
func (l *Library) RemoveTemplate(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var templates []types.Template
	l.load(KeyTemplates, &templates)
	for i, t := range templates {
		if t.ID == id {
			l.save(KeyTemplates, append(templates[:i], templates[i+1:]...))
			return nil
		}
	}
	return fmt.Errorf("template %s: %w", id, ErrNotFound)
}

func normalize(name, content, typ string) (string, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(content) == "" {
		return "", ErrRequired
	}
	switch strings.ToLower(strings.TrimSpace(typ)) {
	case "", types.PayloadText:
		return types.PayloadText, nil
	case types.PayloadJSON:
		return types.PayloadJSON, nil
	default:
		return "", fmt.Errorf("%q: %w", typ, ErrType)
	}
}

// load decodes key into dst, leaving dst empty on any failure. Caller holds l.mu.
func (l *Library) load(key string, dst any) {
	raw, ok, err := l.store.Get(key)
	if err != nil {
		l.log.Debug("library read failed", "key", key, "error", err)
		return
	}
	if !ok || raw == "" {
		return
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		l.log.Debug("library value corrupt, using empty collection", "key", key, "error", err)
	}
}

// save encodes v under key. Caller holds l.mu.
func (l *Library) save(key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		l.log.Debug("library encode failed", "key", key, "error", err)
		return
	}
	// An empty collection is stored as an absent key.
	if raw := string(data); raw == "[]" || raw == "null" {
		if err := l.store.Remove(key); err != nil && !errors.Is(err, store.ErrNotFound) {
			l.log.Debug("library delete failed", "key", key, "error", err)
		}
		return
	}
	if err := l.store.Set(key, string(data)); err != nil {
		l.log.Debug("library write failed", "key", key, "error", err)
	}
}
