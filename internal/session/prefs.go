package session

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/studiowebux/wsprobe/internal/config"
	"github.com/studiowebux/wsprobe/internal/types"
)

// Prefs handles the persisted UI preferences: last URL, secure flag and JSON mode
type Prefs struct {
	path          string
	session       *types.Session
	defaultSecure bool
}

// NewPrefs creates preferences backed by the session file (local or global)
func NewPrefs(defaultSecure bool) *Prefs {
	return NewPrefsAt(config.GetSessionFilePath(), defaultSecure)
}

// NewPrefsAt creates preferences backed by an explicit file
func NewPrefsAt(path string, defaultSecure bool) *Prefs {
	return &Prefs{
		path:          path,
		session:       &types.Session{},
		defaultSecure: defaultSecure,
	}
}

// Load loads the session file. A missing or unreadable file leaves the
// defaults in place; only a corrupt file is reported.
func (p *Prefs) Load() error {
	data, err := os.ReadFile(p.path)
	if err != nil {
		// If file doesn't exist, use default session
		p.session = &types.Session{}
		return nil
	}

	var session types.Session
	if err := json.Unmarshal(data, &session); err != nil {
		p.session = &types.Session{}
		return fmt.Errorf("failed to parse session file: %w", err)
	}

	p.session = &session
	return nil
}

// Save saves the session to disk
func (p *Prefs) Save() error {
	data, err := json.MarshalIndent(p.session, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := os.WriteFile(p.path, data, config.FilePermissions); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}

	return nil
}

// LastURL returns the URL of the last connect attempt
func (p *Prefs) LastURL() string {
	return p.session.LastURL
}

// Secure returns the saved secure flag, or the configured default
func (p *Prefs) Secure() bool {
	if p.session.Secure == nil {
		return p.defaultSecure
	}
	return *p.session.Secure
}

// JSONMode returns whether the composer was in JSON mode
func (p *Prefs) JSONMode() bool {
	return p.session.JSONMode
}

// Remember records the inputs of a connect attempt
func (p *Prefs) Remember(rawURL string, secure bool) {
	p.session.LastURL = rawURL
	p.session.Secure = &secure
}

// SetJSONMode records the composer mode
func (p *Prefs) SetJSONMode(enabled bool) {
	p.session.JSONMode = enabled
}
