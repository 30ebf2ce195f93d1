package types

import "time"

// Payload types shared by snippets and templates
const (
	PayloadText = "text"
	PayloadJSON = "json"
)

// SavedURL is a persisted endpoint the user wants to reconnect to
type SavedURL struct {
	ID        string    `json:"id" yaml:"id"`
	Label     string    `json:"label" yaml:"label"`
	URL       string    `json:"url" yaml:"url"`
	Secure    bool      `json:"secure" yaml:"secure"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
}

// Snippet is a quick-insert payload preset
type Snippet struct {
	ID      string `json:"id" yaml:"id"`
	Name    string `json:"name" yaml:"name"`
	Content string `json:"content" yaml:"content"`
	Type    string `json:"type" yaml:"type"` // "text" | "json"
	BuiltIn bool   `json:"-" yaml:"-"`
}

// Template is a payload skeleton meant to be edited before sending
type Template struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Content     string `json:"content" yaml:"content"`
	Type        string `json:"type" yaml:"type"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Session represents persisted UI preferences restored on the next start
type Session struct {
	LastURL  string `json:"lastUrl,omitempty"`
	Secure   *bool  `json:"secure,omitempty"`
	JSONMode bool   `json:"jsonMode,omitempty"`
}
