package library

import (
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"
)

// Kind names a collection.
type Kind string

const (
	KindURL      Kind = "url"
	KindSnippet  Kind = "snippet"
	KindTemplate Kind = "template"
)

// ParseKind accepts singular or plural collection names.
func ParseKind(s string) (Kind, error) {
	switch strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "s") {
	case "url":
		return KindURL, nil
	case "snippet":
		return KindSnippet, nil
	case "template":
		return KindTemplate, nil
	}
	return "", fmt.Errorf("unknown collection %q (want urls, snippets or templates)", s)
}

// Item is a flattened library entry used for listing and searching.
type Item struct {
	Kind    Kind
	ID      string
	Name    string
	Detail  string
	Content string
	Type    string
	Secure  bool
	BuiltIn bool
}

// Title is the text matched by Find.
func (i Item) Title() string {
	return i.Name
}

// Items flattens the collection of the given kind.
func (l *Library) Items(kind Kind) []Item {
	var items []Item
	switch kind {
	case KindURL:
		for _, u := range l.URLs() {
			items = append(items, Item{Kind: kind, ID: u.ID, Name: u.Label, Detail: u.URL, Content: u.URL, Secure: u.Secure})
		}
	case KindSnippet:
		for _, s := range l.Snippets() {
			items = append(items, Item{Kind: kind, ID: s.ID, Name: s.Name, Detail: s.Type, Content: s.Content, Type: s.Type, BuiltIn: s.BuiltIn})
		}
	case KindTemplate:
		for _, t := range l.Templates() {
			items = append(items, Item{Kind: kind, ID: t.ID, Name: t.Name, Detail: t.Description, Content: t.Content, Type: t.Type})
		}
	}
	return items
}

type itemSource []Item

func (s itemSource) String(i int) string {
	if s[i].Kind == KindURL {
		return s[i].Name + " " + s[i].Detail
	}
	return s[i].Name
}

func (s itemSource) Len() int { return len(s) }

// Find fuzzy-matches query against the collection, best match first. An
// empty query returns every item in stored order.
func (l *Library) Find(kind Kind, query string) []Item {
	return FilterItems(l.Items(kind), query)
}

// FilterItems fuzzy-matches query against items, best match first.
func FilterItems(items []Item, query string) []Item {
	query = strings.TrimSpace(query)
	if query == "" {
		return items
	}
	matches := fuzzy.FindFrom(query, itemSource(items))
	out := make([]Item, 0, len(matches))
	for _, m := range matches {
		out = append(out, items[m.Index])
	}
	return out
}

// Resolve finds an item by exact ID, then exact name, then best fuzzy match.
func (l *Library) Resolve(kind Kind, ref string) (Item, error) {
	items := l.Items(kind)
	for _, it := range items {
		if it.ID == ref {
			return it, nil
		}
	}
	for _, it := range items {
		if strings.EqualFold(it.Name, ref) {
			return it, nil
		}
	}
	if found := FilterItems(items, ref); len(found) > 0 {
		return found[0], nil
	}
	return Item{}, fmt.Errorf("%s %q: %w", kind, ref, ErrNotFound)
}

// Remove deletes an item of the given kind by ID.
func (l *Library) Remove(kind Kind, id string) error {
	switch kind {
	case KindURL:
		return l.RemoveURL(id)
	case KindSnippet:
		return l.RemoveSnippet(id)
	case KindTemplate:
		return l.RemoveTemplate(id)
	}
	return fmt.Errorf("unknown collection %q", kind)
}
