package keybinds

import (
	"sort"
	"strings"
	"sync"
)

// Binding represents a keybinding mapping
type Binding struct {
	Key     string
	Action  Action
	Context Context
}

// Registry manages keybinding mappings and matching
type Registry struct {
	mu sync.RWMutex

	// bindings maps context -> key -> action
	bindings map[Context]map[string]Action

	// pending tracks the first key of a multi-key sequence (like 'gg')
	pending map[Context]string
}

// NewRegistry creates an empty keybinding registry
func NewRegistry() *Registry {
	return &Registry{
		bindings: make(map[Context]map[string]Action),
		pending:  make(map[Context]string),
	}
}

// Register adds a keybinding to the registry
func (r *Registry) Register(context Context, key string, action Action) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.register(context, key, action)
}

func (r *Registry) register(context Context, key string, action Action) {
	if r.bindings[context] == nil {
		r.bindings[context] = make(map[string]Action)
	}
	r.bindings[context][key] = action
}

// RegisterMultiple registers multiple keybindings for the same action
func (r *Registry) RegisterMultiple(context Context, keys []string, action Action) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, key := range keys {
		r.register(context, key, action)
	}
}

// Rebind replaces every key bound to action in context with keys
func (r *Registry) Rebind(context Context, action Action, keys []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, act := range r.bindings[context] {
		if act == action {
			delete(r.bindings[context], key)
		}
	}
	for _, key := range keys {
		r.register(context, key, action)
	}
}

// Match attempts to match a key to an action in the given context.
// The context is checked before global.
func (r *Registry) Match(context Context, key string) (Action, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.match(context, key)
}

func (r *Registry) match(context Context, key string) (Action, bool) {
	if action, ok := r.bindings[context][key]; ok {
		return action, true
	}
	if action, ok := r.bindings[ContextGlobal][key]; ok {
		return action, true
	}
	return "", false
}

// MatchMultiKey handles multi-key sequences such as 'gg'.
// It returns the action, whether it is a complete match, and whether the key
// started a sequence that needs another key.
func (r *Registry) MatchMultiKey(context Context, key string) (Action, bool, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.pending[context]; ok {
		delete(r.pending, context)
		action, ok := r.match(context, prev+key)
		return action, ok, false
	}

	if r.startsSequence(context, key) {
		r.pending[context] = key
		return "", false, true
	}

	action, ok := r.match(context, key)
	return action, ok, false
}

// startsSequence reports whether a single printable key prefixes a longer
// binding in context. Caller holds r.mu.
func (r *Registry) startsSequence(context Context, key string) bool {
	if len(key) != 1 {
		return false
	}
	for bound := range r.bindings[context] {
		if len(bound) > 1 && !strings.Contains(bound, "+") && strings.HasPrefix(bound, key) && !isNamedKey(bound) {
			return true
		}
	}
	return false
}

// isNamedKey reports whether a multi-character key is a named key such as
// "enter" rather than a sequence of typed characters
func isNamedKey(key string) bool {
	switch key {
	case "enter", "esc", "tab", "up", "down", "left", "right", "home", "end",
		"pgup", "pgdown", "space", "backspace", "delete", "insert":
		return true
	}
	return strings.HasPrefix(key, "f") && len(key) > 1 && key[1] >= '0' && key[1] <= '9'
}

// ClearMultiKeyState clears any pending multi-key state for a context
func (r *Registry) ClearMultiKeyState(context Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.pending, context)
}

// GetBinding returns the sorted keys bound to an action in a context,
// falling back to global
func (r *Registry) GetBinding(context Context, action Action) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := keysFor(r.bindings[context], action)
	if len(keys) == 0 {
		keys = keysFor(r.bindings[ContextGlobal], action)
	}
	return keys
}

func keysFor(bindings map[string]Action, action Action) []string {
	var keys []string
	for key, act := range bindings {
		if act == action {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

// GetBindingString returns a human-readable string of keys bound to an action
func (r *Registry) GetBindingString(context Context, action Action) string {
	keys := r.GetBinding(context, action)
	if len(keys) == 0 {
		return "unbound"
	}
	return strings.Join(keys, "/")
}

// ListBindings returns the bindings of a context followed by the global ones
// it does not shadow, sorted by action then key
func (r *Registry) ListBindings(context Context) []Binding {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var bindings []Binding
	for key, action := range r.bindings[context] {
		bindings = append(bindings, Binding{Key: key, Action: action, Context: context})
	}
	if context != ContextGlobal {
		for key, action := range r.bindings[ContextGlobal] {
			if _, shadowed := r.bindings[context][key]; shadowed {
				continue
			}
			bindings = append(bindings, Binding{Key: key, Action: action, Context: ContextGlobal})
		}
	}

	sort.Slice(bindings, func(i, j int) bool {
		if bindings[i].Action != bindings[j].Action {
			return bindings[i].Action < bindings[j].Action
		}
		return bindings[i].Key < bindings[j].Key
	})
	return bindings
}

// HasBinding checks if a key is bound in a context or globally
func (r *Registry) HasBinding(context Context, key string) bool {
	_, ok := r.Match(context, key)
	return ok
}

// Clone creates a deep copy of the registry
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	clone := NewRegistry()
	for context, contextBindings := range r.bindings {
		for key, action := range contextBindings {
			clone.register(context, key, action)
		}
	}
	return clone
}

// Bindings returns a copy of the key -> action map of a single context
func (r *Registry) Bindings(context Context) map[string]Action {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]Action, len(r.bindings[context]))
	for key, action := range r.bindings[context] {
		out[key] = action
	}
	return out
}
