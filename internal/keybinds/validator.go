package keybinds

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError represents a keybinding validation error
type ValidationError struct {
	Type    string // "conflict", "invalid", "warning"
	Context Context
	Key     string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s in context '%s': %s", e.Type, e.Key, e.Context, e.Message)
}

// ValidationResult contains all validation errors and warnings
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// HasErrors returns true if there are any errors
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// HasWarnings returns true if there are any warnings
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// String returns a human-readable summary of validation results
func (r *ValidationResult) String() string {
	var sb strings.Builder

	if len(r.Errors) > 0 {
		sb.WriteString(fmt.Sprintf("Errors (%d):\n", len(r.Errors)))
		for _, err := range r.Errors {
			sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
		}
	}

	if len(r.Warnings) > 0 {
		sb.WriteString(fmt.Sprintf("Warnings (%d):\n", len(r.Warnings)))
		for _, warn := range r.Warnings {
			sb.WriteString(fmt.Sprintf("  - %s\n", warn.Error()))
		}
	}

	if !r.HasErrors() && !r.HasWarnings() {
		sb.WriteString("No issues found")
	}

	return sb.String()
}

func (r *ValidationResult) add(typ string, context Context, key, format string, args ...any) {
	e := ValidationError{Type: typ, Context: context, Key: key, Message: fmt.Sprintf(format, args...)}
	if typ == "warning" {
		r.Warnings = append(r.Warnings, e)
		return
	}
	r.Errors = append(r.Errors, e)
}

// Validator validates keybinding configurations
type Validator struct {
	// reservedKeys are keys that should not be rebound
	reservedKeys map[string]Action
}

// NewValidator creates a new keybinding validator
func NewValidator() *Validator {
	return &Validator{
		reservedKeys: map[string]Action{
			"ctrl+c": ActionQuitForce, // Force quit should always work
		},
	}
}

// ValidateConfig checks a user config: known contexts and actions, well-formed
// keys, no key claimed twice in a context, no reserved key taken
func (v *Validator) ValidateConfig(config *Config) *ValidationResult {
	result := &ValidationResult{}
	if config == nil {
		return result
	}

	for context, actions := range config.Bindings {
		if !IsKnownContext(context) {
			result.add("invalid", context, "", "unknown context")
			continue
		}

		claimed := make(map[string]Action)
		for _, action := range sortedActions(actions) {
			if !IsKnownAction(action) {
				result.add("invalid", context, "", "unknown action %q", action)
				continue
			}
			keys := SplitKeys(actions[action])
			if len(keys) == 0 {
				result.add("warning", context, "", "action %q left unbound", action)
			}
			for _, key := range keys {
				if err := ValidateKey(key); err != nil {
					result.add("invalid", context, key, "%v", err)
					continue
				}
				if reserved, ok := v.reservedKeys[key]; ok && reserved != action {
					result.add("conflict", context, key, "reserved for %s", reserved)
					continue
				}
				if prev, ok := claimed[key]; ok {
					result.add("conflict", context, key, "bound to both %s and %s", prev, action)
					continue
				}
				claimed[key] = action
			}
		}
	}
	return result
}

// ValidateRegistry reports context bindings that shadow a different global action
func (v *Validator) ValidateRegistry(registry *Registry) *ValidationResult {
	result := &ValidationResult{}

	registry.mu.RLock()
	defer registry.mu.RUnlock()

	global := registry.bindings[ContextGlobal]
	for _, context := range Contexts {
		if context == ContextGlobal {
			continue
		}
		for key, action := range registry.bindings[context] {
			if globalAction, ok := global[key]; ok && globalAction != action {
				result.add("warning", context, key, "shadows global binding (%s -> %s)", globalAction, action)
			}
		}
	}
	sort.Slice(result.Warnings, func(i, j int) bool {
		return result.Warnings[i].Error() < result.Warnings[j].Error()
	})
	return result
}

func sortedActions(actions map[Action]string) []Action {
	out := make([]Action, 0, len(actions))
	for a := range actions {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ValidateKey checks if a key string is valid
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}
	if strings.ContainsAny(key, " ,") {
		return fmt.Errorf("key cannot contain spaces or commas: %q", key)
	}

	for _, mod := range []string{"ctrl+", "alt+", "shift+", "super+"} {
		if key == mod {
			return fmt.Errorf("modifier without key: %s", key)
		}
	}
	return nil
}
