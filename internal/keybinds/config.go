package keybinds

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// ConfigVersion is written by SaveConfig
const ConfigVersion = "1"

// Config is the content of keybinds.json: per context, an action mapped to
// a comma-separated list of keys. Listed actions replace their defaults.
//
//	{"version": "1", "bindings": {"log": {"copy_entry": "y,c"}}}
type Config struct {
	Version  string                        `json:"version"`
	Bindings map[Context]map[Action]string `json:"bindings"`
}

// LoadConfig loads keybinding configuration from a JSON file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("invalid keybinds.json format: %w", err)
	}

	return &config, nil
}

// SaveConfig saves keybinding configuration to a JSON file
func SaveConfig(config *Config, path string) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// SplitKeys parses a comma-separated key list, dropping blanks
func SplitKeys(list string) []string {
	var keys []string
	for _, k := range strings.Split(list, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// ApplyConfig applies user configuration to a registry.
// The config is validated first; nothing is applied when it has errors.
func ApplyConfig(registry *Registry, config *Config) error {
	if result := NewValidator().ValidateConfig(config); result.HasErrors() {
		return errors.New(strings.TrimSpace(result.String()))
	}

	for context, actions := range config.Bindings {
		for action, list := range actions {
			registry.Rebind(context, action, SplitKeys(list))
		}
	}
	return nil
}

// LoadOrDefault loads user config if it exists, otherwise returns the default registry
func LoadOrDefault(configPath string) (*Registry, error) {
	registry := NewDefaultRegistry()

	config, err := LoadConfig(configPath)
	if errors.Is(err, fs.ErrNotExist) {
		return registry, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load keybinds.json: %w", err)
	}

	if err := ApplyConfig(registry, config); err != nil {
		return nil, fmt.Errorf("failed to apply keybinds config: %w", err)
	}
	return registry, nil
}

// ExportDefaults returns the default keybindings as a config, for users to
// copy and edit
func ExportDefaults() *Config {
	registry := NewDefaultRegistry()
	config := &Config{Version: ConfigVersion, Bindings: make(map[Context]map[Action]string)}

	for _, context := range Contexts {
		registry.mu.RLock()
		byAction := make(map[Action][]string)
		for key, action := range registry.bindings[context] {
			byAction[action] = append(byAction[action], key)
		}
		registry.mu.RUnlock()

		if len(byAction) == 0 {
			continue
		}
		config.Bindings[context] = make(map[Action]string)
		for action := range byAction {
			config.Bindings[context][action] = strings.Join(registry.GetBinding(context, action), ",")
		}
	}
	return config
}
