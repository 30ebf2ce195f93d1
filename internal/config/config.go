package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/tidwall/jsonc"
)

const (
	// FilePermissions is the default permission mode for regular files (read/write for owner, read for others)
	FilePermissions = 0644
	// DirPermissions is the default permission mode for directories (rwxr-xr-x)
	DirPermissions = 0755

	// HomeEnv overrides the configuration directory
	HomeEnv = "WSPROBE_HOME"

	localSessionFile = ".session.json"
	localConfigFile  = ".wsprobe.jsonc"
)

var (
	// ConfigDir is the global configuration directory (~/.wsprobe)
	ConfigDir string

	// DatabasePath is the SQLite database holding saved URLs, snippets and templates
	DatabasePath string

	// SessionFile is the UI preferences file
	SessionFile string

	// ConfigFile is the JSON-with-comments settings file
	ConfigFile string

	// KeybindsFile holds user keybinding overrides
	KeybindsFile string
)

// Settings is the content of config.jsonc
type Settings struct {
	SecureByDefault   bool   `json:"secureByDefault"`
	JSONModeByDefault bool   `json:"jsonModeByDefault"`
	HandshakeTimeout  string `json:"handshakeTimeout"`
	CloseReason       string `json:"closeReason"`
	Engine            string `json:"engine"`
	LogLevel          string `json:"logLevel"`
	LogFormat         string `json:"logFormat"`
	TimestampFormat   string `json:"timestampFormat"`
}

// Defaults returns the settings used when no config file exists
func Defaults() Settings {
	return Settings{
		SecureByDefault:  true,
		HandshakeTimeout: "45s",
		CloseReason:      "User disconnected",
		Engine:           "gorilla",
		LogLevel:         "warn",
		LogFormat:        "text",
		TimestampFormat:  "15:04:05",
	}
}

// HandshakeDuration parses HandshakeTimeout, returning 0 when unset
func (s Settings) HandshakeDuration() (time.Duration, error) {
	if s.HandshakeTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s.HandshakeTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid handshakeTimeout %q: %w", s.HandshakeTimeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid handshakeTimeout %q: must not be negative", s.HandshakeTimeout)
	}
	return d, nil
}

// Initialize sets up the configuration directory and paths
// It creates ~/.wsprobe/ (or $WSPROBE_HOME) if it doesn't exist
func Initialize() error {
	dir := os.Getenv(HomeEnv)
	if dir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(homeDir, ".wsprobe")
	}

	setPaths(dir)

	if err := os.MkdirAll(ConfigDir, DirPermissions); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", ConfigDir, err)
	}

	// Create a commented config file if it doesn't exist
	if _, err := os.Stat(ConfigFile); os.IsNotExist(err) {
		if err := os.WriteFile(ConfigFile, []byte(defaultConfigFile), FilePermissions); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
	}

	return nil
}

func setPaths(dir string) {
	ConfigDir = dir
	DatabasePath = filepath.Join(ConfigDir, "wsprobe.db")
	SessionFile = filepath.Join(ConfigDir, ".session.json")
	ConfigFile = filepath.Join(ConfigDir, "config.jsonc")
	KeybindsFile = filepath.Join(ConfigDir, "keybinds.json")
}

// GetSessionFilePath returns the session file path (local or global)
func GetSessionFilePath() string {
	if _, err := os.Stat(localSessionFile); err == nil {
		return localSessionFile
	}
	return SessionFile
}

// GetConfigFilePath returns the config file path (local or global)
func GetConfigFilePath() string {
	if _, err := os.Stat(localConfigFile); err == nil {
		return localConfigFile
	}
	return ConfigFile
}

// Load reads settings from the local or global config file
func Load() (Settings, error) {
	return LoadFile(GetConfigFilePath())
}

// LoadFile reads settings from path. A missing file yields defaults; fields
// absent from the file keep their default values.
func LoadFile(path string) (Settings, error) {
	settings := Defaults()
	if path == "" {
		return settings, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return settings, nil
	}
	if err != nil {
		return settings, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(jsonc.ToJSON(data), &settings); err != nil {
		return Defaults(), fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if _, err := settings.HandshakeDuration(); err != nil {
		return Defaults(), err
	}

	return settings, nil
}

const defaultConfigFile = `{
  // Prefix bare host:port input with wss:// instead of ws://
  "secureByDefault": true,

  // Validate and compact payloads as JSON before sending
  "jsonModeByDefault": false,

  "handshakeTimeout": "45s",
  "closeReason": "User disconnected",

  // gorilla or coder
  "engine": "gorilla",

  "logLevel": "warn",
  "logFormat": "text",
  "timestampFormat": "15:04:05",
}
`
