package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFile_Missing(t *testing.T) {
	settings, err := LoadFile(filepath.Join(t.TempDir(), "nope.jsonc"))
	if err != nil {
		t.Fatalf("Expected no error for missing file, got %v", err)
	}
	if settings != Defaults() {
		t.Errorf("Expected defaults, got %+v", settings)
	}
}

func TestLoadFile_CommentsAndTrailingCommas(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.jsonc")
	content := `{
  // plain ws by default
  "secureByDefault": false,
  /* block comment */
  "engine": "coder",
  "handshakeTimeout": "10s",
}`
	if err := os.WriteFile(path, []byte(content), FilePermissions); err != nil {
		t.Fatal(err)
	}

	settings, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if settings.SecureByDefault {
		t.Error("Expected secureByDefault=false")
	}
	if settings.Engine != "coder" {
		t.Errorf("Expected engine 'coder', got '%s'", settings.Engine)
	}
	if settings.CloseReason != "User disconnected" {
		t.Errorf("Expected default close reason to survive, got '%s'", settings.CloseReason)
	}
	d, err := settings.HandshakeDuration()
	if err != nil || d != 10*time.Second {
		t.Errorf("Expected 10s, got %v (%v)", d, err)
	}
}

func TestLoadFile_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.jsonc")
	if err := os.WriteFile(path, []byte(`{"secureByDefault": "yes"}`), FilePermissions); err != nil {
		t.Fatal(err)
	}

	settings, err := LoadFile(path)
	if err == nil {
		t.Error("Expected error for malformed config")
	}
	if settings != Defaults() {
		t.Errorf("Expected defaults on error, got %+v", settings)
	}
}

func TestLoadFile_BadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.jsonc")
	if err := os.WriteFile(path, []byte(`{"handshakeTimeout": "soon"}`), FilePermissions); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFile(path); err == nil {
		t.Error("Expected error for invalid duration")
	}
}

func TestInitialize_HomeOverride(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "home")
	t.Setenv(HomeEnv, dir)

	if err := Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	if ConfigDir != dir {
		t.Errorf("Expected ConfigDir '%s', got '%s'", dir, ConfigDir)
	}
	if DatabasePath != filepath.Join(dir, "wsprobe.db") {
		t.Errorf("Unexpected DatabasePath '%s'", DatabasePath)
	}

	// The generated file must load back to the defaults.
	settings, err := LoadFile(ConfigFile)
	if err != nil {
		t.Fatalf("Generated config did not parse: %v", err)
	}
	if settings != Defaults() {
		t.Errorf("Expected generated config to match defaults, got %+v", settings)
	}
}
