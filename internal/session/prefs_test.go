package session

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPrefs_DefaultsWhenMissing(t *testing.T) {
	p := NewPrefsAt(filepath.Join(t.TempDir(), ".session.json"), true)
	if err := p.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if p.LastURL() != "" {
		t.Errorf("Expected empty last URL, got '%s'", p.LastURL())
	}
	if !p.Secure() {
		t.Error("Expected secure default to apply")
	}
	if p.JSONMode() {
		t.Error("Expected JSON mode off by default")
	}
}

func TestPrefs_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".session.json")

	p := NewPrefsAt(path, true)
	p.Remember("localhost:8080", false)
	p.SetJSONMode(true)
	if err := p.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded := NewPrefsAt(path, true)
	if err := loaded.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.LastURL() != "localhost:8080" {
		t.Errorf("Expected 'localhost:8080', got '%s'", loaded.LastURL())
	}
	if loaded.Secure() {
		t.Error("Expected saved secure=false to override default")
	}
	if !loaded.JSONMode() {
		t.Error("Expected JSON mode to be restored")
	}
}

func TestPrefs_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".session.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	p := NewPrefsAt(path, false)
	if err := p.Load(); err == nil {
		t.Error("Expected error for corrupt session file")
	}
	if p.LastURL() != "" || p.Secure() {
		t.Error("Expected defaults after corrupt file")
	}
}
