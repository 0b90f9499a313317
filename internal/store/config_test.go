package store

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfigInitMissingFileCreatesEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	cs := NewConfigStore(path)

	if err := cs.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if cs.Version() != "" {
		t.Errorf("expected empty version, got %q", cs.Version())
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected backing file to exist: %v", err)
	}
}

func TestConfigSetVersionPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	cs := NewConfigStore(path)
	if err := cs.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}

	if err := cs.SetVersion("1.4.4"); err != nil {
		t.Fatalf("SetVersion: %v", err)
	}

	reloaded := NewConfigStore(path)
	if err := reloaded.Init(); err != nil {
		t.Fatalf("reload Init: %v", err)
	}
	if reloaded.Version() != "1.4.4" {
		t.Errorf("version: got %q, want %q", reloaded.Version(), "1.4.4")
	}
}

func TestConfigCorruptFileLoadsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("not json at all"), 0o644); err != nil {
		t.Fatal(err)
	}

	cs := NewConfigStore(path)
	if err := cs.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if cs.Version() != "" {
		t.Errorf("expected empty version from corrupt file, got %q", cs.Version())
	}
}
