package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/benvon/omnifocus-bridge/internal/automation"
	"github.com/benvon/omnifocus-bridge/internal/config"
)

func TestNew(t *testing.T) {
	t.Parallel()

	cfg := config.Defaults()
	cfg.ScriptsDir = filepath.Join(t.TempDir(), "scripts")
	cfg.OSAScriptPath = "/usr/local/bin/osascript-test"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Expected defaults to validate, got %v", err)
	}

	bridge, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	for _, name := range automation.Scripts {
		if _, err := os.Stat(filepath.Join(cfg.ScriptsDir, name+automation.ScriptExt)); err != nil {
			t.Errorf("Expected script %s to be installed: %v", name, err)
		}
	}
	if bridge.Runner.Binary() != cfg.OSAScriptPath {
		t.Errorf("Expected binary %s, got %s", cfg.OSAScriptPath, bridge.Runner.Binary())
	}
	if _, ok := bridge.Registry.Lookup("list_tasks"); !ok {
		t.Error("Expected list_tasks to be registered")
	}
}

func TestNew_UnwritableScriptsDir(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	cfg := config.Defaults()
	cfg.ScriptsDir = filepath.Join(file, "scripts")
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Expected defaults to validate, got %v", err)
	}

	if _, err := New(cfg, nil); err == nil {
		t.Error("Expected error for unwritable scripts dir")
	}
}
