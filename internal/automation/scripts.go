package automation

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
)

// ScriptExt is the extension of installed script files
const ScriptExt = ".js"

// Script names understood by the bridge
const (
	ScriptListTasks     = "list_tasks"
	ScriptGetTask       = "get_task"
	ScriptAddTask       = "add_task"
	ScriptMutateTask    = "mutate_task"
	ScriptTaskTags      = "task_tags"
	ScriptListTags      = "list_tags"
	ScriptGetProjects   = "get_projects"
	ScriptProjectAction = "project_action"
	ScriptPing          = "ping"
)

// Scripts lists every script InstallScripts writes
var Scripts = []string{
	ScriptListTasks,
	ScriptGetTask,
	ScriptAddTask,
	ScriptMutateTask,
	ScriptTaskTags,
	ScriptListTags,
	ScriptGetProjects,
	ScriptProjectAction,
	ScriptPing,
}

const preludeFile = "scripts/prelude.js"

//go:embed scripts/*.js
var scriptFS embed.FS

// Source returns the installable source of a script: the shared prelude
// followed by the script body.
func Source(name string) ([]byte, error) {
	prelude, err := scriptFS.ReadFile(preludeFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read prelude: %w", err)
	}
	body, err := scriptFS.ReadFile("scripts/" + name + ScriptExt)
	if err != nil {
		return nil, fmt.Errorf("unknown script %q: %w", name, err)
	}
	src := make([]byte, 0, len(prelude)+len(body)+1)
	src = append(src, prelude...)
	src = append(src, '\n')
	src = append(src, body...)
	return src, nil
}

// InstallScripts writes every script into dir, replacing existing files
func InstallScripts(dir string) error {
	if dir == "" {
		return fmt.Errorf("scripts directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create scripts directory: %w", err)
	}
	for _, name := range Scripts {
		src, err := Source(name)
		if err != nil {
			return err
		}
		path := filepath.Join(dir, name+ScriptExt)
		if err := os.WriteFile(path, src, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	return nil
}

// DefaultScriptsDir returns the per-user directory scripts are installed into
func DefaultScriptsDir() string {
	base, err := os.UserCacheDir()
	if err != nil || base == "" {
		base = os.TempDir()
	}
	return filepath.Join(base, "omnifocus-bridge", "scripts")
}
