// Package app wires the automation runner, store service and operation
// registry that every front shares.
package app

import (
	"fmt"

	"github.com/benvon/omnifocus-bridge/internal/automation"
	"github.com/benvon/omnifocus-bridge/internal/config"
	"github.com/benvon/omnifocus-bridge/internal/omnifocus"
	"github.com/benvon/omnifocus-bridge/internal/tools"
	"go.uber.org/zap"
)

// ServiceName identifies the bridge in logs, traces and the OpenAPI document
const ServiceName = "omnifocus-bridge"

// Bridge bundles the shared components
type Bridge struct {
	ScriptsDir string
	Runner     *automation.OSAScriptRunner
	Service    *omnifocus.Service
	Registry   *tools.Registry
}

// New installs the embedded scripts and builds the shared components
func New(cfg *config.Config, log *zap.Logger) (*Bridge, error) {
	if log == nil {
		log = zap.NewNop()
	}

	dir := cfg.ScriptsDir
	if dir == "" {
		dir = automation.DefaultScriptsDir()
	}
	if err := automation.InstallScripts(dir); err != nil {
		return nil, fmt.Errorf("install automation scripts: %w", err)
	}

	runner := automation.NewOSAScriptRunner(dir,
		automation.WithBinary(cfg.OSAScriptPath),
		automation.WithTimeout(cfg.AutomationTimeout),
		automation.WithKillGrace(cfg.AutomationKillGrace),
		automation.WithLogger(log),
	)
	svc := omnifocus.NewService(runner,
		omnifocus.WithLocation(cfg.Location()),
		omnifocus.WithLogger(log),
	)

	log.Info("bridge_initialized",
		zap.String("scripts_dir", dir),
		zap.String("osascript", runner.Binary()),
		zap.Duration("automation_timeout", cfg.AutomationTimeout),
		zap.String("store_timezone", svc.Location().String()),
	)

	return &Bridge{
		ScriptsDir: dir,
		Runner:     runner,
		Service:    svc,
		Registry:   tools.NewRegistry(svc, log),
	}, nil
}
