package main

import (
	"fmt"
	"os"

	"github.com/benvon/omnifocus-bridge/cmd/ofctl/commands"
	"github.com/benvon/omnifocus-bridge/internal/app"
	"github.com/benvon/omnifocus-bridge/internal/config"
	"github.com/benvon/omnifocus-bridge/internal/logger"
	"go.uber.org/zap"
)

var version = "dev"

func main() {
	load := func(verbose bool) (*app.Bridge, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		log := zap.NewNop()
		if verbose {
			if log, err = logger.NewDevelopmentLogger(true); err != nil {
				return nil, fmt.Errorf("init logger: %w", err)
			}
		}
		return app.New(cfg, log)
	}

	if err := commands.NewRootCmd(version, load).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
