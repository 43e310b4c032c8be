package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/benvon/omnifocus-bridge/internal/app"
	"github.com/benvon/omnifocus-bridge/internal/config"
	"github.com/benvon/omnifocus-bridge/internal/logger"
	"github.com/benvon/omnifocus-bridge/internal/mcpserver"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

var version = "dev"

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug logging to stderr")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	zapLogger, err := logger.NewStdioLogger(cfg.ServerDebugMode || *debugFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(zapLogger)
	}()

	bridge, err := app.New(cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed_to_initialize_bridge", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stdio := server.NewStdioServer(mcpserver.New(bridge.Registry, version, zapLogger))
	stdio.SetErrorLogger(zap.NewStdLog(zapLogger))

	zapLogger.Info("mcp_server_starting",
		zap.String("version", version),
		zap.Int("tools", len(bridge.Registry.Tools())),
	)
	if err := stdio.Listen(ctx, os.Stdin, os.Stdout); err != nil && ctx.Err() == nil {
		zapLogger.Error("mcp_server_stopped", zap.Error(err))
		_ = logger.Sync(zapLogger)
		os.Exit(1)
	}
	zapLogger.Info("mcp_server_exited")
}
