package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benvon/omnifocus-bridge/internal/app"
	"github.com/benvon/omnifocus-bridge/internal/config"
	"github.com/benvon/omnifocus-bridge/internal/handlers"
	"github.com/benvon/omnifocus-bridge/internal/logger"
	"github.com/benvon/omnifocus-bridge/internal/middleware"
	"github.com/benvon/omnifocus-bridge/internal/telemetry"
	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/zap"
)

var version = "dev"

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug logging, including raw script output on decode failures")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.ServerDebugMode || *debugFlag

	zapLogger, err := logger.NewProductionLogger(debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = logger.Sync(zapLogger)
	}()

	zapLogger.Info("starting_server",
		zap.String("version", version),
		zap.Bool("debug_mode", debugMode),
		zap.String("addr", cfg.Addr()),
		zap.Strings("allowed_origins", cfg.Origins()),
		zap.Bool("auth_enabled", cfg.APIToken != ""),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	if cfg.OTELEnabled {
		if cfg.OTELEndpoint == "" {
			zapLogger.Warn("otel_enabled_but_endpoint_not_configured")
		} else {
			tp, err := telemetry.InitTracer(context.Background(), app.ServiceName, version, cfg.OTELEndpoint)
			if err != nil {
				zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
			} else {
				zapLogger.Info("otel_tracer_initialized", zap.String("endpoint", cfg.OTELEndpoint))
				defer func() {
					ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					if err := telemetry.Shutdown(ctx, tp); err != nil {
						zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
					}
				}()
			}
		}
	}

	bridge, err := app.New(cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed_to_initialize_bridge", zap.Error(err))
	}

	rateLimiter, err := middleware.NewRateLimiter(cfg.RateLimit, cfg.RedisURL, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed_to_initialize_rate_limiter", zap.Error(err))
	}
	defer func() {
		if err := rateLimiter.Close(); err != nil {
			zapLogger.Warn("failed_to_close_redis_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("rate_limiter_initialized",
		zap.String("rate", cfg.RateLimit),
		zap.Bool("shared_store", rateLimiter.Shared()),
	)

	r := mux.NewRouter()
	if cfg.OTELEnabled && cfg.OTELEndpoint != "" {
		r.Use(otelmux.Middleware(app.ServiceName))
	}
	r.Use(middleware.RequestID)
	r.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize))
	r.Use(middleware.ContentType)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.ErrorHandler(zapLogger))
	r.Use(middleware.Audit(zapLogger))
	r.Use(middleware.Logging(zapLogger))

	handlers.NewHealthChecker(bridge.Service).RegisterRoutes(r)
	handlers.NewCatalogHandler(bridge.Registry.Tools(), "OmniFocus Bridge", version).RegisterRoutes(r)

	opsRouter := r.NewRoute().Subrouter()
	opsRouter.Use(middleware.BearerAuth(cfg.APIToken))
	opsRouter.Use(rateLimiter.Middleware())
	handlers.NewOperationsHandler(bridge.Registry, zapLogger).RegisterRoutes(opsRouter)

	// Preflights are answered by CORS outside the router
	var handler http.Handler = r
	handler = middleware.CORS(cfg.Origins())(handler)
	handler = middleware.SecurityHeaders(cfg.EnableHSTS)(handler)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		zapLogger.Info("server_starting", zap.String("addr", cfg.Addr()))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("server_failed_to_start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("server_shutting_down")

	// in-flight automation calls finish or hit their own timeout
	ctx, cancel := context.WithTimeout(context.Background(), cfg.AutomationTimeout+cfg.AutomationKillGrace+time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("server_forced_to_shutdown", zap.Error(err))
	}

	zapLogger.Info("server_exited")
}
