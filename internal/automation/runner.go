package automation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	logpkg "github.com/benvon/omnifocus-bridge/internal/logger"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	// DefaultTimeout bounds a single invocation
	DefaultTimeout = 30 * time.Second
	// DefaultKillGrace is how long an interrupted process gets before it is killed
	DefaultKillGrace = 2 * time.Second
	// DefaultMaxOutputBytes caps captured stdout
	DefaultMaxOutputBytes = 32 << 20
	maxStderrBytes        = 64 << 10
	tracerName            = "github.com/benvon/omnifocus-bridge/internal/automation"
)

// Runner runs a named automation script with positional arguments and
// returns the JSON object it printed.
type Runner interface {
	Run(ctx context.Context, script string, args ...string) (json.RawMessage, error)
}

// RunnerFunc adapts a function to Runner
type RunnerFunc func(ctx context.Context, script string, args ...string) (json.RawMessage, error)

// Run implements Runner
func (f RunnerFunc) Run(ctx context.Context, script string, args ...string) (json.RawMessage, error) {
	return f(ctx, script, args...)
}

// OSAScriptRunner runs JXA scripts from a directory through osascript.
// Each call spawns one child process; nothing is shared between calls.
type OSAScriptRunner struct {
	binary     string
	scriptsDir string
	timeout    time.Duration
	killGrace  time.Duration
	maxOutput  int
	logger     *zap.Logger
	tracer     trace.Tracer
}

// Option configures an OSAScriptRunner
type Option func(*OSAScriptRunner)

// WithBinary overrides the interpreter binary (default "osascript")
func WithBinary(path string) Option {
	return func(r *OSAScriptRunner) {
		if path != "" {
			r.binary = path
		}
	}
}

// WithTimeout bounds each invocation
func WithTimeout(d time.Duration) Option {
	return func(r *OSAScriptRunner) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithKillGrace sets the wait between interrupt and kill after a timeout
func WithKillGrace(d time.Duration) Option {
	return func(r *OSAScriptRunner) {
		if d > 0 {
			r.killGrace = d
		}
	}
}

// WithMaxOutputBytes caps captured stdout
func WithMaxOutputBytes(n int) Option {
	return func(r *OSAScriptRunner) {
		if n > 0 {
			r.maxOutput = n
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(r *OSAScriptRunner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithTracerProvider sets where invocation spans are recorded. The global
// provider is used otherwise.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(r *OSAScriptRunner) {
		if tp != nil {
			r.tracer = tp.Tracer(tracerName)
		}
	}
}

// NewOSAScriptRunner creates a runner for the scripts installed in scriptsDir
func NewOSAScriptRunner(scriptsDir string, opts ...Option) *OSAScriptRunner {
	r := &OSAScriptRunner{
		binary:     "osascript",
		scriptsDir: scriptsDir,
		timeout:    DefaultTimeout,
		killGrace:  DefaultKillGrace,
		maxOutput:  DefaultMaxOutputBytes,
		logger:     zap.NewNop(),
		tracer:     otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Binary returns the interpreter the runner invokes
func (r *OSAScriptRunner) Binary() string {
	return r.binary
}

// Run executes script with args and returns its decoded JSON object
func (r *OSAScriptRunner) Run(ctx context.Context, script string, args ...string) (json.RawMessage, error) {
	invocationID := uuid.NewString()
	ctx, span := r.tracer.Start(ctx, "automation."+script, trace.WithAttributes(
		attribute.String("automation.script", script),
		attribute.String("automation.invocation_id", invocationID),
		attribute.Int("automation.arg_count", len(args)),
	))
	defer span.End()

	raw, err := r.run(ctx, invocationID, script, args)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return raw, nil
}

func (r *OSAScriptRunner) run(ctx context.Context, invocationID, script string, args []string) (json.RawMessage, error) {
	path := filepath.Join(r.scriptsDir, script+ScriptExt)

	runCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmdArgs := append([]string{"-l", "JavaScript", path}, args...)
	cmd := exec.CommandContext(runCtx, r.binary, cmdArgs...)
	// Interrupt first; WaitDelay escalates to a kill if the process lingers.
	cmd.Cancel = func() error {
		return cmd.Process.Signal(os.Interrupt)
	}
	cmd.WaitDelay = r.killGrace

	var stdoutBuf, stderrBuf bytes.Buffer
	stdout := &limitedWriter{w: &stdoutBuf, max: r.maxOutput}
	stderr := &limitedWriter{w: &stderrBuf, max: maxStderrBytes}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	start := time.Now()
	err := cmd.Run()
	duration := time.Since(start)

	fields := []zap.Field{
		zap.String("invocation_id", invocationID),
		zap.String("script", script),
		zap.Int("arg_count", len(args)),
		zap.Int64("duration_ms", duration.Milliseconds()),
	}

	if err != nil {
		aerr := r.classify(runCtx, script, err, stdoutBuf.String(), stderrBuf.String())
		r.logger.Warn("automation_failed", append(fields,
			zap.String("reason", string(aerr.Reason)),
			zap.Int("exit_code", aerr.ExitCode),
			zap.String("error", logpkg.SanitizeError(aerr)),
		)...)
		return nil, aerr
	}

	if stdout.truncated {
		r.logger.Warn("automation_output_truncated", append(fields, zap.Int("max_bytes", r.maxOutput))...)
		return nil, &Error{Script: script, Reason: ReasonInvalidOutput, Err: fmt.Errorf("output exceeded %d bytes", r.maxOutput)}
	}

	raw, err := DecodeOutput(script, stdoutBuf.Bytes())
	if err != nil {
		if aerr, ok := AsError(err); ok && aerr.Reason == ReasonInvalidOutput {
			// Raw text stays in the logs; callers only see the category.
			r.logger.Warn("automation_invalid_output", append(fields,
				zap.String("raw_output", logpkg.SanitizeDebugContent(stdoutBuf.String())),
			)...)
		} else {
			r.logger.Info("automation_script_error", append(fields, zap.String("error", logpkg.SanitizeError(err)))...)
		}
		return nil, err
	}

	r.logger.Debug("automation_invoked", append(fields, zap.Int("output_bytes", len(raw)))...)
	return raw, nil
}

func (r *OSAScriptRunner) classify(runCtx context.Context, script string, err error, stdout, stderr string) *Error {
	if ctxErr := runCtx.Err(); ctxErr != nil {
		reason := fmt.Errorf("%w after %s", ctxErr, r.timeout)
		if errors.Is(ctxErr, context.Canceled) {
			reason = ctxErr
		}
		return &Error{Script: script, Reason: ReasonTimeout, ExitCode: -1, Err: reason}
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		details := strings.TrimSpace(stderr)
		if details == "" {
			details = strings.TrimSpace(stdout)
		}
		return &Error{
			Script:   script,
			Reason:   ReasonExit,
			ExitCode: exitErr.ExitCode(),
			Stderr:   logpkg.SanitizeString(details, logpkg.MaxErrorMessageLength),
			Err:      err,
		}
	}

	return &Error{Script: script, Reason: ReasonStart, ExitCode: -1, Err: err}
}

// limitedWriter discards writes beyond max bytes
type limitedWriter struct {
	w         *bytes.Buffer
	max       int
	truncated bool
}

func (l *limitedWriter) Write(p []byte) (int, error) {
	remaining := l.max - l.w.Len()
	if remaining <= 0 {
		l.truncated = true
		return len(p), nil
	}
	if len(p) > remaining {
		l.w.Write(p[:remaining])
		l.truncated = true
		return len(p), nil
	}
	return l.w.Write(p)
}
