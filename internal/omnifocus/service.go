// Package omnifocus implements the bridge operations on top of an
// automation.Runner. The store is only reached through named scripts; every
// payload coming back is validated before it becomes a model.
package omnifocus

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/benvon/omnifocus-bridge/internal/automation"
	"github.com/benvon/omnifocus-bridge/internal/validation"
	"go.uber.org/zap"
)

// Service runs bridge operations against the store
type Service struct {
	runner automation.Runner
	loc    *time.Location
	now    func() time.Time
	logger *zap.Logger
}

// Option configures a Service
type Option func(*Service)

// WithLocation sets the store's local zone used for dates
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService creates a Service using runner for every store call
func NewService(runner automation.Runner, opts ...Option) *Service {
	s := &Service{
		runner: runner,
		loc:    time.Local,
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Location returns the store zone
func (s *Service) Location() *time.Location {
	return s.loc
}

func (s *Service) clock() time.Time {
	return s.now().In(s.loc)
}

// call runs script and decodes its validated output into out
func (s *Service) call(ctx context.Context, out any, script string, args ...string) error {
	raw, err := s.runner.Run(ctx, script, args...)
	if err != nil {
		mapped := fromAutomation(err)
		if KindOf(mapped) == KindAutomation {
			s.logger.Warn("store_call_failed", zap.String("script", script), zap.Error(mapped))
		}
		return mapped
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return invalidOutput(script, err)
	}
	if err := validation.Validate.Struct(out); err != nil {
		return invalidOutput(script, errors.New(validation.FormatError(err)))
	}
	return nil
}

// Ping checks that the application answers automation calls and returns its version
func (s *Service) Ping(ctx context.Context) (string, error) {
	var out pingOutput
	if err := s.call(ctx, &out, automation.ScriptPing); err != nil {
		return "", err
	}
	if !out.OK {
		return "", &Error{Kind: KindAutomation, Message: "automation ping did not report ok"}
	}
	return out.Version, nil
}

func requireID(field, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", validationError("%s is required", field)
	}
	if err := validation.ValidateStoreID(id); err != nil {
		return "", validationError("%s is malformed: %q", field, id)
	}
	return id, nil
}

func parseInputDate(field, value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	t, err := parseStoreDate(value, loc)
	if err != nil {
		return time.Time{}, validationError("invalid %s: %q (expected YYYY-MM-DD, YYYY-MM-DDTHH:MM or YYYY-MM-DDTHH:MM:SS)", field, value)
	}
	return t, nil
}
