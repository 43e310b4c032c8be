// Package tools holds the operation table shared by the MCP and HTTP fronts.
// Both fronts hand raw JSON arguments to Registry.Call and write the
// returned payload bytes unchanged.
package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/benvon/omnifocus-bridge/internal/logger"
	"github.com/benvon/omnifocus-bridge/internal/models"
	"github.com/benvon/omnifocus-bridge/internal/omnifocus"
	"github.com/benvon/omnifocus-bridge/internal/validation"
	"go.uber.org/zap"
)

// Operations is the capability surface behind the tools
type Operations interface {
	ListTasks(ctx context.Context, filter string) (models.TaskList, error)
	SummarizeTasks(ctx context.Context, filter string) (models.Summary, error)
	GetTask(ctx context.Context, taskID string) (models.Task, error)
	AddTask(ctx context.Context, in omnifocus.AddTaskInput) (models.CreatedTask, error)
	GetProjects(ctx context.Context) (models.ProjectList, error)
	CompleteTask(ctx context.Context, taskID string) (models.TaskAction, error)
	RenameTask(ctx context.Context, taskID, name string) (models.TaskAction, error)
	MoveTask(ctx context.Context, taskID, target string) (models.TaskAction, error)
	DeleteTask(ctx context.Context, taskID string) (models.TaskAction, error)
	FlagTask(ctx context.Context, taskID string, flagged bool) (models.TaskAction, error)
	DeferTask(ctx context.Context, taskID, date string) (models.TaskAction, error)
	SetDueDate(ctx context.Context, taskID, date string) (models.TaskAction, error)
	SetRepetition(ctx context.Context, taskID, rule, method string) (models.TaskAction, error)
	DropProject(ctx context.Context, projectID string) (models.ProjectChange, error)
	PauseProject(ctx context.Context, projectID string) (models.ProjectChange, error)
	ResumeProject(ctx context.Context, projectID string) (models.ProjectChange, error)
	ListTags(ctx context.Context) (models.TagList, error)
	GetTaskTags(ctx context.Context, taskID string) (models.TaskTags, error)
	AddTaskTags(ctx context.Context, taskID string, names []string) (models.TagChange, error)
	RemoveTaskTags(ctx context.Context, taskID string, names []string) (models.TagChange, error)
	SetTaskTags(ctx context.Context, taskID string, names []string) (models.TagChange, error)
	GetTaskNote(ctx context.Context, taskID string) (models.TaskNote, error)
	SetTaskNote(ctx context.Context, taskID, note string) (models.TaskNote, error)
	AppendTaskNote(ctx context.Context, taskID, text string) (models.TaskNote, error)
	ClearTaskNote(ctx context.Context, taskID string) (models.TaskNote, error)
}

type invoker func(ctx context.Context, ops Operations, raw json.RawMessage) (any, error)

// Tool is one registered operation
type Tool struct {
	Name        string
	Description string
	Params      []Param
	ReadOnly    bool
	Destructive bool
	Idempotent  bool
	invoke      invoker
}

// Result is the outcome of a call. Payload is the JSON body both fronts
// emit; Kind is empty on success.
type Result struct {
	Payload []byte
	Kind    omnifocus.Kind
}

// IsError reports whether the payload is an error payload
func (r Result) IsError() bool {
	return r.Kind != ""
}

// Registry dispatches tool calls by name
type Registry struct {
	ops    Operations
	tools  []Tool
	byName map[string]int
	logger *zap.Logger
}

// NewRegistry creates the registry of every bridge operation
func NewRegistry(ops Operations, log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Registry{ops: ops, tools: definitions(), byName: make(map[string]int), logger: log}
	for i, t := range r.tools {
		r.byName[t.Name] = i
	}
	return r
}

// Tools returns the registered tools in catalog order
func (r *Registry) Tools() []Tool {
	out := make([]Tool, len(r.tools))
	copy(out, r.tools)
	return out
}

// Lookup returns a tool by name
func (r *Registry) Lookup(name string) (Tool, bool) {
	i, ok := r.byName[name]
	if !ok {
		return Tool{}, false
	}
	return r.tools[i], true
}

// Call decodes raw arguments, runs the named tool and encodes its payload.
// Failures, including panics inside the operation, come back as error payloads.
func (r *Registry) Call(ctx context.Context, name string, raw json.RawMessage) (result Result) {
	tool, ok := r.Lookup(name)
	if !ok {
		return errorResult(omnifocus.NewValidationError(fmt.Sprintf("unknown tool: %s", logger.SanitizeString(name, 100))))
	}

	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("tool_call_panic",
				zap.String("tool", name),
				zap.Any("panic", rec),
				zap.Stack("stacktrace"),
			)
			result = errorResult(&omnifocus.Error{Kind: omnifocus.KindInternal, Message: "internal error"})
		}
	}()

	payload, err := tool.invoke(ctx, r.ops, raw)
	duration := time.Since(start)
	if err != nil {
		kind := omnifocus.KindOf(err)
		fields := []zap.Field{
			zap.String("tool", name),
			zap.String("kind", string(kind)),
			zap.Duration("duration", duration),
			zap.String("error", logger.SanitizeError(err)),
		}
		if kind == omnifocus.KindAutomation || kind == omnifocus.KindInternal {
			r.logger.Warn("tool_call_failed", fields...)
		} else {
			r.logger.Info("tool_call_rejected", fields...)
		}
		return errorResult(err)
	}

	body, err := encode(payload)
	if err != nil {
		r.logger.Error("tool_payload_encode_failed", zap.String("tool", name), zap.Error(err))
		return errorResult(&omnifocus.Error{Kind: omnifocus.KindInternal, Message: "internal error", Err: err})
	}
	r.logger.Debug("tool_call", zap.String("tool", name), zap.Duration("duration", duration))
	return Result{Payload: body}
}

func errorResult(err error) Result {
	kind := omnifocus.KindOf(err)
	message := err.Error()
	if kind == omnifocus.KindInternal {
		message = "internal error"
	}
	body, encErr := encode(models.ErrorPayload{Error: message, Kind: string(kind)})
	if encErr != nil {
		body = []byte(`{"error":"internal error","kind":"internal"}`)
	}
	return Result{Payload: body, Kind: kind}
}

func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// bind builds an invoker that decodes and validates a request of type T
func bind[T any](fn func(ctx context.Context, ops Operations, req T) (any, error)) invoker {
	return func(ctx context.Context, ops Operations, raw json.RawMessage) (any, error) {
		var req T
		if err := decodeArgs(raw, &req); err != nil {
			return nil, omnifocus.NewValidationError(err.Error())
		}
		if err := validation.Validate.Struct(req); err != nil {
			return nil, omnifocus.NewValidationError(validation.FormatError(err))
		}
		return fn(ctx, ops, req)
	}
}
