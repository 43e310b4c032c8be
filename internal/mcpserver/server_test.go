package mcpserver

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/benvon/omnifocus-bridge/internal/omnifocus"
	"github.com/benvon/omnifocus-bridge/internal/omnifocus/fakestore"
	"github.com/benvon/omnifocus-bridge/internal/tools"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

var testZone = time.FixedZone("EST", -5*3600)

func newTestRegistry() (*tools.Registry, *fakestore.Store) {
	store := fakestore.New()
	store.AddProject(fakestore.Project{ID: "p-work", Name: "Work"})
	store.AddTag(fakestore.Tag{ID: "g-work", Name: "Work"})
	store.AddTask(fakestore.Task{ID: "t1", Name: "Write report", ProjectID: "p-work", Note: "draft"})
	svc := omnifocus.NewService(store,
		omnifocus.WithLocation(testZone),
		omnifocus.WithClock(func() time.Time { return time.Date(2026, 3, 10, 12, 0, 0, 0, testZone) }),
	)
	return tools.NewRegistry(svc, nil), store
}

func findTool(t *testing.T, defs []server.ServerTool, name string) server.ServerTool {
	t.Helper()
	for _, d := range defs {
		if d.Tool.Name == name {
			return d
		}
	}
	t.Fatalf("Tool %s not found", name)
	return server.ServerTool{}
}

func callTool(t *testing.T, st server.ServerTool, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Name = st.Tool.Name
	req.Params.Arguments = args
	res, err := st.Handler(context.Background(), req)
	if err != nil {
		t.Fatalf("Expected no protocol error, got %v", err)
	}
	return res
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) != 1 {
		t.Fatalf("Expected one content item, got %d", len(res.Content))
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("Expected text content, got %T", res.Content[0])
	}
	return text.Text
}

func TestServerTools_MirrorRegistry(t *testing.T) {
	t.Parallel()

	reg, _ := newTestRegistry()
	defs := ServerTools(reg, zap.NewNop())
	if len(defs) != len(reg.Tools()) {
		t.Fatalf("Expected %d tools, got %d", len(reg.Tools()), len(defs))
	}

	tags := findTool(t, defs, "add_task_tags")
	if len(tags.Tool.InputSchema.Required) != 1 || tags.Tool.InputSchema.Required[0] != "task_id" {
		t.Errorf("Expected required [task_id], got %v", tags.Tool.InputSchema.Required)
	}
	prop, ok := tags.Tool.InputSchema.Properties["tags"].(map[string]any)
	if !ok {
		t.Fatalf("Expected tags property, got %v", tags.Tool.InputSchema.Properties)
	}
	if prop["type"] != "array" {
		t.Errorf("Expected array type, got %v", prop["type"])
	}

	list := findTool(t, defs, "list_tasks")
	if list.Tool.Annotations.ReadOnlyHint == nil || !*list.Tool.Annotations.ReadOnlyHint {
		t.Error("Expected list_tasks to be read-only")
	}
	del := findTool(t, defs, "delete_task")
	if del.Tool.Annotations.DestructiveHint == nil || !*del.Tool.Annotations.DestructiveHint {
		t.Error("Expected delete_task to be destructive")
	}
}

func TestHandler_MatchesRegistryPayload(t *testing.T) {
	t.Parallel()

	reg, _ := newTestRegistry()
	defs := ServerTools(reg, zap.NewNop())

	res := callTool(t, findTool(t, defs, "get_task_note"), map[string]any{"task_id": "t1"})
	if res.IsError {
		t.Fatalf("Expected success, got %s", resultText(t, res))
	}

	want := reg.Call(context.Background(), "get_task_note", json.RawMessage(`{"task_id":"t1"}`))
	if got := resultText(t, res); got != string(want.Payload) {
		t.Errorf("Expected %s, got %s", want.Payload, got)
	}
}

func TestHandler_ErrorsAreToolResults(t *testing.T) {
	t.Parallel()

	reg, store := newTestRegistry()
	defs := ServerTools(reg, zap.NewNop())

	tests := []struct {
		name string
		tool string
		args map[string]any
		kind string
	}{
		{name: "missing id", tool: "complete_task", args: map[string]any{}, kind: "validation"},
		{name: "nil arguments", tool: "get_task", args: nil, kind: "validation"},
		{name: "unknown task", tool: "get_task", args: map[string]any{"task_id": "nope"}, kind: "not_found"},
		{name: "empty title", tool: "add_task", args: map[string]any{"title": "  "}, kind: "validation"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := callTool(t, findTool(t, defs, tt.tool), tt.args)
			if !res.IsError {
				t.Fatalf("Expected error result, got %s", resultText(t, res))
			}
			var body map[string]string
			if err := json.Unmarshal([]byte(resultText(t, res)), &body); err != nil {
				t.Fatalf("Failed to decode error payload: %v", err)
			}
			if body["kind"] != tt.kind {
				t.Errorf("Expected kind %s, got %s", tt.kind, body["kind"])
			}
			if body["error"] == "" {
				t.Error("Expected error message")
			}
		})
	}

	if store.TaskCount() != 1 {
		t.Errorf("Expected no task to be created, got %d tasks", store.TaskCount())
	}
}

func TestNew_ListsTools(t *testing.T) {
	t.Parallel()

	reg, _ := newTestRegistry()
	s := New(reg, "test", nil)

	resp := s.HandleMessage(context.Background(), json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	raw, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("Failed to encode response: %v", err)
	}

	var body struct {
		Result struct {
			Tools []struct {
				Name string `json:"name"`
			} `json:"tools"`
		} `json:"result"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("Failed to decode response %s: %v", raw, err)
	}
	if len(body.Result.Tools) != len(reg.Tools()) {
		t.Errorf("Expected %d tools, got %d", len(reg.Tools()), len(body.Result.Tools))
	}
}
