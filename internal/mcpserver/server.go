// Package mcpserver exposes the tool registry over the Model Context Protocol.
package mcpserver

import (
	"context"
	"encoding/json"
	"time"

	"github.com/benvon/omnifocus-bridge/internal/tools"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

// ServerName is reported to MCP clients during initialization
const ServerName = "omnifocus-bridge"

const instructions = `Tools for reading and changing OmniFocus tasks, projects, tags and notes.
Dates are local to the OmniFocus host and use YYYY-MM-DDTHH:MM:SS without a zone.
Every result is a JSON object; an "error" key means the operation failed and "kind" says why
(validation, not_found, automation, internal). Tag operations report unknown tags in "notFound"
and still apply the rest.`

// New creates an MCP server with every registry tool
func New(reg *tools.Registry, version string, log *zap.Logger) *server.MCPServer {
	if log == nil {
		log = zap.NewNop()
	}
	s := server.NewMCPServer(
		ServerName,
		version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)
	s.AddTools(ServerTools(reg, log)...)
	return s
}

// ServerTools converts the registry into mcp-go tool definitions
func ServerTools(reg *tools.Registry, log *zap.Logger) []server.ServerTool {
	defs := reg.Tools()
	out := make([]server.ServerTool, 0, len(defs))
	for _, t := range defs {
		out = append(out, server.ServerTool{
			Tool:    mcp.NewTool(t.Name, toolOptions(t)...),
			Handler: handler(reg, t.Name, log),
		})
	}
	return out
}

func toolOptions(t tools.Tool) []mcp.ToolOption {
	opts := []mcp.ToolOption{
		mcp.WithDescription(t.Description),
		mcp.WithReadOnlyHintAnnotation(t.ReadOnly),
		mcp.WithDestructiveHintAnnotation(t.Destructive),
		mcp.WithIdempotentHintAnnotation(t.Idempotent),
		mcp.WithOpenWorldHintAnnotation(false),
	}
	for _, p := range t.Params {
		props := []mcp.PropertyOption{mcp.Description(p.Description)}
		if p.Required {
			props = append(props, mcp.Required())
		}
		if len(p.Enum) > 0 {
			props = append(props, mcp.Enum(p.Enum...))
		}
		switch p.Type {
		case tools.TypeBoolean:
			opts = append(opts, mcp.WithBoolean(p.Name, props...))
		case tools.TypeArray:
			props = append(props, mcp.Items(map[string]any{"type": "string"}))
			opts = append(opts, mcp.WithArray(p.Name, props...))
		default:
			opts = append(opts, mcp.WithString(p.Name, props...))
		}
	}
	return opts
}

// handler forwards the raw arguments to the registry. Failures are tool
// results with IsError set, never protocol errors.
func handler(reg *tools.Registry, name string, log *zap.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		raw, err := json.Marshal(req.GetArguments())
		if err != nil {
			return mcp.NewToolResultError(`{"error":"invalid arguments","kind":"validation"}`), nil
		}

		res := reg.Call(ctx, name, raw)
		log.Debug("mcp_tool_call",
			zap.String("tool", name),
			zap.Bool("is_error", res.IsError()),
			zap.Duration("duration", time.Since(start)),
		)
		if res.IsError() {
			return mcp.NewToolResultError(string(res.Payload)), nil
		}
		return mcp.NewToolResultText(string(res.Payload)), nil
	}
}
