package handlers

import (
	"net/http"

	"github.com/benvon/omnifocus-bridge/internal/tools"
	"github.com/gorilla/mux"
	"gopkg.in/yaml.v3"
)

// ToolInfo is the catalog entry for one operation
type ToolInfo struct {
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description" yaml:"description"`
	ReadOnly    bool           `json:"readOnly" yaml:"readOnly"`
	Destructive bool           `json:"destructive" yaml:"destructive"`
	Idempotent  bool           `json:"idempotent" yaml:"idempotent"`
	InputSchema map[string]any `json:"inputSchema" yaml:"inputSchema"`
}

// CatalogHandler serves the operation catalog and an OpenAPI document built from it
type CatalogHandler struct {
	tools   []tools.Tool
	title   string
	version string
}

// NewCatalogHandler creates a catalog handler over the given tools
func NewCatalogHandler(defs []tools.Tool, title, version string) *CatalogHandler {
	return &CatalogHandler{tools: defs, title: title, version: version}
}

// RegisterRoutes registers catalog routes
func (h *CatalogHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/tools", h.ListTools).Methods("GET")
	r.HandleFunc("/openapi.json", h.ServeJSON).Methods("GET")
	r.HandleFunc("/openapi.yaml", h.ServeYAML).Methods("GET")
}

// ListTools returns every operation with its input schema
func (h *CatalogHandler) ListTools(w http.ResponseWriter, r *http.Request) {
	out := make([]ToolInfo, 0, len(h.tools))
	for _, t := range h.tools {
		out = append(out, ToolInfo{
			Name:        t.Name,
			Description: t.Description,
			ReadOnly:    t.ReadOnly,
			Destructive: t.Destructive,
			Idempotent:  t.Idempotent,
			InputSchema: t.InputSchema(),
		})
	}
	respondJSON(w, http.StatusOK, map[string]any{"tools": out})
}

// ServeJSON serves the OpenAPI document in JSON format
func (h *CatalogHandler) ServeJSON(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.document())
}

// ServeYAML serves the OpenAPI document in YAML format
func (h *CatalogHandler) ServeYAML(w http.ResponseWriter, r *http.Request) {
	data, err := yaml.Marshal(h.document())
	if err != nil {
		http.Error(w, "Failed to encode OpenAPI document", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/x-yaml")
	if _, err := w.Write(data); err != nil {
		http.Error(w, "Failed to write response", http.StatusInternalServerError)
		return
	}
}

func (h *CatalogHandler) document() map[string]any {
	paths := map[string]any{
		"/health": map[string]any{
			"get": map[string]any{
				"operationId": "health",
				"summary":     "Liveness check",
				"responses": map[string]any{
					"200": jsonResponse("Server is running", map[string]any{"type": "object"}),
				},
			},
		},
	}

	for _, t := range h.tools {
		paths["/mcp/"+t.Name] = map[string]any{
			"post": map[string]any{
				"operationId": t.Name,
				"summary":     t.Description,
				"requestBody": map[string]any{
					"required": false,
					"content": map[string]any{
						"application/json": map[string]any{"schema": t.InputSchema()},
					},
				},
				"responses": map[string]any{
					"200": jsonResponse("Operation result, or an error object for domain failures", map[string]any{"type": "object"}),
					"500": jsonResponse("Unexpected failure", map[string]any{"$ref": "#/components/schemas/Error"}),
				},
			},
		}
	}

	return map[string]any{
		"openapi": "3.0.3",
		"info": map[string]any{
			"title":   h.title,
			"version": h.version,
		},
		"paths": paths,
		"components": map[string]any{
			"schemas": map[string]any{
				"Error": map[string]any{
					"type":     "object",
					"required": []string{"error"},
					"properties": map[string]any{
						"error": map[string]any{"type": "string"},
						"kind": map[string]any{
							"type": "string",
							"enum": []string{"validation", "not_found", "automation", "internal"},
						},
					},
				},
			},
		},
	}
}

func jsonResponse(description string, schema map[string]any) map[string]any {
	return map[string]any{
		"description": description,
		"content": map[string]any{
			"application/json": map[string]any{"schema": schema},
		},
	}
}
