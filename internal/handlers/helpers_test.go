package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRespondJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		data   any
		want   string
	}{
		{name: "simple object", status: http.StatusOK, data: map[string]string{"status": "ok"}, want: `{"status":"ok"}`},
		{name: "array data", status: http.StatusOK, data: []string{"a", "b"}, want: `["a","b"]`},
		{name: "service unavailable", status: http.StatusServiceUnavailable, data: map[string]int{"n": 1}, want: `{"n":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			respondJSON(w, tt.status, tt.data)

			if w.Code != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, w.Code)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Expected Content-Type 'application/json', got '%s'", ct)
			}
			if got := strings.TrimSpace(w.Body.String()); got != tt.want {
				t.Errorf("Expected body %s, got %s", tt.want, got)
			}
		})
	}
}

func TestRespondPayload_WritesBytesUnchanged(t *testing.T) {
	t.Parallel()

	payload := []byte(`{"id":"t1","note":"<b>"}`)
	w := httptest.NewRecorder()
	respondPayload(w, http.StatusOK, payload)

	if w.Body.String() != string(payload) {
		t.Errorf("Expected %s, got %s", payload, w.Body.String())
	}
}

func TestRespondJSONError(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	respondJSONError(w, http.StatusBadRequest, "validation", "bad\x00 input")

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if body["kind"] != "validation" {
		t.Errorf("Expected kind 'validation', got '%s'", body["kind"])
	}
	if strings.Contains(body["error"], "\x00") {
		t.Errorf("Expected control characters to be stripped, got %q", body["error"])
	}
}
