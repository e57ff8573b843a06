package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestServer(t *testing.T, reply string, status int) (*httptest.Server, *chatRequest) {
	t.Helper()
	var captured chatRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("authorization header: got %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error": "nope"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": reply}},
			},
		})
	}))
	t.Cleanup(server.Close)
	return server, &captured
}

func TestClient_Generate(t *testing.T) {
	server, captured := newTestServer(t, "  Paris.\n", http.StatusOK)

	client, err := NewClient("test-key", Options{Endpoint: server.URL, Model: "test-model", MaxTokens: 42})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	out, err := client.Generate(context.Background(), "capital of France?")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out != "Paris." {
		t.Errorf("response: got %q", out)
	}
	if captured.Model != "test-model" {
		t.Errorf("model: got %q", captured.Model)
	}
	if captured.MaxTokens != 42 {
		t.Errorf("max tokens: got %d", captured.MaxTokens)
	}
	if len(captured.Messages) != 1 || captured.Messages[0].Content != "capital of France?" {
		t.Errorf("messages: got %#v", captured.Messages)
	}
}

func TestClient_GenerateWithInput_WrapsPrompt(t *testing.T) {
	server, captured := newTestServer(t, "COMMAND: ls", http.StatusOK)

	client, err := NewClient("test-key", Options{Endpoint: server.URL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	out, err := client.GenerateWithInput(context.Background(), "what now?", "some data\n")
	if err != nil {
		t.Fatalf("GenerateWithInput: %v", err)
	}
	if out != "COMMAND: ls" {
		t.Errorf("response: got %q", out)
	}
	sent := captured.Messages[0].Content
	if !strings.Contains(sent, "some data") || !strings.Contains(sent, "what now?") {
		t.Errorf("wrapped prompt missing pieces:\n%s", sent)
	}
	if !strings.Contains(sent, "COMMAND:") {
		t.Errorf("wrapped prompt does not describe the marker:\n%s", sent)
	}
}

func TestClient_APIError(t *testing.T) {
	server, _ := newTestServer(t, "", http.StatusUnauthorized)

	client, err := NewClient("test-key", Options{Endpoint: server.URL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	if _, err := client.Generate(context.Background(), "hi"); err == nil {
		t.Fatal("expected error on non-200 response")
	}
}

func TestNewClient_EmptyKey(t *testing.T) {
	if _, err := NewClient("  ", Options{}); err == nil {
		t.Fatal("expected error for empty key")
	}
}

func TestSuggestion(t *testing.T) {
	tests := []struct {
		output   string
		expected string
		ok       bool
	}{
		{"COMMAND: git status", "git status", true},
		{"COMMAND: ls -la", "ls -la", true},
		{"COMMAND: ", "", false},
		{"plain answer", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := Suggestion(tt.output)
		if ok != tt.ok || got != tt.expected {
			t.Errorf("Suggestion(%q): got %q (%v), expected %q (%v)", tt.output, got, ok, tt.expected, tt.ok)
		}
	}
}
