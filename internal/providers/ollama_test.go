package providers

import (
	"encoding/json"
	"testing"
)

func TestBuildOllamaMessages_ToolCallsAndResults(t *testing.T) {
	req := &Request{
		System: "sys",
		Messages: []Message{
			{Role: "user", Content: "hi"},
			{
				Role: "assistant",
				ToolCalls: []ToolCall{
					{ID: "call-1", Name: "lookup", Input: json.RawMessage(`{"q":"test"}`)},
				},
			},
			{
				Role:       "tool",
				Content:    "ok",
				ToolCallID: "call-1",
			},
		},
	}

	msgs := buildOllamaMessages(req)
	if len(msgs) != 4 {
		t.Fatalf("messages = %d, want 4", len(msgs))
	}
	if msgs[0].Role != "system" || msgs[0].Content != "sys" {
		t.Fatalf("system message mismatch: %+v", msgs[0])
	}
	if msgs[2].Role != "assistant" || len(msgs[2].ToolCalls) != 1 {
		t.Fatalf("assistant tool calls missing: %+v", msgs[2])
	}
	if msgs[2].ToolCalls[0].Function.Name != "lookup" {
		t.Errorf("tool name = %q, want %q", msgs[2].ToolCalls[0].Function.Name, "lookup")
	}
	if string(msgs[2].ToolCalls[0].Function.Arguments) != `{"q":"test"}` {
		t.Errorf("tool args = %s, want %s", string(msgs[2].ToolCalls[0].Function.Arguments), `{"q":"test"}`)
	}
	if msgs[3].Role != "tool" || msgs[3].ToolName != "lookup" || msgs[3].Content != "ok" {
		t.Errorf("tool result message mismatch: %+v", msgs[3])
	}
}

func TestToolCallKey(t *testing.T) {
	cases := []struct {
		name string
		tc   ollamaToolCall
		want string
	}{
		{"has id", ollamaToolCall{ID: "abc"}, "abc"},
		{"name and args", ollamaToolCall{Function: ollamaToolFunction{Name: "f", Arguments: json.RawMessage(`{"a":1}`)}}, `f:{"a":1}`},
		{"empty", ollamaToolCall{}, ""},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			if got := toolCallKey(tt.tc); got != tt.want {
				t.Errorf("toolCallKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOllamaProvider_ValidateConfigAlwaysOK(t *testing.T) {
	p := NewOllamaProvider(OllamaConfig{})
	if err := p.ValidateConfig(); err != nil {
		t.Errorf("ValidateConfig() = %v, want nil", err)
	}
	if p.baseURL != "http://localhost:11434" {
		t.Errorf("default baseURL = %q", p.baseURL)
	}
}

func TestOllamaProvider_CompleteStreamingRequiresModel(t *testing.T) {
	p := NewOllamaProvider(OllamaConfig{})
	_, err := p.CompleteStreaming(nil, &Request{}) //nolint:staticcheck // nil ctx acceptable: fails before any ctx use
	if err == nil {
		t.Fatal("expected error for missing model")
	}
}
