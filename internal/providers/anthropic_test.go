package providers

import (
	"encoding/json"
	"testing"
)

func TestNewAnthropicProvider_EmptyKeyFailsValidation(t *testing.T) {
	p := NewAnthropicProvider(AnthropicConfig{})
	if err := p.ValidateConfig(); err == nil {
		t.Error("expected ValidateConfig() to fail without an API key")
	}
}

func TestNewAnthropicProvider_Defaults(t *testing.T) {
	p := NewAnthropicProvider(AnthropicConfig{APIKey: "sk-ant-test"})
	if err := p.ValidateConfig(); err != nil {
		t.Errorf("ValidateConfig() = %v, want nil", err)
	}
	if p.defaultModel != "claude-sonnet-4-20250514" {
		t.Errorf("defaultModel = %q", p.defaultModel)
	}
	if p.maxTokens != 4096 {
		t.Errorf("maxTokens = %d, want 4096", p.maxTokens)
	}
}

func TestAnthropicProvider_ConvertMessagesRoundTrip(t *testing.T) {
	p := NewAnthropicProvider(AnthropicConfig{APIKey: "sk-ant-test"})
	msgs, err := p.convertMessages([]Message{
		{Role: "user", Content: "hi"},
		{Role: "assistant", Content: "hello", ToolCalls: []ToolCall{
			{ID: "c1", Name: "lookup", Input: json.RawMessage(`{"q":"x"}`)},
		}},
		{Role: "tool", Content: "result", ToolCallID: "c1"},
	})
	if err != nil {
		t.Fatalf("convertMessages() error = %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("len(msgs) = %d, want 3", len(msgs))
	}
}

func TestAnthropicProvider_ConvertMessagesRejectsUnknownRole(t *testing.T) {
	p := NewAnthropicProvider(AnthropicConfig{APIKey: "sk-ant-test"})
	if _, err := p.convertMessages([]Message{{Role: "system", Content: "x"}}); err == nil {
		t.Error("expected error for unsupported role")
	}
}

