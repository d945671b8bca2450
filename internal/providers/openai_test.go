package providers

import (
	"testing"
)

func TestNewOpenAIProvider_EmptyKeyFailsValidation(t *testing.T) {
	p := NewOpenAIProvider(OpenAIConfig{})
	if err := p.ValidateConfig(); err == nil {
		t.Error("expected ValidateConfig() to fail without an API key")
	}
}

func TestNewOpenAIProvider_ConfiguredValidates(t *testing.T) {
	p := NewOpenAIProvider(OpenAIConfig{APIKey: "sk-test"})
	if err := p.ValidateConfig(); err != nil {
		t.Errorf("ValidateConfig() = %v, want nil", err)
	}
	if p.Name() != "openai" {
		t.Errorf("Name() = %q", p.Name())
	}
}

func TestOpenAIProvider_ConvertMessagesIncludesSystemPrompt(t *testing.T) {
	p := NewOpenAIProvider(OpenAIConfig{APIKey: "sk-test"})
	req := &Request{
		System: "be terse",
		Messages: []Message{
			{Role: "user", Content: "hi"},
		},
	}
	msgs := p.convertMessages(req)
	if len(msgs) != 2 {
		t.Fatalf("len(msgs) = %d, want 2", len(msgs))
	}
	if msgs[0].Role != "system" || msgs[0].Content != "be terse" {
		t.Errorf("system message = %+v", msgs[0])
	}
}

