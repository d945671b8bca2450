package providers

import (
	"context"
	"errors"
	"testing"
)

func TestRegistry_GetFallsBackToEcho(t *testing.T) {
	r := NewRegistry()
	r.Register(NewEchoProvider())

	p, err := r.Get("openai") // unregistered, should fall back
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if p.Name() != "echo" {
		t.Errorf("Get() = %q, want fallback to echo", p.Name())
	}
}

func TestRegistry_GetPrefersConfiguredProvider(t *testing.T) {
	r := NewRegistry()
	r.Register(NewEchoProvider())
	r.Register(NewAnthropicProvider(AnthropicConfig{APIKey: "sk-ant-test"}))

	p, err := r.Get("anthropic")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if p.Name() != "anthropic" {
		t.Errorf("Get() = %q, want anthropic", p.Name())
	}
}

func TestRegistry_GetErrorsWithoutFallback(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Get("openai"); err == nil {
		t.Fatal("expected error when no provider and no echo fallback registered")
	}
}

func TestStreamAssembler_FeedAccumulates(t *testing.T) {
	asm := NewStreamAssembler()
	asm.Feed(StreamEvent{Kind: StreamToken, Text: "hello "})
	asm.Feed(StreamEvent{Kind: StreamToken, Text: "world"})
	asm.Feed(StreamEvent{Kind: StreamToolCall, ToolCall: &ToolCall{ID: "c1", Name: "f"}})
	asm.Feed(StreamEvent{Kind: StreamFinished, Usage: Usage{TotalTokens: 42}})

	if asm.Text() != "hello world" {
		t.Errorf("Text() = %q", asm.Text())
	}
	if len(asm.ToolCalls()) != 1 || asm.ToolCalls()[0].ID != "c1" {
		t.Errorf("ToolCalls() = %+v", asm.ToolCalls())
	}
	if asm.Usage().TotalTokens != 42 {
		t.Errorf("Usage().TotalTokens = %d, want 42", asm.Usage().TotalTokens)
	}
	if !asm.Finished() {
		t.Error("expected Finished() true")
	}
}

func TestDrain_PropagatesError(t *testing.T) {
	ch := make(chan StreamEvent, 1)
	wantErr := errors.New("boom")
	ch <- StreamEvent{Kind: StreamError, Err: wantErr}
	close(ch)

	_, err := Drain(context.Background(), ch)
	if !errors.Is(err, wantErr) {
		t.Errorf("Drain() error = %v, want %v", err, wantErr)
	}
}

func TestDrain_RespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ch := make(chan StreamEvent)
	_, err := Drain(ctx, ch)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Drain() error = %v, want context.Canceled", err)
	}
}
