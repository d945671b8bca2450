package providers

import (
	"context"
	"fmt"
	"strings"
)

// EchoProvider is a deterministic, credential-free provider used as
// Registry's fallback when no real backend is configured. Grounded on
// the teacher's tape-replay pattern in internal/agent/tape: instead of
// replaying a recorded session, it synthesizes a reply from the last
// user message so the rest of the session engine (approval gating,
// rollout journaling, event ordering) can be exercised end-to-end
// without network access.
type EchoProvider struct{}

// NewEchoProvider returns the fallback provider.
func NewEchoProvider() *EchoProvider { return &EchoProvider{} }

func (p *EchoProvider) Name() string        { return "echo" }
func (p *EchoProvider) DisplayName() string { return "Echo (offline fallback)" }
func (p *EchoProvider) SupportsStreaming() bool { return true }

func (p *EchoProvider) AvailableModels() []Model {
	return []Model{{ID: "echo-1", Name: "Echo", ContextWindow: 1 << 20}}
}

// ValidateConfig always succeeds: Echo needs no credentials, which is
// exactly why Registry.Get falls back to it.
func (p *EchoProvider) ValidateConfig() error { return nil }

// CompleteStreaming replies with a fixed transform of the last user
// message, streamed one word per Token event so callers exercising
// incremental delivery (e.g. AgentMessageDelta fan-out) see more than
// one chunk.
func (p *EchoProvider) CompleteStreaming(ctx context.Context, req *Request) (<-chan StreamEvent, error) {
	reply := p.reply(req)
	words := strings.Fields(reply)

	out := make(chan StreamEvent)
	go func() {
		defer close(out)
		for i, w := range words {
			text := w
			if i < len(words)-1 {
				text += " "
			}
			select {
			case <-ctx.Done():
				out <- StreamEvent{Kind: StreamError, Err: ctx.Err()}
				return
			case out <- StreamEvent{Kind: StreamToken, Text: text, Index: i}:
			}
		}
		out <- StreamEvent{Kind: StreamFinished, Full: reply}
	}()
	return out, nil
}

func (p *EchoProvider) reply(req *Request) string {
	var last string
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == "user" {
			last = req.Messages[i].Content
			break
		}
	}
	if last == "" {
		return "echo: (no input)"
	}
	return fmt.Sprintf("echo: %s", last)
}
