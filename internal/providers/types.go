// Package providers implements the conversation runtime's abstraction
// over chat-completion backends: OpenAI, Anthropic, and Ollama, plus a
// deterministic Echo fallback for when no backend is configured.
package providers

import (
	"context"
	"encoding/json"

	"github.com/corebridge/agentcore/internal/toolconv"
)

// Model describes a model a Provider can serve.
type Model struct {
	ID             string
	Name           string
	ContextWindow  int
	SupportsTools  bool
	SupportsVision bool
}

// Tool is a callable function definition offered to the model. It is a
// type alias for toolconv.ToolSpec so both packages share one
// definition — internal/providers produces Tools, internal/toolconv
// converts them to each backend's wire format — without an import
// cycle (toolconv does not depend on providers).
type Tool = toolconv.ToolSpec

// Message is one turn of conversation history sent to a provider. Role
// follows model.Role's string vocabulary (system/user/assistant/tool).
type Message struct {
	Role       string
	Content    string
	ToolCalls  []ToolCall
	ToolCallID string // set on Role=="tool" messages carrying a result
}

// ToolCall is a model-issued function invocation, assembled
// incrementally across streaming deltas the same way nexus's
// providers.go accumulates them by index before emitting.
type ToolCall struct {
	ID    string
	Name  string
	Input json.RawMessage
}

// Request is a single completion request against a Provider.
type Request struct {
	Model                string
	System               string
	Messages             []Message
	Tools                []Tool
	MaxTokens            int
	EnableThinking       bool
	ThinkingBudgetTokens int
}

// Usage reports token accounting for a finished completion.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// StreamEventKind discriminates the variant held by a StreamEvent.
type StreamEventKind string

const (
	StreamToken     StreamEventKind = "token"
	StreamSystem    StreamEventKind = "system"
	StreamToolCall  StreamEventKind = "tool_call"
	StreamFinished  StreamEventKind = "finished"
	StreamError     StreamEventKind = "error"
	StreamHeartbeat StreamEventKind = "heartbeat"
)

// StreamEvent is one unit of a Provider's completion stream. Exactly
// one payload is meaningful per Kind, following the same flat
// Kind-tagged convention as pkg/model's Event type.
type StreamEvent struct {
	Kind StreamEventKind

	// Token payload.
	Text  string
	Index int

	// System payload (non-content status, e.g. thinking-block markers).
	System string

	// ToolCall payload: a fully assembled call (input complete).
	ToolCall *ToolCall

	// Finished payload.
	Full  string
	Usage Usage

	// Error payload.
	Err error
}

// Provider abstracts a single chat-completion backend.
type Provider interface {
	// Name is the stable lowercase identifier used for routing,
	// logging, and rollout persistence (e.g. "openai").
	Name() string
	// DisplayName is a human-readable label for UIs and logs.
	DisplayName() string
	// SupportsStreaming reports whether CompleteStreaming emits
	// incremental Token events or only a single Finished event.
	SupportsStreaming() bool
	// AvailableModels lists the models this provider can serve.
	AvailableModels() []Model
	// CompleteStreaming issues a completion request and streams
	// StreamEvents until Finished or Error, then closes the channel.
	CompleteStreaming(ctx context.Context, req *Request) (<-chan StreamEvent, error)
	// ValidateConfig reports whether the provider is usable (e.g. has
	// credentials configured); used by Registry to decide fallback.
	ValidateConfig() error
}
