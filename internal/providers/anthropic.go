package providers

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/ssestream"

	"github.com/corebridge/agentcore/internal/retry"
	"github.com/corebridge/agentcore/internal/toolconv"
)

// AnthropicProvider implements Provider against Anthropic's Messages
// API using the official SDK, grounded on
// internal/agent/providers/anthropic.go. The teacher's beta
// computer-use path (createBetaStream/processBetaStream) is not
// carried: SPEC_FULL.md names no computer-use tool, so there is no
// caller that would ever select it.
type AnthropicProvider struct {
	client       anthropic.Client
	configured   bool
	defaultModel string
	maxTokens    int
	retryConfig  retry.Config
}

// AnthropicConfig configures an AnthropicProvider.
type AnthropicConfig struct {
	APIKey       string
	BaseURL      string
	DefaultModel string
	MaxTokens    int
	Retry        retry.Config
}

// NewAnthropicProvider builds a provider. An empty APIKey yields a
// provider whose ValidateConfig fails, mirroring OpenAIProvider's
// fallback-friendly construction.
func NewAnthropicProvider(cfg AnthropicConfig) *AnthropicProvider {
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = "claude-sonnet-4-20250514"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 4096
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = retry.Exponential(3, 0, 0)
	}

	p := &AnthropicProvider{defaultModel: cfg.DefaultModel, maxTokens: cfg.MaxTokens, retryConfig: cfg.Retry}
	if cfg.APIKey == "" {
		return p
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	p.client = anthropic.NewClient(opts...)
	p.configured = true
	return p
}

func (p *AnthropicProvider) Name() string           { return "anthropic" }
func (p *AnthropicProvider) DisplayName() string    { return "Anthropic" }
func (p *AnthropicProvider) SupportsStreaming() bool { return true }

func (p *AnthropicProvider) ValidateConfig() error {
	if !p.configured {
		return errors.New("anthropic: API key not configured")
	}
	return nil
}

func (p *AnthropicProvider) AvailableModels() []Model {
	return []Model{
		{ID: "claude-opus-4-20250514", Name: "Claude Opus 4", ContextWindow: 200000, SupportsTools: true, SupportsVision: true},
		{ID: "claude-sonnet-4-20250514", Name: "Claude Sonnet 4", ContextWindow: 200000, SupportsTools: true, SupportsVision: true},
		{ID: "claude-haiku-4-20250514", Name: "Claude Haiku 4", ContextWindow: 200000, SupportsTools: true, SupportsVision: true},
	}
}

// CompleteStreaming issues a Messages.NewStreaming request, retrying
// stream establishment the way the teacher's Complete() retries
// createStream with exponential backoff before handing the SSE stream
// to processStream.
func (p *AnthropicProvider) CompleteStreaming(ctx context.Context, req *Request) (<-chan StreamEvent, error) {
	if err := p.ValidateConfig(); err != nil {
		return nil, err
	}

	model := firstNonEmpty(req.Model, p.defaultModel)
	messages, err := p.convertMessages(req.Messages)
	if err != nil {
		return nil, NewProviderError("anthropic", model, err)
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		Messages:  messages,
		MaxTokens: int64(maxTokensOrDefault(req.MaxTokens, p.maxTokens)),
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Type: "text", Text: req.System}}
	}
	if len(req.Tools) > 0 {
		tools, err := toolconv.ToAnthropicTools(req.Tools)
		if err != nil {
			return nil, NewProviderError("anthropic", model, err)
		}
		params.Tools = tools
	}
	if req.EnableThinking {
		budget := int64(req.ThinkingBudgetTokens)
		if budget < 1024 {
			budget = 10000
		}
		params.Thinking = anthropic.ThinkingConfigParamOfEnabled(budget)
	}

	// NewStreaming defers the HTTP round trip to the SSE reader's first
	// Next() call. p.retryConfig governs that first call only: once any
	// event has been read successfully the stream is committed and a
	// failure mid-stream is reported as a terminal StreamError rather
	// than silently restarted (a restart would duplicate already-emitted
	// tokens).
	var stream *ssestream.Stream[anthropic.MessageStreamEventUnion]
	var primed anthropic.MessageStreamEventUnion
	var havePrimed bool

	result := retry.Do(ctx, p.retryConfig, func() error {
		stream = p.client.Messages.NewStreaming(ctx, params)
		if stream.Next() {
			primed = stream.Current()
			havePrimed = true
			return nil
		}
		if err := stream.Err(); err != nil {
			wrapped := NewProviderError("anthropic", model, err)
			if !IsRetryable(wrapped) {
				return retry.Permanent(wrapped)
			}
			return wrapped
		}
		// Empty stream, nothing to retry.
		return nil
	})
	if result.Err != nil {
		return nil, result.Err
	}

	out := make(chan StreamEvent)
	go p.processStream(ctx, stream, havePrimed, primed, out)
	return out, nil
}

func (p *AnthropicProvider) processStream(ctx context.Context, stream *ssestream.Stream[anthropic.MessageStreamEventUnion], havePrimed bool, primed anthropic.MessageStreamEventUnion, out chan<- StreamEvent) {
	defer close(out)

	var currentTool *ToolCall
	var currentToolInput []byte
	var usage Usage
	tokenIndex := 0

	emit := func(ev StreamEvent) bool {
		select {
		case <-ctx.Done():
			out <- StreamEvent{Kind: StreamError, Err: ctx.Err()}
			return false
		case out <- ev:
			return true
		}
	}

	first := true
	for {
		var event anthropic.MessageStreamEventUnion
		if first && havePrimed {
			event = primed
		} else {
			if !stream.Next() {
				break
			}
			event = stream.Current()
		}
		first = false

		switch event.Type {
		case "message_start":
			ms := event.AsMessageStart()
			if ms.Message.Usage.InputTokens > 0 {
				usage.PromptTokens = int(ms.Message.Usage.InputTokens)
			}

		case "content_block_start":
			block := event.AsContentBlockStart().ContentBlock
			if block.Type == "tool_use" {
				tu := block.AsToolUse()
				currentTool = &ToolCall{ID: tu.ID, Name: tu.Name}
				currentToolInput = currentToolInput[:0]
			}

		case "content_block_delta":
			delta := event.AsContentBlockDelta().Delta
			switch delta.Type {
			case "text_delta":
				if delta.Text != "" {
					if !emit(StreamEvent{Kind: StreamToken, Text: delta.Text, Index: tokenIndex}) {
						return
					}
					tokenIndex++
				}
			case "thinking_delta":
				if delta.Thinking != "" {
					emit(StreamEvent{Kind: StreamSystem, System: delta.Thinking})
				}
			case "input_json_delta":
				if delta.PartialJSON != "" {
					currentToolInput = append(currentToolInput, []byte(delta.PartialJSON)...)
				}
			}

		case "content_block_stop":
			if currentTool != nil {
				currentTool.Input = append([]byte(nil), currentToolInput...)
				if !emit(StreamEvent{Kind: StreamToolCall, ToolCall: currentTool}) {
					return
				}
				currentTool = nil
			}

		case "message_delta":
			md := event.AsMessageDelta()
			if md.Usage.OutputTokens > 0 {
				usage.CompletionTokens = int(md.Usage.OutputTokens)
			}

		case "message_stop":
			usage.TotalTokens = usage.PromptTokens + usage.CompletionTokens
			emit(StreamEvent{Kind: StreamFinished, Usage: usage})
			return
		}
	}

	if err := stream.Err(); err != nil {
		emit(StreamEvent{Kind: StreamError, Err: NewProviderError("anthropic", "", err)})
	}
}

func (p *AnthropicProvider) convertMessages(messages []Message) ([]anthropic.MessageParam, error) {
	result := make([]anthropic.MessageParam, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case "user":
			result = append(result, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		case "assistant":
			blocks := []anthropic.ContentBlockParamUnion{}
			if m.Content != "" {
				blocks = append(blocks, anthropic.NewTextBlock(m.Content))
			}
			for _, tc := range m.ToolCalls {
				var input map[string]any
				if err := json.Unmarshal(tc.Input, &input); err != nil {
					return nil, errors.New("anthropic: invalid tool call input for " + tc.Name)
				}
				blocks = append(blocks, anthropic.NewToolUseBlock(tc.ID, input, tc.Name))
			}
			result = append(result, anthropic.NewAssistantMessage(blocks...))
		case "tool":
			result = append(result, anthropic.NewUserMessage(
				anthropic.NewToolResultBlock(m.ToolCallID, m.Content, false),
			))
		default:
			return nil, errors.New("anthropic: unsupported message role " + m.Role)
		}
	}
	return result, nil
}

func maxTokensOrDefault(requested, fallback int) int {
	if requested > 0 {
		return requested
	}
	return fallback
}
