package providers

import (
	"context"
	"errors"
	"io"

	openai "github.com/sashabaranov/go-openai"

	"github.com/corebridge/agentcore/internal/retry"
	"github.com/corebridge/agentcore/internal/toolconv"
)

// OpenAIProvider implements Provider against OpenAI's Chat Completions
// API using the official SDK, grounded on
// internal/agent/providers/openai.go.
type OpenAIProvider struct {
	client       *openai.Client
	defaultModel string
	retryConfig  retry.Config
}

// OpenAIConfig configures an OpenAIProvider.
type OpenAIConfig struct {
	APIKey       string
	BaseURL      string
	DefaultModel string
	Retry        retry.Config
}

// NewOpenAIProvider builds a provider. An empty APIKey yields a
// provider whose ValidateConfig fails, so Registry.Get skips it in
// favor of the Echo fallback rather than erroring at construction.
func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = "gpt-4o"
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = retry.Exponential(3, 0, 0)
	}

	p := &OpenAIProvider{defaultModel: cfg.DefaultModel, retryConfig: cfg.Retry}
	if cfg.APIKey == "" {
		return p
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	p.client = openai.NewClientWithConfig(clientCfg)
	return p
}

func (p *OpenAIProvider) Name() string            { return "openai" }
func (p *OpenAIProvider) DisplayName() string     { return "OpenAI" }
func (p *OpenAIProvider) SupportsStreaming() bool { return true }

func (p *OpenAIProvider) ValidateConfig() error {
	if p.client == nil {
		return errors.New("openai: API key not configured")
	}
	return nil
}

func (p *OpenAIProvider) AvailableModels() []Model {
	return []Model{
		{ID: "gpt-4o", Name: "GPT-4o", ContextWindow: 128000, SupportsTools: true, SupportsVision: true},
		{ID: "gpt-4-turbo", Name: "GPT-4 Turbo", ContextWindow: 128000, SupportsTools: true, SupportsVision: true},
		{ID: "gpt-4o-mini", Name: "GPT-4o mini", ContextWindow: 128000, SupportsTools: true, SupportsVision: true},
	}
}

// CompleteStreaming issues a streaming chat completion, retrying
// stream establishment per p.retryConfig the same way the teacher's
// Complete() retries CreateChatCompletionStream before handing off to
// a goroutine that drains stream.Recv() into StreamEvents.
func (p *OpenAIProvider) CompleteStreaming(ctx context.Context, req *Request) (<-chan StreamEvent, error) {
	if err := p.ValidateConfig(); err != nil {
		return nil, err
	}

	chatReq := openai.ChatCompletionRequest{
		Model:         firstNonEmpty(req.Model, p.defaultModel),
		Messages:      p.convertMessages(req),
		Stream:        true,
		StreamOptions: &openai.StreamOptions{IncludeUsage: true},
	}
	if req.MaxTokens > 0 {
		chatReq.MaxTokens = req.MaxTokens
	}
	if len(req.Tools) > 0 {
		chatReq.Tools = toolconv.ToOpenAITools(req.Tools)
	}

	stream, result := retry.DoWithValue(ctx, p.retryConfig, func() (*openai.ChatCompletionStream, error) {
		s, err := p.client.CreateChatCompletionStream(ctx, chatReq)
		if err != nil && !IsRetryable(NewProviderError("openai", chatReq.Model, err)) {
			return nil, retry.Permanent(err)
		}
		return s, err
	})
	if result.Err != nil {
		return nil, NewProviderError("openai", chatReq.Model, result.Err)
	}

	out := make(chan StreamEvent)
	go p.processStream(ctx, stream, out)
	return out, nil
}

func (p *OpenAIProvider) processStream(ctx context.Context, stream *openai.ChatCompletionStream, out chan<- StreamEvent) {
	defer close(out)
	defer stream.Close()

	toolCalls := make(map[int]*ToolCall)
	tokenIndex := 0
	var usage Usage

	emit := func(ev StreamEvent) bool {
		select {
		case <-ctx.Done():
			out <- StreamEvent{Kind: StreamError, Err: ctx.Err()}
			return false
		case out <- ev:
			return true
		}
	}

	for {
		resp, err := stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				for _, tc := range toolCalls {
					if tc.ID != "" && tc.Name != "" {
						emit(StreamEvent{Kind: StreamToolCall, ToolCall: tc})
					}
				}
				emit(StreamEvent{Kind: StreamFinished, Usage: usage})
				return
			}
			emit(StreamEvent{Kind: StreamError, Err: NewProviderError("openai", "", err)})
			return
		}

		// The chunk carrying Usage (requested via StreamOptions.IncludeUsage
		// above) arrives last and has an empty Choices slice, so it must be
		// captured before the empty-choices continue below discards it.
		if resp.Usage != nil {
			usage = Usage{
				PromptTokens:     resp.Usage.PromptTokens,
				CompletionTokens: resp.Usage.CompletionTokens,
				TotalTokens:      resp.Usage.TotalTokens,
			}
		}

		if len(resp.Choices) == 0 {
			continue
		}
		choice := resp.Choices[0]
		delta := choice.Delta

		if delta.Content != "" {
			if !emit(StreamEvent{Kind: StreamToken, Text: delta.Content, Index: tokenIndex}) {
				return
			}
			tokenIndex++
		}

		for _, tc := range delta.ToolCalls {
			idx := 0
			if tc.Index != nil {
				idx = *tc.Index
			}
			if toolCalls[idx] == nil {
				toolCalls[idx] = &ToolCall{}
			}
			if tc.ID != "" {
				toolCalls[idx].ID = tc.ID
			}
			if tc.Function.Name != "" {
				toolCalls[idx].Name = tc.Function.Name
			}
			if tc.Function.Arguments != "" {
				toolCalls[idx].Input = append(toolCalls[idx].Input, []byte(tc.Function.Arguments)...)
			}
		}

		if choice.FinishReason == openai.FinishReasonToolCalls {
			for _, tc := range toolCalls {
				if tc.ID != "" && tc.Name != "" {
					emit(StreamEvent{Kind: StreamToolCall, ToolCall: tc})
				}
			}
			toolCalls = make(map[int]*ToolCall)
		}
	}
}

func (p *OpenAIProvider) convertMessages(req *Request) []openai.ChatCompletionMessage {
	result := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		result = append(result, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.System})
	}
	for _, msg := range req.Messages {
		m := openai.ChatCompletionMessage{Role: msg.Role, Content: msg.Content}
		if msg.Role == "assistant" && len(msg.ToolCalls) > 0 {
			m.ToolCalls = make([]openai.ToolCall, len(msg.ToolCalls))
			for i, tc := range msg.ToolCalls {
				m.ToolCalls[i] = openai.ToolCall{
					ID:   tc.ID,
					Type: openai.ToolTypeFunction,
					Function: openai.FunctionCall{
						Name:      tc.Name,
						Arguments: string(tc.Input),
					},
				}
			}
		}
		if msg.Role == "tool" {
			m.ToolCallID = msg.ToolCallID
		}
		result = append(result, m)
	}
	return result
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
