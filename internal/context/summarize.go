package context

import (
	"context"
	"fmt"
	"strings"

	"github.com/corebridge/agentcore/pkg/model"
)

// SummarizationConfig configures the summarization behavior.
type SummarizationConfig struct {
	// MaxMsgsBeforeSummary is the threshold for triggering summarization.
	MaxMsgsBeforeSummary int

	// KeepRecentMessages is how many recent items to keep un-summarized.
	KeepRecentMessages int

	// MaxSummaryLength is the target length for summaries in characters.
	MaxSummaryLength int
}

// DefaultSummarizationConfig returns sensible defaults.
func DefaultSummarizationConfig() SummarizationConfig {
	return SummarizationConfig{
		MaxMsgsBeforeSummary: 30,
		KeepRecentMessages:   10,
		MaxSummaryLength:     2000,
	}
}

// SummaryProvider generates a rolling summary of older transcript
// items. A Provider-backed implementation issues a non-streaming
// completion against the summarization prompt; tests can inject a
// fake.
type SummaryProvider interface {
	Summarize(ctx context.Context, items []model.ResponseItem, maxLength int) (string, error)
}

// Summarizer handles conversation summarization.
type Summarizer struct {
	provider SummaryProvider
	config   SummarizationConfig
}

// NewSummarizer creates a new summarizer with the given provider and config.
func NewSummarizer(provider SummaryProvider, config SummarizationConfig) *Summarizer {
	if config.MaxMsgsBeforeSummary <= 0 {
		config.MaxMsgsBeforeSummary = 30
	}
	if config.KeepRecentMessages <= 0 {
		config.KeepRecentMessages = 10
	}
	if config.MaxSummaryLength <= 0 {
		config.MaxSummaryLength = 2000
	}
	return &Summarizer{provider: provider, config: config}
}

// ShouldSummarize checks if summarization is needed based on history state.
func (s *Summarizer) ShouldSummarize(history []model.ResponseItem) bool {
	_, idx, ok := FindLatestSummary(history)
	if !ok {
		idx = -1
	}
	return NeedsSummarization(history, idx, s.config.MaxMsgsBeforeSummary)
}

// Summarize generates a new summary item if needed. It returns ok=false
// if no summarization was needed or there was nothing eligible to fold
// into a summary.
func (s *Summarizer) Summarize(ctx context.Context, history []model.ResponseItem) (summary model.ResponseItem, ok bool, err error) {
	if !s.ShouldSummarize(history) {
		return model.ResponseItem{}, false, nil
	}

	_, idx, found := FindLatestSummary(history)
	if !found {
		idx = -1
	}

	toSummarize := GetMessagesToSummarize(history, idx, s.config.KeepRecentMessages)
	if len(toSummarize) == 0 {
		return model.ResponseItem{}, false, nil
	}

	content, err := s.provider.Summarize(ctx, toSummarize, s.config.MaxSummaryLength)
	if err != nil {
		return model.ResponseItem{}, false, fmt.Errorf("generate summary: %w", err)
	}

	coversUntil := itemKey(toSummarize[len(toSummarize)-1])
	return CreateSummaryMessage(content, coversUntil), true, nil
}

// BuildSummarizationPrompt renders the prompt text for an LLM-backed
// SummaryProvider to summarize items against.
func BuildSummarizationPrompt(items []model.ResponseItem, maxLength int) string {
	var sb strings.Builder

	sb.WriteString("Please summarize the following conversation concisely. ")
	sb.WriteString(fmt.Sprintf("Keep the summary under %d characters. ", maxLength))
	sb.WriteString("Focus on:\n")
	sb.WriteString("- Key topics discussed\n")
	sb.WriteString("- Important decisions or conclusions\n")
	sb.WriteString("- Any pending tasks or questions\n")
	sb.WriteString("- Tool executions and their outcomes\n\n")
	sb.WriteString("Conversation:\n\n")

	for _, item := range items {
		switch item.Kind {
		case model.ItemMessage:
			sb.WriteString(fmt.Sprintf("[%s]: %s\n\n", item.Role, item.TextContent()))
		case model.ItemReasoning:
			sb.WriteString(fmt.Sprintf("[reasoning]: %s\n\n", item.ReasoningContent))
		case model.ItemFunctionCall:
			sb.WriteString(fmt.Sprintf("[called tool %s]: %s\n\n", item.Name, truncateForPrompt(string(item.Arguments))))
		case model.ItemFunctionCallOutput:
			status := "success"
			if item.IsError {
				status = "error"
			}
			sb.WriteString(fmt.Sprintf("[tool result (%s)]: %s\n\n", status, truncateForPrompt(item.Output)))
		case model.ItemLocalShellCall:
			sb.WriteString(fmt.Sprintf("[shell %s]: %s\n\n", item.Status, strings.Join(item.Command, " ")))
		}
	}

	sb.WriteString("---\nProvide a concise summary:")
	return sb.String()
}

func truncateForPrompt(s string) string {
	const max = 200
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
