// Package context packs, prunes, and summarizes a session's
// ResponseItem transcript to keep LLM requests within a provider's
// context window, adapted from nexus's internal/agent/context package.
//
// This package handles:
//   - Context packing: selecting which items to include in LLM requests
//   - Rolling summaries: compressing old history into a summary item
//   - Budget management: staying within token/char limits
package context

import (
	"github.com/corebridge/agentcore/pkg/model"
)

// PackOptions configures how items are packed into context.
type PackOptions struct {
	// MaxItems is the hard cap on number of items to include.
	MaxItems int

	// MaxChars is the approximate character budget (cheap proxy for tokens).
	MaxChars int

	// MaxToolResultChars is the max chars per FunctionCallOutput's
	// Output field. Longer outputs are truncated.
	MaxToolResultChars int

	// IncludeSummary controls whether to include the rolling summary.
	IncludeSummary bool
}

// DefaultPackOptions returns sensible defaults for context packing.
func DefaultPackOptions() PackOptions {
	return PackOptions{
		MaxItems:           60,
		MaxChars:           30000,
		MaxToolResultChars: 6000,
		IncludeSummary:     true,
	}
}

// Packer selects and prepares items for LLM context.
type Packer struct {
	opts PackOptions
}

// NewPacker creates a new context packer with the given options.
func NewPacker(opts PackOptions) *Packer {
	if opts.MaxItems <= 0 {
		opts.MaxItems = 60
	}
	if opts.MaxChars <= 0 {
		opts.MaxChars = 30000
	}
	if opts.MaxToolResultChars <= 0 {
		opts.MaxToolResultChars = 6000
	}
	return &Packer{opts: opts}
}

// Pack selects items from history to fit within budget.
//
// The packed result includes (in order):
//  1. The rolling summary item (if IncludeSummary and one exists in history)
//  2. Recent items from history (chosen newest first up to budget,
//     returned in chronological order)
//  3. The incoming item, when present
//
// FunctionCallOutput content is truncated to MaxToolResultChars. Items
// are selected from the end (most recent) backwards until either
// MaxItems or MaxChars is reached.
func (p *Packer) Pack(history []model.ResponseItem, incoming *model.ResponseItem) []model.ResponseItem {
	var result []model.ResponseItem

	totalChars := 0
	totalItems := 0

	if incoming != nil {
		totalChars += p.itemChars(*incoming)
		totalItems++
	}

	var summary model.ResponseItem
	haveSummary := false
	if p.opts.IncludeSummary {
		if s, _, ok := FindLatestSummary(history); ok {
			summary = s
			haveSummary = true
			totalChars += p.itemChars(summary)
			totalItems++
		}
	}

	filtered := make([]model.ResponseItem, 0, len(history))
	for _, item := range history {
		if isSummaryItem(item) {
			continue
		}
		filtered = append(filtered, item)
	}

	// Build in reverse order, then reverse once (O(n) instead of O(n²)).
	selectedReverse := make([]model.ResponseItem, 0)
	for i := len(filtered) - 1; i >= 0; i-- {
		item := filtered[i]
		itemChars := p.itemChars(item)

		if totalItems+1 > p.opts.MaxItems {
			break
		}
		if totalChars+itemChars > p.opts.MaxChars {
			break
		}

		selectedReverse = append(selectedReverse, item)
		totalItems++
		totalChars += itemChars
	}

	selected := make([]model.ResponseItem, len(selectedReverse))
	for i, item := range selectedReverse {
		selected[len(selectedReverse)-1-i] = item
	}

	if haveSummary {
		result = append(result, summary)
	}
	for _, item := range selected {
		result = append(result, p.truncateOutput(item))
	}
	if incoming != nil {
		result = append(result, *incoming)
	}

	return result
}

// itemChars estimates the character count for an item across whichever
// payload fields its Kind populates.
func (p *Packer) itemChars(item model.ResponseItem) int {
	chars := len(item.TextContent()) + len(item.ReasoningContent) + len(item.EncryptedContent)
	chars += len(item.Name) + len(item.Arguments)
	chars += len(item.Output)
	for _, c := range item.Command {
		chars += len(c)
	}
	return chars
}

// truncateOutput returns a copy of item with its FunctionCallOutput
// content truncated, if needed. Non-FunctionCallOutput items are
// returned unchanged.
func (p *Packer) truncateOutput(item model.ResponseItem) model.ResponseItem {
	if item.Kind != model.ItemFunctionCallOutput || len(item.Output) <= p.opts.MaxToolResultChars {
		return item
	}
	item.Output = item.Output[:p.opts.MaxToolResultChars] + "\n...[truncated]"
	return item
}
