package context

import (
	"github.com/corebridge/agentcore/pkg/model"
)

// SummaryMetadataKey is the metadata key used to identify summary items.
const SummaryMetadataKey = "agentcore_summary"

// SummaryVersionKey is the metadata key for summary version tracking.
const SummaryVersionKey = "summary_version"

// CoversUntilKey is the metadata key recording which item the summary
// covers up to (a Message's ID, or a FunctionCall/FunctionCallOutput's
// CallID when the last summarized item carries no ID of its own).
const CoversUntilKey = "covers_until"

// itemKey returns the identifier used to anchor CoversUntilKey: an
// item's ID when present, falling back to CallID for FunctionCall and
// FunctionCallOutput items, which carry no ID field of their own.
func itemKey(item model.ResponseItem) string {
	if item.ID != "" {
		return item.ID
	}
	return item.CallID
}

// isSummaryItem reports whether item is a rolling-summary marker
// produced by Summarizer.Summarize.
func isSummaryItem(item model.ResponseItem) bool {
	if item.Metadata == nil {
		return false
	}
	val, ok := item.Metadata[SummaryMetadataKey]
	if !ok {
		return false
	}
	b, ok := val.(bool)
	return ok && b
}

// FindLatestSummary returns the most recent summary item in history and
// its index, or ok=false if no summary exists.
func FindLatestSummary(history []model.ResponseItem) (item model.ResponseItem, index int, ok bool) {
	for i := len(history) - 1; i >= 0; i-- {
		if isSummaryItem(history[i]) {
			return history[i], i, true
		}
	}
	return model.ResponseItem{}, -1, false
}

// MessagesSinceSummary returns the items that came after summaryIndex.
// A negative summaryIndex (no summary found) returns the full history.
func MessagesSinceSummary(history []model.ResponseItem, summaryIndex int) []model.ResponseItem {
	if summaryIndex < 0 || summaryIndex+1 >= len(history) {
		if summaryIndex < 0 {
			return history
		}
		return nil
	}
	return history[summaryIndex+1:]
}

// NeedsSummarization reports whether the history has accumulated more
// than maxMsgsBeforeSummary items since the last summary.
func NeedsSummarization(history []model.ResponseItem, summaryIndex, maxMsgsBeforeSummary int) bool {
	return len(MessagesSinceSummary(history, summaryIndex)) > maxMsgsBeforeSummary
}

// CreateSummaryMessage builds a summary ResponseItem carrying the
// standard summary metadata.
func CreateSummaryMessage(content, coversUntil string) model.ResponseItem {
	item := model.NewMessage(model.RoleSystem, model.OutputText(content))
	item.Metadata = map[string]any{
		SummaryMetadataKey: true,
		SummaryVersionKey:  1,
		CoversUntilKey:     coversUntil,
	}
	return item
}

// GetMessagesToSummarize returns the older items (summary markers
// excluded) eligible for summarization, keeping the most recent
// keepRecent items un-summarized.
func GetMessagesToSummarize(history []model.ResponseItem, summaryIndex, keepRecent int) []model.ResponseItem {
	messages := MessagesSinceSummary(history, summaryIndex)

	filtered := make([]model.ResponseItem, 0, len(messages))
	for _, m := range messages {
		if isSummaryItem(m) {
			continue
		}
		filtered = append(filtered, m)
	}

	if len(filtered) <= keepRecent {
		return nil
	}
	return filtered[:len(filtered)-keepRecent]
}
