package context

import (
	"strconv"
	"strings"
	"time"

	"github.com/corebridge/agentcore/pkg/model"
)

// ContextPruningMode controls when pruning runs.
type ContextPruningMode string

const (
	// ContextPruningOff disables pruning.
	ContextPruningOff ContextPruningMode = "off"
	// ContextPruningCacheTTL prunes when cached tool results are stale.
	ContextPruningCacheTTL ContextPruningMode = "cache-ttl"
)

// ContextPruningToolMatch controls which tool results are prunable.
type ContextPruningToolMatch struct {
	Allow []string
	Deny  []string
}

// ContextPruningSoftTrim configures soft trimming.
type ContextPruningSoftTrim struct {
	MaxChars  int
	HeadChars int
	TailChars int
}

// ContextPruningHardClear configures hard clearing.
type ContextPruningHardClear struct {
	Enabled     bool
	Placeholder string
}

// ContextPruningSettings controls in-memory tool result pruning.
type ContextPruningSettings struct {
	Mode                 ContextPruningMode
	TTL                  time.Duration
	KeepLastAssistants   int
	SoftTrimRatio        float64
	HardClearRatio       float64
	MinPrunableToolChars int
	Tools                ContextPruningToolMatch
	SoftTrim             ContextPruningSoftTrim
	HardClear            ContextPruningHardClear
}

// DefaultContextPruningSettings returns reasonable defaults.
func DefaultContextPruningSettings() ContextPruningSettings {
	return ContextPruningSettings{
		Mode:                 ContextPruningCacheTTL,
		TTL:                  5 * time.Minute,
		KeepLastAssistants:   3,
		SoftTrimRatio:        0.3,
		HardClearRatio:       0.5,
		MinPrunableToolChars: 50000,
		Tools:                ContextPruningToolMatch{},
		SoftTrim: ContextPruningSoftTrim{
			MaxChars:  4000,
			HeadChars: 1500,
			TailChars: 1500,
		},
		HardClear: ContextPruningHardClear{
			Enabled:     true,
			Placeholder: "[Old tool result content cleared]",
		},
	}
}

// PruneContextMessages trims or clears old FunctionCallOutput items
// from history to keep estimated size under charWindow. Returns the
// original slice if no changes are required. A FunctionCallOutput's
// tool name is recovered from the FunctionCall item sharing its
// CallID, since — unlike the teacher's nested ToolResults — this
// model represents each tool round trip as two standalone items.
func PruneContextMessages(items []model.ResponseItem, settings ContextPruningSettings, charWindow int) []model.ResponseItem {
	if settings.Mode == ContextPruningOff || len(items) == 0 || charWindow <= 0 {
		return items
	}

	cutoffIndex, ok := findAssistantCutoffIndex(items, settings.KeepLastAssistants)
	if !ok {
		return items
	}

	firstUser := findFirstUserIndex(items)
	pruneStart := len(items)
	if firstUser >= 0 {
		pruneStart = firstUser
	}
	if pruneStart >= cutoffIndex {
		return items
	}

	totalChars := estimateContextChars(items)
	if float64(totalChars)/float64(charWindow) < settings.SoftTrimRatio {
		return items
	}

	toolNames := buildToolCallNameMap(items)
	isToolPrunable := makeToolPrunablePredicate(settings.Tools)

	var prunable []int
	var next []model.ResponseItem

	for i := pruneStart; i < cutoffIndex; i++ {
		item := currentItem(items, next, i)
		if item.Kind != model.ItemFunctionCallOutput {
			continue
		}
		toolName := toolNames[item.CallID]
		if !isToolPrunable(toolName) {
			continue
		}
		prunable = append(prunable, i)

		trimmed, changed := softTrimToolResult(item.Output, settings)
		if !changed {
			continue
		}

		before := len(item.Output)
		updated := item
		updated.Output = trimmed
		totalChars += len(updated.Output) - before
		next = ensureItems(next, items, i, updated)
	}

	output := items
	if next != nil {
		output = next
	}

	if float64(totalChars)/float64(charWindow) < settings.HardClearRatio || !settings.HardClear.Enabled {
		return output
	}

	prunableChars := 0
	for _, idx := range prunable {
		prunableChars += len(currentItem(items, next, idx).Output)
	}
	if prunableChars < settings.MinPrunableToolChars {
		return output
	}

	ratio := float64(totalChars) / float64(charWindow)
	for _, idx := range prunable {
		if ratio < settings.HardClearRatio {
			break
		}
		item := currentItem(items, next, idx)
		before := len(item.Output)
		updated := item
		updated.Output = settings.HardClear.Placeholder
		totalChars += len(updated.Output) - before
		ratio = float64(totalChars) / float64(charWindow)
		next = ensureItems(next, items, idx, updated)
	}

	if next != nil {
		return next
	}
	return items
}

func findAssistantCutoffIndex(items []model.ResponseItem, keepLastAssistants int) (int, bool) {
	if keepLastAssistants <= 0 {
		return len(items), true
	}
	remaining := keepLastAssistants
	for i := len(items) - 1; i >= 0; i-- {
		if items[i].Kind == model.ItemMessage && items[i].Role == model.RoleAssistant {
			remaining--
			if remaining == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

func findFirstUserIndex(items []model.ResponseItem) int {
	for i, item := range items {
		if item.Kind == model.ItemMessage && item.Role == model.RoleUser {
			return i
		}
	}
	return -1
}

func softTrimToolResult(content string, settings ContextPruningSettings) (string, bool) {
	rawLen := len(content)
	if rawLen <= settings.SoftTrim.MaxChars {
		return content, false
	}
	headChars := maxInt(settings.SoftTrim.HeadChars, 0)
	tailChars := maxInt(settings.SoftTrim.TailChars, 0)
	if headChars+tailChars >= rawLen {
		return content, false
	}
	head := content
	if headChars < len(head) {
		head = head[:headChars]
	}
	tail := content
	if tailChars < len(tail) {
		tail = tail[len(tail)-tailChars:]
	}

	trimmed := head + "\n...\n" + tail
	note := "\n\n[Tool result trimmed: kept first " + strconv.Itoa(headChars) + " chars and last " + strconv.Itoa(tailChars) + " chars of " + strconv.Itoa(rawLen) + " chars.]"
	return trimmed + note, true
}

func makeToolPrunablePredicate(match ContextPruningToolMatch) func(string) bool {
	deny := normalizePatterns(match.Deny)
	allow := normalizePatterns(match.Allow)
	return func(toolName string) bool {
		normalized := strings.ToLower(strings.TrimSpace(toolName))
		if matchesAny(normalized, deny) {
			return false
		}
		if len(allow) == 0 {
			return true
		}
		return matchesAny(normalized, allow)
	}
}

func normalizePatterns(patterns []string) []string {
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		value := strings.ToLower(strings.TrimSpace(p))
		if value == "" {
			continue
		}
		out = append(out, value)
	}
	return out
}

func matchesAny(name string, patterns []string) bool {
	for _, p := range patterns {
		if wildcardMatch(p, name) {
			return true
		}
	}
	return false
}

func wildcardMatch(pattern, value string) bool {
	if pattern == "*" {
		return true
	}
	if !strings.Contains(pattern, "*") {
		return pattern == value
	}
	parts := strings.Split(pattern, "*")
	idx := 0
	if len(parts) == 0 {
		return false
	}
	if parts[0] != "" {
		if !strings.HasPrefix(value, parts[0]) {
			return false
		}
		idx = len(parts[0])
	}
	for i := 1; i < len(parts)-1; i++ {
		part := parts[i]
		if part == "" {
			continue
		}
		pos := strings.Index(value[idx:], part)
		if pos < 0 {
			return false
		}
		idx += pos + len(part)
	}
	last := parts[len(parts)-1]
	if last != "" && !strings.HasSuffix(value, last) {
		return false
	}
	return true
}

func buildToolCallNameMap(items []model.ResponseItem) map[string]string {
	names := make(map[string]string)
	for _, item := range items {
		if item.Kind == model.ItemFunctionCall && item.CallID != "" && item.Name != "" {
			names[item.CallID] = item.Name
		}
	}
	return names
}

func estimateContextChars(items []model.ResponseItem) int {
	total := 0
	for _, item := range items {
		total += estimateItemChars(item)
	}
	return total
}

func estimateItemChars(item model.ResponseItem) int {
	chars := len(item.TextContent()) + len(item.ReasoningContent)
	chars += len(item.Name) + len(item.Arguments)
	chars += len(item.Output)
	return chars
}

func currentItem(items []model.ResponseItem, next []model.ResponseItem, index int) model.ResponseItem {
	if next != nil {
		return next[index]
	}
	return items[index]
}

func ensureItems(next []model.ResponseItem, items []model.ResponseItem, index int, updated model.ResponseItem) []model.ResponseItem {
	if next == nil {
		next = make([]model.ResponseItem, len(items))
		copy(next, items)
	}
	next[index] = updated
	return next
}

func maxInt(value, min int) int {
	if value < min {
		return min
	}
	return value
}
