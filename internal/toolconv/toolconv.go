// Package toolconv converts the runtime's provider-agnostic tool
// definitions into each backend's wire format, grounded on
// internal/agent/toolconv in the teacher. Kept as its own package
// (rather than folded into internal/providers) because OpenAI and
// Ollama share the identical function-calling schema while Anthropic's
// differs — OpenAI and Ollama share one copy of the fallback-on-bad-
// schema logic (parseSchema), while the Anthropic converter returns an
// error for a schema it cannot parse.
package toolconv

import "encoding/json"

// ToolSpec is the provider-agnostic tool definition converted by this
// package. internal/providers.Tool is a type alias for it so callers
// on either side of the import share one definition without a cycle
// (toolconv has no dependency on internal/providers).
type ToolSpec struct {
	Name        string
	Description string
	Schema      json.RawMessage
}

func parseSchema(raw json.RawMessage) map[string]any {
	var schema map[string]any
	if err := json.Unmarshal(raw, &schema); err != nil {
		return map[string]any{"type": "object", "properties": map[string]any{}}
	}
	return schema
}
