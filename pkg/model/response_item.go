package model

import "encoding/json"

// Role identifies the author of a Message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ShellCallStatus is the lifecycle state of a LocalShellCall item.
type ShellCallStatus string

const (
	ShellCallInProgress ShellCallStatus = "in_progress"
	ShellCallCompleted  ShellCallStatus = "completed"
	ShellCallFailed     ShellCallStatus = "failed"
)

// ItemKind discriminates the concrete type held by a ResponseItem.
type ItemKind string

const (
	ItemMessage            ItemKind = "message"
	ItemReasoning          ItemKind = "reasoning"
	ItemFunctionCall       ItemKind = "function_call"
	ItemFunctionCallOutput ItemKind = "function_call_output"
	ItemLocalShellCall     ItemKind = "local_shell_call"
)

// ResponseItem is the single unit of transcript persistence. It is the
// tagged-variant type appended to a session's in-memory transcript and
// to the on-disk rollout journal; every field below maps one-to-one to
// spec.md §3's ResponseItem definition.
//
// As with ContentItem, this is a flat struct keyed by Kind rather than
// a Go interface: it needs to serialize as one JSON object per NDJSON
// line, and a flat struct with omitempty fields does that without a
// custom marshaler, matching the convention already used by the
// teacher's AgentEvent type.
type ResponseItem struct {
	Kind ItemKind `json:"type"`

	// ID is the item's identifier, when the provider or caller assigns one.
	ID string `json:"id,omitempty"`

	// Message fields.
	Role    Role          `json:"role,omitempty"`
	Content []ContentItem `json:"content,omitempty"`
	// Pseudo marks environment-context / user-instruction messages that
	// are not "real" user turns for the purposes of Fork's n_drop count.
	Pseudo bool `json:"pseudo,omitempty"`

	// Reasoning fields.
	Summary          []SummaryText `json:"summary,omitempty"`
	ReasoningContent string        `json:"content_text,omitempty"`
	EncryptedContent string        `json:"encrypted_content,omitempty"`

	// FunctionCall fields.
	Name      string          `json:"name,omitempty"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
	CallID    string          `json:"call_id,omitempty"`

	// FunctionCallOutput fields (CallID shared with FunctionCall).
	Output  string `json:"output,omitempty"`
	IsError bool   `json:"is_error,omitempty"`

	// LocalShellCall fields.
	Command []string        `json:"command,omitempty"`
	Cwd     string          `json:"cwd,omitempty"`
	Status  ShellCallStatus `json:"status,omitempty"`

	// Metadata carries out-of-band tags that don't warrant their own
	// field — e.g. the rolling-summary marker in internal/context.
	// Mirrors the teacher's Metadata map[string]any tagging convention.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// SummaryText is one chunk of a Reasoning item's human-readable summary.
type SummaryText struct {
	Text string `json:"text"`
}

// NewMessage builds a Message response item.
func NewMessage(role Role, content ...ContentItem) ResponseItem {
	return ResponseItem{Kind: ItemMessage, Role: role, Content: content}
}

// NewFunctionCall builds a FunctionCall response item.
func NewFunctionCall(callID, name string, args json.RawMessage) ResponseItem {
	return ResponseItem{Kind: ItemFunctionCall, CallID: callID, Name: name, Arguments: args}
}

// NewFunctionCallOutput builds a FunctionCallOutput response item.
func NewFunctionCallOutput(callID, output string, isError bool) ResponseItem {
	return ResponseItem{Kind: ItemFunctionCallOutput, CallID: callID, Output: output, IsError: isError}
}

// TextContent returns the concatenation of all OutputText/InputText
// content items on a Message, for assembling the agent's final reply.
func (r ResponseItem) TextContent() string {
	var out string
	for _, c := range r.Content {
		switch c.Kind {
		case ContentOutputText, ContentInputText:
			out += c.Text
		}
	}
	return out
}

// IsRealUserMessage reports whether r is a user-role Message that
// counts toward Fork's n_drop accounting (i.e. not a pseudo message).
func (r ResponseItem) IsRealUserMessage() bool {
	return r.Kind == ItemMessage && r.Role == RoleUser && !r.Pseudo
}
