// Package tool defines the executable-tool contract shared by the MCP
// bridge (internal/mcp), the local built-ins (internal/exec,
// internal/patch), and the session engine's tool dispatch
// (internal/session). It is the spec-native home for the shape the
// teacher's agent.Tool/agent.ToolResult occupied, split out of
// internal/agent so packages that only need the contract don't pull in
// the whole agent runtime.
package tool

import (
	"context"
	"encoding/json"
)

// Tool is a single callable the session engine can dispatch a
// FunctionCall item to, whether backed by an MCP server or a local
// built-in (shell exec, patch apply).
type Tool interface {
	// Name returns the tool name used in LLM function calling. Must be
	// a valid function name (alphanumeric, underscores).
	Name() string

	// Description returns a natural language description of what the
	// tool does, shown to the LLM to help it decide when to call it.
	Description() string

	// Schema returns the JSON Schema describing the tool's parameters.
	Schema() json.RawMessage

	// Execute runs the tool against params matching Schema(), returning
	// the result to relay back to the model as a FunctionCallOutput.
	Execute(ctx context.Context, params json.RawMessage) (*Result, error)
}

// Result is the outcome of a single tool execution.
type Result struct {
	// Content is the tool's output, relayed to the model verbatim.
	Content string

	// IsError marks Content as an error message rather than a normal
	// result; the model sees this the same way it sees any other
	// output, just with FunctionCallOutput.IsError set.
	IsError bool

	// Artifacts holds any files/media the tool produced, for callers
	// that surface them outside the plain-text transcript.
	Artifacts []Artifact
}

// Artifact is a file or media object produced by a tool execution.
type Artifact struct {
	ID       string
	Name     string
	MimeType string
	Data     []byte
}

// Registrar is the minimal surface a tool bridge needs from whatever
// holds the live tool set for a session (internal/session's dispatch
// table in production, a fake in tests).
type Registrar interface {
	RegisterTool(t Tool)
}

// Summary describes a registered tool for display/introspection (a CLI
// tool-list command, a policy UI) without exposing its Execute closure.
type Summary struct {
	Name        string
	Description string
	Schema      json.RawMessage
	// Source identifies where the tool came from ("mcp", "local").
	Source string
	// Namespace is the MCP server ID for MCP-sourced tools, empty for
	// local built-ins.
	Namespace string
	// Canonical is the stable name policy rules match against ("mcp:
	// server.tool" for MCP tools), the same regardless of how a name
	// collision was disambiguated in Name.
	Canonical string
}
