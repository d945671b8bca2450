package model

import "time"

// EventType identifies the kind of event emitted by a session.
//
// The set mirrors spec.md §3's Event variants exactly; naming follows
// the teacher's AgentEventType convention (dot-separated lifecycle
// names) adapted to the spec's PascalCase event vocabulary.
type EventType string

const (
	EventSessionConfigured    EventType = "session_configured"
	EventTaskStarted          EventType = "task_started"
	EventAgentMessageDelta    EventType = "agent_message_delta"
	EventAgentMessage         EventType = "agent_message"
	EventAgentReasoningDelta  EventType = "agent_reasoning_delta"
	EventExecApprovalRequest  EventType = "exec_approval_request"
	EventExecCommandBegin     EventType = "exec_command_begin"
	EventExecCommandOutput    EventType = "exec_command_output"
	EventExecCommandEnd       EventType = "exec_command_end"
	EventMcpToolCallBegin     EventType = "mcp_tool_call_begin"
	EventMcpToolCallEnd       EventType = "mcp_tool_call_end"
	EventTokenCount           EventType = "token_count"
	EventTaskComplete         EventType = "task_complete"
	EventError                EventType = "error"
	EventTurnAborted          EventType = "turn_aborted"
)

// Event is an outbound observation emitted by a session. Every event
// carries the submission id of the Op that caused it (invariant 1:
// events are causally ordered by submission id).
//
// Following the teacher's AgentEvent convention, at most one of the
// payload fields below is populated for a given Type (SessionConfigured,
// TaskStarted and TurnAborted carry none); Version is carried for
// forward compatibility the same way.
type Event struct {
	Version      int       `json:"version"`
	Type         EventType `json:"type"`
	Time         time.Time `json:"time"`
	SubmissionID string    `json:"submission_id"`

	Text         *TextPayload         `json:"text,omitempty"`
	Delta        *DeltaPayload        `json:"delta,omitempty"`
	Approval     *ApprovalPayload     `json:"approval,omitempty"`
	ExecBegin    *ExecBeginPayload    `json:"exec_begin,omitempty"`
	ExecOutput   *ExecOutputPayload   `json:"exec_output,omitempty"`
	ExecEnd      *ExecEndPayload      `json:"exec_end,omitempty"`
	McpBegin     *McpBeginPayload     `json:"mcp_begin,omitempty"`
	McpEnd       *McpEndPayload       `json:"mcp_end,omitempty"`
	Tokens       *TokenCountPayload   `json:"tokens,omitempty"`
	Complete     *TaskCompletePayload `json:"complete,omitempty"`
	Err          *ErrorPayload        `json:"error,omitempty"`
}

// TextPayload carries a finished agent message (AgentMessage) or a
// finished reasoning summary.
type TextPayload struct {
	Text string `json:"text"`
}

// DeltaPayload carries a streaming delta (AgentMessageDelta,
// AgentReasoningDelta).
type DeltaPayload struct {
	Delta string `json:"delta"`
}

// ApprovalPayload carries an ExecApprovalRequest.
type ApprovalPayload struct {
	CallID   string `json:"call_id"`
	ToolName string `json:"tool_name"`
	Command  string `json:"command,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// ExecBeginPayload carries ExecCommandBegin.
type ExecBeginPayload struct {
	CallID  string   `json:"call_id"`
	Command []string `json:"command"`
	Cwd     string   `json:"cwd,omitempty"`
}

// ExecOutputPayload carries ExecCommandOutput (stdout/stderr chunks).
type ExecOutputPayload struct {
	CallID string `json:"call_id"`
	Chunk  string `json:"chunk"`
	Stderr bool   `json:"stderr,omitempty"`
}

// ExecEndPayload carries ExecCommandEnd.
type ExecEndPayload struct {
	CallID   string `json:"call_id"`
	ExitCode int    `json:"exit_code"`
}

// McpBeginPayload carries McpToolCallBegin.
type McpBeginPayload struct {
	CallID string `json:"call_id"`
	Server string `json:"server,omitempty"`
	Name   string `json:"name"`
}

// McpEndPayload carries McpToolCallEnd.
type McpEndPayload struct {
	CallID string `json:"call_id"`
	OK     bool   `json:"ok"`
	Error  string `json:"error,omitempty"`
}

// TokenCountPayload carries TokenCount.
type TokenCountPayload struct {
	Prompt     int `json:"prompt"`
	Completion int `json:"completion"`
	Total      int `json:"total"`
}

// TaskCompletePayload carries TaskComplete.
type TaskCompletePayload struct {
	LastAgentMessage string `json:"last_agent_message,omitempty"`
}

// ErrorPayload carries Error.
type ErrorPayload struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// NewEvent builds an Event with Version and Time populated, leaving
// the caller to set SubmissionID and the relevant payload field.
func NewEvent(typ EventType, submissionID string) Event {
	return Event{Version: 1, Type: typ, Time: time.Now(), SubmissionID: submissionID}
}
