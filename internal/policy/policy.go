// Package policy is the C7 approval and sandbox policy layer: it
// decides whether a tool call may run without asking, must be denied
// outright, or must pend on user approval, and it contains filesystem
// writes to a workspace root when sandboxing demands it.
//
// Grounded on the teacher's internal/tools/policy package (Profile,
// Policy, Resolver, group/alias expansion — kept close, trimmed to
// drop edge-daemon-specific wiring the spec has no equivalent of) and
// internal/agent/approval.go (ApprovalChecker's allow/deny/pending
// shape, reworked around the spec's four-valued ApprovalMode instead
// of a free-form per-agent Policy.DefaultDecision).
package policy

import "strings"

// ApprovalMode controls when a tool call requires interactive approval.
type ApprovalMode string

const (
	// ApprovalUnlessTrusted allows a tool call whose command the trust
	// classifier judges safe (see exec.ClassifyCommand) and pends one
	// whose command it does not; a call with no command is allowed.
	ApprovalUnlessTrusted ApprovalMode = "unless-trusted"
	// ApprovalOnFailure allows everything until a tool call fails, then
	// pends subsequent calls of that tool for the rest of the session.
	ApprovalOnFailure ApprovalMode = "on-failure"
	// ApprovalOnRequest pends every tool call explicitly marked as
	// requiring approval by policy, and nothing else.
	ApprovalOnRequest ApprovalMode = "on-request"
	// ApprovalNever never pends; denies what the policy denies and
	// allows everything else outright.
	ApprovalNever ApprovalMode = "never"
)

// SandboxMode controls what a tool call is allowed to touch on disk.
type SandboxMode string

const (
	// SandboxReadOnly permits reads anywhere inside the workspace but
	// no writes at all.
	SandboxReadOnly SandboxMode = "read-only"
	// SandboxWorkspaceWrite permits writes confined to the workspace root.
	SandboxWorkspaceWrite SandboxMode = "workspace-write"
	// SandboxDangerFullAccess disables path containment entirely.
	SandboxDangerFullAccess SandboxMode = "danger-full-access"
)

// Profile is a pre-configured tool access level, same vocabulary as
// the teacher's Profile type.
type Profile string

const (
	ProfileMinimal   Profile = "minimal"
	ProfileCoding    Profile = "coding"
	ProfileMessaging Profile = "messaging"
	ProfileFull      Profile = "full"
)

// ToolPolicy defines tool access rules, kept close to the teacher's
// Policy type under a different name.
type ToolPolicy struct {
	Profile    Profile                `json:"profile,omitempty" yaml:"profile"`
	Allow      []string               `json:"allow,omitempty" yaml:"allow"`
	Deny       []string               `json:"deny,omitempty" yaml:"deny"`
	ByProvider map[string]*ToolPolicy `json:"by_provider,omitempty" yaml:"by_provider,omitempty"`
	// RequireApproval lists tool names/patterns that pend under
	// ApprovalOnRequest; the other approval modes do not consult it.
	RequireApproval []string `json:"require_approval,omitempty" yaml:"require_approval"`
}

// DefaultGroups mirrors the teacher's DefaultGroups, narrowed to the
// tool names this module actually registers (internal/exec,
// internal/patch, plus the mcp/* namespace left open-ended).
var DefaultGroups = map[string][]string{
	"group:fs":      {"read", "write", "edit", "apply_patch"},
	"group:runtime": {"exec", "process"},
	"group:nexus":   {"read", "write", "edit", "apply_patch", "exec", "process"},
	"group:mcp":     {},
}

// ProfileDefaults mirrors the teacher's ProfileDefaults.
var ProfileDefaults = map[Profile]*ToolPolicy{
	ProfileMinimal:   {},
	ProfileCoding:    {Allow: []string{"group:fs", "group:runtime"}},
	ProfileMessaging: {},
	ProfileFull:      {},
}

// NormalizeTool lowercases and trims a tool name for comparison.
func NormalizeTool(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
