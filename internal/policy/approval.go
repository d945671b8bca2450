package policy

import (
	"sync"

	"github.com/corebridge/agentcore/internal/exec"
)

// ApprovalDecision is the result of an approval check for a tool call.
type ApprovalDecision string

const (
	ApprovalAllowed ApprovalDecision = "allowed"
	ApprovalDenied  ApprovalDecision = "denied"
	ApprovalPending ApprovalDecision = "pending"
)

// Checker evaluates tool calls against an ApprovalMode and a
// ToolPolicy to decide whether a session may run them unattended.
//
// Grounded on the teacher's agent.ApprovalChecker, narrowed from a
// per-agent policy map to the spec's single ApprovalMode knob per
// session, and wired to internal/exec.ClassifyCommand as the
// trust-classification source ApprovalUnlessTrusted needs — the
// teacher's tools/security.AnalyzeCommandQuoteAware equivalent.
type Checker struct {
	mu       sync.Mutex
	mode     ApprovalMode
	resolver *Resolver
	policy   *ToolPolicy
	// failed tracks tool names that have failed at least once this
	// session, for ApprovalOnFailure.
	failed map[string]bool
}

// NewChecker builds a Checker for one session.
func NewChecker(mode ApprovalMode, resolver *Resolver, tp *ToolPolicy) *Checker {
	if resolver == nil {
		resolver = NewResolver()
	}
	return &Checker{mode: mode, resolver: resolver, policy: tp, failed: make(map[string]bool)}
}

// RecordFailure marks toolName as having failed, so ApprovalOnFailure
// starts requiring approval for it.
func (c *Checker) RecordFailure(toolName string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failed[NormalizeTool(toolName)] = true
}

// Check decides whether a FunctionCall to toolName may run. command, if
// non-empty, is the shell command about to execute (used only by
// ApprovalUnlessTrusted's trust classification for the exec tool).
func (c *Checker) Check(toolName, command string) (ApprovalDecision, string) {
	decision := c.resolver.Decide(c.policy, toolName)
	if !decision.Allowed {
		return ApprovalDenied, decision.Reason
	}

	switch c.mode {
	case ApprovalNever:
		return ApprovalAllowed, "approval mode never"

	case ApprovalOnRequest:
		if c.resolver.RequiresApproval(c.policy, toolName) {
			return ApprovalPending, "tool requires approval by policy"
		}
		return ApprovalAllowed, "not in require_approval list"

	case ApprovalOnFailure:
		c.mu.Lock()
		failed := c.failed[NormalizeTool(toolName)]
		c.mu.Unlock()
		if failed {
			return ApprovalPending, "tool failed previously this session"
		}
		return ApprovalAllowed, "no prior failure"

	case ApprovalUnlessTrusted:
		fallthrough
	default:
		if command == "" {
			return ApprovalAllowed, "no command to classify, default allow"
		}
		if exec.IsTrustedCommand(command) {
			return ApprovalAllowed, "command classified as trusted"
		}
		return ApprovalPending, "command contains untrusted shell constructs"
	}
}
