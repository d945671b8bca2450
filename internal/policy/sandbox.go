package policy

import (
	"fmt"

	"github.com/corebridge/agentcore/internal/patch"
)

// Sandbox enforces SandboxMode's filesystem containment, grounded on
// the teacher's tools/files resolver (files/resolver.go), reused here
// directly as internal/patch.Resolver rather than reimplemented.
type Sandbox struct {
	Mode     SandboxMode
	resolver patch.Resolver
}

// NewSandbox builds a Sandbox confined to workspaceRoot.
func NewSandbox(mode SandboxMode, workspaceRoot string) *Sandbox {
	return &Sandbox{Mode: mode, resolver: patch.Resolver{Root: workspaceRoot}}
}

// CheckWrite reports whether a write to path is permitted under the
// sandbox's mode, resolving and containing it to the workspace root
// when mode is WorkspaceWrite.
func (s *Sandbox) CheckWrite(path string) error {
	switch s.Mode {
	case SandboxDangerFullAccess:
		return nil
	case SandboxReadOnly:
		return fmt.Errorf("policy: write to %q denied, sandbox is read-only", path)
	case SandboxWorkspaceWrite:
		fallthrough
	default:
		if _, err := s.resolver.Resolve(path); err != nil {
			return fmt.Errorf("policy: write to %q denied: %w", path, err)
		}
		return nil
	}
}

// CheckRead reports whether a read of path is permitted.
// DangerFullAccess allows any read; ReadOnly/WorkspaceWrite both
// confine reads to the workspace root the same way writes are confined.
func (s *Sandbox) CheckRead(path string) error {
	if s.Mode == SandboxDangerFullAccess {
		return nil
	}
	if _, err := s.resolver.Resolve(path); err != nil {
		return fmt.Errorf("policy: read of %q denied: %w", path, err)
	}
	return nil
}
