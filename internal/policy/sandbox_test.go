package policy

import (
	"path/filepath"
	"testing"
)

func TestSandboxReadOnlyDeniesWrites(t *testing.T) {
	dir := t.TempDir()
	s := NewSandbox(SandboxReadOnly, dir)
	if err := s.CheckWrite(filepath.Join(dir, "a.txt")); err == nil {
		t.Fatal("expected read-only sandbox to deny writes")
	}
	if err := s.CheckRead(filepath.Join(dir, "a.txt")); err != nil {
		t.Fatalf("expected read-only sandbox to allow reads, got %v", err)
	}
}

func TestSandboxWorkspaceWriteContainsPath(t *testing.T) {
	dir := t.TempDir()
	s := NewSandbox(SandboxWorkspaceWrite, dir)
	if err := s.CheckWrite("a.txt"); err != nil {
		t.Fatalf("expected in-workspace write to be allowed, got %v", err)
	}
	if err := s.CheckWrite("../escape.txt"); err == nil {
		t.Fatal("expected escaping write to be denied")
	}
}

func TestSandboxDangerFullAccessAllowsAnything(t *testing.T) {
	s := NewSandbox(SandboxDangerFullAccess, "/does/not/matter")
	if err := s.CheckWrite("/etc/anything"); err != nil {
		t.Fatalf("expected danger-full-access to allow any write, got %v", err)
	}
}
