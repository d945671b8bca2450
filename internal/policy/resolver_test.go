package policy

import "testing"

func TestResolverDecideProfileDefaults(t *testing.T) {
	r := NewResolver()
	tp := &ToolPolicy{Profile: ProfileCoding}

	d := r.Decide(tp, "exec")
	if !d.Allowed {
		t.Fatalf("expected exec allowed under coding profile, got %+v", d)
	}
	d = r.Decide(tp, "send_message")
	if d.Allowed {
		t.Fatalf("expected send_message denied under coding profile, got %+v", d)
	}
}

func TestResolverDenyOverridesAllow(t *testing.T) {
	r := NewResolver()
	tp := &ToolPolicy{Allow: []string{"exec"}, Deny: []string{"exec"}}
	d := r.Decide(tp, "exec")
	if d.Allowed {
		t.Fatalf("expected deny to override allow, got %+v", d)
	}
}

func TestResolverExpandsMCPWildcard(t *testing.T) {
	r := NewResolver()
	r.RegisterMCPServer("github", []string{"create_issue", "list_prs"})
	tp := &ToolPolicy{Allow: []string{"mcp:github.*"}}

	d := r.Decide(tp, "mcp:github.create_issue")
	if !d.Allowed {
		t.Fatalf("expected mcp wildcard to allow create_issue, got %+v", d)
	}
	d = r.Decide(tp, "mcp:other.create_issue")
	if d.Allowed {
		t.Fatalf("expected unrelated server's tool to be denied, got %+v", d)
	}
}

func TestResolverFullProfileAllowsEverythingNotDenied(t *testing.T) {
	r := NewResolver()
	tp := &ToolPolicy{Profile: ProfileFull, Deny: []string{"exec"}}

	if !r.Decide(tp, "read").Allowed {
		t.Fatal("expected full profile to allow read")
	}
	if r.Decide(tp, "exec").Allowed {
		t.Fatal("expected full profile to still honor deny")
	}
}

func TestResolverAliasRedirectsDecideToCanonicalName(t *testing.T) {
	r := NewResolver()
	r.RegisterMCPServer("github", []string{"create_issue"})
	r.RegisterAlias("mcp_github_create_issue", "mcp:github.create_issue")
	tp := &ToolPolicy{Allow: []string{"mcp:github.*"}}

	d := r.Decide(tp, "mcp_github_create_issue")
	if !d.Allowed {
		t.Fatalf("expected aliased name to resolve to canonical rule and be allowed, got %+v", d)
	}
}

func TestResolverAliasRedirectsRequiresApproval(t *testing.T) {
	r := NewResolver()
	r.RegisterAlias("mcp_github_delete_repo", "mcp:github.delete_repo")
	tp := &ToolPolicy{RequireApproval: []string{"mcp:github.delete_repo"}}

	if !r.RequiresApproval(tp, "mcp_github_delete_repo") {
		t.Fatal("expected aliased name to require approval via its canonical name")
	}
}
