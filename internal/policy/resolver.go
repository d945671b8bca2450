package policy

import (
	"strings"
	"sync"
)

// Resolver expands groups and MCP-server wildcards into concrete tool
// names and decides allow/deny for a ToolPolicy, grounded on the
// teacher's tools/policy.Resolver (ExpandGroups/Decide), trimmed of
// edge-daemon registration the spec has no equivalent of.
type Resolver struct {
	mu         sync.RWMutex
	groups     map[string][]string
	mcpServers map[string][]string
	aliases    map[string]string
}

// NewResolver creates a Resolver seeded with DefaultGroups.
func NewResolver() *Resolver {
	groups := make(map[string][]string, len(DefaultGroups))
	for k, v := range DefaultGroups {
		groups[k] = append([]string(nil), v...)
	}
	return &Resolver{
		groups:     groups,
		mcpServers: make(map[string][]string),
		aliases:    make(map[string]string),
	}
}

// RegisterMCPServer makes an MCP server's tools available to "mcp:id.*"
// wildcard rules and as the group "mcp:id". Satisfies
// mcp.ToolPolicyRegistrar so internal/mcp.RegisterToolsWithRegistrar can
// drive policy directly off the live server set.
func (r *Resolver) RegisterMCPServer(serverID string, tools []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mcpServers[serverID] = tools
	r.groups["mcp:"+serverID] = tools
}

// RegisterAlias records that alias (the collision-safe function name a
// bridge registers with the provider, e.g. "mcp_github_create_issue")
// should be judged under canonical's policy rules (e.g.
// "mcp:github.create_issue"). Tool names crossing the MCP bridge are
// rewritten to satisfy LLM function-name constraints (length,
// character set) before they ever reach Decide, so without this
// indirection every allow/deny/RequireApproval rule an operator writes
// against a server's real tool name would silently never match the
// mangled name the session actually dispatches. Satisfies
// mcp.ToolPolicyRegistrar.
func (r *Resolver) RegisterAlias(alias, canonical string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.aliases[NormalizeTool(alias)] = NormalizeTool(canonical)
}

// resolveAlias returns the canonical name a policy rule should judge
// name under, or name unchanged if it carries no alias.
func (r *Resolver) resolveAlias(name string) string {
	if canonical, ok := r.aliases[name]; ok {
		return canonical
	}
	return name
}

// ExpandGroups expands group references and MCP wildcards in items into
// concrete tool names.
func (r *Resolver) ExpandGroups(items []string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []string
	seen := make(map[string]bool)
	for _, item := range items {
		name := NormalizeTool(item)
		if tools, ok := r.groups[name]; ok {
			for _, t := range tools {
				if !seen[t] {
					seen[t] = true
					result = append(result, t)
				}
			}
			continue
		}
		if strings.HasPrefix(name, "mcp:") && strings.HasSuffix(name, ".*") {
			serverID := strings.TrimSuffix(strings.TrimPrefix(name, "mcp:"), ".*")
			for _, t := range r.mcpServers[serverID] {
				full := "mcp:" + serverID + "." + t
				if !seen[full] {
					seen[full] = true
					result = append(result, full)
				}
			}
			continue
		}
		if !seen[name] {
			seen[name] = true
			result = append(result, name)
		}
	}
	return result
}

// Decision explains why a tool was allowed or denied.
type Decision struct {
	Allowed bool
	Tool    string
	Reason  string
}

// Decide returns an allow/deny decision for toolName under policy: deny
// rules always win over allow rules, matching the teacher's precedence.
func (r *Resolver) Decide(tp *ToolPolicy, toolName string) Decision {
	r.mu.RLock()
	name := r.resolveAlias(NormalizeTool(toolName))
	r.mu.RUnlock()
	if tp == nil {
		return Decision{Tool: name, Reason: "no policy configured"}
	}

	var allowed []string
	if tp.Profile != "" {
		if def, ok := ProfileDefaults[tp.Profile]; ok && def != nil {
			allowed = r.ExpandGroups(def.Allow)
		}
	}
	allowed = append(allowed, r.ExpandGroups(tp.Allow)...)
	denied := r.ExpandGroups(tp.Deny)

	for _, d := range denied {
		if matchesRule(d, name) {
			return Decision{Tool: name, Reason: "denied by rule " + d}
		}
	}
	if tp.Profile == ProfileFull {
		return Decision{Allowed: true, Tool: name, Reason: "profile full"}
	}
	for _, a := range allowed {
		if matchesRule(a, name) {
			return Decision{Allowed: true, Tool: name, Reason: "allowed by rule " + a}
		}
	}
	return Decision{Tool: name, Reason: "no matching allow rule"}
}

// RequiresApproval reports whether toolName matches one of policy's
// RequireApproval patterns.
func (r *Resolver) RequiresApproval(tp *ToolPolicy, toolName string) bool {
	if tp == nil {
		return false
	}
	r.mu.RLock()
	name := r.resolveAlias(NormalizeTool(toolName))
	r.mu.RUnlock()
	for _, pattern := range tp.RequireApproval {
		if matchesRule(pattern, name) {
			return true
		}
	}
	return false
}

func matchesRule(rule, name string) bool {
	rule = NormalizeTool(rule)
	if rule == name {
		return true
	}
	if strings.HasSuffix(rule, "*") {
		return strings.HasPrefix(name, strings.TrimSuffix(rule, "*"))
	}
	return false
}
