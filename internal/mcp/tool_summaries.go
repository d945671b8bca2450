package mcp

import (
	"encoding/json"

	"github.com/corebridge/agentcore/internal/tool"
)

// ToolSummaries describes every tool RegisterToolsWithRegistrar would
// register against mgr, without actually registering them — a
// dry-run surface for a policy/admin view to list what an operator's
// ToolPolicy would be judging before a session ever calls Execute.
// Summary.Canonical carries the same "mcp:server.tool" form
// policy.Resolver.RegisterAlias maps each Summary.Name's safe alias
// back to, so a caller can render rules against either name.
func ToolSummaries(mgr *Manager) []tool.Summary {
	if mgr == nil {
		return nil
	}

	tools := listToolsSorted(mgr)
	used := make(map[string]struct{})
	summaries := make([]tool.Summary, 0, len(tools))

	for _, entry := range tools {
		name := safeToolName(entry.serverID, entry.tool.Name, used)
		summaries = append(summaries, tool.Summary{
			Name:        name,
			Description: entry.tool.Description,
			Schema:      entry.tool.InputSchema,
			Source:      "mcp",
			Namespace:   entry.serverID,
			Canonical:   canonicalToolName(entry.serverID, entry.tool.Name),
		})
	}

	for _, serverID := range listServerIDs(mgr) {
		resListName := safeToolName(serverID, "resources_list", used)
		resReadName := safeToolName(serverID, "resource_read", used)
		promptListName := safeToolName(serverID, "prompts_list", used)
		promptGetName := safeToolName(serverID, "prompt_get", used)

		resList := NewResourceListBridge(mgr, serverID, resListName)
		resRead := NewResourceReadBridge(mgr, serverID, resReadName)
		promptList := NewPromptListBridge(mgr, serverID, promptListName)
		promptGet := NewPromptGetBridge(mgr, serverID, promptGetName)

		summaries = append(summaries,
			toolSummaryFromTool(resList, "mcp", serverID, canonicalResourceList(serverID)),
			toolSummaryFromTool(resRead, "mcp", serverID, canonicalResourceRead(serverID)),
			toolSummaryFromTool(promptList, "mcp", serverID, canonicalPromptList(serverID)),
			toolSummaryFromTool(promptGet, "mcp", serverID, canonicalPromptGet(serverID)),
		)
	}

	return summaries
}

type summaryTool interface {
	Name() string
	Description() string
	Schema() json.RawMessage
}

func toolSummaryFromTool(t summaryTool, source, namespace, canonical string) tool.Summary {
	if t == nil {
		return tool.Summary{}
	}
	return tool.Summary{
		Name:        t.Name(),
		Description: t.Description(),
		Schema:      t.Schema(),
		Source:      source,
		Namespace:   namespace,
		Canonical:   canonical,
	}
}
