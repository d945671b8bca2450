package mcp

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
)

type fakeToolCaller struct {
	serverID string
	toolName string
	args     map[string]any
	result   *ToolCallResult
	err      error
}

func (f *fakeToolCaller) CallTool(ctx context.Context, serverID, toolName string, arguments map[string]any) (*ToolCallResult, error) {
	f.serverID = serverID
	f.toolName = toolName
	f.args = arguments
	return f.result, f.err
}

func TestSafeToolNameSanitizes(t *testing.T) {
	used := make(map[string]struct{})
	name := safeToolName("git-hub", "search/repo", used)
	if name != "mcp_git_hub_search_repo" {
		t.Fatalf("expected sanitized name, got %q", name)
	}
}

func TestSafeToolNameDeduplicates(t *testing.T) {
	used := make(map[string]struct{})
	first := safeToolName("foo-bar", "baz", used)
	second := safeToolName("foo_bar", "baz", used)

	if first == second {
		t.Fatalf("expected unique name for duplicate tool, got %q", second)
	}
	if !strings.HasPrefix(second, first+"_") {
		t.Fatalf("expected duplicate name to include hash suffix, got %q", second)
	}
}

func TestSafeToolNameTruncates(t *testing.T) {
	used := make(map[string]struct{})
	serverID := strings.Repeat("server", 10)
	toolName := strings.Repeat("tool", 10)
	name := safeToolName(serverID, toolName, used)

	if len(name) > maxToolNameLen {
		t.Fatalf("expected name length <= %d, got %d (%q)", maxToolNameLen, len(name), name)
	}
	if !strings.HasSuffix(name, toolNameHash(serverID, toolName)) {
		t.Fatalf("expected truncated name to include hash suffix, got %q", name)
	}
}

func TestMCPToolBridgeExecute(t *testing.T) {
	caller := &fakeToolCaller{
		result: &ToolCallResult{
			Content: []ToolResultContent{{Type: "text", Text: "ok"}},
		},
	}
	tool := &MCPTool{
		Name:        "do_thing",
		Description: "Does the thing",
		InputSchema: json.RawMessage(`{"type":"object","properties":{"value":{"type":"string"}}}`),
	}
	bridge := NewToolBridge(caller, "server", tool, "mcp_server_do_thing")

	result, err := bridge.Execute(context.Background(), json.RawMessage(`{"value":"hi"}`))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Content != "ok" {
		t.Fatalf("expected content %q, got %q", "ok", result.Content)
	}
	if caller.serverID != "server" || caller.toolName != "do_thing" {
		t.Fatalf("expected call server/tool %q/%q, got %q/%q", "server", "do_thing", caller.serverID, caller.toolName)
	}
	if caller.args["value"] != "hi" {
		t.Fatalf("expected arg value %q, got %v", "hi", caller.args["value"])
	}
}

func TestMCPToolBridgeExecuteRejectsArgumentsViolatingSchema(t *testing.T) {
	caller := &fakeToolCaller{result: &ToolCallResult{Content: []ToolResultContent{{Type: "text", Text: "ok"}}}}
	tool := &MCPTool{
		Name:        "do_thing",
		InputSchema: json.RawMessage(`{"type":"object","properties":{"value":{"type":"string"}},"required":["value"]}`),
	}
	bridge := NewToolBridge(caller, "server", tool, "mcp_server_do_thing")

	result, err := bridge.Execute(context.Background(), json.RawMessage(`{}`))
	if err != nil {
		t.Fatalf("expected a tool.Result error, not a Go error, got %v", err)
	}
	if !result.IsError {
		t.Fatalf("expected IsError for missing required field, got %+v", result)
	}
	if caller.toolName != "" {
		t.Fatalf("expected CallTool never to be invoked, but it was called with %q", caller.toolName)
	}
}

func TestMCPToolBridgeExecuteDecodesBinaryContentAsArtifact(t *testing.T) {
	png := []byte{0x89, 0x50, 0x4e, 0x47}
	caller := &fakeToolCaller{
		result: &ToolCallResult{
			Content: []ToolResultContent{
				{Type: "image", MimeType: "image/png", Data: base64.StdEncoding.EncodeToString(png)},
			},
		},
	}
	tool := &MCPTool{Name: "screenshot", InputSchema: json.RawMessage(`{"type":"object"}`)}
	bridge := NewToolBridge(caller, "server", tool, "mcp_server_screenshot")

	result, err := bridge.Execute(context.Background(), json.RawMessage(`{}`))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(result.Artifacts) != 1 {
		t.Fatalf("expected one decoded artifact, got %d", len(result.Artifacts))
	}
	if !bytes.Equal(result.Artifacts[0].Data, png) {
		t.Fatalf("expected artifact data %x, got %x", png, result.Artifacts[0].Data)
	}
	if result.Artifacts[0].MimeType != "image/png" {
		t.Fatalf("expected mime type image/png, got %q", result.Artifacts[0].MimeType)
	}
}
