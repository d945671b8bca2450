package mcp

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"testing"
)

func fakeConnectedClient(id string, tools ...*MCPTool) *Client {
	return &Client{
		config:     &ServerConfig{ID: id},
		transport:  newFakeTransport(),
		logger:     slog.Default(),
		tools:      tools,
		serverInfo: ServerInfo{Name: id},
	}
}

func TestManager_ListTools_NoCollisionKeepsBareName(t *testing.T) {
	mgr := NewManager(&Config{Enabled: true}, slog.Default())
	mgr.clients["fs"] = fakeConnectedClient("fs", &MCPTool{Name: "read_file"})
	mgr.clients["git"] = fakeConnectedClient("git", &MCPTool{Name: "commit"})

	got := mgr.ListTools()
	names := make([]string, 0, len(got))
	for _, lt := range got {
		names = append(names, lt.Name)
	}
	sort.Strings(names)

	want := []string{"commit", "read_file"}
	if len(names) != len(want) || names[0] != want[0] || names[1] != want[1] {
		t.Fatalf("ListTools() names = %v, want %v", names, want)
	}
}

func TestManager_ListTools_NamespacesDuplicateNames(t *testing.T) {
	mgr := NewManager(&Config{Enabled: true}, slog.Default())
	mgr.clients["fs1"] = fakeConnectedClient("fs1", &MCPTool{Name: "read_file"})
	mgr.clients["fs2"] = fakeConnectedClient("fs2", &MCPTool{Name: "read_file"})

	got := mgr.ListTools()
	names := make(map[string]bool)
	for _, lt := range got {
		names[lt.Name] = true
	}

	if !names["fs1:read_file"] || !names["fs2:read_file"] {
		t.Fatalf("expected namespaced duplicate tool names, got %v", got)
	}
	if names["read_file"] {
		t.Fatalf("bare duplicate name should not appear unnamespaced: %v", got)
	}
}

// disconnectedTransport reports Connected() == false so HealthCheck can
// observe a down server without a real stdio/http dial.
type disconnectedTransport struct{ *fakeTransport }

func (d *disconnectedTransport) Connected() bool { return false }

func TestManager_HealthCheck_ReportsDisconnected(t *testing.T) {
	mgr := NewManager(&Config{Enabled: true}, slog.Default())
	mgr.clients["down"] = &Client{
		config:    &ServerConfig{ID: "down"},
		transport: &disconnectedTransport{fakeTransport: newFakeTransport()},
		logger:    slog.Default(),
	}

	results := mgr.HealthCheck(context.Background())
	if results["down"] == nil {
		t.Fatal("expected health check error for disconnected server")
	}
}

// recordingTransport wraps fakeTransport and returns a valid empty
// ToolCallResult so CallTool's json.Unmarshal succeeds, recording which
// server received the call.
type recordingTransport struct {
	*fakeTransport
	calls *int
}

func (r *recordingTransport) Call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	*r.calls++
	return []byte(`{"content":[]}`), nil
}

func TestManager_CallNamedTool_SplitsNamespace(t *testing.T) {
	mgr := NewManager(&Config{Enabled: true}, slog.Default())
	calls := 0
	mgr.clients["fs1"] = &Client{
		config:     &ServerConfig{ID: "fs1"},
		transport:  &recordingTransport{fakeTransport: newFakeTransport(), calls: &calls},
		logger:     slog.Default(),
		tools:      []*MCPTool{{Name: "read_file"}},
		serverInfo: ServerInfo{Name: "fs1"},
	}

	_, err := mgr.CallNamedTool(context.Background(), "fs1:read_file", map[string]any{"path": "x"})
	if err != nil {
		t.Fatalf("CallNamedTool() error = %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call routed to fs1, got %d", calls)
	}
}
