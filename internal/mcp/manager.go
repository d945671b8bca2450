package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Manager manages multiple MCP server connections.
type Manager struct {
	config  *Config
	logger  *slog.Logger
	clients map[string]*Client
	mu      sync.RWMutex
}

// Config holds the MCP manager configuration.
type Config struct {
	Enabled bool            `yaml:"enabled"`
	Servers []*ServerConfig `yaml:"servers"`
}

// NewManager creates a new MCP manager.
func NewManager(cfg *Config, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}

	return &Manager{
		config:  cfg,
		logger:  logger.With("component", "mcp"),
		clients: make(map[string]*Client),
	}
}

// Start connects to all configured MCP servers with auto_start enabled.
// Deprecated in favor of StartAll, kept as a thin alias so existing
// callers (and the teacher's own sequential-start tests) keep working.
func (m *Manager) Start(ctx context.Context) error {
	return m.StartAll(ctx)
}

// StartAll connects to every auto_start server concurrently and
// collects per-server errors rather than failing fast: one
// misconfigured server should never block the others from coming up.
func (m *Manager) StartAll(ctx context.Context) error {
	if m.config == nil || !m.config.Enabled {
		m.logger.Debug("MCP disabled")
		return nil
	}

	var g errgroup.Group
	var mu sync.Mutex
	var errs []error

	for _, serverCfg := range m.config.Servers {
		if !serverCfg.AutoStart {
			continue
		}
		serverCfg := serverCfg
		g.Go(func() error {
			if err := m.Connect(ctx, serverCfg.ID); err != nil {
				m.logger.Error("failed to connect to MCP server",
					"server", serverCfg.ID,
					"error", err)
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", serverCfg.ID, err))
				mu.Unlock()
			}
			return nil
		})
	}
	g.Wait()

	if len(errs) > 0 {
		return fmt.Errorf("mcp: %d server(s) failed to start: %w", len(errs), errors.Join(errs...))
	}
	return nil
}

// Stop disconnects from all MCP servers. Deprecated in favor of StopAll.
func (m *Manager) Stop() error {
	return m.StopAll()
}

// StopAll closes every connected client concurrently.
func (m *Manager) StopAll() error {
	m.mu.Lock()
	ids := make([]string, 0, len(m.clients))
	for id := range m.clients {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	var g errgroup.Group
	var mu sync.Mutex
	var errs []error

	for _, id := range ids {
		id := id
		g.Go(func() error {
			if err := m.Disconnect(id); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", id, err))
				mu.Unlock()
			}
			return nil
		})
	}
	g.Wait()

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// HealthCheck pings every connected server's transport concurrently and
// returns a map of server ID to the error observed, if any. A server
// absent from the result is healthy.
func (m *Manager) HealthCheck(ctx context.Context) map[string]error {
	m.mu.RLock()
	clients := make(map[string]*Client, len(m.clients))
	for id, c := range m.clients {
		clients[id] = c
	}
	m.mu.RUnlock()

	var g errgroup.Group
	var mu sync.Mutex
	results := make(map[string]error)

	for id, client := range clients {
		id, client := id, client
		g.Go(func() error {
			if !client.Connected() {
				mu.Lock()
				results[id] = fmt.Errorf("transport not connected")
				mu.Unlock()
				return nil
			}
			if _, err := client.transport.Call(ctx, "tools/list", nil); err != nil {
				mu.Lock()
				results[id] = err
				mu.Unlock()
			}
			return nil
		})
	}
	g.Wait()

	return results
}

// Restart disconnects and reconnects a single server, re-running
// Connect's initialize handshake. It is for a caller that has seen
// HealthCheck (or a mid-call transport error) report a server as
// unreachable; nothing in this module calls it automatically.
func (m *Manager) Restart(ctx context.Context, serverID string) error {
	if err := m.Disconnect(serverID); err != nil {
		m.logger.Warn("restart: disconnect failed", "server", serverID, "error", err)
	}
	return m.Connect(ctx, serverID)
}

// Connect connects to a specific MCP server by ID.
func (m *Manager) Connect(ctx context.Context, serverID string) error {
	// Find server config
	var serverCfg *ServerConfig
	for _, cfg := range m.config.Servers {
		if cfg.ID == serverID {
			serverCfg = cfg
			break
		}
	}

	if serverCfg == nil {
		return fmt.Errorf("server %q not found in config", serverID)
	}

	// Check if already connected
	m.mu.RLock()
	if _, exists := m.clients[serverID]; exists {
		m.mu.RUnlock()
		return nil
	}
	m.mu.RUnlock()

	// Create and connect client
	client := NewClient(serverCfg, m.logger)
	if err := client.Connect(ctx); err != nil {
		return err
	}

	m.mu.Lock()
	m.clients[serverID] = client
	m.mu.Unlock()

	m.logger.Info("connected to MCP server",
		"server", serverID,
		"name", client.ServerInfo().Name)

	return nil
}

// Disconnect disconnects from a specific MCP server.
func (m *Manager) Disconnect(serverID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	client, exists := m.clients[serverID]
	if !exists {
		return nil
	}

	if err := client.Close(); err != nil {
		return err
	}

	delete(m.clients, serverID)
	m.logger.Info("disconnected from MCP server", "server", serverID)

	return nil
}

// Client returns a client for a specific server.
func (m *Manager) Client(serverID string) (*Client, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	client, exists := m.clients[serverID]
	return client, exists
}

// Clients returns all connected clients.
func (m *Manager) Clients() map[string]*Client {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[string]*Client, len(m.clients))
	for id, client := range m.clients {
		result[id] = client
	}
	return result
}

// AllTools returns all tools from all connected servers.
func (m *Manager) AllTools() map[string][]*MCPTool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[string][]*MCPTool)
	for id, client := range m.clients {
		if tools := client.Tools(); len(tools) > 0 {
			result[id] = tools
		}
	}
	return result
}

// AllResources returns all resources from all connected servers.
func (m *Manager) AllResources() map[string][]*MCPResource {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[string][]*MCPResource)
	for id, client := range m.clients {
		if resources := client.Resources(); len(resources) > 0 {
			result[id] = resources
		}
	}
	return result
}

// AllPrompts returns all prompts from all connected servers.
func (m *Manager) AllPrompts() map[string][]*MCPPrompt {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[string][]*MCPPrompt)
	for id, client := range m.clients {
		if prompts := client.Prompts(); len(prompts) > 0 {
			result[id] = prompts
		}
	}
	return result
}

// CallTool calls a tool on a specific server.
func (m *Manager) CallTool(ctx context.Context, serverID string, toolName string, arguments map[string]any) (*ToolCallResult, error) {
	client, exists := m.Client(serverID)
	if !exists {
		return nil, fmt.Errorf("server %q not connected", serverID)
	}

	return client.CallTool(ctx, toolName, arguments)
}

// FindTool finds a tool by name across all servers.
// Returns the server ID and tool definition, or empty string if not found.
func (m *Manager) FindTool(name string) (serverID string, tool *MCPTool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for id, client := range m.clients {
		for _, t := range client.Tools() {
			if t.Name == name {
				return id, t
			}
		}
	}
	return "", nil
}

// ReadResource reads a resource from a specific server.
func (m *Manager) ReadResource(ctx context.Context, serverID string, uri string) ([]*ResourceContent, error) {
	client, exists := m.Client(serverID)
	if !exists {
		return nil, fmt.Errorf("server %q not connected", serverID)
	}

	return client.ReadResource(ctx, uri)
}

// GetPrompt gets a prompt from a specific server.
func (m *Manager) GetPrompt(ctx context.Context, serverID string, name string, arguments map[string]string) (*GetPromptResult, error) {
	client, exists := m.Client(serverID)
	if !exists {
		return nil, fmt.Errorf("server %q not connected", serverID)
	}

	return client.GetPrompt(ctx, name, arguments)
}

// SetSamplingHandler starts handling server-initiated sampling
// requests with handler on every currently connected client. A nil
// handler is ignored.
func (m *Manager) SetSamplingHandler(handler SamplingHandler) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, client := range m.clients {
		client.HandleSampling(handler)
	}
}

// ListedTool pairs a tool definition with the (possibly namespaced)
// name callers should use to invoke it through CallNamedTool.
type ListedTool struct {
	Name     string
	ServerID string
	Tool     *MCPTool
}

// ListTools returns the union of tools across all connected servers.
// The teacher's Client.Tools exposes names unnamespaced per-client;
// when two servers both expose a tool with the same bare name, both
// are instead exposed as "<server>:<tool>" so a caller with several
// MCP servers configured never silently shadows one server's tool
// with another's.
func (m *Manager) ListTools() []ListedTool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	type entry struct {
		serverID string
		tool     *MCPTool
	}
	byName := make(map[string][]entry)
	var order []string
	for id, client := range m.clients {
		for _, t := range client.Tools() {
			if _, seen := byName[t.Name]; !seen {
				order = append(order, t.Name)
			}
			byName[t.Name] = append(byName[t.Name], entry{serverID: id, tool: t})
		}
	}

	var out []ListedTool
	for _, name := range order {
		entries := byName[name]
		if len(entries) == 1 {
			out = append(out, ListedTool{Name: name, ServerID: entries[0].serverID, Tool: entries[0].tool})
			continue
		}
		for _, e := range entries {
			out = append(out, ListedTool{
				Name:     e.serverID + ":" + name,
				ServerID: e.serverID,
				Tool:     e.tool,
			})
		}
	}
	return out
}

// CallNamedTool calls a tool by the name ListTools returned, splitting
// a "<server>:<tool>" namespaced name back into its server ID and bare
// tool name.
func (m *Manager) CallNamedTool(ctx context.Context, name string, arguments map[string]any) (*ToolCallResult, error) {
	serverID, toolName, namespaced := splitNamespacedTool(name)
	if namespaced {
		return m.CallTool(ctx, serverID, toolName, arguments)
	}

	foundServer, tool := m.FindTool(name)
	if tool == nil {
		return nil, fmt.Errorf("tool %q not found on any connected server", name)
	}
	return m.CallTool(ctx, foundServer, name, arguments)
}

func splitNamespacedTool(name string) (serverID, toolName string, ok bool) {
	for i := 0; i < len(name); i++ {
		if name[i] == ':' {
			return name[:i], name[i+1:], true
		}
	}
	return "", name, false
}

// ToolSchema represents the JSON schema for a tool, used by LLMs.
type ToolSchema struct {
	ServerID    string          `json:"server_id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"input_schema"`
}

// ToolSchemas returns tool schemas suitable for LLM tool definitions.
func (m *Manager) ToolSchemas() []ToolSchema {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var schemas []ToolSchema
	for id, client := range m.clients {
		for _, tool := range client.Tools() {
			schemas = append(schemas, ToolSchema{
				ServerID:    id,
				Name:        tool.Name,
				Description: tool.Description,
				InputSchema: tool.InputSchema,
			})
		}
	}
	return schemas
}

// ServerStatus represents the status of an MCP server.
type ServerStatus struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Connected bool       `json:"connected"`
	Server    ServerInfo `json:"server"`
	Tools     int        `json:"tools"`
	Resources int        `json:"resources"`
	Prompts   int        `json:"prompts"`
}

// Status returns the status of all configured servers.
func (m *Manager) Status() []ServerStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var statuses []ServerStatus
	for _, cfg := range m.config.Servers {
		status := ServerStatus{
			ID:   cfg.ID,
			Name: cfg.Name,
		}

		if client, exists := m.clients[cfg.ID]; exists {
			status.Connected = client.Connected()
			status.Server = client.ServerInfo()
			status.Tools = len(client.Tools())
			status.Resources = len(client.Resources())
			status.Prompts = len(client.Prompts())
		}

		statuses = append(statuses, status)
	}

	return statuses
}
