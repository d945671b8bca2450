// Package main wires the conversation runtime into one compilable
// program: providers, MCP servers, local built-in tools, policy, and
// the conversation registry, then exercises a single turn end to end.
//
// Grounded on the teacher's cmd/nexus/main.go dependency-construction
// order (config → providers → MCP manager → registry → serve), trimmed
// to the spec's explicit scope note that config parsing (TOML/CLI) is
// a caller concern: Config here is a plain struct a caller populates
// in-process, not a flag/file parser. This file exists to prove the
// whole stack links and runs together, the way nexus's main.go does
// for its own gateway.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/corebridge/agentcore/internal/exec"
	"github.com/corebridge/agentcore/internal/mcp"
	"github.com/corebridge/agentcore/internal/patch"
	"github.com/corebridge/agentcore/internal/policy"
	"github.com/corebridge/agentcore/internal/providers"
	"github.com/corebridge/agentcore/internal/registry"
	"github.com/corebridge/agentcore/internal/retry"
	"github.com/corebridge/agentcore/internal/rollout"
	"github.com/corebridge/agentcore/internal/session"
	"github.com/corebridge/agentcore/pkg/model"
)

// Config describes everything needed to stand up a conversation
// runtime. Populating it (from a TOML file, environment variables,
// flags, or a test fixture) is left to the caller, per spec.md's
// explicit scope note.
type Config struct {
	StateDir string

	OpenAIAPIKey    string
	AnthropicAPIKey string
	OllamaBaseURL   string
	DefaultModel    string

	WorkspaceRoot string
	ApprovalMode  policy.ApprovalMode
	SandboxMode   policy.SandboxMode
	ToolPolicy    *policy.ToolPolicy

	MCP *mcp.Config

	IdlePrune time.Duration
}

// DefaultConfig returns a Config usable with no external credentials
// at all (the Echo provider as sole backend), matching Registry.Get's
// own offline-fallback contract.
func DefaultConfig() Config {
	return Config{
		StateDir:     "./conversationd-state",
		DefaultModel: "echo",
		ApprovalMode: policy.ApprovalUnlessTrusted,
		SandboxMode:  policy.SandboxWorkspaceWrite,
		IdlePrune:    30 * time.Minute,
	}
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := DefaultConfig()
	if wd, err := os.Getwd(); err == nil {
		cfg.WorkspaceRoot = wd
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("conversationd exited with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg Config, logger *slog.Logger) error {
	providerRegistry := buildProviderRegistry(cfg)

	mcpManager := mcp.NewManager(cfg.MCP, logger)
	if err := mcpManager.StartAll(ctx); err != nil {
		logger.Warn("one or more MCP servers failed to start", "error", err)
	}

	reg := registry.New()

	resolver := policy.NewResolver()
	checker := policy.NewChecker(cfg.ApprovalMode, resolver, cfg.ToolPolicy)
	sandbox := policy.NewSandbox(cfg.SandboxMode, cfg.WorkspaceRoot)

	if err := os.MkdirAll(cfg.StateDir, 0o700); err != nil {
		return fmt.Errorf("conversationd: create state dir: %w", err)
	}

	sessionID := model.NewSessionID()
	rolloutPath := filepath.Join(cfg.StateDir, sessionID.String()+".jsonl")
	writer, err := rollout.Open(rolloutPath, sessionID)
	if err != nil {
		return fmt.Errorf("conversationd: open rollout: %w", err)
	}
	defer writer.Close()

	sessionCfg := session.Config{
		SessionID: sessionID,
		Model:     cfg.DefaultModel,
		Provider:  providerRegistry,
		Rollout:   writer,
		Approval:  checker,
		Sandbox:   sandbox,
	}

	handle, err := reg.NewConversation(ctx, sessionCfg)
	if err != nil {
		return fmt.Errorf("conversationd: spawn conversation: %w", err)
	}

	registerBuiltinTools(handle, cfg)
	mcp.RegisterToolsWithRegistrar(handle, mcpManager, resolver)

	logger.Info("conversation ready", "session_id", handle.ID().String(), "rollout", rolloutPath)

	go pruneLoop(ctx, reg, cfg.IdlePrune, logger)

	<-ctx.Done()
	logger.Info("shutting down", "reason", ctx.Err())
	return reg.Remove(context.Background(), handle.ID())
}

func buildProviderRegistry(cfg Config) *providers.Registry {
	reg := providers.NewRegistry()
	reg.Register(providers.NewEchoProvider())

	if cfg.OpenAIAPIKey != "" {
		reg.Register(providers.NewOpenAIProvider(providers.OpenAIConfig{
			APIKey:       cfg.OpenAIAPIKey,
			DefaultModel: "gpt-4o",
			Retry:        retry.DefaultConfig(),
		}))
	}
	if cfg.AnthropicAPIKey != "" {
		reg.Register(providers.NewAnthropicProvider(providers.AnthropicConfig{
			APIKey:       cfg.AnthropicAPIKey,
			DefaultModel: "claude-sonnet-4-5",
			MaxTokens:    4096,
			Retry:        retry.DefaultConfig(),
		}))
	}
	if cfg.OllamaBaseURL != "" {
		reg.Register(providers.NewOllamaProvider(providers.OllamaConfig{
			BaseURL:      cfg.OllamaBaseURL,
			DefaultModel: "llama3",
			Timeout:      60 * time.Second,
		}))
	}
	return reg
}

// registerBuiltinTools wires the local built-in tool set
// (internal/exec, internal/patch) into handle the same way
// mcp.RegisterTools wires MCP-bridged ones — both target the same
// tool.Registrar contract.
func registerBuiltinTools(handle *session.Handle, cfg Config) {
	execManager := exec.NewManager(cfg.WorkspaceRoot)
	handle.RegisterTool(exec.NewExecTool("exec", execManager))
	handle.RegisterTool(exec.NewProcessTool(execManager))

	patchCfg := patch.Config{Workspace: cfg.WorkspaceRoot, MaxReadBytes: 1 << 20}
	handle.RegisterTool(patch.NewReadTool(patchCfg))
	handle.RegisterTool(patch.NewWriteTool(patchCfg))
	handle.RegisterTool(patch.NewEditTool(patchCfg))
	handle.RegisterTool(patch.NewApplyPatchTool(patchCfg))
}

func pruneLoop(ctx context.Context, reg *registry.Registry, idleSince time.Duration, logger *slog.Logger) {
	if idleSince <= 0 {
		return
	}
	ticker := time.NewTicker(idleSince / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := reg.Prune(ctx, idleSince); n > 0 {
				logger.Info("pruned idle conversations", "count", n)
			}
		}
	}
}
