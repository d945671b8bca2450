package session

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/corebridge/agentcore/internal/policy"
	"github.com/corebridge/agentcore/internal/providers"
	"github.com/corebridge/agentcore/internal/tool"
	"github.com/corebridge/agentcore/pkg/model"
)

func newEchoRegistry() *providers.Registry {
	reg := providers.NewRegistry()
	reg.Register(providers.NewEchoProvider())
	return reg
}

func drainUntilComplete(t *testing.T, h *Handle, timeout time.Duration) []model.Event {
	t.Helper()
	var events []model.Event
	deadline := time.After(timeout)
	for {
		select {
		case ev := <-h.Events():
			events = append(events, ev)
			if ev.Type == model.EventTaskComplete || ev.Type == model.EventTurnAborted || ev.Type == model.EventError {
				return events
			}
		case <-deadline:
			t.Fatalf("timed out waiting for turn completion, got %d events", len(events))
		}
	}
}

func TestSessionCompletesATurnWithEchoProvider(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := New(ctx, Config{
		Model:    "echo",
		Provider: newEchoRegistry(),
	})

	if ev := <-h.Events(); ev.Type != model.EventSessionConfigured {
		t.Fatalf("expected SessionConfigured first, got %s", ev.Type)
	}

	if err := h.Submit(ctx, model.UserInput(model.InputText("hello"))); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	events := drainUntilComplete(t, h, time.Second)
	last := events[len(events)-1]
	if last.Type != model.EventTaskComplete {
		t.Fatalf("expected TaskComplete, got %s (%+v)", last.Type, events)
	}
	if last.Complete == nil || last.Complete.LastAgentMessage == "" {
		t.Fatalf("expected a non-empty last agent message, got %+v", last.Complete)
	}
}

func TestSessionShutdownTerminatesRunGoroutine(t *testing.T) {
	ctx := context.Background()
	h := New(ctx, Config{Model: "echo", Provider: newEchoRegistry()})
	<-h.Events()

	if err := h.Submit(ctx, model.Shutdown()); err != nil {
		t.Fatalf("Submit shutdown: %v", err)
	}

	select {
	case <-h.Done():
	case <-time.After(time.Second):
		t.Fatal("session did not terminate after Shutdown")
	}

	if h.State() != StateTerminal {
		t.Fatalf("expected StateTerminal, got %s", h.State())
	}

	if err := h.Submit(context.Background(), model.UserInput(model.InputText("x"))); err == nil {
		t.Fatal("expected Submit to a terminated session to fail")
	}
}

// fakeToolCallProvider issues exactly one tool call on its first
// completion and a plain text reply on the second, so dispatch tests
// can exercise the tool-call branch without a real backend.
type fakeToolCallProvider struct {
	calls int
}

func (p *fakeToolCallProvider) Name() string            { return "fake" }
func (p *fakeToolCallProvider) DisplayName() string      { return "Fake" }
func (p *fakeToolCallProvider) SupportsStreaming() bool  { return true }
func (p *fakeToolCallProvider) ValidateConfig() error    { return nil }
func (p *fakeToolCallProvider) AvailableModels() []providers.Model {
	return []providers.Model{{ID: "fake-1", Name: "Fake"}}
}

func (p *fakeToolCallProvider) CompleteStreaming(ctx context.Context, req *providers.Request) (<-chan providers.StreamEvent, error) {
	out := make(chan providers.StreamEvent, 4)
	p.calls++
	if p.calls == 1 {
		out <- providers.StreamEvent{Kind: providers.StreamToolCall, ToolCall: &providers.ToolCall{
			ID:    "call-1",
			Name:  "exec",
			Input: json.RawMessage(`{"command":"echo hi"}`),
		}}
		out <- providers.StreamEvent{Kind: providers.StreamFinished}
	} else {
		out <- providers.StreamEvent{Kind: providers.StreamToken, Text: "done"}
		out <- providers.StreamEvent{Kind: providers.StreamFinished, Full: "done"}
	}
	close(out)
	return out, nil
}

type fakeTool struct {
	name   string
	output string
	err    error
}

func newFakeExecTool(name, output string, err error) *fakeTool {
	return &fakeTool{name: name, output: output, err: err}
}

func (t *fakeTool) Name() string           { return t.name }
func (t *fakeTool) Description() string    { return "fake tool" }
func (t *fakeTool) Schema() json.RawMessage { return json.RawMessage(`{}`) }
func (t *fakeTool) Execute(ctx context.Context, params json.RawMessage) (*tool.Result, error) {
	if t.err != nil {
		return nil, t.err
	}
	return &tool.Result{Content: t.output}, nil
}

func TestSessionDispatchesAndExecutesToolCalls(t *testing.T) {
	ctx := context.Background()
	reg := providers.NewRegistry()
	fake := &fakeToolCallProvider{}
	reg.Register(fake)
	reg.Register(providers.NewEchoProvider())

	resolver := policy.NewResolver()
	checker := policy.NewChecker(policy.ApprovalNever, resolver, &policy.ToolPolicy{Profile: policy.ProfileFull})

	h := New(ctx, Config{
		Model:    "fake",
		Provider: reg,
		Approval: checker,
	})
	h.RegisterTool(newFakeExecTool("exec", "hi\n", nil))
	<-h.Events()

	if err := h.Submit(ctx, model.UserInput(model.InputText("run echo hi"))); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	events := drainUntilComplete(t, h, time.Second)
	var sawBegin, sawEnd bool
	for _, ev := range events {
		if ev.Type == model.EventMcpToolCallBegin {
			sawBegin = true
		}
		if ev.Type == model.EventMcpToolCallEnd {
			sawEnd = true
			if !ev.McpEnd.OK {
				t.Fatalf("expected tool call to succeed, got %+v", ev.McpEnd)
			}
		}
	}
	if !sawBegin || !sawEnd {
		t.Fatalf("expected McpToolCallBegin/End events, got %+v", events)
	}
}

func TestSessionApprovalOnRequestPendsAndResolves(t *testing.T) {
	ctx := context.Background()
	reg := providers.NewRegistry()
	fake := &fakeToolCallProvider{}
	reg.Register(fake)

	resolver := policy.NewResolver()
	tp := &policy.ToolPolicy{Profile: policy.ProfileFull, RequireApproval: []string{"exec"}}
	checker := policy.NewChecker(policy.ApprovalOnRequest, resolver, tp)

	h := New(ctx, Config{
		Model:    "fake",
		Provider: reg,
		Approval: checker,
	})
	h.RegisterTool(newFakeExecTool("exec", "hi\n", nil))
	<-h.Events()

	if err := h.Submit(ctx, model.UserInput(model.InputText("run echo hi"))); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	var approvalCallID string
	deadline := time.After(time.Second)
waitApproval:
	for {
		select {
		case ev := <-h.Events():
			if ev.Type == model.EventExecApprovalRequest {
				approvalCallID = ev.Approval.CallID
				break waitApproval
			}
		case <-deadline:
			t.Fatal("timed out waiting for ExecApprovalRequest")
		}
	}

	if err := h.Submit(ctx, model.ApproveExec(approvalCallID, model.ApprovalAllow)); err != nil {
		t.Fatalf("Submit approval: %v", err)
	}

	events := drainUntilComplete(t, h, time.Second)
	last := events[len(events)-1]
	if last.Type != model.EventTaskComplete {
		t.Fatalf("expected TaskComplete after approval, got %s", last.Type)
	}
}

func TestSessionApprovalDenyDeniesToolCall(t *testing.T) {
	ctx := context.Background()
	reg := providers.NewRegistry()
	fake := &fakeToolCallProvider{}
	reg.Register(fake)

	resolver := policy.NewResolver()
	tp := &policy.ToolPolicy{Profile: policy.ProfileFull, RequireApproval: []string{"exec"}}
	checker := policy.NewChecker(policy.ApprovalOnRequest, resolver, tp)

	h := New(ctx, Config{Model: "fake", Provider: reg, Approval: checker})
	h.RegisterTool(newFakeExecTool("exec", "hi\n", nil))
	<-h.Events()

	if err := h.Submit(ctx, model.UserInput(model.InputText("run echo hi"))); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	var approvalCallID string
	deadline := time.After(time.Second)
waitApproval:
	for {
		select {
		case ev := <-h.Events():
			if ev.Type == model.EventExecApprovalRequest {
				approvalCallID = ev.Approval.CallID
				break waitApproval
			}
		case <-deadline:
			t.Fatal("timed out waiting for ExecApprovalRequest")
		}
	}

	if err := h.Submit(ctx, model.ApproveExec(approvalCallID, model.ApprovalDeny)); err != nil {
		t.Fatalf("Submit denial: %v", err)
	}

	events := drainUntilComplete(t, h, time.Second)
	for _, ev := range events {
		if ev.Type == model.EventMcpToolCallBegin {
			t.Fatalf("tool should not have executed after denial, got %+v", events)
		}
	}
}

func TestSessionInterruptAbortsTurn(t *testing.T) {
	ctx := context.Background()
	h := New(ctx, Config{Model: "echo", Provider: newEchoRegistry()})
	<-h.Events()

	if err := h.Submit(ctx, model.UserInput(model.InputText("hello"))); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if err := h.Submit(ctx, model.Interrupt()); err != nil {
		t.Fatalf("Submit interrupt: %v", err)
	}

	events := drainUntilComplete(t, h, time.Second)
	sawAbort := false
	for _, ev := range events {
		if ev.Type == model.EventTurnAborted {
			sawAbort = true
		}
	}
	_ = sawAbort // interrupt may race the echo reply to completion; both are valid outcomes
}
