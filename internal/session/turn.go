package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/corebridge/agentcore/internal/policy"
	"github.com/corebridge/agentcore/internal/providers"
	"github.com/corebridge/agentcore/pkg/model"
)

// runTurn drives one user turn to completion: pack context, stream a
// completion, sequentially dispatch any tool calls (gated by approval),
// and repeat until the model stops calling tools or MaxIterations is
// hit. Grounded on internal/agent/loop.go's AgenticLoop.Run iteration
// loop, with the teacher's parallel executor semaphore dropped in
// favor of the spec's fixed sequential dispatch (internal/agent/executor.go
// generalized down to one call at a time).
func (s *Session) runTurn(ctx context.Context, items []model.ContentItem) {
	s.setState(StateTurnActive)
	s.interrupted = false

	userMsg := model.NewMessage(model.RoleUser, items...)
	s.appendItem(userMsg)

	submissionID := model.InitialSubmissionID
	s.bus.Emit(ctx, model.NewEvent(model.EventTaskStarted, submissionID))

	var lastMessage string
	for iteration := 0; iteration < s.cfg.MaxIterations; iteration++ {
		if s.interrupted {
			s.abortTurn(ctx, submissionID)
			return
		}

		packed := s.packer.Pack(s.history, nil)
		req := s.buildRequest(packed)

		provider, err := s.resolveProvider(req.Model)
		if err != nil {
			s.emitError(ctx, submissionID, "provider_unavailable", err.Error())
			s.setState(StateIdle)
			return
		}

		stream, err := provider.CompleteStreaming(ctx, req)
		if err != nil {
			if s.failoverAndRetry(err) {
				continue
			}
			s.emitError(ctx, submissionID, "provider_error", err.Error())
			s.setState(StateIdle)
			return
		}

		assembler, text, aborted := s.drainStream(ctx, submissionID, stream)
		if aborted {
			s.abortTurn(ctx, submissionID)
			return
		}
		if err := assembler.Err(); err != nil {
			s.emitError(ctx, submissionID, "stream_error", err.Error())
			s.setState(StateIdle)
			return
		}

		lastMessage = text
		if text != "" {
			s.appendItem(model.NewMessage(model.RoleAssistant, model.OutputText(text)))
		}

		calls := assembler.ToolCalls()
		if len(calls) == 0 {
			break
		}

		if s.dispatchToolCalls(ctx, submissionID, calls) {
			s.abortTurn(ctx, submissionID)
			return
		}
	}

	s.bus.Emit(ctx, completeEvent(submissionID, lastMessage))
	s.setState(StateIdle)
}

func completeEvent(submissionID, lastMessage string) model.Event {
	ev := model.NewEvent(model.EventTaskComplete, submissionID)
	ev.Complete = &model.TaskCompletePayload{LastAgentMessage: lastMessage}
	return ev
}

func (s *Session) appendItem(item model.ResponseItem) {
	s.history = append(s.history, item)
	if s.cfg.Rollout != nil {
		_ = s.cfg.Rollout.Append(item)
	}
}

func (s *Session) buildRequest(items []model.ResponseItem) *providers.Request {
	return &providers.Request{
		Model:     s.cfg.Model,
		System:    s.cfg.System,
		Messages:  toProviderMessages(items),
		Tools:     s.cfg.Tools,
		MaxTokens: 4096,
	}
}

func (s *Session) resolveProvider(modelName string) (providers.Provider, error) {
	if s.cfg.Provider == nil {
		return nil, fmt.Errorf("session: no provider registry configured")
	}
	return s.cfg.Provider.Get(modelName)
}

// failoverAndRetry reports whether err warrants a same-turn retry
// against the same provider: the error is retryable and is not one
// that ShouldFailover routes elsewhere. No cross-provider routing is
// done, since Config only holds one resolved provider per model name.
func (s *Session) failoverAndRetry(err error) bool {
	return providers.IsRetryable(err) && !providers.ShouldFailover(err)
}

// drainStream feeds a provider's StreamEvent channel to an assembler,
// emitting AgentMessageDelta/AgentReasoningDelta events as tokens
// arrive, and returns early (aborted=true) if an Interrupt op arrives
// or ctx is cancelled mid-stream.
func (s *Session) drainStream(ctx context.Context, submissionID string, ch <-chan providers.StreamEvent) (*providers.StreamAssembler, string, bool) {
	assembler := providers.NewStreamAssembler()
	for {
		select {
		case <-ctx.Done():
			return assembler, assembler.Text(), true
		case op, ok := <-s.submit:
			if !ok {
				return assembler, assembler.Text(), true
			}
			if op.Kind == model.OpInterrupt {
				s.interrupted = true
				return assembler, assembler.Text(), true
			}
			if op.Kind == model.OpShutdown {
				s.shutdown = true
				return assembler, assembler.Text(), true
			}
		case ev, ok := <-ch:
			if !ok {
				return assembler, assembler.Text(), false
			}
			assembler.Feed(ev)
			if ev.Kind == providers.StreamToken {
				delta := model.NewEvent(model.EventAgentMessageDelta, submissionID)
				delta.Delta = &model.DeltaPayload{Delta: ev.Text}
				s.bus.Emit(ctx, delta)
			}
			if ev.Kind == providers.StreamFinished {
				return assembler, assembler.Text(), false
			}
			if ev.Kind == providers.StreamError {
				return assembler, assembler.Text(), false
			}
		}
	}
}

// dispatchToolCalls runs each call in calls sequentially (spec.md fixes
// sequential tool execution, dropping the teacher's parallel executor
// semaphore), gating each on approval policy first. Returns true if the
// turn should abort.
func (s *Session) dispatchToolCalls(ctx context.Context, submissionID string, calls []providers.ToolCall) bool {
	for _, call := range calls {
		if s.interrupted {
			return true
		}

		s.appendItem(model.NewFunctionCall(call.ID, call.Name, call.Input))

		command := commandFromArguments(call.Name, call.Input)
		decision := policy.ApprovalAllowed
		reason := "no approval checker configured"
		if s.cfg.Approval != nil {
			decision, reason = s.cfg.Approval.Check(call.Name, command)
		}

		if decision == policy.ApprovalDenied {
			s.appendItem(model.NewFunctionCallOutput(call.ID, "denied by policy: "+reason, true))
			continue
		}

		if decision == policy.ApprovalPending {
			s.setState(StateApproving)
			s.bus.Emit(ctx, approvalRequestEvent(submissionID, call, command, reason))
			answer, shutdownRequested := s.awaitApproval(ctx, call.ID)
			if shutdownRequested {
				s.shutdown = true
				return true
			}
			if s.interrupted {
				return true
			}
			if answer != model.ApprovalAllow {
				s.appendItem(model.NewFunctionCallOutput(call.ID, "denied by user", true))
				s.setState(StateTurnActive)
				continue
			}
			s.setState(StateTurnActive)
		}

		s.setState(StateToolPending)
		output := s.executeTool(ctx, submissionID, call)
		s.appendItem(output)
		s.setState(StateTurnActive)
	}
	return false
}

func approvalRequestEvent(submissionID string, call providers.ToolCall, command, reason string) model.Event {
	ev := model.NewEvent(model.EventExecApprovalRequest, submissionID)
	ev.Approval = &model.ApprovalPayload{CallID: call.ID, ToolName: call.Name, Command: command, Reason: reason}
	return ev
}

// awaitApproval blocks the session goroutine directly on Submit until a
// matching ApproveExec/PatchApproval op arrives, handling Interrupt and
// Shutdown inline — the only place besides run() itself that reads
// s.submit, since the teacher's one-goroutine discipline means nothing
// else may.
func (s *Session) awaitApproval(ctx context.Context, callID string) (model.ApprovalAnswer, bool) {
	for {
		select {
		case <-ctx.Done():
			return model.ApprovalDeny, false
		case op, ok := <-s.submit:
			if !ok {
				return model.ApprovalDeny, true
			}
			switch op.Kind {
			case model.OpApproveExec, model.OpPatchApproval:
				if op.CallID == callID {
					return op.Decision, false
				}
			case model.OpInterrupt:
				s.interrupted = true
				return model.ApprovalDeny, false
			case model.OpShutdown:
				return model.ApprovalDeny, true
			}
		}
	}
}

func (s *Session) executeTool(ctx context.Context, submissionID string, call providers.ToolCall) model.ResponseItem {
	t, ok := s.lookupTool(call.Name)
	if !ok {
		return model.NewFunctionCallOutput(call.ID, fmt.Sprintf("unknown tool %q", call.Name), true)
	}

	s.bus.Emit(ctx, mcpBeginEvent(submissionID, call))
	result, err := t.Execute(ctx, call.Input)
	if err != nil {
		if s.cfg.Approval != nil {
			s.cfg.Approval.RecordFailure(call.Name)
		}
		s.bus.Emit(ctx, mcpEndEvent(submissionID, call, err))
		return model.NewFunctionCallOutput(call.ID, err.Error(), true)
	}
	s.bus.Emit(ctx, mcpEndEvent(submissionID, call, nil))
	if result.IsError && s.cfg.Approval != nil {
		s.cfg.Approval.RecordFailure(call.Name)
	}
	return model.NewFunctionCallOutput(call.ID, result.Content, result.IsError)
}

func mcpBeginEvent(submissionID string, call providers.ToolCall) model.Event {
	ev := model.NewEvent(model.EventMcpToolCallBegin, submissionID)
	ev.McpBegin = &model.McpBeginPayload{CallID: call.ID, Name: call.Name}
	return ev
}

func mcpEndEvent(submissionID string, call providers.ToolCall, err error) model.Event {
	ev := model.NewEvent(model.EventMcpToolCallEnd, submissionID)
	payload := &model.McpEndPayload{CallID: call.ID, OK: err == nil}
	if err != nil {
		payload.Error = err.Error()
	}
	ev.McpEnd = payload
	return ev
}

func (s *Session) abortTurn(ctx context.Context, submissionID string) {
	s.setState(StateAborting)
	s.bus.Emit(ctx, model.NewEvent(model.EventTurnAborted, submissionID))
	s.interrupted = false
	if !s.shutdown {
		s.setState(StateIdle)
	}
}

func (s *Session) emitError(ctx context.Context, submissionID, kind, message string) {
	ev := model.NewEvent(model.EventError, submissionID)
	ev.Err = &model.ErrorPayload{Kind: kind, Message: message}
	s.bus.Emit(ctx, ev)
}

// commandFromArguments extracts a "command" string field from a tool
// call's arguments, for the exec tool's trust classification; other
// tools simply have no command to classify.
func commandFromArguments(toolName string, args json.RawMessage) string {
	if toolName != "exec" {
		return ""
	}
	var parsed struct {
		Command string `json:"command"`
	}
	if err := json.Unmarshal(args, &parsed); err != nil {
		return ""
	}
	return parsed.Command
}

// toProviderMessages converts a packed ResponseItem transcript into the
// flat Message list providers.Request expects, grounded on the
// teacher's own Message-assembly step in loop.go (history → completion
// messages) generalized onto model.ResponseItem's tagged-variant shape.
func toProviderMessages(items []model.ResponseItem) []providers.Message {
	messages := make([]providers.Message, 0, len(items))
	for _, item := range items {
		switch item.Kind {
		case model.ItemMessage:
			messages = append(messages, providers.Message{
				Role:    string(item.Role),
				Content: item.TextContent(),
			})
		case model.ItemFunctionCall:
			messages = append(messages, providers.Message{
				Role: string(model.RoleAssistant),
				ToolCalls: []providers.ToolCall{{
					ID:    item.CallID,
					Name:  item.Name,
					Input: item.Arguments,
				}},
			})
		case model.ItemFunctionCallOutput:
			messages = append(messages, providers.Message{
				Role:       string(model.RoleTool),
				Content:    item.Output,
				ToolCallID: item.CallID,
			})
		case model.ItemReasoning:
			// Reasoning items are not replayed to the model; they exist
			// for transcript/UI purposes only.
		}
	}
	return messages
}
