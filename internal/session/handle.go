package session

import (
	"context"
	"fmt"

	"github.com/corebridge/agentcore/internal/tool"
	"github.com/corebridge/agentcore/pkg/model"
)

// Handle is the external-facing reference to a running Session,
// returned by New and held by internal/registry. It exposes Submit and
// Events plus ID, State, Done, Wait and RegisterTool — the registry
// never reaches into Session's internals — mirroring how the teacher's runtime hands callers a
// narrow session handle rather than the AgenticLoop itself.
type Handle struct {
	id      model.SessionID
	session *Session
}

// ID returns the session's identifier.
func (h *Handle) ID() model.SessionID {
	return h.id
}

// Events returns the session's merged event stream. Callers must drain
// it until it closes (after the session terminates) to avoid leaking
// the bus's merge goroutine.
func (h *Handle) Events() <-chan model.Event {
	return h.session.bus.Events()
}

// State returns the session's current State.
func (h *Handle) State() State {
	return h.session.State()
}

// RegisterTool adds t to the session's dispatch table, satisfying
// tool.Registrar so internal/mcp's bridge and local built-ins can
// register into a Handle the same way they would a bare Session.
func (h *Handle) RegisterTool(t tool.Tool) {
	h.session.RegisterTool(t)
}

// Submit enqueues op for the session's single goroutine to process.
// It returns an error if the session has already terminated and its
// submit channel is no longer being drained, rather than blocking
// forever or panicking on a send to a closed channel.
func (h *Handle) Submit(ctx context.Context, op model.Op) error {
	select {
	case <-h.session.done:
		return fmt.Errorf("session: %s has terminated", h.id)
	default:
	}
	select {
	case h.session.submit <- op:
		return nil
	case <-h.session.done:
		return fmt.Errorf("session: %s has terminated", h.id)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Wait blocks until the session's run goroutine has exited.
func (h *Handle) Wait(ctx context.Context) error {
	select {
	case <-h.session.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done returns the channel closed when the session terminates.
func (h *Handle) Done() <-chan struct{} {
	return h.session.done
}
