package providers

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Registry resolves provider names to Provider instances, grounded on
// nexus's ProviderFactory/registry pattern in providers/base.go.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

// NewRegistry builds an empty Registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// Register adds a provider under its Name(). A later Register for the
// same name overwrites the earlier one, matching how a config reload
// would replace a provider's credentials.
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.Name()] = p
}

// Get resolves a provider by name. If name is empty or unregistered,
// and an EchoProvider has been registered as "echo", Get falls back to
// it rather than failing the caller outright — spec.md's fallback
// contract for a conversation runtime with no configured backend.
func (r *Registry) Get(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if name != "" {
		if p, ok := r.providers[name]; ok {
			if err := p.ValidateConfig(); err == nil {
				return p, nil
			}
		}
	}
	if p, ok := r.providers["echo"]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("providers: no usable provider for %q", name)
}

// Names lists registered provider names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.providers))
	for n := range r.providers {
		names = append(names, n)
	}
	return names
}

// StreamAssembler accumulates a Provider's StreamEvent sequence into a
// finished message and a set of completed tool calls, the combinator
// spec.md §9 calls out as shared across all three wire protocols. Each
// provider's processStream loop hands events to Feed in order; Done
// reports the assembled result once a Finished event arrives.
type StreamAssembler struct {
	text      strings.Builder
	toolCalls []ToolCall
	usage     Usage
	err       error
	finished  bool
}

// NewStreamAssembler returns an empty assembler.
func NewStreamAssembler() *StreamAssembler {
	return &StreamAssembler{}
}

// Feed applies one StreamEvent to the assembler's running state.
func (a *StreamAssembler) Feed(ev StreamEvent) {
	switch ev.Kind {
	case StreamToken:
		a.text.WriteString(ev.Text)
	case StreamToolCall:
		if ev.ToolCall != nil {
			a.toolCalls = append(a.toolCalls, *ev.ToolCall)
		}
	case StreamFinished:
		a.usage = ev.Usage
		a.finished = true
	case StreamError:
		a.err = ev.Err
	}
}

// Text returns the concatenated token text assembled so far.
func (a *StreamAssembler) Text() string { return a.text.String() }

// ToolCalls returns the tool calls assembled so far.
func (a *StreamAssembler) ToolCalls() []ToolCall { return a.toolCalls }

// Usage returns the usage reported by the terminal Finished event, if any.
func (a *StreamAssembler) Usage() Usage { return a.usage }

// Err returns the terminal error, if the stream ended in one.
func (a *StreamAssembler) Err() error { return a.err }

// Finished reports whether a Finished event has been fed.
func (a *StreamAssembler) Finished() bool { return a.finished }

// Drain consumes ch to completion, feeding every event to the
// assembler, and returns the assembler's terminal error (if any). It
// is the synchronous convenience path for callers (such as C4's
// non-streaming fallback) that don't need incremental delivery.
func Drain(ctx context.Context, ch <-chan StreamEvent) (*StreamAssembler, error) {
	a := NewStreamAssembler()
	for {
		select {
		case <-ctx.Done():
			return a, ctx.Err()
		case ev, ok := <-ch:
			if !ok {
				return a, a.err
			}
			a.Feed(ev)
			if ev.Kind == StreamError {
				return a, ev.Err
			}
		}
	}
}
