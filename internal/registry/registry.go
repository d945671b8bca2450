// Package registry is the C5 conversation registry: a process-wide
// directory of live session.Handle values, reached by model.SessionID.
//
// Grounded on the teacher's internal/sessions.MemoryStore
// (map[string]*models.Session under one sync.RWMutex, locked only for
// the map operation itself, never across I/O) and
// internal/sessions.SessionLocker (adapted into internal/sessionlock,
// reused here unmodified as the per-session Submit serialization so
// two callers racing to Submit against the same conversation can't
// interleave on the channel send).
package registry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/corebridge/agentcore/internal/session"
	"github.com/corebridge/agentcore/internal/sessionlock"
	"github.com/corebridge/agentcore/pkg/model"
)

// entry is one tracked conversation: its Handle plus the bookkeeping
// Prune needs to find idle sessions.
type entry struct {
	handle     *session.Handle
	lastActive time.Time
}

// Registry is the process-wide conversation directory.
type Registry struct {
	mu       sync.RWMutex
	sessions map[model.SessionID]*entry

	// locks serializes concurrent Submit calls against a single
	// session, keyed by the session id's string form — the FIFO-fair
	// locker in internal/sessionlock, adapted from the teacher's
	// per-session write-lock idiom.
	locks *sessionlock.SessionLocker
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		sessions: make(map[model.SessionID]*entry),
		locks:    sessionlock.NewSessionLocker(sessionlock.DefaultLockTimeout),
	}
}

// NewConversation spawns a session goroutine via session.New, reads its
// first event synchronously, and validates it is SessionConfigured
// (invariant 2) before registering the session and returning control —
// grounded on the teacher's NewAgenticLoop + first-event pattern used
// in runtime_integration_test.go. If the first event is anything else,
// the spawned session is shut down and ErrSessionConfiguredNotFirstEvent
// is returned rather than handing the caller a half-initialized handle.
func (r *Registry) NewConversation(ctx context.Context, cfg session.Config) (*session.Handle, error) {
	handle := session.New(ctx, cfg)

	first, ok := <-handle.Events()
	if !ok {
		return nil, fmt.Errorf("registry: session closed its event stream before emitting any event")
	}
	if first.Type != model.EventSessionConfigured {
		_ = handle.Submit(ctx, model.Shutdown())
		return nil, session.ErrSessionConfiguredNotFirstEvent
	}

	r.mu.Lock()
	r.sessions[handle.ID()] = &entry{handle: handle, lastActive: time.Now()}
	r.mu.Unlock()

	return handle, nil
}

// Get looks up a conversation by id.
func (r *Registry) Get(id model.SessionID) (*session.Handle, error) {
	r.mu.RLock()
	e, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, session.ErrConversationNotFound
	}
	return e.handle, nil
}

// Submit serializes concurrent callers Submitting against the same
// conversation id — two HTTP handlers racing to forward ops to one
// session must not interleave their channel sends in a way that could
// reorder an Interrupt ahead of the UserInput it was meant to follow.
func (r *Registry) Submit(ctx context.Context, id model.SessionID, op model.Op) error {
	e, err := r.getEntry(id)
	if err != nil {
		return err
	}

	key := id.String()
	if err := r.locks.LockWithContext(ctx, key); err != nil {
		return err
	}
	defer r.locks.Unlock(key)

	r.touch(id)
	return e.handle.Submit(ctx, op)
}

// Fork forks the conversation at id, registers the resulting session,
// and returns its handle.
func (r *Registry) Fork(ctx context.Context, id model.SessionID, opts session.ForkOptions) (*session.Handle, error) {
	e, err := r.getEntry(id)
	if err != nil {
		return nil, err
	}

	forked, err := session.Fork(ctx, e.handle, opts)
	if err != nil {
		return nil, err
	}

	first, ok := <-forked.Events()
	if !ok || first.Type != model.EventSessionConfigured {
		_ = forked.Submit(ctx, model.Shutdown())
		return nil, session.ErrSessionConfiguredNotFirstEvent
	}

	r.mu.Lock()
	r.sessions[forked.ID()] = &entry{handle: forked, lastActive: time.Now()}
	r.mu.Unlock()

	return forked, nil
}

// List returns the ids of all tracked conversations.
func (r *Registry) List() []model.SessionID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]model.SessionID, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	return ids
}

// Remove shuts down and forgets a conversation, releasing its entry
// and lock slot. It is idempotent.
func (r *Registry) Remove(ctx context.Context, id model.SessionID) error {
	r.mu.Lock()
	e, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if !ok {
		return nil
	}

	_ = e.handle.Submit(ctx, model.Shutdown())
	r.locks.Forget(id.String())
	return nil
}

// Prune removes every conversation whose session has terminated, or
// whose last Submit predates idleSince, shutting down idle-but-still-
// running sessions first. Grounded on original_source/'s
// conversation_manager.rs pooling/eviction note (supplemented into
// SPEC_FULL, not part of spec.md's own scope) and adapted from the
// teacher's sessions.Expiry package idea into a single registry method,
// since this registry is process-wide and in-memory rather than
// DB-backed.
func (r *Registry) Prune(ctx context.Context, idleSince time.Duration) int {
	cutoff := time.Now().Add(-idleSince)

	r.mu.Lock()
	removed := make(map[model.SessionID]*entry)
	for id, e := range r.sessions {
		idle := e.lastActive.Before(cutoff)
		terminated := false
		select {
		case <-e.handle.Done():
			terminated = true
		default:
		}
		if idle || terminated {
			removed[id] = e
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for id, e := range removed {
		_ = e.handle.Submit(ctx, model.Shutdown())
		r.locks.Forget(id.String())
	}
	return len(removed)
}

func (r *Registry) getEntry(id model.SessionID) (*entry, error) {
	r.mu.RLock()
	e, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, session.ErrConversationNotFound
	}
	return e, nil
}

func (r *Registry) touch(id model.SessionID) {
	r.mu.Lock()
	if e, ok := r.sessions[id]; ok {
		e.lastActive = time.Now()
	}
	r.mu.Unlock()
}
