package session

import (
	"context"

	"github.com/corebridge/agentcore/internal/rollout"
	"github.com/corebridge/agentcore/pkg/model"
)

// ForkOptions configures Fork.
type ForkOptions struct {
	// DropLastUserMessages drops this many of the transcript's most
	// recent *real* user messages (model.ResponseItem.IsRealUserMessage)
	// and everything after the first one dropped, the same
	// "rewind to before my Nth-to-last message" semantics the teacher's
	// conversation history exposes via its truncate-on-resume path.
	DropLastUserMessages int

	// RolloutPath, if non-empty, opens a fresh rollout journal for the
	// forked session at this path; an empty path forks with no journal.
	RolloutPath string
}

// Fork creates a new Session sharing cfg's provider/policy wiring but
// starting from a copy of s's transcript with the last N real user
// messages (and their subsequent items) dropped. It mints a new
// SessionID, grounded on spec.md's Fork operation and the teacher's
// branch-a-conversation pattern in internal/sessions/memory.go's
// deepClone helpers (history must be copied, never shared, so the
// parent and fork can diverge independently).
func Fork(ctx context.Context, parent *Handle, opts ForkOptions) (*Handle, error) {
	truncated := truncateHistory(parent.session.snapshotHistory(), opts.DropLastUserMessages)

	cfg := parent.session.cfg
	cfg.SessionID = model.NewSessionID()
	cfg.Rollout = nil
	if opts.RolloutPath != "" {
		w, err := rollout.Open(opts.RolloutPath, cfg.SessionID)
		if err != nil {
			return nil, err
		}
		cfg.Rollout = w
	}

	handle := New(ctx, cfg)
	handle.session.seedHistory(truncated)
	if cfg.Rollout != nil {
		for _, item := range truncated {
			_ = cfg.Rollout.Append(item)
		}
	}

	parent.session.copyToolsInto(handle.session)
	return handle, nil
}

// truncateHistory drops the last n real user messages from items and
// everything at or after the earliest one dropped, preserving
// everything strictly before it. When n is at least the number of real
// user messages, or there are none, the result is empty (a fresh
// transcript), pseudo-messages included.
func truncateHistory(items []model.ResponseItem, n int) []model.ResponseItem {
	if n <= 0 {
		cut := make([]model.ResponseItem, len(items))
		copy(cut, items)
		return cut
	}

	userIdx := make([]int, 0)
	for i, item := range items {
		if item.IsRealUserMessage() {
			userIdx = append(userIdx, i)
		}
	}
	if len(userIdx) == 0 {
		return nil
	}
	dropFrom := len(userIdx) - n
	if dropFrom <= 0 {
		return nil
	}
	cutAt := userIdx[dropFrom]
	cut := make([]model.ResponseItem, cutAt)
	copy(cut, items[:cutAt])
	return cut
}

// snapshotHistory returns a defensive copy of s's in-memory transcript.
// Fork is only ever called from outside the session's own goroutine
// (the registry calling on a caller's behalf), so this read races with
// run()'s appends unless the caller first quiesces the session (spec.md
// requires Fork to target an Idle session); seedHistory/snapshotHistory
// keep their own slice copies to avoid aliasing bugs regardless.
func (s *Session) snapshotHistory() []model.ResponseItem {
	out := make([]model.ResponseItem, len(s.history))
	copy(out, s.history)
	return out
}

func (s *Session) seedHistory(items []model.ResponseItem) {
	s.history = items
}

func (s *Session) copyToolsInto(dst *Session) {
	s.toolsMu.RLock()
	defer s.toolsMu.RUnlock()
	dst.toolsMu.Lock()
	defer dst.toolsMu.Unlock()
	for name, t := range s.tools {
		dst.tools[name] = t
	}
}
