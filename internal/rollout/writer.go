// Package rollout is the C2 conversation journal: an append-only NDJSON
// file per session that is both the crash-recovery log and the replay
// source for Resume/Fork.
//
// Grounded on the teacher's internal/agent/trace.go (JSONL writer,
// flush-per-line, crash safety, redactor hook) generalized from
// models.AgentEvent onto model.ResponseItem, plus
// internal/gateway/singleton_lock.go and internal/sessions/write_lock.go
// (PID/stale-lock file locking), generalized into the advisory
// per-session file lock in lock.go.
package rollout

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/corebridge/agentcore/pkg/model"
)

// schemaVersion is written as the first line of every rollout file, the
// same versioning convention as the teacher's TraceHeader.Version.
const schemaVersion = 1

// Header is the first line of a rollout file.
type Header struct {
	Version   int             `json:"version"`
	SessionID model.SessionID `json:"session_id"`
	StartedAt time.Time       `json:"started_at"`
}

// Redactor may be supplied to strip sensitive content from a
// ResponseItem before it is durably written. It receives a pointer and
// may modify it in place; mirrors the teacher's Redactor signature.
type Redactor func(item *model.ResponseItem)

// Writer appends ResponseItems to a single session's rollout file.
// Append and Close are serialized by a plain sync.Mutex, which covers
// the same-process case. Writer takes no cross-process lock: neither
// Open nor Append calls AcquireLock (see lock.go).
type Writer struct {
	mu       sync.Mutex
	file     *os.File
	buf      *bufio.Writer
	redactor Redactor
	started  bool
	header   Header
}

// Option configures a Writer with the functional-options pattern used
// throughout the teacher's codebase (TraceOption).
type Option func(*Writer)

// WithRedactor installs a redaction hook run before every Append.
func WithRedactor(r Redactor) Option {
	return func(w *Writer) { w.redactor = r }
}

// Open creates or appends to the rollout file at path for sessionID,
// enforcing 0600 permissions on every open regardless of whether the
// file already existed.
func Open(path string, sessionID model.SessionID, opts ...Option) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("rollout: create directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("rollout: open %s: %w", path, err)
	}
	if err := f.Chmod(0o600); err != nil {
		f.Close()
		return nil, fmt.Errorf("rollout: chmod %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("rollout: stat %s: %w", path, err)
	}
	w := &Writer{
		file: f,
		buf:  bufio.NewWriter(f),
		header: Header{
			Version:   schemaVersion,
			SessionID: sessionID,
			StartedAt: time.Now(),
		},
		started: info.Size() > 0,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Append writes item as the next NDJSON line, flushing and fsyncing
// before returning so a crash immediately after Append cannot lose it —
// the same per-line durability guarantee as trace.go's OnEvent.
func (w *Writer) Append(item model.ResponseItem) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.started {
		w.started = true
		if err := w.writeLine(w.header); err != nil {
			return err
		}
	}

	if w.redactor != nil {
		w.redactor(&item)
	}
	return w.writeLine(item)
}

func (w *Writer) writeLine(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("rollout: marshal: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.buf.Write(data); err != nil {
		return fmt.Errorf("rollout: write: %w", err)
	}
	if err := w.buf.Flush(); err != nil {
		return fmt.Errorf("rollout: flush: %w", err)
	}
	return w.file.Sync()
}

// Close closes the underlying file. Safe to call once.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}
