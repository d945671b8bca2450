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

// HistoryPolicy controls whether free-form user input is durably
// recorded to history.jsonl, independent of the per-session rollout
// file. SaveAll is the default; None disables the feature entirely for
// privacy-sensitive deployments.
type HistoryPolicy int

const (
	SaveAll HistoryPolicy = iota
	None
)

// inputHistoryEntry is one line of history.jsonl: reused across
// sessions the same way trace.go's JSONL writer is reused for both
// trace.go and (per SPEC_FULL) a second log purpose.
type inputHistoryEntry struct {
	SessionID model.SessionID `json:"session_id"`
	Timestamp time.Time       `json:"ts"`
	Text      string          `json:"text"`
}

// InputHistory appends free-form user input lines to a single shared
// history.jsonl file across all sessions in a state directory, gated by
// Policy. It is safe for concurrent use by multiple session goroutines.
type InputHistory struct {
	mu     sync.Mutex
	file   *os.File
	Policy HistoryPolicy
}

// OpenInputHistory opens (creating if necessary) history.jsonl under dir.
func OpenInputHistory(dir string, policy HistoryPolicy) (*InputHistory, error) {
	if policy == None {
		return &InputHistory{Policy: None}, nil
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("rollout: create history directory: %w", err)
	}
	path := filepath.Join(dir, "history.jsonl")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("rollout: open %s: %w", path, err)
	}
	return &InputHistory{file: f, Policy: policy}, nil
}

// Record appends one input line, or is a no-op under HistoryPolicy.None.
func (h *InputHistory) Record(sessionID model.SessionID, text string) error {
	if h.Policy == None {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	entry := inputHistoryEntry{SessionID: sessionID, Timestamp: time.Now(), Text: text}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("rollout: marshal history entry: %w", err)
	}
	data = append(data, '\n')
	if _, err := h.file.Write(data); err != nil {
		return fmt.Errorf("rollout: write history entry: %w", err)
	}
	return h.file.Sync()
}

// Close closes the underlying file, if one was opened.
func (h *InputHistory) Close() error {
	if h.file == nil {
		return nil
	}
	return h.file.Close()
}

// ReadInputHistory reads every recorded input line from history.jsonl
// under dir, in order. Returns an empty slice if the file doesn't exist.
func ReadInputHistory(dir string) ([]string, error) {
	path := filepath.Join(dir, "history.jsonl")
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("rollout: open %s: %w", path, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var entry inputHistoryEntry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			return nil, fmt.Errorf("rollout: decode %s: %w", path, err)
		}
		lines = append(lines, entry.Text)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("rollout: scan %s: %w", path, err)
	}
	return lines, nil
}
