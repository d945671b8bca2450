package rollout

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"syscall"

	"github.com/corebridge/agentcore/pkg/model"
)

// Append is the package-level convenience form of Writer.Append for
// one-off writers (e.g. a tool handler appending a single item outside
// a session's long-lived Writer). It opens, appends, and closes.
func Append(path string, sessionID model.SessionID, item model.ResponseItem) error {
	w, err := Open(path, sessionID)
	if err != nil {
		return err
	}
	defer w.Close()
	return w.Append(item)
}

// History reads every ResponseItem from the rollout file at path, in
// order, skipping the leading Header line. Used by Resume to rebuild a
// session's transcript and by Fork to walk it backwards.
func History(path string) ([]model.ResponseItem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("rollout: open %s: %w", path, err)
	}
	defer f.Close()

	var items []model.ResponseItem
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	first := true
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if first {
			first = false
			var hdr Header
			if err := json.Unmarshal(line, &hdr); err == nil && hdr.Version != 0 {
				continue
			}
		}
		var item model.ResponseItem
		if err := json.Unmarshal(line, &item); err != nil {
			return nil, fmt.Errorf("rollout: decode %s: %w", path, err)
		}
		items = append(items, item)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("rollout: scan %s: %w", path, err)
	}
	return items, nil
}

// FileID identifies a rollout file stably across renames by the
// (device, inode) pair reported by the OS, so a resumed session can
// confirm it is reading the same physical file a Lookup offset was
// recorded against, the way an fd-based log reader would.
type FileID struct {
	Dev uint64
	Ino uint64
}

// ErrNotRegularFile is returned when Stat doesn't yield a syscall.Stat_t.
var ErrNotRegularFile = errors.New("rollout: not a regular file")

// Stat returns the FileID for path.
func Stat(path string) (FileID, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileID{}, fmt.Errorf("rollout: stat %s: %w", path, err)
	}
	sys, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return FileID{}, ErrNotRegularFile
	}
	return FileID{Dev: uint64(sys.Dev), Ino: uint64(sys.Ino)}, nil
}

// Lookup reads the item at the given zero-based line offset (after the
// header) from the rollout file identified by logID, verifying the
// path still refers to the same physical file before reading it.
func Lookup(path string, logID FileID, offset int) (model.ResponseItem, error) {
	current, err := Stat(path)
	if err != nil {
		return model.ResponseItem{}, err
	}
	if current != logID {
		return model.ResponseItem{}, fmt.Errorf("rollout: %s no longer matches expected file identity", path)
	}
	items, err := History(path)
	if err != nil {
		return model.ResponseItem{}, err
	}
	if offset < 0 || offset >= len(items) {
		return model.ResponseItem{}, fmt.Errorf("rollout: offset %d out of range (len %d)", offset, len(items))
	}
	return items[offset], nil
}
