package rollout

import (
	"fmt"

	"github.com/corebridge/agentcore/pkg/model"
)

// ResponseItemRef pairs a ResponseItem with its zero-based offset in a
// rollout file, the unit Cursor.Poll hands back so a caller can later
// Lookup that exact item again without re-scanning from the start.
type ResponseItemRef struct {
	Offset int
	Item   model.ResponseItem
}

// Cursor tracks a reader's position in a rollout file for incremental
// tailing, supplementing spec.md §4.2 from original_source/'s
// streaming/cursor.rs note (dropped by the distillation, carried back
// in per SPEC_FULL §9) and adapted from the teacher's
// internal/sessions/routing.go iterator-style helpers (advance-and-
// return-the-delta, rather than re-reading the whole file each poll).
type Cursor struct {
	path   string
	id     FileID
	offset int
}

// NewCursor opens path at its current length, positioning the cursor
// after every item already written so a first Poll only returns new
// items appended from now on.
func NewCursor(path string) (*Cursor, error) {
	id, err := Stat(path)
	if err != nil {
		return nil, err
	}
	items, err := History(path)
	if err != nil {
		return nil, err
	}
	return &Cursor{path: path, id: id, offset: len(items)}, nil
}

// Poll returns any items appended to the rollout file since the last
// Poll (or since NewCursor, on the first call), advancing the cursor.
// It returns an error if the file has been rotated/replaced (its
// FileID no longer matches what NewCursor observed), mirroring
// Lookup's identity check.
func (c *Cursor) Poll() ([]ResponseItemRef, error) {
	current, err := Stat(c.path)
	if err != nil {
		return nil, err
	}
	if current != c.id {
		return nil, fmt.Errorf("rollout: %s was rotated since cursor was opened", c.path)
	}

	items, err := History(c.path)
	if err != nil {
		return nil, err
	}
	if c.offset > len(items) {
		return nil, fmt.Errorf("rollout: %s is shorter than the cursor's last offset (truncated?)", c.path)
	}

	fresh := items[c.offset:]
	refs := make([]ResponseItemRef, len(fresh))
	for i, item := range fresh {
		refs[i] = ResponseItemRef{Offset: c.offset + i, Item: item}
	}
	c.offset += len(fresh)
	return refs, nil
}

// Offset returns the cursor's current position (the number of items
// consumed so far), usable as a Lookup offset to re-fetch any one of
// them later.
func (c *Cursor) Offset() int {
	return c.offset
}
