// Package model defines the transcript data model shared by the
// provider, rollout, MCP, session, and registry packages: the
// ResponseItem/ContentItem transcript, the Op/Event envelopes
// submitted to and emitted from a session, and the session identifier.
package model

import (
	"github.com/google/uuid"
)

// SessionID is a 128-bit identifier, unique for the lifetime of the
// process and stable across resume/fork (fork mints a new one).
type SessionID [16]byte

// NewSessionID mints a fresh random session id.
func NewSessionID() SessionID {
	return SessionID(uuid.New())
}

// String renders the session id in canonical UUID form.
func (id SessionID) String() string {
	return uuid.UUID(id).String()
}

// IsZero reports whether id is the zero value.
func (id SessionID) IsZero() bool {
	return id == SessionID{}
}

// ParseSessionID parses a canonical UUID string into a SessionID.
func ParseSessionID(s string) (SessionID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return SessionID{}, err
	}
	return SessionID(u), nil
}

// InitialSubmissionID is the sentinel submission id carried by the
// first event of a freshly spawned session (SessionConfigured).
const InitialSubmissionID = "initial"
