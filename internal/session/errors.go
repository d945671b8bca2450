package session

import "errors"

// Sentinel errors for the conversation runtime, grounded on the
// teacher's internal/agent/errors.go sentinel table (ErrMaxIterations,
// ErrNoProvider, ErrToolTimeout, ...), generalized to spec.md §7's
// full error-kind vocabulary for a conversation runtime rather than a
// single agentic loop.
var (
	// ErrAuthMissing indicates a provider has no usable credentials.
	ErrAuthMissing = errors.New("session: provider authentication missing")

	// ErrNetwork indicates a transport-level failure reaching a provider.
	ErrNetwork = errors.New("session: network error")

	// ErrProtocol indicates a provider or MCP server returned a
	// malformed or unexpected response.
	ErrProtocol = errors.New("session: protocol error")

	// ErrRateLimited indicates a provider rejected a request for
	// exceeding its rate limit.
	ErrRateLimited = errors.New("session: rate limited")

	// ErrToolTimeout indicates a tool call exceeded its execution deadline.
	ErrToolTimeout = errors.New("session: tool execution timed out")

	// ErrToolInvalidInput indicates a tool call's arguments failed
	// schema validation.
	ErrToolInvalidInput = errors.New("session: tool call arguments invalid")

	// ErrToolExecution indicates a tool ran but failed.
	ErrToolExecution = errors.New("session: tool execution failed")

	// ErrSessionConfiguredNotFirstEvent indicates a session's event
	// stream violated invariant 2 (SessionConfigured must be the first
	// event observed by any reader).
	ErrSessionConfiguredNotFirstEvent = errors.New("session: SessionConfigured was not the first event")

	// ErrConversationNotFound indicates a registry lookup found no
	// session for the given id.
	ErrConversationNotFound = errors.New("session: conversation not found")

	// ErrRolloutLock indicates a rollout journal's on-disk lock could
	// not be acquired (see internal/rollout.AcquireLock).
	ErrRolloutLock = errors.New("session: rollout lock unavailable")

	// ErrValidation indicates a malformed Op or Config was rejected
	// before being handed to a session's run loop.
	ErrValidation = errors.New("session: validation failed")
)
