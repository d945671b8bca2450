package session

// State is a session's current position in its state machine, the
// explicit enum SPEC_FULL §4.4 asks for in place of the teacher's
// implicit LoopPhase (Init/Stream/Execute/Complete) embedded inside
// AgenticLoop.Run's control flow.
type State int

const (
	// StateIdle is the resting state: no turn in progress, waiting for
	// the next UserInput op.
	StateIdle State = iota
	// StateTurnActive is streaming a completion from the provider.
	StateTurnActive
	// StateToolPending is executing a dispatched tool call.
	StateToolPending
	// StateApproving is waiting for an ApproveExec/PatchApproval op to
	// resolve a pending tool call.
	StateApproving
	// StateAborting is unwinding after an Interrupt op, finishing any
	// in-flight tool call before returning to Idle.
	StateAborting
	// StateTerminal is permanent: the session has shut down and its
	// goroutine has exited. No further ops are accepted.
	StateTerminal
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateTurnActive:
		return "turn_active"
	case StateToolPending:
		return "tool_pending"
	case StateApproving:
		return "approving"
	case StateAborting:
		return "aborting"
	case StateTerminal:
		return "terminal"
	default:
		return "unknown"
	}
}
