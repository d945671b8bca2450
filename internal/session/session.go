package session

import (
	"context"
	"sync"

	"github.com/corebridge/agentcore/internal/eventbus"
	"github.com/corebridge/agentcore/internal/policy"
	pcontext "github.com/corebridge/agentcore/internal/context"
	"github.com/corebridge/agentcore/internal/providers"
	"github.com/corebridge/agentcore/internal/rollout"
	"github.com/corebridge/agentcore/internal/tool"
	"github.com/corebridge/agentcore/pkg/model"
)

// Config configures a new Session. Grounded on the teacher's
// LoopConfig (loop.go), trimmed to the spec's fixed-sequential-dispatch
// model (no ExecutorConfig parallelism knob — spec.md fixes sequential
// tool execution) and extended with the policy/rollout wiring the
// teacher's LoopConfig delegates to separate constructor arguments.
type Config struct {
	SessionID model.SessionID
	Model     string
	System    string

	Provider *providers.Registry
	Tools    []providers.Tool

	Rollout  *rollout.Writer
	Approval *policy.Checker
	Sandbox  *policy.Sandbox

	PackOptions   pcontext.PackOptions
	MaxIterations int
	// SubmitBuffer sizes the inbound Op channel; 0 uses a sane default.
	SubmitBuffer int
}

func sanitizeConfig(cfg Config) Config {
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = 10
	}
	if cfg.SubmitBuffer <= 0 {
		cfg.SubmitBuffer = 16
	}
	if cfg.PackOptions.MaxItems == 0 && cfg.PackOptions.MaxChars == 0 {
		cfg.PackOptions = pcontext.DefaultPackOptions()
	}
	if cfg.SessionID.IsZero() {
		cfg.SessionID = model.NewSessionID()
	}
	return cfg
}

// Session is the C4 engine: one goroutine (run), reached only through
// Submit, driving a transcript of model.ResponseItem against a
// providers.Provider and a sequential set of tool.Tool dispatches.
type Session struct {
	cfg Config
	bus *eventbus.Bus

	submit chan model.Op
	done   chan struct{}

	stateMu sync.Mutex
	state   State

	toolsMu sync.RWMutex
	tools   map[string]tool.Tool

	history     []model.ResponseItem
	packer      *pcontext.Packer
	interrupted bool
	shutdown    bool
}

// New creates a Session and starts its run goroutine. The caller must
// range over Handle.Events() until it closes to avoid leaking the
// eventbus merge goroutine, mirroring eventbus.Bus's own contract.
func New(ctx context.Context, cfg Config) *Handle {
	cfg = sanitizeConfig(cfg)
	s := &Session{
		cfg:    cfg,
		bus:    eventbus.NewBus(eventbus.DefaultBusConfig()),
		submit: make(chan model.Op, cfg.SubmitBuffer),
		done:   make(chan struct{}),
		state:  StateIdle,
		tools:  make(map[string]tool.Tool),
		packer: pcontext.NewPacker(cfg.PackOptions),
	}
	go s.run(ctx)
	return &Handle{id: cfg.SessionID, session: s}
}

// RegisterTool implements tool.Registrar so internal/mcp's
// bridge.RegisterTools and internal/exec/internal/patch's built-ins
// can all register into the same session the same way.
func (s *Session) RegisterTool(t tool.Tool) {
	s.toolsMu.Lock()
	defer s.toolsMu.Unlock()
	s.tools[t.Name()] = t
}

func (s *Session) lookupTool(name string) (tool.Tool, bool) {
	s.toolsMu.RLock()
	defer s.toolsMu.RUnlock()
	t, ok := s.tools[name]
	return t, ok
}

func (s *Session) setState(next State) {
	s.stateMu.Lock()
	s.state = next
	s.stateMu.Unlock()
}

// State returns the session's current state.
func (s *Session) State() State {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.state
}

// run is the session's sole goroutine: it emits SessionConfigured as
// its first event (the registry reads this synchronously per SPEC_FULL
// §4.5 before returning a Handle to its caller), then services Submit
// until a Shutdown op or ctx cancellation.
func (s *Session) run(ctx context.Context) {
	defer close(s.done)
	defer s.bus.Close()

	configured := model.NewEvent(model.EventSessionConfigured, model.InitialSubmissionID)
	s.bus.Emit(ctx, configured)

	for {
		select {
		case <-ctx.Done():
			s.setState(StateTerminal)
			return
		case op, ok := <-s.submit:
			if !ok {
				s.setState(StateTerminal)
				return
			}
			if s.handleOp(ctx, op) {
				s.setState(StateTerminal)
				return
			}
		}
	}
}

// handleOp processes one inbound Op, returning true if the session
// should shut down.
func (s *Session) handleOp(ctx context.Context, op model.Op) bool {
	switch op.Kind {
	case model.OpUserInput:
		s.runTurn(ctx, op.Items)
		return s.shutdown
	case model.OpInterrupt:
		s.interrupted = true
		return false
	case model.OpApproveExec, model.OpPatchApproval:
		// An approval answer with no turn awaiting it (already resolved,
		// already timed out, or simply unsolicited) is a no-op: only
		// runTurn's awaitApproval consumes these while StateApproving.
		return false
	case model.OpOverrideTurnContext:
		s.applyOverride(op)
		return false
	case model.OpShutdown:
		return true
	default:
		return false
	}
}

func (s *Session) applyOverride(op model.Op) {
	if op.Model != "" {
		s.cfg.Model = op.Model
	}
}

