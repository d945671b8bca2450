package eventbus

import (
	"context"
	"sync/atomic"

	"github.com/corebridge/agentcore/pkg/model"
)

// Bus is the C6 event bus: a two-lane priority Channel[model.Event]
// bridging a session's emit side to its one reader. Lifecycle events
// (TaskStarted, ExecCommandEnd, TaskComplete, ...) are never dropped;
// streaming deltas (AgentMessageDelta, AgentReasoningDelta,
// ExecCommandOutput) are dropped under backpressure rather than
// stalling the session goroutine that produces them.
//
// Grounded on the teacher's BackpressureSink (internal/agent/event_sink.go):
// same two-channel-plus-merge-goroutine shape, generalized onto
// Channel[model.Event] instead of a bespoke implementation, and with
// the droppable-type set reworked for model.EventType.
type Bus struct {
	highPri *Channel[model.Event]
	lowPri  *Channel[model.Event]
	out     chan model.Event
	dropped uint64
}

// BusConfig sizes the bus's two lanes.
type BusConfig struct {
	HighPriBuffer int
	LowPriBuffer  int
}

// DefaultBusConfig mirrors the teacher's DefaultBackpressureConfig.
func DefaultBusConfig() BusConfig {
	return BusConfig{HighPriBuffer: 32, LowPriBuffer: 256}
}

// NewBus creates a bus and starts its merge goroutine. The caller must
// range over Events() until it closes (after Close) to avoid leaking
// that goroutine.
func NewBus(cfg BusConfig) *Bus {
	if cfg.HighPriBuffer <= 0 {
		cfg.HighPriBuffer = 32
	}
	if cfg.LowPriBuffer <= 0 {
		cfg.LowPriBuffer = 256
	}
	b := &Bus{
		highPri: NewChannel[model.Event](cfg.HighPriBuffer),
		lowPri:  NewChannel[model.Event](cfg.LowPriBuffer),
		out:     make(chan model.Event, cfg.HighPriBuffer),
	}
	go b.mergeLoop()
	return b
}

// Events returns the single merged stream a registry handle reads
// from; it closes once Close has drained both lanes.
func (b *Bus) Events() <-chan model.Event {
	return b.out
}

// Emit routes e to the high- or low-priority lane depending on its
// type. Non-droppable events block (respecting ctx); droppable events
// are dropped and counted if their lane is full.
func (b *Bus) Emit(ctx context.Context, e model.Event) {
	if isDroppable(e.Type) {
		if !b.lowPri.TrySend(e) {
			atomic.AddUint64(&b.dropped, 1)
		}
		return
	}
	b.highPri.Send(ctx, e)
}

// DroppedCount returns how many droppable events were discarded under
// backpressure.
func (b *Bus) DroppedCount() uint64 {
	return atomic.LoadUint64(&b.dropped)
}

// Close stops accepting new events and, once both lanes drain, closes
// Events(). Safe to call once; further Emit calls deliver nothing,
// though a droppable event emitted after Close is still counted in
// DroppedCount.
func (b *Bus) Close() {
	b.highPri.Close()
	b.lowPri.Close()
}

func (b *Bus) mergeLoop() {
	defer close(b.out)
	high := b.highPri.C()
	low := b.lowPri.C()
	for high != nil || low != nil {
		select {
		case e, ok := <-high:
			if !ok {
				high = nil
				continue
			}
			b.out <- e
		case e, ok := <-low:
			if !ok {
				low = nil
				continue
			}
			b.out <- e
		}
	}
}

// isDroppable reports whether an event type may be discarded under
// backpressure without breaking a consumer's ability to reconstruct
// the session's outcome — high-frequency streaming content, not
// lifecycle state.
func isDroppable(t model.EventType) bool {
	switch t {
	case model.EventAgentMessageDelta, model.EventAgentReasoningDelta, model.EventExecCommandOutput:
		return true
	default:
		return false
	}
}
