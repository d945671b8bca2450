package eventbus

import (
	"context"
	"testing"
	"time"

	"github.com/corebridge/agentcore/pkg/model"
)

func TestBus_DeliversLifecycleAndDeltaEvents(t *testing.T) {
	bus := NewBus(DefaultBusConfig())
	defer bus.Close()

	bus.Emit(context.Background(), model.NewEvent(model.EventTaskStarted, "sub-1"))
	bus.Emit(context.Background(), model.NewEvent(model.EventAgentMessageDelta, "sub-1"))

	seen := map[model.EventType]bool{}
	for i := 0; i < 2; i++ {
		select {
		case e := <-bus.Events():
			seen[e.Type] = true
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for event")
		}
	}
	if !seen[model.EventTaskStarted] || !seen[model.EventAgentMessageDelta] {
		t.Fatalf("missing expected events: %v", seen)
	}
}

func TestBus_DropsDeltasUnderBackpressure(t *testing.T) {
	bus := NewBus(BusConfig{HighPriBuffer: 1, LowPriBuffer: 1})
	defer bus.Close()

	// Fill the low-priority lane, then overflow it without ever
	// draining Events() so TrySend has no room.
	bus.Emit(context.Background(), model.NewEvent(model.EventAgentMessageDelta, "sub-1"))
	time.Sleep(10 * time.Millisecond) // let mergeLoop possibly drain one slot
	for i := 0; i < 10; i++ {
		bus.Emit(context.Background(), model.NewEvent(model.EventAgentMessageDelta, "sub-1"))
	}

	if bus.DroppedCount() == 0 {
		t.Fatal("expected at least one dropped delta event")
	}
}

func TestBus_CloseEndsEventsStream(t *testing.T) {
	bus := NewBus(DefaultBusConfig())
	bus.Emit(context.Background(), model.NewEvent(model.EventTaskComplete, "sub-1"))
	bus.Close()

	drained := false
	for range bus.Events() {
		drained = true
	}
	if !drained {
		t.Fatal("expected the buffered event to be delivered before close")
	}
}

func TestBus_NonDroppableEventsAreNeverDropped(t *testing.T) {
	bus := NewBus(BusConfig{HighPriBuffer: 1, LowPriBuffer: 1})
	defer bus.Close()

	const sent = 20
	go func() {
		for i := 0; i < sent; i++ {
			bus.Emit(context.Background(), model.NewEvent(model.EventExecCommandEnd, "sub-1"))
		}
	}()

	received := 0
	for received < sent {
		select {
		case <-bus.Events():
			received++
		case <-time.After(time.Second):
			t.Fatalf("timed out after receiving %d/%d events", received, sent)
		}
	}
	if bus.DroppedCount() != 0 {
		t.Fatalf("non-droppable events must never be dropped, got %d drops", bus.DroppedCount())
	}
}
