package eventbus

import (
	"context"
	"testing"
	"time"
)

func TestChannel_SendAndReceive(t *testing.T) {
	ch := NewChannel[int](4)
	if !ch.Send(context.Background(), 1) {
		t.Fatal("expected Send to succeed")
	}
	if got := <-ch.C(); got != 1 {
		t.Fatalf("got %d, want 1", got)
	}
}

func TestChannel_SendRespectsContextCancel(t *testing.T) {
	ch := NewChannel[int](1)
	ch.Send(context.Background(), 1) // fill the single slot

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if ch.Send(ctx, 2) {
		t.Fatal("expected Send to fail once context is cancelled")
	}
}

func TestChannel_CloseEndsConsumerRange(t *testing.T) {
	ch := NewChannel[int](2)
	ch.Send(context.Background(), 1)
	ch.Close()

	received := []int{}
	for v := range ch.C() {
		received = append(received, v)
	}
	if len(received) != 1 || received[0] != 1 {
		t.Fatalf("expected buffered value to drain before close, got %v", received)
	}
}

func TestChannel_SendAfterCloseFails(t *testing.T) {
	ch := NewChannel[int](1)
	ch.Close()
	if ch.Send(context.Background(), 1) {
		t.Fatal("expected Send to fail after Close")
	}
}

func TestChannel_TrySendDropsWhenFull(t *testing.T) {
	ch := NewChannel[int](1)
	if !ch.TrySend(1) {
		t.Fatal("expected first TrySend to succeed")
	}
	if ch.TrySend(2) {
		t.Fatal("expected second TrySend to drop")
	}
}

func TestChannel_CloseIsIdempotent(t *testing.T) {
	ch := NewChannel[int](1)
	ch.Close()
	done := make(chan struct{})
	go func() {
		ch.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("second Close should not block")
	}
}
