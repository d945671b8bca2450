// Package eventbus delivers model.Event values from a running session
// to its one external consumer (the registry handle's reader, or a
// rollout subscriber) in order and without silent loss for anything
// that matters, while still surviving a slow or absent reader.
//
// Grounded on the teacher's internal/agent/event_sink.go, which already
// implements this exact shape (bounded buffer, blocking Send, two-lane
// backpressure for droppable vs non-droppable event types) as
// EventSink/BackpressureSink. Closing semantics (closed channel means
// end-of-stream) match the teacher's BackpressureSink.Close.
package eventbus

import (
	"context"
	"sync"
)

// Channel is a single-consumer bounded delivery primitive: Send blocks
// until the value is buffered, the context is cancelled, or the
// channel is closed. It is generic so C2 (rollout) and C6 (session
// events) can both build on it without duplicating the buffering and
// close-once logic.
//
// Like a plain Go channel, Close must be called by the same owner that
// calls Send, never concurrently with a Send from another goroutine —
// this matches the one-goroutine-per-session discipline spec.md §5
// requires of every Channel owner, so it is not a new restriction.
type Channel[T any] struct {
	ch   chan T
	done chan struct{}
	once sync.Once
}

// NewChannel creates a channel with the given buffer size (at least 1).
func NewChannel[T any](buffer int) *Channel[T] {
	if buffer < 1 {
		buffer = 1
	}
	return &Channel[T]{
		ch:   make(chan T, buffer),
		done: make(chan struct{}),
	}
}

// Send delivers v, blocking until there is buffer space, the context
// is cancelled, or the channel has been closed. Returns false if v was
// not delivered.
func (c *Channel[T]) Send(ctx context.Context, v T) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.ch <- v:
		return true
	case <-ctx.Done():
		return false
	case <-c.done:
		return false
	}
}

// TrySend delivers v only if buffer space is immediately available,
// dropping it otherwise. Used for the droppable lane of Bus.
func (c *Channel[T]) TrySend(v T) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.ch <- v:
		return true
	default:
		return false
	}
}

// C returns the receive side for the sole consumer to range over; it
// closes once Close is called, so ranging over it is the idiomatic
// end-of-stream signal.
func (c *Channel[T]) C() <-chan T {
	return c.ch
}

// Close stops further delivery and closes the underlying channel so a
// ranging consumer sees end-of-stream. Safe to call more than once.
func (c *Channel[T]) Close() {
	c.once.Do(func() {
		close(c.done)
		close(c.ch)
	})
}
