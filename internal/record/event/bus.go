package event

import (
	"context"
	"errors"
	"sync"

	"github.com/shandysiswandi/gorecord/internal/record/entity"
)

var (
	ErrBusClosed = errors.New("event bus is closed")
	ErrBusFull   = errors.New("event bus is full")
)

// Bus is a bounded in-process queue of committed mutations. Publish never
// waits: auditing is best effort and must not hold up a mutation.
type Bus struct {
	mu     sync.RWMutex
	closed bool
	ch     chan entity.MutationEvent
}

func NewBus(buffer int) *Bus {
	return &Bus{ch: make(chan entity.MutationEvent, max(buffer, 1))}
}

// Publish enqueues event, or fails with ErrBusFull when the buffer has no room.
func (b *Bus) Publish(ctx context.Context, event entity.MutationEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return ErrBusClosed
	}

	select {
	case b.ch <- event:
		return nil
	default:
		return ErrBusFull
	}
}

// Pending returns the number of queued events not yet taken by a worker.
func (b *Bus) Pending() int {
	return len(b.ch)
}

func (b *Bus) events() <-chan entity.MutationEvent {
	return b.ch
}

// Close stops new publishes; queued events are still delivered.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.closed {
		b.closed = true
		close(b.ch)
	}
}
