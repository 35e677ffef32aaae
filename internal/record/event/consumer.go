package event

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/shandysiswandi/gorecord/internal/record/entity"
)

const defaultWorkers = 4

type Handler interface {
	Handle(ctx context.Context, event entity.MutationEvent) error
}

type ConsumerConfig struct {
	Workers int
}

// AuditConsumer drains the bus with a fixed worker pool. Each event is handed
// to the handler once; a failure is logged and counted, never retried, since
// every handler error is a property of the event itself.
type AuditConsumer struct {
	bus     *Bus
	handler Handler
	workers int
	failed  atomic.Uint64
	wg      sync.WaitGroup
}

func NewAuditConsumer(bus *Bus, handler Handler, cfg ConsumerConfig) *AuditConsumer {
	workers := cfg.Workers
	if workers < 1 {
		workers = defaultWorkers
	}

	return &AuditConsumer{
		bus:     bus,
		handler: handler,
		workers: workers,
	}
}

func (c *AuditConsumer) Start() {
	for range c.workers {
		c.wg.Add(1)
		go c.worker()
	}
}

// Failed returns how many events the handler rejected.
func (c *AuditConsumer) Failed() uint64 {
	return c.failed.Load()
}

// Stop closes the bus and waits for queued events, up to ctx.
func (c *AuditConsumer) Stop(ctx context.Context) error {
	c.bus.Close()

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *AuditConsumer) worker() {
	defer c.wg.Done()

	for event := range c.bus.events() {
		if c.handler == nil {
			continue
		}
		if err := c.handler.Handle(context.Background(), event); err != nil {
			c.failed.Add(1)
			slog.Error("failed to audit mutation event",
				"event_id", event.EventID, "kind", event.Kind, "error", err)
		}
	}
}
