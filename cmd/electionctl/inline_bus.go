package main

import (
	"context"
	"sync"

	"electoral/internal/shared/events"
)

// inlineBus delivers each event to the topic's handlers on the publishing
// goroutine, so a relay pass has finished all consumer work when it returns.
type inlineBus struct {
	mu       sync.RWMutex
	handlers map[string][]func(context.Context, events.Envelope) error
}

func newInlineBus() *inlineBus {
	return &inlineBus{handlers: make(map[string][]func(context.Context, events.Envelope) error)}
}

func (b *inlineBus) Publish(ctx context.Context, topic string, event events.Envelope) error {
	b.mu.RLock()
	handlers := append([]func(context.Context, events.Envelope) error(nil), b.handlers[topic]...)
	b.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			return err
		}
	}
	return nil
}

func (b *inlineBus) Subscribe(
	_ context.Context,
	topic string,
	_ string,
	handler func(context.Context, events.Envelope) error,
) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[topic] = append(b.handlers[topic], handler)
	return nil
}
