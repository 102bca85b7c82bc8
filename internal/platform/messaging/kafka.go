package messaging

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"electoral/internal/shared/events"
)

const (
	subscriberBuffer  = 128
	handlerAttempts   = 3
	handlerRetryDelay = 50 * time.Millisecond
)

// Kafka is the event bus adapter used by the outbox relay and consumers.
// It is an in-process publish/subscribe bus with the broker-facing API, so
// the broker list is accepted and kept for diagnostics only.
type Kafka struct {
	mu          sync.RWMutex
	brokers     []string
	subscribers map[string][]*subscriber
	logger      *slog.Logger
}

type subscriber struct {
	events chan events.Envelope
	done   <-chan struct{}
}

func NewKafka(brokers []string, logger *slog.Logger) (*Kafka, error) {
	if logger == nil {
		logger = slog.Default()
	}
	return &Kafka{
		brokers:     append([]string(nil), brokers...),
		subscribers: make(map[string][]*subscriber),
		logger:      logger,
	}, nil
}

// Publish hands event to every live subscriber of topic. It blocks while a
// subscriber's buffer is full and gives up only when ctx ends, so the relay
// leaves the outbox row pending instead of losing the event.
func (k *Kafka) Publish(ctx context.Context, topic string, event events.Envelope) error {
	k.mu.RLock()
	subs := append([]*subscriber(nil), k.subscribers[topic]...)
	k.mu.RUnlock()

	delivered := 0
	for _, sub := range subs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-sub.done:
			// Subscriber is shutting down.
		case sub.events <- event:
			delivered++
		}
	}

	k.logger.Debug("event published",
		"event", "kafka_publish",
		"module", "internal/platform/messaging",
		"layer", "platform",
		"topic", topic,
		"event_id", event.EventID,
		"event_type", event.EventType,
		"subscribers", delivered,
	)
	return nil
}

// Subscribe starts a consumer for topic. A failing handler is retried a few
// times before the event is given up on.
func (k *Kafka) Subscribe(
	ctx context.Context,
	topic string,
	consumerGroup string,
	handler func(context.Context, events.Envelope) error,
) error {
	sub := &subscriber{
		events: make(chan events.Envelope, subscriberBuffer),
		done:   ctx.Done(),
	}

	k.mu.Lock()
	k.subscribers[topic] = append(k.subscribers[topic], sub)
	k.mu.Unlock()

	go func() {
		for {
			select {
			case <-ctx.Done():
				k.removeSubscriber(topic, sub)
				return
			case event := <-sub.events:
				k.consume(ctx, topic, consumerGroup, event, handler)
			}
		}
	}()
	return nil
}

func (k *Kafka) consume(
	ctx context.Context,
	topic string,
	consumerGroup string,
	event events.Envelope,
	handler func(context.Context, events.Envelope) error,
) {
	for attempt := 1; ; attempt++ {
		err := handler(ctx, event)
		if err == nil {
			return
		}
		k.logger.Error("consumer handler failed",
			"event", "kafka_consume_failed",
			"module", "internal/platform/messaging",
			"layer", "platform",
			"topic", topic,
			"consumer_group", consumerGroup,
			"event_id", event.EventID,
			"event_type", event.EventType,
			"attempt", attempt,
			"error", err.Error(),
		)
		if attempt >= handlerAttempts {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Duration(attempt) * handlerRetryDelay):
		}
	}
}

func (k *Kafka) Brokers() []string {
	return append([]string(nil), k.brokers...)
}

func (k *Kafka) removeSubscriber(topic string, target *subscriber) {
	k.mu.Lock()
	defer k.mu.Unlock()

	items := k.subscribers[topic]
	if len(items) == 0 {
		return
	}
	filtered := make([]*subscriber, 0, len(items))
	for _, item := range items {
		if item != target {
			filtered = append(filtered, item)
		}
	}
	k.subscribers[topic] = filtered
}
