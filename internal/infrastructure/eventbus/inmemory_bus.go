package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/themery/themery/internal/domain/event"
	"github.com/themery/themery/internal/infrastructure/metrics"
)

// InMemoryBus is a synchronous bus for tests and single-process setups.
// Publish delivers to the subscribed handler before returning, retrying in
// place and collecting exhausted messages in an inspectable dead letter
// list. Delivery counts are tracked per message so duplicate publishes
// look like real redeliveries to the handler.
type InMemoryBus struct {
	mu          sync.Mutex
	handlers    map[string]MessageHandler
	seq         int64
	maxRetries  int
	deadLetters []DeadLetterEntry
	logger      *slog.Logger
	metrics     *metrics.ConsumerMetrics
}

// InMemoryOption configures an InMemoryBus.
type InMemoryOption func(*InMemoryBus)

// WithInMemoryLogger sets the logger for the bus.
func WithInMemoryLogger(logger *slog.Logger) InMemoryOption {
	return func(b *InMemoryBus) {
		b.logger = logger
	}
}

// WithInMemoryMaxRetries sets how many times a failing delivery is retried
// before dead-lettering.
func WithInMemoryMaxRetries(maxRetries int) InMemoryOption {
	return func(b *InMemoryBus) {
		b.maxRetries = maxRetries
	}
}

// WithInMemoryMetrics sets the metrics recorded for dead-lettered
// deliveries.
func WithInMemoryMetrics(m *metrics.ConsumerMetrics) InMemoryOption {
	return func(b *InMemoryBus) {
		b.metrics = m
	}
}

// NewInMemoryBus creates a new InMemoryBus.
func NewInMemoryBus(opts ...InMemoryOption) *InMemoryBus {
	b := &InMemoryBus{
		handlers:   make(map[string]MessageHandler),
		maxRetries: defaultMaxRetries,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Subscribe registers the handler for a topic.
func (b *InMemoryBus) Subscribe(topic string, handler MessageHandler) error {
	if topic == "" {
		return errors.New("topic cannot be empty")
	}
	if handler == nil {
		return errors.New("handler cannot be nil")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.handlers[topic]; exists {
		return fmt.Errorf("handler already registered for topic %s", topic)
	}
	b.handlers[topic] = handler

	return nil
}

// Publish delivers the payload to the topic handler synchronously. A topic
// without a handler is accepted and dropped, matching a stream nobody has
// joined yet.
func (b *InMemoryBus) Publish(ctx context.Context, topic string, payload []byte) error {
	if topic == "" {
		return errors.New("topic cannot be empty")
	}

	b.mu.Lock()
	handler := b.handlers[topic]
	b.seq++
	id := fmt.Sprintf("%d-0", b.seq)
	b.mu.Unlock()

	if handler == nil {
		b.logger.DebugContext(ctx, "no handler for topic, dropping message",
			slog.String("topic", topic),
		)
		return nil
	}

	var lastErr error
	for attempt := 0; attempt <= b.maxRetries; attempt++ {
		msg := Message{
			ID:            id,
			Topic:         topic,
			Payload:       payload,
			DeliveryCount: int64(attempt + 1),
		}
		if err := handler(ctx, msg); err != nil {
			lastErr = err
			continue
		}
		return nil
	}

	b.mu.Lock()
	b.deadLetters = append(b.deadLetters, DeadLetterEntry{
		Topic:     topic,
		MessageID: id,
		Error:     lastErr.Error(),
		Payload:   payload,
	})
	b.mu.Unlock()

	if b.metrics != nil {
		b.metrics.DeadLettersTotal.WithLabelValues(topic).Inc()
	}

	b.logger.ErrorContext(ctx, "message dead-lettered",
		slog.String("topic", topic),
		slog.String("message_id", id),
		slog.String("error", lastErr.Error()),
	)

	return nil
}

// DeadLetters returns a copy of the dead letter list.
func (b *InMemoryBus) DeadLetters() []DeadLetterEntry {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]DeadLetterEntry, len(b.deadLetters))
	copy(out, b.deadLetters)
	return out
}

var (
	_ event.Publisher = (*InMemoryBus)(nil)
	_ Subscriber      = (*InMemoryBus)(nil)
)
