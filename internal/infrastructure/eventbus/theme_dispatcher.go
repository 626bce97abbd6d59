package eventbus

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/themery/themery/internal/application/projection"
	"github.com/themery/themery/internal/infrastructure/metrics"
	"github.com/themery/themery/internal/integration"
)

// ThemeEventDispatcher routes replicated theme deliveries to the
// projection use cases. The event set is closed, so the dispatch switch is
// exhaustive; a payload that decodes to nothing it knows is returned as an
// error and ends up in the dead letter queue instead of being retried
// forever.
type ThemeEventDispatcher struct {
	upsertUC *projection.UpsertThemeUseCase
	removeUC *projection.RemoveThemeUseCase
	logger   *slog.Logger
	metrics  *metrics.ConsumerMetrics
}

// ThemeEventDispatcherOption configures ThemeEventDispatcher.
type ThemeEventDispatcherOption func(*ThemeEventDispatcher)

// WithDispatcherLogger sets the logger for the dispatcher.
func WithDispatcherLogger(logger *slog.Logger) ThemeEventDispatcherOption {
	return func(d *ThemeEventDispatcher) {
		d.logger = logger
	}
}

// WithDispatcherMetrics sets the consumer metrics for the dispatcher.
func WithDispatcherMetrics(m *metrics.ConsumerMetrics) ThemeEventDispatcherOption {
	return func(d *ThemeEventDispatcher) {
		d.metrics = m
	}
}

// NewThemeEventDispatcher creates a new ThemeEventDispatcher.
func NewThemeEventDispatcher(
	upsertUC *projection.UpsertThemeUseCase,
	removeUC *projection.RemoveThemeUseCase,
	opts ...ThemeEventDispatcherOption,
) *ThemeEventDispatcher {
	d := &ThemeEventDispatcher{
		upsertUC: upsertUC,
		removeUC: removeUC,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Handle decodes a delivery and applies it to the projection store.
func (d *ThemeEventDispatcher) Handle(ctx context.Context, msg Message) (retErr error) {
	if d.metrics != nil {
		start := time.Now()
		defer func() {
			status := "success"
			if retErr != nil {
				status = "failed"
			}
			d.metrics.MessagesApplied.WithLabelValues(msg.Topic, status).Inc()
			d.metrics.ApplyDuration.WithLabelValues(msg.Topic).Observe(time.Since(start).Seconds())
		}()
	}

	evt, err := integration.Decode(msg.Topic, msg.Payload)
	if err != nil {
		return fmt.Errorf("failed to decode delivery on %s: %w", msg.Topic, err)
	}

	d.logger.InfoContext(ctx, "applying replicated theme event",
		slog.String("topic", msg.Topic),
		slog.String("theme_id", evt.EntityID().String()),
		slog.String("message_id", msg.ID),
	)

	switch e := evt.(type) {
	case integration.ThemeCreated:
		_, err = d.upsertUC.Execute(ctx, projection.UpsertThemeCommand{ThemeID: e.ID, Name: e.Name})
	case integration.ThemeUpdated:
		_, err = d.upsertUC.Execute(ctx, projection.UpsertThemeCommand{ThemeID: e.ID, Name: e.Name})
	case integration.ThemeDeleted:
		_, err = d.removeUC.Execute(ctx, projection.RemoveThemeCommand{ThemeID: e.ID})
	default:
		return fmt.Errorf("no apply operation for event on topic %s", msg.Topic)
	}

	if err != nil {
		return fmt.Errorf("failed to apply %s for theme %s: %w", msg.Topic, evt.EntityID(), err)
	}

	return nil
}

// AsMessageHandler converts the dispatcher to a MessageHandler.
func (d *ThemeEventDispatcher) AsMessageHandler() MessageHandler {
	return d.Handle
}

// RegisterThemeSubscriptions subscribes the dispatcher to every theme
// topic on the given bus, logging each delivery through logHandler.
func RegisterThemeSubscriptions(bus Subscriber, d *ThemeEventDispatcher, logHandler *LoggingHandler) error {
	handler := d.AsMessageHandler()
	if logHandler != nil {
		handler = logHandler.Wrap(handler)
	}

	for _, topic := range integration.Topics() {
		if err := bus.Subscribe(topic, handler); err != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", topic, err)
		}
	}

	return nil
}

// Subscriber is the part of the bus the registration helper needs.
type Subscriber interface {
	Subscribe(topic string, handler MessageHandler) error
}
