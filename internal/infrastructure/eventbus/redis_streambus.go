// Package eventbus provides event bus implementations for asynchronous
// event delivery between services.
package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/themery/themery/internal/domain/event"
	"github.com/themery/themery/internal/infrastructure/metrics"
)

// Default bus configuration constants.
const (
	defaultMaxRetries     = 3
	defaultInitialBackoff = 100 * time.Millisecond
	defaultMaxBackoff     = 5 * time.Second
	defaultBackoffFactor  = 2.0
	defaultStreamPrefix   = "events:"
	defaultBlockTimeout   = 5 * time.Second
	defaultReadBatchSize  = 16
	defaultClaimInterval  = 30 * time.Second
	defaultClaimMinIdle   = time.Minute
	defaultClaimBatchSize = 64
)

// Message is a single delivery from the bus. DeliveryCount starts at 1 and
// grows with every redelivery of the same message.
type Message struct {
	ID            string
	Topic         string
	Payload       []byte
	DeliveryCount int64
}

// MessageHandler processes one delivery. A nil return acknowledges the
// message; an error leaves it pending for redelivery.
type MessageHandler func(ctx context.Context, msg Message) error

// RetryConfig configures in-process retry behavior for message handling.
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	BackoffFactor  float64
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     defaultMaxRetries,
		InitialBackoff: defaultInitialBackoff,
		MaxBackoff:     defaultMaxBackoff,
		BackoffFactor:  defaultBackoffFactor,
	}
}

// RedisStreamBus implements publish and consume over Redis Streams.
// Each topic maps to one stream; consumers join a named group so that
// instances of one service compete for messages while distinct groups each
// see every message. XADD returns only after Redis has accepted the entry,
// which gives the publisher its durable-accept guarantee. Entries read but
// never acked stay in the group's pending list; a periodic reclaim pass
// claims entries idle past a threshold and runs them through the handler
// again, which gives consumers at-least-once across crashes.
type RedisStreamBus struct {
	client        *redis.Client
	group         string
	consumer      string
	handlers      map[string]MessageHandler
	handlersMu    sync.RWMutex
	running       bool
	runningMu     sync.RWMutex
	shutdown      chan struct{}
	wg            sync.WaitGroup
	logger        *slog.Logger
	retryConfig   RetryConfig
	streamPrefix  string
	blockTimeout  time.Duration
	claimInterval time.Duration
	claimMinIdle  time.Duration
	deadLetter    *DeadLetterHandler
	metrics       *metrics.ConsumerMetrics
}

// Option configures a RedisStreamBus.
type Option func(*RedisStreamBus)

// WithLogger sets the logger for the bus.
func WithLogger(logger *slog.Logger) Option {
	return func(b *RedisStreamBus) {
		b.logger = logger
	}
}

// WithRetryConfig sets the retry configuration for message handling.
func WithRetryConfig(config RetryConfig) Option {
	return func(b *RedisStreamBus) {
		b.retryConfig = config
	}
}

// WithStreamPrefix sets a prefix for Redis stream keys.
func WithStreamPrefix(prefix string) Option {
	return func(b *RedisStreamBus) {
		b.streamPrefix = prefix
	}
}

// WithBlockTimeout sets how long a read blocks waiting for new messages.
func WithBlockTimeout(timeout time.Duration) Option {
	return func(b *RedisStreamBus) {
		b.blockTimeout = timeout
	}
}

// WithDeadLetterHandler sets the handler that receives messages whose
// retries are exhausted. Without one, poison messages are acked and only
// logged.
func WithDeadLetterHandler(dlq *DeadLetterHandler) Option {
	return func(b *RedisStreamBus) {
		b.deadLetter = dlq
	}
}

// WithClaimInterval sets how often the bus scans the group for pending
// entries abandoned by crashed consumers.
func WithClaimInterval(interval time.Duration) Option {
	return func(b *RedisStreamBus) {
		b.claimInterval = interval
	}
}

// WithClaimMinIdle sets how long a pending entry must sit unacked before
// another consumer may take it over. Must comfortably exceed the worst
// handler duration or two consumers end up applying the same delivery.
func WithClaimMinIdle(minIdle time.Duration) Option {
	return func(b *RedisStreamBus) {
		b.claimMinIdle = minIdle
	}
}

// WithConsumerMetrics sets the metrics recorded for dead-lettered
// deliveries.
func WithConsumerMetrics(m *metrics.ConsumerMetrics) Option {
	return func(b *RedisStreamBus) {
		b.metrics = m
	}
}

// NewRedisStreamBus creates a new Redis Streams bus for the given consumer
// group. The consumer name must be unique per service instance.
func NewRedisStreamBus(client *redis.Client, group, consumer string, opts ...Option) *RedisStreamBus {
	b := &RedisStreamBus{
		client:        client,
		group:         group,
		consumer:      consumer,
		handlers:      make(map[string]MessageHandler),
		shutdown:      make(chan struct{}),
		logger:        slog.Default(),
		retryConfig:   DefaultRetryConfig(),
		streamPrefix:  defaultStreamPrefix,
		blockTimeout:  defaultBlockTimeout,
		claimInterval: defaultClaimInterval,
		claimMinIdle:  defaultClaimMinIdle,
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Publish appends a message to the topic's stream. It returns nil only
// after Redis has accepted the entry.
func (b *RedisStreamBus) Publish(ctx context.Context, topic string, payload []byte) error {
	if topic == "" {
		return errors.New("topic cannot be empty")
	}

	id, err := b.client.XAdd(ctx, &redis.XAddArgs{
		Stream: b.streamKey(topic),
		Values: map[string]any{
			"topic":   topic,
			"payload": payload,
		},
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to publish to stream %s: %w", topic, err)
	}

	b.logger.DebugContext(ctx, "message published",
		slog.String("topic", topic),
		slog.String("message_id", id),
	)

	return nil
}

// Subscribe registers the handler for a topic. One handler per topic; the
// dispatcher fans out internally when several operations share a topic.
func (b *RedisStreamBus) Subscribe(topic string, handler MessageHandler) error {
	if topic == "" {
		return errors.New("topic cannot be empty")
	}
	if handler == nil {
		return errors.New("handler cannot be nil")
	}

	b.handlersMu.Lock()
	defer b.handlersMu.Unlock()

	if _, exists := b.handlers[topic]; exists {
		return fmt.Errorf("handler already registered for topic %s", topic)
	}
	b.handlers[topic] = handler

	return nil
}

// Start creates the consumer groups and consumes messages until Shutdown
// is called or the context is cancelled. This method blocks.
func (b *RedisStreamBus) Start(ctx context.Context) error {
	b.runningMu.Lock()
	if b.running {
		b.runningMu.Unlock()
		return errors.New("stream bus is already running")
	}
	b.running = true
	b.runningMu.Unlock()

	streams := b.subscribedStreams()
	if len(streams) == 0 {
		b.logger.WarnContext(ctx, "starting stream bus with no subscriptions")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-b.shutdown:
			return nil
		}
	}

	if err := b.ensureGroups(ctx, streams); err != nil {
		return err
	}

	b.logger.InfoContext(ctx, "stream bus started",
		slog.String("group", b.group),
		slog.String("consumer", b.consumer),
		slog.Any("streams", streams),
	)

	// Deliveries a crashed consumer never acked sit in the group's
	// pending list. Claim them on startup and on a timer so a crash
	// between read and ack delays a delivery instead of losing it.
	b.claimAbandoned(ctx, streams)

	claimTicker := time.NewTicker(b.claimInterval)
	defer claimTicker.Stop()

	// XREADGROUP wants streams followed by one ">" cursor per stream.
	args := make([]string, 0, len(streams)*2)
	args = append(args, streams...)
	for range streams {
		args = append(args, ">")
	}

	for {
		select {
		case <-ctx.Done():
			b.logger.InfoContext(ctx, "stream bus stopping due to context cancellation")
			b.wg.Wait()
			return ctx.Err()
		case <-b.shutdown:
			b.logger.InfoContext(ctx, "stream bus stopping due to shutdown signal")
			b.wg.Wait()
			return nil
		case <-claimTicker.C:
			b.claimAbandoned(ctx, streams)
		default:
		}

		results, err := b.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    b.group,
			Consumer: b.consumer,
			Streams:  args,
			Count:    defaultReadBatchSize,
			Block:    b.blockTimeout,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				b.wg.Wait()
				return err
			}
			b.logger.ErrorContext(ctx, "failed to read from streams",
				slog.String("error", err.Error()),
			)
			select {
			case <-time.After(b.retryConfig.InitialBackoff):
			case <-b.shutdown:
				b.wg.Wait()
				return nil
			}
			continue
		}

		for _, stream := range results {
			for _, xmsg := range stream.Messages {
				// The ">" cursor only returns never-delivered
				// entries, so this is always the first delivery.
				b.processMessage(ctx, stream.Stream, xmsg, 1)
			}
		}
	}
}

// Shutdown gracefully stops the bus and waits for in-flight handlers.
func (b *RedisStreamBus) Shutdown() error {
	b.runningMu.Lock()
	if !b.running {
		b.runningMu.Unlock()
		return nil
	}
	b.running = false
	b.runningMu.Unlock()

	close(b.shutdown)
	b.wg.Wait()

	return nil
}

// IsRunning returns true if the bus is currently consuming.
func (b *RedisStreamBus) IsRunning() bool {
	b.runningMu.RLock()
	defer b.runningMu.RUnlock()
	return b.running
}

// streamKey returns the Redis stream key for a topic.
func (b *RedisStreamBus) streamKey(topic string) string {
	return b.streamPrefix + topic
}

// topicFromStream strips the prefix back off a stream key.
func (b *RedisStreamBus) topicFromStream(stream string) string {
	return strings.TrimPrefix(stream, b.streamPrefix)
}

// subscribedStreams returns stream keys for all subscribed topics.
func (b *RedisStreamBus) subscribedStreams() []string {
	b.handlersMu.RLock()
	defer b.handlersMu.RUnlock()

	streams := make([]string, 0, len(b.handlers))
	for topic := range b.handlers {
		streams = append(streams, b.streamKey(topic))
	}
	return streams
}

// ensureGroups creates the consumer group on every stream, creating the
// stream itself when it does not exist yet.
func (b *RedisStreamBus) ensureGroups(ctx context.Context, streams []string) error {
	for _, stream := range streams {
		err := b.client.XGroupCreateMkStream(ctx, stream, b.group, "0").Err()
		if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
			return fmt.Errorf("failed to create group %s on stream %s: %w", b.group, stream, err)
		}
	}
	return nil
}

// claimAbandoned takes over group entries that have sat unacked past the
// idle threshold and runs them through the normal handler path. The
// pending delivery count rides along so the retry limit holds across
// consumer restarts, not just within one process.
func (b *RedisStreamBus) claimAbandoned(ctx context.Context, streams []string) {
	for _, stream := range streams {
		pending, err := b.client.XPendingExt(ctx, &redis.XPendingExtArgs{
			Stream: stream,
			Group:  b.group,
			Idle:   b.claimMinIdle,
			Start:  "-",
			End:    "+",
			Count:  defaultClaimBatchSize,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			b.logger.ErrorContext(ctx, "failed to inspect pending entries",
				slog.String("stream", stream),
				slog.String("error", err.Error()),
			)
			continue
		}
		if len(pending) == 0 {
			continue
		}

		deliveries := make(map[string]int64, len(pending))
		for _, entry := range pending {
			deliveries[entry.ID] = entry.RetryCount
		}

		claimed, _, err := b.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
			Stream:   stream,
			Group:    b.group,
			Consumer: b.consumer,
			MinIdle:  b.claimMinIdle,
			Start:    "0-0",
			Count:    defaultClaimBatchSize,
		}).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			b.logger.ErrorContext(ctx, "failed to claim pending entries",
				slog.String("stream", stream),
				slog.String("error", err.Error()),
			)
			continue
		}

		if len(claimed) > 0 {
			b.logger.InfoContext(ctx, "claimed abandoned deliveries",
				slog.String("stream", stream),
				slog.Int("count", len(claimed)),
			)
		}

		for _, xmsg := range claimed {
			// The claim itself is one more delivery on top of the
			// ones already counted.
			b.processMessage(ctx, stream, xmsg, deliveries[xmsg.ID]+1)
		}
	}
}

// processMessage runs the topic handler with retries, acking on success.
// When retries are exhausted the message goes to the dead letter queue and
// is acked anyway so a poison message cannot wedge the stream.
func (b *RedisStreamBus) processMessage(ctx context.Context, stream string, xmsg redis.XMessage, deliveryCount int64) {
	b.wg.Add(1)
	defer b.wg.Done()

	topic := b.topicFromStream(stream)
	msg := Message{
		ID:            xmsg.ID,
		Topic:         topic,
		Payload:       extractPayload(xmsg),
		DeliveryCount: deliveryCount,
	}

	b.handlersMu.RLock()
	handler := b.handlers[topic]
	b.handlersMu.RUnlock()

	if handler == nil {
		b.logger.WarnContext(ctx, "no handler for topic, acking message",
			slog.String("topic", topic),
			slog.String("message_id", msg.ID),
		)
		b.ack(ctx, stream, msg.ID)
		return
	}

	// A first delivery always gets its attempts. After that the bound
	// covers redeliveries across crashes: once a message has already
	// been handed out more than MaxRetries+1 times it is parked without
	// invoking the handler again.
	if msg.DeliveryCount > int64(b.retryConfig.MaxRetries)+1 {
		b.sendToDeadLetter(ctx, msg, fmt.Errorf(
			"delivery count %d exceeded retry limit %d", msg.DeliveryCount, b.retryConfig.MaxRetries))
		b.ack(ctx, stream, msg.ID)
		return
	}

	lastErr := b.executeWithRetry(ctx, handler, msg)
	if lastErr != nil {
		b.sendToDeadLetter(ctx, msg, lastErr)
	}

	b.ack(ctx, stream, msg.ID)
}

// sendToDeadLetter parks a failed delivery and records it in the metrics.
func (b *RedisStreamBus) sendToDeadLetter(ctx context.Context, msg Message, cause error) {
	if b.metrics != nil {
		b.metrics.DeadLettersTotal.WithLabelValues(msg.Topic).Inc()
	}

	if b.deadLetter != nil {
		b.deadLetter.Handle(ctx, msg, cause)
		return
	}

	b.logger.ErrorContext(ctx, "message failed after all retries, no dead letter queue configured",
		slog.String("topic", msg.Topic),
		slog.String("message_id", msg.ID),
		slog.String("error", cause.Error()),
	)
}

// executeWithRetry runs the handler with exponential backoff. Returns the
// last error when every attempt failed.
func (b *RedisStreamBus) executeWithRetry(ctx context.Context, handler MessageHandler, msg Message) error {
	var lastErr error
	backoff := b.retryConfig.InitialBackoff

	for attempt := 0; attempt <= b.retryConfig.MaxRetries; attempt++ {
		if attempt > 0 {
			b.logger.DebugContext(ctx, "retrying message handler",
				slog.String("topic", msg.Topic),
				slog.String("message_id", msg.ID),
				slog.Int("attempt", attempt),
				slog.Duration("backoff", backoff),
			)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}

			backoff = time.Duration(float64(backoff) * b.retryConfig.BackoffFactor)
			if backoff > b.retryConfig.MaxBackoff {
				backoff = b.retryConfig.MaxBackoff
			}
		}

		if err := handler(ctx, msg); err != nil {
			lastErr = err
			b.logger.WarnContext(ctx, "message handler failed",
				slog.String("topic", msg.Topic),
				slog.String("message_id", msg.ID),
				slog.Int("attempt", attempt),
				slog.String("error", err.Error()),
			)
			continue
		}

		return nil
	}

	return lastErr
}

// ack acknowledges the message in the consumer group.
func (b *RedisStreamBus) ack(ctx context.Context, stream, id string) {
	if err := b.client.XAck(ctx, stream, b.group, id).Err(); err != nil {
		// The delivery will come around again; the idempotent apply
		// absorbs the duplicate.
		b.logger.WarnContext(ctx, "failed to ack message",
			slog.String("stream", stream),
			slog.String("message_id", id),
			slog.String("error", err.Error()),
		)
	}
}

// extractPayload pulls the payload field out of a stream entry.
func extractPayload(xmsg redis.XMessage) []byte {
	raw, ok := xmsg.Values["payload"]
	if !ok {
		return nil
	}
	switch v := raw.(type) {
	case string:
		return []byte(v)
	case []byte:
		return v
	default:
		return nil
	}
}

// Ensure RedisStreamBus can serve as the owner-side publisher.
var _ event.Publisher = (*RedisStreamBus)(nil)
