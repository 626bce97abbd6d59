package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Default dead letter queue configuration.
const (
	deadLetterQueueKey    = "events:dead_letter"
	defaultMaxDeadLetters = 1000
	maxPayloadLogLength   = 500
)

// LoggingHandler logs every delivery for audit trail purposes. Wrap it
// around the real handler so the log line is written whether the apply
// succeeds or not.
type LoggingHandler struct {
	logger *slog.Logger
}

// NewLoggingHandler creates a new LoggingHandler.
func NewLoggingHandler(logger *slog.Logger) *LoggingHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingHandler{logger: logger}
}

// Wrap returns a handler that logs the delivery and then calls next.
func (h *LoggingHandler) Wrap(next MessageHandler) MessageHandler {
	return func(ctx context.Context, msg Message) error {
		payload := string(msg.Payload)
		if len(payload) > maxPayloadLogLength {
			payload = payload[:maxPayloadLogLength] + "..."
		}

		h.logger.InfoContext(ctx, "message received",
			slog.String("topic", msg.Topic),
			slog.String("message_id", msg.ID),
			slog.Int64("delivery_count", msg.DeliveryCount),
			slog.String("payload", payload),
		)

		return next(ctx, msg)
	}
}

// DeadLetterHandler stores failed messages in Redis for later analysis.
type DeadLetterHandler struct {
	client        *redis.Client
	logger        *slog.Logger
	queueKey      string
	maxDeadLetter int64
}

// DeadLetterEntry represents a failed message stored in the dead letter queue.
type DeadLetterEntry struct {
	Topic     string          `json:"topic"`
	MessageID string          `json:"message_id"`
	Error     string          `json:"error"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// DeadLetterHandlerOption configures DeadLetterHandler.
type DeadLetterHandlerOption func(*DeadLetterHandler)

// WithDeadLetterQueueKey sets a custom key for the dead letter queue.
func WithDeadLetterQueueKey(key string) DeadLetterHandlerOption {
	return func(h *DeadLetterHandler) {
		h.queueKey = key
	}
}

// WithDeadLetterLogger sets the logger for DeadLetterHandler.
func WithDeadLetterLogger(logger *slog.Logger) DeadLetterHandlerOption {
	return func(h *DeadLetterHandler) {
		h.logger = logger
	}
}

// WithMaxDeadLetters sets the maximum number of entries to keep in the queue.
func WithMaxDeadLetters(maxEntries int64) DeadLetterHandlerOption {
	return func(h *DeadLetterHandler) {
		h.maxDeadLetter = maxEntries
	}
}

// NewDeadLetterHandler creates a new DeadLetterHandler.
func NewDeadLetterHandler(client *redis.Client, opts ...DeadLetterHandlerOption) *DeadLetterHandler {
	h := &DeadLetterHandler{
		client:        client,
		logger:        slog.Default(),
		queueKey:      deadLetterQueueKey,
		maxDeadLetter: defaultMaxDeadLetters,
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Handle stores a failed message in the dead letter queue.
func (h *DeadLetterHandler) Handle(ctx context.Context, msg Message, err error) {
	entry := DeadLetterEntry{
		Topic:     msg.Topic,
		MessageID: msg.ID,
		Error:     err.Error(),
		Payload:   msg.Payload,
		Timestamp: time.Now().Unix(),
	}

	data, marshalErr := json.Marshal(entry)
	if marshalErr != nil {
		h.logger.ErrorContext(ctx, "failed to marshal dead letter entry",
			slog.String("topic", msg.Topic),
			slog.String("error", marshalErr.Error()),
		)
		return
	}

	if pushErr := h.client.LPush(ctx, h.queueKey, string(data)).Err(); pushErr != nil {
		h.logger.ErrorContext(ctx, "failed to push to dead letter queue",
			slog.String("topic", msg.Topic),
			slog.String("error", pushErr.Error()),
		)
		return
	}

	if trimErr := h.client.LTrim(ctx, h.queueKey, 0, h.maxDeadLetter-1).Err(); trimErr != nil {
		h.logger.WarnContext(ctx, "failed to trim dead letter queue",
			slog.String("error", trimErr.Error()),
		)
	}

	h.logger.ErrorContext(ctx, "message moved to dead letter queue",
		slog.String("topic", msg.Topic),
		slog.String("message_id", msg.ID),
		slog.String("original_error", err.Error()),
	)
}

// GetDeadLetters retrieves entries from the dead letter queue.
func (h *DeadLetterHandler) GetDeadLetters(ctx context.Context, count int64) ([]DeadLetterEntry, error) {
	requestedCount := count
	if requestedCount <= 0 {
		requestedCount = 10
	}

	data, rangeErr := h.client.LRange(ctx, h.queueKey, 0, requestedCount-1).Result()
	if rangeErr != nil {
		return nil, fmt.Errorf("failed to get dead letters: %w", rangeErr)
	}

	entries := make([]DeadLetterEntry, 0, len(data))
	for _, d := range data {
		var entry DeadLetterEntry
		if unmarshalErr := json.Unmarshal([]byte(d), &entry); unmarshalErr != nil {
			h.logger.WarnContext(ctx, "failed to unmarshal dead letter entry",
				slog.String("error", unmarshalErr.Error()),
			)
			continue
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// ClearDeadLetters removes all entries from the dead letter queue.
func (h *DeadLetterHandler) ClearDeadLetters(ctx context.Context) error {
	return h.client.Del(ctx, h.queueKey).Err()
}

// QueueLength returns the number of entries in the dead letter queue.
func (h *DeadLetterHandler) QueueLength(ctx context.Context) (int64, error) {
	return h.client.LLen(ctx, h.queueKey).Result()
}
