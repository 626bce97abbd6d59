// Package worker contains the background relay that drains the
// transactional outbox onto the event bus.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/themery/themery/internal/application/appcore"
	"github.com/themery/themery/internal/domain/event"
	"github.com/themery/themery/internal/infrastructure/metrics"
)

// OutboxWorkerConfig contains configuration for the outbox relay.
type OutboxWorkerConfig struct {
	// PollInterval is how often to poll for unprocessed entries
	PollInterval time.Duration

	// BatchSize is the maximum number of entries to process per poll
	BatchSize int

	// MaxRetries is the maximum number of publish attempts before an
	// entry is parked as poison
	MaxRetries int

	// CleanupAge is how long processed entries are retained
	CleanupAge time.Duration

	// CleanupInterval is how often cleanup runs
	CleanupInterval time.Duration

	// Enabled controls whether the relay runs
	Enabled bool
}

// DefaultOutboxWorkerConfig returns the default relay configuration.
func DefaultOutboxWorkerConfig() OutboxWorkerConfig {
	return OutboxWorkerConfig{
		PollInterval:    100 * time.Millisecond,
		BatchSize:       100,
		MaxRetries:      5,
		CleanupAge:      7 * 24 * time.Hour,
		CleanupInterval: 1 * time.Hour,
		Enabled:         true,
	}
}

// OutboxWorker polls the outbox and publishes pending entries to the bus.
// Publishing is at-least-once: an entry is marked processed only after a
// successful publish, so a crash between publish and mark replays the
// entry on restart. Consumers absorb the duplicate via idempotent apply.
type OutboxWorker struct {
	outbox    appcore.Outbox
	publisher event.Publisher
	config    OutboxWorkerConfig
	logger    *slog.Logger
	metrics   *metrics.OutboxMetrics
}

// OutboxWorkerOption configures OutboxWorker.
type OutboxWorkerOption func(*OutboxWorker)

// WithWorkerLogger sets the logger for the worker.
func WithWorkerLogger(logger *slog.Logger) OutboxWorkerOption {
	return func(w *OutboxWorker) {
		w.logger = logger
	}
}

// WithWorkerMetrics sets the Prometheus metrics for the worker.
func WithWorkerMetrics(m *metrics.OutboxMetrics) OutboxWorkerOption {
	return func(w *OutboxWorker) {
		w.metrics = m
	}
}

// NewOutboxWorker creates a new outbox relay.
func NewOutboxWorker(
	outbox appcore.Outbox,
	publisher event.Publisher,
	config OutboxWorkerConfig,
	opts ...OutboxWorkerOption,
) *OutboxWorker {
	w := &OutboxWorker{
		outbox:    outbox,
		publisher: publisher,
		config:    config,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Run starts the relay loop and blocks until the context is canceled.
func (w *OutboxWorker) Run(ctx context.Context) error {
	if !w.config.Enabled {
		w.logger.InfoContext(ctx, "outbox worker disabled")
		<-ctx.Done()
		return nil
	}

	w.logger.InfoContext(ctx, "outbox worker started",
		slog.Duration("poll_interval", w.config.PollInterval),
		slog.Int("batch_size", w.config.BatchSize),
		slog.Int("max_retries", w.config.MaxRetries),
	)

	pollTicker := time.NewTicker(w.config.PollInterval)
	defer pollTicker.Stop()

	cleanupTicker := time.NewTicker(w.config.CleanupInterval)
	defer cleanupTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.InfoContext(ctx, "outbox worker stopped")
			return nil
		case <-pollTicker.C:
			if err := w.processBatch(ctx); err != nil {
				w.logger.ErrorContext(ctx, "failed to process outbox batch",
					slog.String("error", err.Error()),
				)
			}
			w.updateGaugeMetrics(ctx)
		case <-cleanupTicker.C:
			w.runCleanup(ctx)
		}
	}
}

// ProcessOnce drains a single batch. Intended for tests and manual runs.
func (w *OutboxWorker) ProcessOnce(ctx context.Context) error {
	return w.processBatch(ctx)
}

func (w *OutboxWorker) processBatch(ctx context.Context) error {
	entries, err := w.outbox.Poll(ctx, w.config.BatchSize)
	if err != nil {
		return fmt.Errorf("failed to poll outbox: %w", err)
	}

	if len(entries) == 0 {
		return nil
	}

	if w.metrics != nil {
		w.metrics.PollBatchSize.Observe(float64(len(entries)))
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		w.processEntry(ctx, entry)
	}

	return nil
}

func (w *OutboxWorker) processEntry(ctx context.Context, entry appcore.OutboxEntry) {
	if entry.RetryCount >= w.config.MaxRetries {
		w.logger.WarnContext(ctx, "outbox entry exceeded max retries, marking as processed",
			slog.String("entry_id", entry.ID),
			slog.String("topic", entry.Topic),
			slog.Int("retry_count", entry.RetryCount),
			slog.String("last_error", entry.LastError),
		)
		if err := w.outbox.MarkProcessed(ctx, entry.ID); err != nil {
			w.logger.ErrorContext(ctx, "failed to park poison outbox entry",
				slog.String("entry_id", entry.ID),
				slog.String("error", err.Error()),
			)
		}
		if w.metrics != nil {
			w.metrics.EventsProcessed.WithLabelValues(entry.Topic, "failed").Inc()
		}
		return
	}

	publishStart := time.Now()
	err := w.publisher.Publish(ctx, entry.Topic, entry.Payload)
	if w.metrics != nil {
		w.metrics.PublishDuration.WithLabelValues(entry.Topic).Observe(time.Since(publishStart).Seconds())
	}

	if err != nil {
		w.logger.ErrorContext(ctx, "failed to publish outbox entry",
			slog.String("entry_id", entry.ID),
			slog.String("topic", entry.Topic),
			slog.Int("retry_count", entry.RetryCount),
			slog.String("error", err.Error()),
		)
		if markErr := w.outbox.MarkFailed(ctx, entry.ID, err); markErr != nil {
			w.logger.ErrorContext(ctx, "failed to mark outbox entry as failed",
				slog.String("entry_id", entry.ID),
				slog.String("error", markErr.Error()),
			)
		}
		if w.metrics != nil {
			w.metrics.RetryTotal.WithLabelValues(entry.Topic).Inc()
		}
		return
	}

	if err := w.outbox.MarkProcessed(ctx, entry.ID); err != nil {
		// Published but not marked. The entry will be republished on the
		// next poll and the consumer's idempotent apply absorbs it.
		w.logger.ErrorContext(ctx, "failed to mark outbox entry as processed",
			slog.String("entry_id", entry.ID),
			slog.String("error", err.Error()),
		)
		return
	}

	if w.metrics != nil {
		w.metrics.EventsProcessed.WithLabelValues(entry.Topic, "success").Inc()
		w.metrics.ProcessingDuration.WithLabelValues(entry.Topic).
			Observe(time.Since(entry.CreatedAt).Seconds())
	}

	w.logger.DebugContext(ctx, "published outbox entry",
		slog.String("entry_id", entry.ID),
		slog.String("topic", entry.Topic),
		slog.String("aggregate_id", entry.AggregateID),
	)
}

func (w *OutboxWorker) runCleanup(ctx context.Context) {
	deleted, err := w.outbox.Cleanup(ctx, w.config.CleanupAge)
	if err != nil {
		w.logger.ErrorContext(ctx, "outbox cleanup failed",
			slog.String("error", err.Error()),
		)
		return
	}

	if deleted > 0 {
		w.logger.InfoContext(ctx, "outbox cleanup completed",
			slog.Int64("deleted", deleted),
		)
		if w.metrics != nil {
			w.metrics.CleanupDeletedTotal.Add(float64(deleted))
		}
	}
}

func (w *OutboxWorker) updateGaugeMetrics(ctx context.Context) {
	if w.metrics == nil {
		return
	}

	count, oldest, err := w.outbox.Stats(ctx)
	if err != nil {
		w.logger.WarnContext(ctx, "failed to read outbox stats",
			slog.String("error", err.Error()),
		)
		return
	}

	w.metrics.EventsPending.Set(float64(count))
	if !oldest.IsZero() {
		w.metrics.OldestEventAge.Set(time.Since(oldest).Seconds())
	} else {
		w.metrics.OldestEventAge.Set(0)
	}
}

// GetStats returns a snapshot of the outbox backlog.
func (w *OutboxWorker) GetStats(ctx context.Context) (pending int64, oldest time.Time, err error) {
	return w.outbox.Stats(ctx)
}
