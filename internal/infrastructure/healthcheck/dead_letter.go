package healthcheck

import (
	"context"
	"fmt"
	"time"

	"github.com/themery/themery/internal/application/appcore"
	"github.com/themery/themery/internal/infrastructure/eventbus"
)

// DeadLetterChecker checks the dead letter queue status. Any entry in the
// queue is a delivery that exhausted its retries and needs operator review.
type DeadLetterChecker struct {
	dlqHandler *eventbus.DeadLetterHandler
}

// NewDeadLetterChecker creates a new dead letter queue health checker.
func NewDeadLetterChecker(dlqHandler *eventbus.DeadLetterHandler) *DeadLetterChecker {
	return &DeadLetterChecker{
		dlqHandler: dlqHandler,
	}
}

// Name returns the name of this health checker.
func (c *DeadLetterChecker) Name() string {
	return "dead_letter_queue"
}

// Check performs the health check.
func (c *DeadLetterChecker) Check(ctx context.Context) appcore.HealthStatus {
	count, err := c.dlqHandler.QueueLength(ctx)
	if err != nil {
		return appcore.HealthStatus{
			Healthy:   false,
			Message:   fmt.Sprintf("failed to get dead letter queue length: %v", err),
			CheckedAt: time.Now(),
		}
	}

	return appcore.HealthStatus{
		Healthy: count == 0,
		Message: fmt.Sprintf("dead letter queue: %d events", count),
		Details: map[string]any{
			"dead_letters": count,
		},
		CheckedAt: time.Now(),
	}
}
