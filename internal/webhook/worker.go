package webhook

import (
	"context"
	"time"
)

// Run delivers queued events one at a time until ctx is done. Failed
// deliveries are retried with exponential backoff up to MaxAttempts.
func (n *Notifier) Run(ctx context.Context) {
	n.logger.Info("webhook worker started", "url", n.cfg.URL)

	for {
		select {
		case <-ctx.Done():
			n.logger.Info("webhook worker stopped", "pending", len(n.queue))
			return
		case j := <-n.queue:
			n.deliver(ctx, j)
		}
	}
}

func (n *Notifier) deliver(ctx context.Context, j job) {
	for attempt := 1; ; attempt++ {
		err := n.Send(ctx, j.eventType, j.payload)
		if err == nil {
			n.logger.Debug("webhook delivered", "type", j.eventType, "attempts", attempt)
			return
		}

		if attempt >= n.cfg.MaxAttempts {
			n.logger.Warn("webhook delivery failed", "type", j.eventType, "attempts", attempt, "error", err)
			return
		}

		delay := n.backoff(attempt)
		n.logger.Info("webhook delivery scheduled for retry",
			"type", j.eventType,
			"attempts", attempt,
			"retry_in", delay,
			"error", err,
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}
