package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/empathia/internal/ws"
)

// Notifier forwards check-in events to an HR endpoint. Publish only
// queues; deliveries happen in Run.
type Notifier struct {
	cfg     Config
	events  map[string]bool
	client  *http.Client
	queue   chan job
	logger  *slog.Logger
	now     func() time.Time
	backoff func(attempt int) time.Duration
}

func NewNotifier(cfg Config, logger *slog.Logger) *Notifier {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.QueueSize < 1 {
		cfg.QueueSize = DefaultQueueSize
	}

	events := make(map[string]bool, len(cfg.Events))
	for _, e := range cfg.Events {
		events[e] = true
	}

	return &Notifier{
		cfg:    cfg,
		events: events,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		queue:  make(chan job, cfg.QueueSize),
		logger: logger.With("component", "webhook"),
		now:    time.Now,
		backoff: func(attempt int) time.Duration {
			return time.Duration(1<<attempt) * time.Second
		},
	}
}

func (n *Notifier) wants(eventType string) bool {
	return len(n.events) == 0 || n.events[eventType]
}

// Publish serialises the event right away so later changes to data are not
// sent. Full queues drop the event.
func (n *Notifier) Publish(eventType ws.EventType, employeeID uuid.UUID, data any) {
	if !n.wants(string(eventType)) {
		return
	}

	payload, err := json.Marshal(EventPayload{
		Type:       string(eventType),
		EmployeeID: employeeID,
		Data:       data,
		Timestamp:  n.now().UTC(),
	})
	if err != nil {
		n.logger.Warn("failed to encode webhook event", "type", eventType, "error", err)
		return
	}

	select {
	case n.queue <- job{eventType: string(eventType), payload: payload}:
	default:
		n.logger.Warn("webhook queue full, dropping event", "type", eventType)
	}
}

// Send makes one signed delivery attempt
func (n *Notifier) Send(ctx context.Context, eventType string, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.URL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(EventHeader, eventType)
	req.Header.Set("User-Agent", "Empathia-Webhook/1.0")
	if n.cfg.Secret != "" {
		req.Header.Set(SignatureHeader, Sign(n.cfg.Secret, payload))
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned HTTP %d", resp.StatusCode)
	}

	return nil
}
