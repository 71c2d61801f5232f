package webhook

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/empathia/internal/ws"
)

type received struct {
	event     string
	signature string
	body      []byte
}

// recorder answers with the queued statuses, then 200
type recorder struct {
	mu       sync.Mutex
	statuses []int
	requests []received
}

func (r *recorder) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	body, _ := io.ReadAll(req.Body)

	r.mu.Lock()
	r.requests = append(r.requests, received{
		event:     req.Header.Get(EventHeader),
		signature: req.Header.Get(SignatureHeader),
		body:      body,
	})
	status := http.StatusOK
	if len(r.statuses) > 0 {
		status = r.statuses[0]
		r.statuses = r.statuses[1:]
	}
	r.mu.Unlock()

	w.WriteHeader(status)
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.requests)
}

func (r *recorder) last() received {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.requests[len(r.requests)-1]
}

func newTestNotifier(t *testing.T, cfg Config) *Notifier {
	t.Helper()

	n := NewNotifier(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	n.backoff = func(int) time.Duration { return time.Millisecond }

	ctx, cancel := context.WithCancel(context.Background())
	go n.Run(ctx)
	t.Cleanup(cancel)

	return n
}

func TestNewNotifier_Defaults(t *testing.T) {
	n := NewNotifier(Config{URL: "http://localhost"}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	assert.Equal(t, DefaultMaxAttempts, n.cfg.MaxAttempts)
	assert.Equal(t, DefaultTimeout, n.client.Timeout)
	assert.Equal(t, DefaultQueueSize, cap(n.queue))
	assert.Equal(t, 2*time.Second, n.backoff(1))
	assert.Equal(t, 8*time.Second, n.backoff(3))
}

func TestNotifier_DeliversSignedEvent(t *testing.T) {
	rec := &recorder{}
	server := httptest.NewServer(rec)
	defer server.Close()

	n := newTestNotifier(t, Config{URL: server.URL, Secret: "hr-secret", Events: []string{"emotion.analyzed"}})
	employeeID := uuid.New()

	n.Publish(ws.EventEmotionAnalyzed, employeeID, map[string]string{"dominant_emotion": "happy"})

	require.Eventually(t, func() bool { return rec.count() == 1 }, time.Second, 5*time.Millisecond)

	got := rec.last()
	assert.Equal(t, "emotion.analyzed", got.event)
	assert.True(t, Verify("hr-secret", got.body, got.signature))

	var payload EventPayload
	require.NoError(t, json.Unmarshal(got.body, &payload))
	assert.Equal(t, "emotion.analyzed", payload.Type)
	assert.Equal(t, employeeID, payload.EmployeeID)
	assert.False(t, payload.Timestamp.IsZero())
}

func TestNotifier_FiltersEvents(t *testing.T) {
	rec := &recorder{}
	server := httptest.NewServer(rec)
	defer server.Close()

	n := newTestNotifier(t, Config{URL: server.URL, Events: []string{"employee.deleted"}})

	n.Publish(ws.EventEmotionAnalyzed, uuid.New(), nil)
	n.Publish(ws.EventEmployeeDeleted, uuid.New(), nil)

	require.Eventually(t, func() bool { return rec.count() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "employee.deleted", rec.last().event)
	assert.Empty(t, rec.last().signature, "no secret, no signature")
}

func TestNotifier_RetriesUntilSuccess(t *testing.T) {
	rec := &recorder{statuses: []int{http.StatusBadGateway, http.StatusServiceUnavailable}}
	server := httptest.NewServer(rec)
	defer server.Close()

	n := newTestNotifier(t, Config{URL: server.URL, MaxAttempts: 5})

	n.Publish(ws.EventEmployeeEnrolled, uuid.New(), nil)

	require.Eventually(t, func() bool { return rec.count() == 3 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 3, rec.count(), "no deliveries after the first success")
}

func TestNotifier_GivesUpAfterMaxAttempts(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	n := newTestNotifier(t, Config{URL: server.URL, MaxAttempts: 3})

	n.Publish(ws.EventEmployeeUpdated, uuid.New(), nil)

	require.Eventually(t, func() bool { return calls.Load() == 3 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(3), calls.Load())
}

func TestNotifier_PublishDropsWhenQueueFull(t *testing.T) {
	// no Run loop, nothing drains the queue
	n := NewNotifier(Config{URL: "http://localhost", QueueSize: 1}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	n.Publish(ws.EventEmployeeEnrolled, uuid.New(), nil)
	n.Publish(ws.EventEmployeeEnrolled, uuid.New(), nil)

	assert.Len(t, n.queue, 1)
}

func TestNotifier_SendReportsHTTPErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	n := NewNotifier(Config{URL: server.URL}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	err := n.Send(context.Background(), "employee.deleted", []byte(`{}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 404")
}
