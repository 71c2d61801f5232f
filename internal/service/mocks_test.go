package service

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/saturnino-fabrica-de-software/empathia/internal/audit"
	"github.com/saturnino-fabrica-de-software/empathia/internal/domain"
	"github.com/saturnino-fabrica-de-software/empathia/internal/provider"
	"github.com/saturnino-fabrica-de-software/empathia/internal/ws"
)

type MockEmployeeRepository struct {
	mock.Mock
}

func (m *MockEmployeeRepository) Create(ctx context.Context, employee *domain.Employee) error {
	args := m.Called(ctx, employee)
	return args.Error(0)
}

func (m *MockEmployeeRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Employee, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Employee), args.Error(1)
}

func (m *MockEmployeeRepository) List(ctx context.Context) ([]domain.Employee, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Employee), args.Error(1)
}

func (m *MockEmployeeRepository) Update(ctx context.Context, employee *domain.Employee) error {
	args := m.Called(ctx, employee)
	return args.Error(0)
}

func (m *MockEmployeeRepository) UpdateFace(ctx context.Context, id uuid.UUID, face *domain.FaceRecord, photo []byte) error {
	args := m.Called(ctx, id, face, photo)
	return args.Error(0)
}

func (m *MockEmployeeRepository) GetPhoto(ctx context.Context, id uuid.UUID) ([]byte, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockEmployeeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockEmotionLogRepository struct {
	mock.Mock
}

func (m *MockEmotionLogRepository) Create(ctx context.Context, log *domain.EmotionLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockEmotionLogRepository) ListByEmployee(ctx context.Context, employeeID uuid.UUID) ([]domain.EmotionLog, error) {
	args := m.Called(ctx, employeeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.EmotionLog), args.Error(1)
}

func (m *MockEmotionLogRepository) ListRecent(ctx context.Context, limit int) ([]domain.EmotionLog, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.EmotionLog), args.Error(1)
}

func (m *MockEmotionLogRepository) StatsByEmployee(ctx context.Context, employeeID uuid.UUID) (*domain.EmployeeStats, error) {
	args := m.Called(ctx, employeeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EmployeeStats), args.Error(1)
}

type MockEmbeddingProvider struct {
	mock.Mock
}

func (m *MockEmbeddingProvider) Extract(ctx context.Context, image []byte) (*domain.FaceRecord, error) {
	args := m.Called(ctx, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FaceRecord), args.Error(1)
}

type MockEmotionClassifier struct {
	mock.Mock
}

func (m *MockEmotionClassifier) Classify(ctx context.Context, image []byte, backend string, strict bool) (*provider.EmotionScores, error) {
	args := m.Called(ctx, image, backend, strict)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.EmotionScores), args.Error(1)
}

// fakeGallery serves a fixed gallery and counts invalidations
type fakeGallery struct {
	mu            sync.Mutex
	employees     []domain.Employee
	err           error
	invalidations int
}

func (g *fakeGallery) Snapshot(ctx context.Context) ([]domain.Employee, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.employees, g.err
}

func (g *fakeGallery) Invalidate() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.invalidations++
}

func (g *fakeGallery) invalidated() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.invalidations
}

// recordingAudit keeps every logged event
type recordingAudit struct {
	mu     sync.Mutex
	events []audit.Event
}

func (a *recordingAudit) Log(_ context.Context, event audit.Event) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, event)
	return nil
}

func (a *recordingAudit) types() []audit.EventType {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]audit.EventType, 0, len(a.events))
	for _, e := range a.events {
		out = append(out, e.EventType)
	}
	return out
}

type publishedEvent struct {
	eventType  ws.EventType
	employeeID uuid.UUID
}

// recordingPublisher keeps every published live event
type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) Publish(eventType ws.EventType, employeeID uuid.UUID, _ any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{eventType: eventType, employeeID: employeeID})
}

func (p *recordingPublisher) published() []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]publishedEvent(nil), p.events...)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var (
	_ EmployeeRepositoryInterface   = (*MockEmployeeRepository)(nil)
	_ EmotionLogRepositoryInterface = (*MockEmotionLogRepository)(nil)
	_ provider.EmbeddingProvider    = (*MockEmbeddingProvider)(nil)
	_ provider.EmotionClassifier    = (*MockEmotionClassifier)(nil)
	_ EventPublisher                = (*recordingPublisher)(nil)
)
