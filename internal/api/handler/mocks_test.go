package handler

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"net/textproto"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/saturnino-fabrica-de-software/empathia/internal/api/middleware"
	"github.com/saturnino-fabrica-de-software/empathia/internal/domain"
	"github.com/saturnino-fabrica-de-software/empathia/internal/service"
)

// MockEmployeeService is a mock implementation of EmployeeService and RecentLogsService
type MockEmployeeService struct {
	mock.Mock
}

func (m *MockEmployeeService) Enroll(ctx context.Context, in service.EmployeeInput, image []byte) (*domain.Employee, error) {
	args := m.Called(ctx, in, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Employee), args.Error(1)
}

func (m *MockEmployeeService) UpdatePhoto(ctx context.Context, id uuid.UUID, image []byte) (*domain.Employee, error) {
	args := m.Called(ctx, id, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Employee), args.Error(1)
}

func (m *MockEmployeeService) UpdateProfile(ctx context.Context, id uuid.UUID, in service.EmployeeInput) (*domain.Employee, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Employee), args.Error(1)
}

func (m *MockEmployeeService) Get(ctx context.Context, id uuid.UUID) (*domain.Employee, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Employee), args.Error(1)
}

func (m *MockEmployeeService) List(ctx context.Context) ([]domain.Employee, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Employee), args.Error(1)
}

func (m *MockEmployeeService) Photo(ctx context.Context, id uuid.UUID) ([]byte, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockEmployeeService) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockEmployeeService) History(ctx context.Context, id uuid.UUID) ([]domain.EmotionLog, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.EmotionLog), args.Error(1)
}

func (m *MockEmployeeService) Stats(ctx context.Context, id uuid.UUID) (*domain.EmployeeStats, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EmployeeStats), args.Error(1)
}

func (m *MockEmployeeService) RecentLogs(ctx context.Context, limit int) ([]domain.EmotionLog, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.EmotionLog), args.Error(1)
}

// MockCheckinService is a mock implementation of CheckinService
type MockCheckinService struct {
	mock.Mock
}

func (m *MockCheckinService) Identify(ctx context.Context, image []byte) (*service.IdentifyResult, error) {
	args := m.Called(ctx, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.IdentifyResult), args.Error(1)
}

func (m *MockCheckinService) Analyze(ctx context.Context, employeeID uuid.UUID, image []byte) (*service.AnalysisResult, error) {
	args := m.Called(ctx, employeeID, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AnalysisResult), args.Error(1)
}

func (m *MockCheckinService) CheckIn(ctx context.Context, image []byte) (*service.CheckinResult, error) {
	args := m.Called(ctx, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CheckinResult), args.Error(1)
}

// stubPinger answers Ping with a fixed error
type stubPinger struct {
	err error
}

func (p stubPinger) Ping(ctx context.Context) error {
	return p.err
}

// jpegImage is enough of a JPEG for content sniffing
var jpegImage = append([]byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}, bytes.Repeat([]byte{0x01}, 64)...)

// testLogger returns a logger that discards all output
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestApp returns an app with the production error handler
func newTestApp() *fiber.App {
	return fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(testLogger()),
	})
}

// Helper to create multipart request
func createMultipartRequest(fields map[string]string, imageContent []byte, contentType string) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for k, v := range fields {
		_ = writer.WriteField(k, v)
	}

	if imageContent != nil {
		// Create part with custom Content-Type header
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="image"; filename="capture.jpg"`)
		h.Set("Content-Type", contentType)

		part, err := writer.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		_, _ = part.Write(imageContent)
	}

	_ = writer.Close()
	return body, writer.FormDataContentType(), nil
}

type errorBody struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}
