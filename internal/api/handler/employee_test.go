package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/empathia/internal/domain"
	"github.com/saturnino-fabrica-de-software/empathia/internal/service"
)

func testEmployee(id uuid.UUID) *domain.Employee {
	now := time.Date(2026, 3, 2, 8, 30, 0, 0, time.UTC)
	return &domain.Employee{
		ID:         id,
		Name:       "Ana Souza",
		Role:       "Analyst",
		Department: "Finance",
		Email:      "ana@example.com",
		Face: &domain.FaceRecord{
			Embedding:  []float64{0.6, 0.8, 0},
			FacialArea: &domain.FacialArea{X: 10, Y: 20, W: 100, H: 120},
			Confidence: 0.98,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func setupEmployeeApp(svc *MockEmployeeService) *EmployeeHandler {
	return NewEmployeeHandler(svc, 1024, testLogger())
}

func TestEmployeeHandler_Enroll(t *testing.T) {
	employeeID := uuid.New()
	fields := map[string]string{
		"name":       "Ana Souza",
		"role":       "Analyst",
		"department": "Finance",
		"email":      "ana@example.com",
	}
	wantInput := service.EmployeeInput{
		Name:       "Ana Souza",
		Role:       "Analyst",
		Department: "Finance",
		Email:      "ana@example.com",
	}

	tests := []struct {
		name           string
		fields         map[string]string
		image          []byte
		contentType    string
		setupMock      func(*MockEmployeeService)
		expectedStatus int
		expectedCode   string
	}{
		{
			name:        "success",
			fields:      fields,
			image:       jpegImage,
			contentType: "image/jpeg",
			setupMock: func(m *MockEmployeeService) {
				m.On("Enroll", mock.Anything, wantInput, jpegImage).Return(testEmployee(employeeID), nil)
			},
			expectedStatus: 201,
		},
		{
			name:           "missing image",
			fields:         fields,
			setupMock:      func(m *MockEmployeeService) {},
			expectedStatus: 422,
			expectedCode:   "VALIDATION_FAILED",
		},
		{
			name:           "image too large",
			fields:         fields,
			image:          bytes.Repeat([]byte{0xFF}, 2048),
			contentType:    "image/jpeg",
			setupMock:      func(m *MockEmployeeService) {},
			expectedStatus: 422,
			expectedCode:   "INVALID_IMAGE",
		},
		{
			name:           "not an image",
			fields:         fields,
			image:          []byte("plain text pretending to be a photo"),
			contentType:    "text/plain",
			setupMock:      func(m *MockEmployeeService) {},
			expectedStatus: 422,
			expectedCode:   "INVALID_IMAGE",
		},
		{
			name:        "octet-stream sniffed as jpeg",
			fields:      fields,
			image:       jpegImage,
			contentType: "application/octet-stream",
			setupMock: func(m *MockEmployeeService) {
				m.On("Enroll", mock.Anything, wantInput, jpegImage).Return(testEmployee(employeeID), nil)
			},
			expectedStatus: 201,
		},
		{
			name:        "duplicate email",
			fields:      fields,
			image:       jpegImage,
			contentType: "image/jpeg",
			setupMock: func(m *MockEmployeeService) {
				m.On("Enroll", mock.Anything, wantInput, jpegImage).Return(nil, domain.ErrEmployeeExists)
			},
			expectedStatus: 409,
			expectedCode:   "EMPLOYEE_EXISTS",
		},
		{
			name:        "no face detected",
			fields:      fields,
			image:       jpegImage,
			contentType: "image/jpeg",
			setupMock: func(m *MockEmployeeService) {
				m.On("Enroll", mock.Anything, wantInput, jpegImage).
					Return(nil, fmt.Errorf("extract face: %w", domain.ErrNoFaceDetected))
			},
			expectedStatus: 422,
			expectedCode:   "NO_FACE_DETECTED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockEmployeeService)
			tt.setupMock(svc)

			app := newTestApp()
			h := setupEmployeeApp(svc)
			app.Post("/v1/employees", h.Enroll)

			body, contentType, err := createMultipartRequest(tt.fields, tt.image, tt.contentType)
			require.NoError(t, err)

			req := httptest.NewRequest("POST", "/v1/employees", body)
			req.Header.Set("Content-Type", contentType)

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			raw, _ := io.ReadAll(resp.Body)
			if tt.expectedCode != "" {
				var eb errorBody
				require.NoError(t, json.Unmarshal(raw, &eb))
				assert.Equal(t, tt.expectedCode, eb.Error.Code)
			} else {
				var got EmployeeResponse
				require.NoError(t, json.Unmarshal(raw, &got))
				assert.Equal(t, employeeID.String(), got.ID)
				assert.Equal(t, "Ana Souza", got.Name)
				assert.True(t, got.HasFace)
				assert.Equal(t, 3, got.EmbeddingDimension)
				assert.Equal(t, "2026-03-02T08:30:00Z", got.CreatedAt)
			}

			svc.AssertExpectations(t)
		})
	}
}

func TestEmployeeHandler_Get(t *testing.T) {
	employeeID := uuid.New()

	t.Run("found", func(t *testing.T) {
		svc := new(MockEmployeeService)
		svc.On("Get", mock.Anything, employeeID).Return(testEmployee(employeeID), nil)

		app := newTestApp()
		app.Get("/v1/employees/:id", setupEmployeeApp(svc).Get)

		resp, err := app.Test(httptest.NewRequest("GET", "/v1/employees/"+employeeID.String(), nil))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		var got EmployeeResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		assert.Equal(t, "ana@example.com", got.Email)
		require.NotNil(t, got.FacialArea)
		assert.Equal(t, 100, got.FacialArea.W)
	})

	t.Run("not found", func(t *testing.T) {
		svc := new(MockEmployeeService)
		svc.On("Get", mock.Anything, employeeID).Return(nil, domain.ErrEmployeeNotFound)

		app := newTestApp()
		app.Get("/v1/employees/:id", setupEmployeeApp(svc).Get)

		resp, err := app.Test(httptest.NewRequest("GET", "/v1/employees/"+employeeID.String(), nil))
		require.NoError(t, err)
		assert.Equal(t, 404, resp.StatusCode)
	})

	t.Run("invalid id", func(t *testing.T) {
		svc := new(MockEmployeeService)

		app := newTestApp()
		app.Get("/v1/employees/:id", setupEmployeeApp(svc).Get)

		resp, err := app.Test(httptest.NewRequest("GET", "/v1/employees/not-a-uuid", nil))
		require.NoError(t, err)
		assert.Equal(t, 422, resp.StatusCode)
		svc.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	})
}

func TestEmployeeHandler_List(t *testing.T) {
	t.Run("employees", func(t *testing.T) {
		svc := new(MockEmployeeService)
		legacy := testEmployee(uuid.New())
		legacy.Face = nil
		svc.On("List", mock.Anything).Return([]domain.Employee{*testEmployee(uuid.New()), *legacy}, nil)

		app := newTestApp()
		app.Get("/v1/employees", setupEmployeeApp(svc).List)

		resp, err := app.Test(httptest.NewRequest("GET", "/v1/employees", nil))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		var got ListEmployeesResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		assert.Equal(t, 2, got.Total)
		assert.True(t, got.Employees[0].HasFace)
		assert.False(t, got.Employees[1].HasFace)
	})

	t.Run("empty list is an array", func(t *testing.T) {
		svc := new(MockEmployeeService)
		svc.On("List", mock.Anything).Return([]domain.Employee{}, nil)

		app := newTestApp()
		app.Get("/v1/employees", setupEmployeeApp(svc).List)

		resp, err := app.Test(httptest.NewRequest("GET", "/v1/employees", nil))
		require.NoError(t, err)

		raw, _ := io.ReadAll(resp.Body)
		assert.Contains(t, string(raw), `"employees":[]`)
	})
}

func TestEmployeeHandler_UpdateProfile(t *testing.T) {
	employeeID := uuid.New()
	in := service.EmployeeInput{Name: "Ana S. Souza", Role: "Manager", Department: "Finance", Email: "ana@example.com"}

	t.Run("success", func(t *testing.T) {
		svc := new(MockEmployeeService)
		updated := testEmployee(employeeID)
		updated.Name = in.Name
		updated.Role = in.Role
		svc.On("UpdateProfile", mock.Anything, employeeID, in).Return(updated, nil)

		app := newTestApp()
		app.Put("/v1/employees/:id", setupEmployeeApp(svc).UpdateProfile)

		req := httptest.NewRequest("PUT", "/v1/employees/"+employeeID.String(),
			strings.NewReader(`{"name":"Ana S. Souza","role":"Manager","department":"Finance","email":"ana@example.com"}`))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		var got EmployeeResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		assert.Equal(t, "Manager", got.Role)
		svc.AssertExpectations(t)
	})

	t.Run("malformed body", func(t *testing.T) {
		svc := new(MockEmployeeService)

		app := newTestApp()
		app.Put("/v1/employees/:id", setupEmployeeApp(svc).UpdateProfile)

		req := httptest.NewRequest("PUT", "/v1/employees/"+employeeID.String(), strings.NewReader(`{"name":`))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, 422, resp.StatusCode)
	})
}

func TestEmployeeHandler_UpdatePhoto(t *testing.T) {
	employeeID := uuid.New()
	svc := new(MockEmployeeService)
	svc.On("UpdatePhoto", mock.Anything, employeeID, jpegImage).Return(testEmployee(employeeID), nil)

	app := newTestApp()
	app.Put("/v1/employees/:id/photo", setupEmployeeApp(svc).UpdatePhoto)

	body, contentType, err := createMultipartRequest(nil, jpegImage, "image/jpeg")
	require.NoError(t, err)
	req := httptest.NewRequest("PUT", "/v1/employees/"+employeeID.String()+"/photo", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	svc.AssertExpectations(t)
}

func TestEmployeeHandler_Photo(t *testing.T) {
	employeeID := uuid.New()

	t.Run("stored photo", func(t *testing.T) {
		svc := new(MockEmployeeService)
		svc.On("Photo", mock.Anything, employeeID).Return(jpegImage, nil)

		app := newTestApp()
		app.Get("/v1/employees/:id/photo", setupEmployeeApp(svc).Photo)

		resp, err := app.Test(httptest.NewRequest("GET", "/v1/employees/"+employeeID.String()+"/photo", nil))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, "image/jpeg", resp.Header.Get("Content-Type"))

		raw, _ := io.ReadAll(resp.Body)
		assert.Equal(t, jpegImage, raw)
	})

	t.Run("no photo", func(t *testing.T) {
		svc := new(MockEmployeeService)
		svc.On("Photo", mock.Anything, employeeID).Return(nil, domain.ErrNotFound)

		app := newTestApp()
		app.Get("/v1/employees/:id/photo", setupEmployeeApp(svc).Photo)

		resp, err := app.Test(httptest.NewRequest("GET", "/v1/employees/"+employeeID.String()+"/photo", nil))
		require.NoError(t, err)
		assert.Equal(t, 404, resp.StatusCode)
	})
}

func TestEmployeeHandler_Delete(t *testing.T) {
	employeeID := uuid.New()

	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{name: "deleted", expectedStatus: 204},
		{name: "unknown employee", err: domain.ErrEmployeeNotFound, expectedStatus: 404},
		{name: "store failure", err: errors.New("connection reset"), expectedStatus: 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockEmployeeService)
			svc.On("Delete", mock.Anything, employeeID).Return(tt.err)

			app := newTestApp()
			app.Delete("/v1/employees/:id", setupEmployeeApp(svc).Delete)

			resp, err := app.Test(httptest.NewRequest("DELETE", "/v1/employees/"+employeeID.String(), nil))
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}

func TestEmployeeHandler_HistoryAndStats(t *testing.T) {
	employeeID := uuid.New()
	logs := []domain.EmotionLog{
		{ID: uuid.New(), EmployeeID: employeeID, EmployeeName: "Ana Souza", DominantEmotion: "happy", Confidence: 91.5, SampleCount: 8},
		{ID: uuid.New(), EmployeeID: employeeID, EmployeeName: "Ana Souza", DominantEmotion: "neutral", Confidence: 77.2, SampleCount: 8},
	}

	svc := new(MockEmployeeService)
	svc.On("History", mock.Anything, employeeID).Return(logs, nil)
	svc.On("Stats", mock.Anything, employeeID).Return(&domain.EmployeeStats{
		EmployeeID:        employeeID,
		TotalAnalyses:     2,
		AverageConfidence: 84.35,
		MostCommonEmotion: "happy",
		MostCommonCount:   1,
	}, nil)

	app := newTestApp()
	h := setupEmployeeApp(svc)
	app.Get("/v1/employees/:id/emotions", h.History)
	app.Get("/v1/employees/:id/stats", h.Stats)

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/employees/"+employeeID.String()+"/emotions", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var history EmotionHistoryResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&history))
	assert.Equal(t, 2, history.Total)
	assert.Equal(t, "happy", history.Logs[0].DominantEmotion)

	resp, err = app.Test(httptest.NewRequest("GET", "/v1/employees/"+employeeID.String()+"/stats", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var stats domain.EmployeeStats
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	assert.Equal(t, 2, stats.TotalAnalyses)
	assert.InDelta(t, 84.35, stats.AverageConfidence, 1e-9)
	assert.Equal(t, "happy", stats.MostCommonEmotion)

	svc.AssertExpectations(t)
}
