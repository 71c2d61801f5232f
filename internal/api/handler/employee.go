package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/empathia/internal/domain"
	"github.com/saturnino-fabrica-de-software/empathia/internal/service"
)

// EmployeeService interface for the service
type EmployeeService interface {
	Enroll(ctx context.Context, in service.EmployeeInput, image []byte) (*domain.Employee, error)
	UpdatePhoto(ctx context.Context, id uuid.UUID, image []byte) (*domain.Employee, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, in service.EmployeeInput) (*domain.Employee, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Employee, error)
	List(ctx context.Context) ([]domain.Employee, error)
	Photo(ctx context.Context, id uuid.UUID) ([]byte, error)
	Delete(ctx context.Context, id uuid.UUID) error
	History(ctx context.Context, id uuid.UUID) ([]domain.EmotionLog, error)
	Stats(ctx context.Context, id uuid.UUID) (*domain.EmployeeStats, error)
}

// EmployeeHandler handles employee enrolment and management requests
type EmployeeHandler struct {
	service EmployeeService
	images  imageReader
	logger  *slog.Logger
}

// NewEmployeeHandler creates a new EmployeeHandler instance
func NewEmployeeHandler(service EmployeeService, maxImageSize int64, logger *slog.Logger) *EmployeeHandler {
	return &EmployeeHandler{
		service: service,
		images:  newImageReader(maxImageSize),
		logger:  logger,
	}
}

// EmployeeResponse is the public view of an employee; the embedding is never exposed
type EmployeeResponse struct {
	ID                 string             `json:"id"`
	Name               string             `json:"name"`
	Role               string             `json:"role"`
	Department         string             `json:"department"`
	Email              string             `json:"email"`
	HasFace            bool               `json:"has_face"`
	EmbeddingDimension int                `json:"embedding_dimension"`
	FaceConfidence     float64            `json:"face_confidence"`
	FacialArea         *domain.FacialArea `json:"facial_area,omitempty"`
	CreatedAt          string             `json:"created_at"`
	UpdatedAt          string             `json:"updated_at"`
}

// ListEmployeesResponse response for list endpoint
type ListEmployeesResponse struct {
	Employees []EmployeeResponse `json:"employees"`
	Total     int                `json:"total"`
}

// EmotionHistoryResponse response for the history endpoint
type EmotionHistoryResponse struct {
	EmployeeID string              `json:"employee_id"`
	Logs       []domain.EmotionLog `json:"logs"`
	Total      int                 `json:"total"`
}

// UpdateProfileRequest is the JSON body of PUT /v1/employees/:id
type UpdateProfileRequest struct {
	Name       string `json:"name"`
	Role       string `json:"role"`
	Department string `json:"department"`
	Email      string `json:"email"`
}

func toEmployeeResponse(e *domain.Employee) EmployeeResponse {
	resp := EmployeeResponse{
		ID:         e.ID.String(),
		Name:       e.Name,
		Role:       e.Role,
		Department: e.Department,
		Email:      e.Email,
		HasFace:    e.HasEmbedding(),
		CreatedAt:  e.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:  e.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if e.Face != nil {
		resp.EmbeddingDimension = e.Face.Dimension()
		resp.FaceConfidence = e.Face.Confidence
		resp.FacialArea = e.Face.FacialArea
	}
	return resp
}

// Enroll POST /v1/employees - enrol a new employee with a face capture
func (h *EmployeeHandler) Enroll(c *fiber.Ctx) error {
	in := service.EmployeeInput{
		Name:       c.FormValue("name"),
		Role:       c.FormValue("role"),
		Department: c.FormValue("department"),
		Email:      c.FormValue("email"),
	}

	imageBytes, err := h.images.read(c)
	if err != nil {
		return err
	}

	employee, err := h.service.Enroll(c.Context(), in, imageBytes)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(toEmployeeResponse(employee))
}

// List GET /v1/employees
func (h *EmployeeHandler) List(c *fiber.Ctx) error {
	employees, err := h.service.List(c.Context())
	if err != nil {
		return err
	}

	resp := ListEmployeesResponse{
		Employees: make([]EmployeeResponse, 0, len(employees)),
		Total:     len(employees),
	}
	for i := range employees {
		resp.Employees = append(resp.Employees, toEmployeeResponse(&employees[i]))
	}

	return c.JSON(resp)
}

// Get GET /v1/employees/:id
func (h *EmployeeHandler) Get(c *fiber.Ctx) error {
	id, err := parseEmployeeID(c)
	if err != nil {
		return err
	}

	employee, err := h.service.Get(c.Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(toEmployeeResponse(employee))
}

// UpdateProfile PUT /v1/employees/:id - replace the profile fields
func (h *EmployeeHandler) UpdateProfile(c *fiber.Ctx) error {
	id, err := parseEmployeeID(c)
	if err != nil {
		return err
	}

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrValidationFailed.WithError(err)
	}

	employee, err := h.service.UpdateProfile(c.Context(), id, service.EmployeeInput{
		Name:       req.Name,
		Role:       req.Role,
		Department: req.Department,
		Email:      req.Email,
	})
	if err != nil {
		return err
	}

	return c.JSON(toEmployeeResponse(employee))
}

// UpdatePhoto PUT /v1/employees/:id/photo - re-capture the face
func (h *EmployeeHandler) UpdatePhoto(c *fiber.Ctx) error {
	id, err := parseEmployeeID(c)
	if err != nil {
		return err
	}

	imageBytes, err := h.images.read(c)
	if err != nil {
		return err
	}

	employee, err := h.service.UpdatePhoto(c.Context(), id, imageBytes)
	if err != nil {
		return err
	}

	return c.JSON(toEmployeeResponse(employee))
}

// Photo GET /v1/employees/:id/photo - enrolment photo as stored
func (h *EmployeeHandler) Photo(c *fiber.Ctx) error {
	id, err := parseEmployeeID(c)
	if err != nil {
		return err
	}

	photo, err := h.service.Photo(c.Context(), id)
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, http.DetectContentType(photo))
	return c.Send(photo)
}

// Delete DELETE /v1/employees/:id - delete employee and emotion history (LGPD)
func (h *EmployeeHandler) Delete(c *fiber.Ctx) error {
	id, err := parseEmployeeID(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Context(), id); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// History GET /v1/employees/:id/emotions
func (h *EmployeeHandler) History(c *fiber.Ctx) error {
	id, err := parseEmployeeID(c)
	if err != nil {
		return err
	}

	logs, err := h.service.History(c.Context(), id)
	if err != nil {
		return err
	}
	if logs == nil {
		logs = []domain.EmotionLog{}
	}

	return c.JSON(EmotionHistoryResponse{
		EmployeeID: id.String(),
		Logs:       logs,
		Total:      len(logs),
	})
}

// Stats GET /v1/employees/:id/stats
func (h *EmployeeHandler) Stats(c *fiber.Ctx) error {
	id, err := parseEmployeeID(c)
	if err != nil {
		return err
	}

	stats, err := h.service.Stats(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(stats)
}
