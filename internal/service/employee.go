package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/empathia/internal/audit"
	"github.com/saturnino-fabrica-de-software/empathia/internal/domain"
	"github.com/saturnino-fabrica-de-software/empathia/internal/provider"
	"github.com/saturnino-fabrica-de-software/empathia/internal/ws"
)

type EmployeeRepositoryInterface interface {
	Create(ctx context.Context, employee *domain.Employee) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Employee, error)
	List(ctx context.Context) ([]domain.Employee, error)
	Update(ctx context.Context, employee *domain.Employee) error
	UpdateFace(ctx context.Context, id uuid.UUID, face *domain.FaceRecord, photo []byte) error
	GetPhoto(ctx context.Context, id uuid.UUID) ([]byte, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type EmotionLogRepositoryInterface interface {
	Create(ctx context.Context, log *domain.EmotionLog) error
	ListByEmployee(ctx context.Context, employeeID uuid.UUID) ([]domain.EmotionLog, error)
	ListRecent(ctx context.Context, limit int) ([]domain.EmotionLog, error)
	StatsByEmployee(ctx context.Context, employeeID uuid.UUID) (*domain.EmployeeStats, error)
}

// GalleryInvalidator drops cached gallery snapshots after a write
type GalleryInvalidator interface {
	Invalidate()
}

// EmployeeInput carries the profile fields of an employee
type EmployeeInput struct {
	Name       string
	Role       string
	Department string
	Email      string
}

// EmployeeService manages enrolment and the employee lifecycle
type EmployeeService struct {
	employees EmployeeRepositoryInterface
	logs      EmotionLogRepositoryInterface
	embedder  provider.EmbeddingProvider
	gallery   GalleryInvalidator
	locks     *EmployeeLocks
	audit     audit.Logger
	events    EventPublisher
	dimension int
	logger    *slog.Logger
}

func NewEmployeeService(
	employees EmployeeRepositoryInterface,
	logs EmotionLogRepositoryInterface,
	embedder provider.EmbeddingProvider,
	gallery GalleryInvalidator,
	locks *EmployeeLocks,
	logger *slog.Logger,
) *EmployeeService {
	return &EmployeeService{
		employees: employees,
		logs:      logs,
		embedder:  embedder,
		gallery:   gallery,
		locks:     locks,
		audit:     &audit.NoOpLogger{},
		events:    noopPublisher{},
		dimension: domain.DefaultEmbeddingDimension,
		logger:    logger.With("component", "employee_service"),
	}
}

// WithDimension sets the embedding dimension accepted at enrolment
func (s *EmployeeService) WithDimension(dimension int) *EmployeeService {
	s.dimension = dimension
	return s
}

func (s *EmployeeService) WithAudit(logger audit.Logger) *EmployeeService {
	s.audit = logger
	return s
}

func (s *EmployeeService) WithEvents(events EventPublisher) *EmployeeService {
	s.events = events
	return s
}

// Enroll registers a new employee from a photo with exactly one face
func (s *EmployeeService) Enroll(ctx context.Context, in EmployeeInput, image []byte) (*domain.Employee, error) {
	employee := &domain.Employee{
		Name:       strings.TrimSpace(in.Name),
		Role:       strings.TrimSpace(in.Role),
		Department: strings.TrimSpace(in.Department),
		Email:      strings.TrimSpace(in.Email),
	}
	if err := employee.Validate(); err != nil {
		return nil, domain.ErrValidationFailed.WithError(err)
	}

	face, err := s.extract(ctx, image)
	if err != nil {
		return nil, err
	}

	employee.ID = uuid.New()
	employee.Face = face
	employee.Photo = image

	if err := s.employees.Create(ctx, employee); err != nil {
		return nil, err
	}

	s.gallery.Invalidate()
	s.record(ctx, audit.EventEmployeeEnrolled, employee.ID, map[string]string{
		"dimension":       strconv.Itoa(face.Dimension()),
		"face_confidence": strconv.FormatFloat(face.Confidence, 'f', 3, 64),
	})
	s.events.Publish(ws.EventEmployeeEnrolled, employee.ID, employee)
	s.logger.Info("employee enrolled", "employee_id", employee.ID, "name", employee.Name)

	return employee, nil
}

// UpdatePhoto replaces the face record from a new capture. The id is kept.
func (s *EmployeeService) UpdatePhoto(ctx context.Context, id uuid.UUID, image []byte) (*domain.Employee, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	employee, err := s.employees.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	face, err := s.extract(ctx, image)
	if err != nil {
		return nil, err
	}

	if err := s.employees.UpdateFace(ctx, id, face, image); err != nil {
		return nil, err
	}

	employee.Face = face
	employee.Photo = image

	s.gallery.Invalidate()
	s.record(ctx, audit.EventEmployeePhotoUpdated, id, nil)
	s.events.Publish(ws.EventEmployeeUpdated, id, employee)
	s.logger.Info("employee face re-captured", "employee_id", id)

	return employee, nil
}

// UpdateProfile changes the profile fields; the face record is untouched
func (s *EmployeeService) UpdateProfile(ctx context.Context, id uuid.UUID, in EmployeeInput) (*domain.Employee, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	employee, err := s.employees.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	employee.Name = strings.TrimSpace(in.Name)
	employee.Role = strings.TrimSpace(in.Role)
	employee.Department = strings.TrimSpace(in.Department)
	employee.Email = strings.TrimSpace(in.Email)
	if err := employee.Validate(); err != nil {
		return nil, domain.ErrValidationFailed.WithError(err)
	}

	if err := s.employees.Update(ctx, employee); err != nil {
		return nil, err
	}

	// names are shown in match results
	s.gallery.Invalidate()
	s.record(ctx, audit.EventEmployeeUpdated, id, nil)
	s.events.Publish(ws.EventEmployeeUpdated, id, employee)

	return employee, nil
}

func (s *EmployeeService) Get(ctx context.Context, id uuid.UUID) (*domain.Employee, error) {
	return s.employees.GetByID(ctx, id)
}

func (s *EmployeeService) List(ctx context.Context) ([]domain.Employee, error) {
	return s.employees.List(ctx)
}

// Photo returns the enrolment photo
func (s *EmployeeService) Photo(ctx context.Context, id uuid.UUID) ([]byte, error) {
	photo, err := s.employees.GetPhoto(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(photo) == 0 {
		return nil, domain.ErrNotFound.WithError(errors.New("no photo stored"))
	}
	return photo, nil
}

// Delete removes the employee together with its emotion history
func (s *EmployeeService) Delete(ctx context.Context, id uuid.UUID) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	if err := s.employees.Delete(ctx, id); err != nil {
		return err
	}

	s.gallery.Invalidate()
	s.record(ctx, audit.EventEmployeeDeleted, id, nil)
	s.events.Publish(ws.EventEmployeeDeleted, id, nil)
	s.logger.Info("employee deleted", "employee_id", id)

	return nil
}

// History returns the employee's emotion logs, newest first
func (s *EmployeeService) History(ctx context.Context, id uuid.UUID) ([]domain.EmotionLog, error) {
	if _, err := s.employees.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.logs.ListByEmployee(ctx, id)
}

func (s *EmployeeService) Stats(ctx context.Context, id uuid.UUID) (*domain.EmployeeStats, error) {
	if _, err := s.employees.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.logs.StatsByEmployee(ctx, id)
}

// RecentLogs returns the latest emotion logs across all employees
func (s *EmployeeService) RecentLogs(ctx context.Context, limit int) ([]domain.EmotionLog, error) {
	return s.logs.ListRecent(ctx, limit)
}

func (s *EmployeeService) extract(ctx context.Context, image []byte) (*domain.FaceRecord, error) {
	if len(image) == 0 {
		return nil, domain.ErrInvalidImage
	}

	face, err := s.embedder.Extract(ctx, image)
	if err != nil {
		return nil, fmt.Errorf("extract face: %w", err)
	}

	if got := face.Dimension(); got != s.dimension {
		return nil, domain.ErrInvalidEmbeddingDimension.WithError(
			fmt.Errorf("embedding has %d dimensions, expected %d", got, s.dimension))
	}

	return face, nil
}

func (s *EmployeeService) record(ctx context.Context, event audit.EventType, id uuid.UUID, metadata map[string]string) {
	// audit failures never undo a committed write
	_ = s.audit.Log(ctx, audit.Event{
		EventType:  event,
		EmployeeID: id,
		Success:    true,
		Metadata:   metadata,
	})
}
