package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"

	"github.com/saturnino-fabrica-de-software/empathia/internal/domain"
)

const employeeColumns = `id, name, role, department, email, embedding, facial_area, face_confidence, created_at, updated_at`

// EmployeeRepository persists employees and their face records.
// Embeddings live in an unsized vector column, so records of any dimension
// round-trip and the matcher decides what is comparable.
type EmployeeRepository struct {
	pool PgxPool
}

func NewEmployeeRepository(pool PgxPool) *EmployeeRepository {
	return &EmployeeRepository{pool: pool}
}

func (r *EmployeeRepository) Create(ctx context.Context, employee *domain.Employee) error {
	query := `
		INSERT INTO employees (id, name, role, department, email, embedding, facial_area, face_confidence, photo, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	if employee.ID == uuid.Nil {
		employee.ID = uuid.New()
	}

	embedding, area, confidence, err := faceColumns(employee.Face)
	if err != nil {
		return fmt.Errorf("create employee: %w", err)
	}

	err = r.pool.QueryRow(ctx, query,
		employee.ID,
		employee.Name,
		employee.Role,
		employee.Department,
		employee.Email,
		embedding,
		area,
		confidence,
		employee.Photo,
	).Scan(&employee.CreatedAt, &employee.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmployeeExists
		}
		return fmt.Errorf("create employee: %w", err)
	}

	return nil
}

func (r *EmployeeRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1`

	employee, err := scanEmployee(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrEmployeeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get employee by id: %w", err)
	}

	return employee, nil
}

// List returns every employee in enrolment order. This order is the gallery
// order, which decides ties between equal match scores.
func (r *EmployeeRepository) List(ctx context.Context) ([]domain.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees ORDER BY created_at, id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	defer rows.Close()

	employees := make([]domain.Employee, 0)
	for rows.Next() {
		employee, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("scan employee: %w", err)
		}
		employees = append(employees, *employee)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate employees: %w", err)
	}

	return employees, nil
}

// Update writes the profile fields; the face record is left untouched
func (r *EmployeeRepository) Update(ctx context.Context, employee *domain.Employee) error {
	query := `
		UPDATE employees
		SET name = $2, role = $3, department = $4, email = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		employee.ID,
		employee.Name,
		employee.Role,
		employee.Department,
		employee.Email,
	).Scan(&employee.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrEmployeeNotFound
	}
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmployeeExists
		}
		return fmt.Errorf("update employee: %w", err)
	}

	return nil
}

// UpdateFace replaces the face record and photo after a re-capture
func (r *EmployeeRepository) UpdateFace(ctx context.Context, id uuid.UUID, face *domain.FaceRecord, photo []byte) error {
	query := `
		UPDATE employees
		SET embedding = $2, facial_area = $3, face_confidence = $4, photo = $5, updated_at = NOW()
		WHERE id = $1
	`

	embedding, area, confidence, err := faceColumns(face)
	if err != nil {
		return fmt.Errorf("update employee face: %w", err)
	}

	result, err := r.pool.Exec(ctx, query, id, embedding, area, confidence, photo)
	if err != nil {
		return fmt.Errorf("update employee face: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrEmployeeNotFound
	}

	return nil
}

// GetPhoto returns the stored enrolment photo, nil when none was kept
func (r *EmployeeRepository) GetPhoto(ctx context.Context, id uuid.UUID) ([]byte, error) {
	var photo []byte

	err := r.pool.QueryRow(ctx, `SELECT photo FROM employees WHERE id = $1`, id).Scan(&photo)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrEmployeeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get employee photo: %w", err)
	}

	return photo, nil
}

// Delete removes the employee; emotion logs go with it via ON DELETE CASCADE
func (r *EmployeeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete employee: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrEmployeeNotFound
	}

	return nil
}

func (r *EmployeeRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM employees`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count employees: %w", err)
	}
	return count, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row scanner) (*domain.Employee, error) {
	var (
		employee   domain.Employee
		embedding  *pgvector.Vector
		area       []byte
		confidence float64
	)

	err := row.Scan(
		&employee.ID,
		&employee.Name,
		&employee.Role,
		&employee.Department,
		&employee.Email,
		&embedding,
		&area,
		&confidence,
		&employee.CreatedAt,
		&employee.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	face := &domain.FaceRecord{
		Embedding:  fromVector(embedding),
		Confidence: confidence,
	}
	if len(area) > 0 {
		var fa domain.FacialArea
		if err := json.Unmarshal(area, &fa); err != nil {
			return nil, fmt.Errorf("decode facial area: %w", err)
		}
		face.FacialArea = &fa
	}
	if face.Embedding != nil || face.FacialArea != nil {
		employee.Face = face
	}

	return &employee, nil
}

func faceColumns(face *domain.FaceRecord) (*pgvector.Vector, []byte, float64, error) {
	if face == nil {
		return nil, nil, 0, nil
	}

	var area []byte
	if face.FacialArea != nil {
		var err error
		if area, err = marshalJSON(face.FacialArea); err != nil {
			return nil, nil, 0, err
		}
	}

	return toVector(face.Embedding), area, face.Confidence, nil
}
