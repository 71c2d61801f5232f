package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/saturnino-fabrica-de-software/empathia/internal/domain"
)

// PgxPool is the subset of *pgxpool.Pool the repositories use.
// pgxmock.PgxPoolIface satisfies it in tests.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// EmployeeRepositoryInterface defines operations for employee data access
type EmployeeRepositoryInterface interface {
	Create(ctx context.Context, employee *domain.Employee) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Employee, error)
	List(ctx context.Context) ([]domain.Employee, error)
	Update(ctx context.Context, employee *domain.Employee) error
	UpdateFace(ctx context.Context, id uuid.UUID, face *domain.FaceRecord, photo []byte) error
	GetPhoto(ctx context.Context, id uuid.UUID) ([]byte, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int, error)
}

// EmotionLogRepositoryInterface defines operations for emotion log data access
type EmotionLogRepositoryInterface interface {
	Create(ctx context.Context, log *domain.EmotionLog) error
	ListByEmployee(ctx context.Context, employeeID uuid.UUID) ([]domain.EmotionLog, error)
	ListRecent(ctx context.Context, limit int) ([]domain.EmotionLog, error)
	StatsByEmployee(ctx context.Context, employeeID uuid.UUID) (*domain.EmployeeStats, error)
}

var (
	_ EmployeeRepositoryInterface   = (*EmployeeRepository)(nil)
	_ EmotionLogRepositoryInterface = (*EmotionLogRepository)(nil)
)
