//go:build integration

package database_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/saturnino-fabrica-de-software/empathia/internal/database"
)

func startPostgres(t *testing.T) (*sql.DB, func()) {
	t.Helper()

	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "pgvector/pgvector:pg16",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "test",
				"POSTGRES_PASSWORD": "test",
				"POSTGRES_DB":       "empathia_test",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://test:test@%s:%s/empathia_test?sslmode=disable", host, port.Port())
	db, err := database.OpenSQL(ctx, dsn)
	require.NoError(t, err)

	return db, func() {
		_ = db.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}
}

func TestMigratorIntegration(t *testing.T) {
	db, cleanup := startPostgres(t)
	defer cleanup()

	migrator, err := database.NewMigrator(db, "empathia_test", nil)
	require.NoError(t, err)
	defer func() { _ = migrator.Close() }()

	t.Run("Up runs migrations", func(t *testing.T) {
		require.NoError(t, migrator.Up())
		assertTableExists(t, db, "employees")
		assertTableExists(t, db, "emotion_logs")
	})

	t.Run("Up is idempotent", func(t *testing.T) {
		require.NoError(t, migrator.Up())
	})

	t.Run("Version reports the latest migration", func(t *testing.T) {
		version, dirty, err := migrator.Version()
		require.NoError(t, err)
		assert.False(t, dirty)
		assert.Equal(t, uint(2), version)
	})

	t.Run("employees table columns", func(t *testing.T) {
		columns := getTableColumns(t, db, "employees")
		for _, col := range []string{
			"id", "name", "role", "department", "email", "embedding",
			"facial_area", "face_confidence", "photo", "created_at", "updated_at",
		} {
			assert.Contains(t, columns, col)
		}
	})

	t.Run("embedding column accepts any dimension", func(t *testing.T) {
		_, err := db.Exec(`INSERT INTO employees (id, name, embedding) VALUES ($1, 'a', '[1,0,0]'), ($2, 'b', '[1,0]')`,
			uuid.New(), uuid.New())
		require.NoError(t, err)
	})

	t.Run("deleting an employee cascades to its emotion logs", func(t *testing.T) {
		employeeID := uuid.New()
		_, err := db.Exec(`INSERT INTO employees (id, name) VALUES ($1, 'Ana')`, employeeID)
		require.NoError(t, err)

		_, err = db.Exec(`
			INSERT INTO emotion_logs (id, employee_id, dominant_emotion, confidence, sample_count, consistency_ratio, std_dev, quality)
			VALUES ($1, $2, 'happy', 90, 8, 0.75, 2.1, 'Excellent')
		`, uuid.New(), employeeID)
		require.NoError(t, err)

		_, err = db.Exec(`DELETE FROM employees WHERE id = $1`, employeeID)
		require.NoError(t, err)

		var count int
		require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM emotion_logs WHERE employee_id = $1`, employeeID).Scan(&count))
		assert.Equal(t, 0, count)
	})

	t.Run("Down rolls back the last migration", func(t *testing.T) {
		require.NoError(t, migrator.Down())

		version, _, err := migrator.Version()
		require.NoError(t, err)
		assert.Equal(t, uint(1), version)

		var exists bool
		require.NoError(t, db.QueryRow(`
			SELECT EXISTS (SELECT FROM information_schema.tables WHERE table_schema = 'public' AND table_name = 'emotion_logs')
		`).Scan(&exists))
		assert.False(t, exists)
	})
}

func assertTableExists(t *testing.T, db *sql.DB, tableName string) {
	t.Helper()

	var exists bool
	err := db.QueryRow(`
		SELECT EXISTS (
			SELECT FROM information_schema.tables
			WHERE table_schema = 'public'
			AND table_name = $1
		)
	`, tableName).Scan(&exists)

	require.NoError(t, err)
	assert.True(t, exists, "table %s should exist", tableName)
}

func getTableColumns(t *testing.T, db *sql.DB, tableName string) []string {
	t.Helper()

	rows, err := db.Query(`
		SELECT column_name
		FROM information_schema.columns
		WHERE table_schema = 'public'
		AND table_name = $1
		ORDER BY ordinal_position
	`, tableName)
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()

	var columns []string
	for rows.Next() {
		var col string
		require.NoError(t, rows.Scan(&col))
		columns = append(columns, col)
	}

	return columns
}
