package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/empathia/internal/domain"
)

const (
	// DefaultRecentLimit is the page size of ListRecent when none is given
	DefaultRecentLimit = 10
	// MaxRecentLimit caps ListRecent
	MaxRecentLimit = 100
)

const emotionLogColumns = `l.id, l.employee_id, e.name, l.dominant_emotion, l.confidence, l.emotion_scores,
	l.sample_count, l.consistency_ratio, l.std_dev, l.quality, l.analysis_duration_ms, l.created_at`

// EmotionLogRepository stores one immutable row per completed analysis
type EmotionLogRepository struct {
	pool PgxPool
}

func NewEmotionLogRepository(pool PgxPool) *EmotionLogRepository {
	return &EmotionLogRepository{pool: pool}
}

func (r *EmotionLogRepository) Create(ctx context.Context, log *domain.EmotionLog) error {
	query := `
		INSERT INTO emotion_logs (id, employee_id, dominant_emotion, confidence, emotion_scores, sample_count,
			consistency_ratio, std_dev, quality, analysis_duration_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		RETURNING created_at
	`

	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}

	scores := log.EmotionScores
	if scores == nil {
		scores = map[string]float64{}
	}
	scoresJSON, err := marshalJSON(scores)
	if err != nil {
		return fmt.Errorf("create emotion log: %w", err)
	}

	err = r.pool.QueryRow(ctx, query,
		log.ID,
		log.EmployeeID,
		log.DominantEmotion,
		log.Confidence,
		scoresJSON,
		log.SampleCount,
		log.ConsistencyRatio,
		log.StdDev,
		log.Quality,
		log.AnalysisDurationMs,
	).Scan(&log.CreatedAt)

	if err != nil {
		return fmt.Errorf("create emotion log: %w", err)
	}

	return nil
}

// ListByEmployee returns the employee's history, newest first
func (r *EmotionLogRepository) ListByEmployee(ctx context.Context, employeeID uuid.UUID) ([]domain.EmotionLog, error) {
	query := `
		SELECT ` + emotionLogColumns + `
		FROM emotion_logs l
		JOIN employees e ON e.id = l.employee_id
		WHERE l.employee_id = $1
		ORDER BY l.created_at DESC, l.id
	`

	logs, err := r.list(ctx, query, employeeID)
	if err != nil {
		return nil, fmt.Errorf("list emotion logs by employee: %w", err)
	}
	return logs, nil
}

// ListRecent returns the latest logs across all employees.
// limit defaults to DefaultRecentLimit and is capped at MaxRecentLimit.
func (r *EmotionLogRepository) ListRecent(ctx context.Context, limit int) ([]domain.EmotionLog, error) {
	query := `
		SELECT ` + emotionLogColumns + `
		FROM emotion_logs l
		JOIN employees e ON e.id = l.employee_id
		ORDER BY l.created_at DESC, l.id
		LIMIT $1
	`

	logs, err := r.list(ctx, query, clampLimit(limit, DefaultRecentLimit, MaxRecentLimit))
	if err != nil {
		return nil, fmt.Errorf("list recent emotion logs: %w", err)
	}
	return logs, nil
}

// StatsByEmployee summarises the employee's history. An employee without
// logs gets zero totals and no most common emotion.
func (r *EmotionLogRepository) StatsByEmployee(ctx context.Context, employeeID uuid.UUID) (*domain.EmployeeStats, error) {
	stats := &domain.EmployeeStats{EmployeeID: employeeID}

	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(AVG(confidence), 0) FROM emotion_logs WHERE employee_id = $1`,
		employeeID,
	).Scan(&stats.TotalAnalyses, &stats.AverageConfidence)
	if err != nil {
		return nil, fmt.Errorf("emotion stats: %w", err)
	}

	if stats.TotalAnalyses == 0 {
		return stats, nil
	}

	// ties go to the emotion recorded first
	err = r.pool.QueryRow(ctx, `
		SELECT dominant_emotion, COUNT(*) AS total
		FROM emotion_logs
		WHERE employee_id = $1
		GROUP BY dominant_emotion
		ORDER BY total DESC, MIN(created_at)
		LIMIT 1
	`, employeeID).Scan(&stats.MostCommonEmotion, &stats.MostCommonCount)
	if err != nil {
		return nil, fmt.Errorf("most common emotion: %w", err)
	}

	return stats, nil
}

func (r *EmotionLogRepository) list(ctx context.Context, query string, args ...any) ([]domain.EmotionLog, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]domain.EmotionLog, 0)
	for rows.Next() {
		var (
			log    domain.EmotionLog
			scores []byte
		)

		if err := rows.Scan(
			&log.ID,
			&log.EmployeeID,
			&log.EmployeeName,
			&log.DominantEmotion,
			&log.Confidence,
			&scores,
			&log.SampleCount,
			&log.ConsistencyRatio,
			&log.StdDev,
			&log.Quality,
			&log.AnalysisDurationMs,
			&log.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan emotion log: %w", err)
		}

		if len(scores) > 0 {
			if err := json.Unmarshal(scores, &log.EmotionScores); err != nil {
				return nil, fmt.Errorf("decode emotion scores: %w", err)
			}
		}

		logs = append(logs, log)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return logs, nil
}
