package domain

import (
	"time"

	"github.com/google/uuid"
)

// Rótulos de emoção no vocabulário do classificador
const (
	EmotionHappy    = "happy"
	EmotionNeutral  = "neutral"
	EmotionSad      = "sad"
	EmotionAngry    = "angry"
	EmotionSurprise = "surprise"
	EmotionFear     = "fear"
	EmotionDisgust  = "disgust"
	EmotionConfused = "confused"
)

// EmotionSample é uma leitura individual do classificador.
// Ephemeral: samples are aggregated and never persisted one by one.
type EmotionSample struct {
	DominantEmotion string             `json:"dominant_emotion"`
	Confidence      float64            `json:"confidence"`
	Scores          map[string]float64 `json:"scores"`
	Backend         string             `json:"backend"`
	Strict          bool               `json:"strict"`
	Phase           string             `json:"phase"`
	CapturedAt      time.Time          `json:"captured_at"`
}

// Quality labels of an aggregated emotion result
const (
	AggregateQualityExcellent = "Excellent"
	AggregateQualityGood      = "Good"
	AggregateQualityModerate  = "Moderate"
	AggregateQualityLow       = "Low"
)

// AggregatedResult é o resultado consolidado de um conjunto de amostras
type AggregatedResult struct {
	DominantEmotion    string             `json:"dominant_emotion"`
	BaseConfidence     float64            `json:"base_confidence"`
	AdjustedConfidence float64            `json:"adjusted_confidence"`
	ConsistencyRatio   float64            `json:"consistency_ratio"`
	ConsistencyBonus   float64            `json:"consistency_bonus"`
	StdDev             float64            `json:"std_dev"`
	StabilityBonus     float64            `json:"stability_bonus"`
	Quality            string             `json:"quality"`
	EmotionScores      map[string]float64 `json:"emotion_scores"`
	Distribution       map[string]int     `json:"distribution"`
	SampleCount        int                `json:"sample_count"`
}

// EmotionLog é o registro persistido de uma análise concluída
type EmotionLog struct {
	ID                 uuid.UUID          `json:"id"`
	EmployeeID         uuid.UUID          `json:"employee_id"`
	EmployeeName       string             `json:"employee_name"`
	DominantEmotion    string             `json:"dominant_emotion"`
	Confidence         float64            `json:"confidence"`
	EmotionScores      map[string]float64 `json:"emotion_scores"`
	SampleCount        int                `json:"sample_count"`
	ConsistencyRatio   float64            `json:"consistency_ratio"`
	StdDev             float64            `json:"std_dev"`
	Quality            string             `json:"quality"`
	AnalysisDurationMs int64              `json:"analysis_duration_ms"`
	CreatedAt          time.Time          `json:"created_at"`
}

// NewEmotionLog builds the log entry for an aggregated analysis of the employee.
func NewEmotionLog(emp *Employee, res *AggregatedResult, duration time.Duration) *EmotionLog {
	return &EmotionLog{
		ID:                 uuid.New(),
		EmployeeID:         emp.ID,
		EmployeeName:       emp.Name,
		DominantEmotion:    res.DominantEmotion,
		Confidence:         res.AdjustedConfidence,
		EmotionScores:      res.EmotionScores,
		SampleCount:        res.SampleCount,
		ConsistencyRatio:   res.ConsistencyRatio,
		StdDev:             res.StdDev,
		Quality:            res.Quality,
		AnalysisDurationMs: duration.Milliseconds(),
		CreatedAt:          time.Now().UTC(),
	}
}
