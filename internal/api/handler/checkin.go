package handler

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/empathia/internal/domain"
	"github.com/saturnino-fabrica-de-software/empathia/internal/service"
)

// CheckinService interface for the recognition and emotion pipeline
type CheckinService interface {
	Identify(ctx context.Context, image []byte) (*service.IdentifyResult, error)
	Analyze(ctx context.Context, employeeID uuid.UUID, image []byte) (*service.AnalysisResult, error)
	CheckIn(ctx context.Context, image []byte) (*service.CheckinResult, error)
}

// RecentLogsService lists the latest emotion logs
type RecentLogsService interface {
	RecentLogs(ctx context.Context, limit int) ([]domain.EmotionLog, error)
}

// CheckinHandler handles identification, emotion analysis and check-in requests
type CheckinHandler struct {
	service CheckinService
	logs    RecentLogsService
	images  imageReader
	logger  *slog.Logger
}

// NewCheckinHandler creates a new CheckinHandler instance
func NewCheckinHandler(service CheckinService, logs RecentLogsService, maxImageSize int64, logger *slog.Logger) *CheckinHandler {
	return &CheckinHandler{
		service: service,
		logs:    logs,
		images:  newImageReader(maxImageSize),
		logger:  logger,
	}
}

// CandidateResponse is one scored gallery entry
type CandidateResponse struct {
	EmployeeID string  `json:"employee_id"`
	Name       string  `json:"name"`
	Score      float64 `json:"score"`
	Cosine     float64 `json:"cosine"`
	Euclidean  float64 `json:"euclidean"`
	Geometric  float64 `json:"geometric"`
}

// IdentifyResponse response for identify endpoint.
// recognized=false is a normal outcome, not an error.
type IdentifyResponse struct {
	Recognized bool                `json:"recognized"`
	Employee   *EmployeeResponse   `json:"employee,omitempty"`
	Score      float64             `json:"score"`
	Quality    string              `json:"quality"`
	Candidates []CandidateResponse `json:"candidates"`
	SkippedIDs []string            `json:"skipped_ids,omitempty"`
}

// AnalysisResponse response for emotion analysis
type AnalysisResponse struct {
	LogID              string             `json:"log_id"`
	EmployeeID         string             `json:"employee_id"`
	EmployeeName       string             `json:"employee_name"`
	DominantEmotion    string             `json:"dominant_emotion"`
	Confidence         float64            `json:"confidence"`
	BaseConfidence     float64            `json:"base_confidence"`
	ConsistencyRatio   float64            `json:"consistency_ratio"`
	ConsistencyBonus   float64            `json:"consistency_bonus"`
	StdDev             float64            `json:"std_dev"`
	StabilityBonus     float64            `json:"stability_bonus"`
	Quality            string             `json:"quality"`
	EmotionScores      map[string]float64 `json:"emotion_scores"`
	Distribution       map[string]int     `json:"distribution"`
	SampleCount        int                `json:"sample_count"`
	AnalysisDurationMs int64              `json:"analysis_duration_ms"`
	CreatedAt          string             `json:"created_at"`
}

// AnalysisErrorResponse explains why a recognised employee got no analysis
type AnalysisErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// CheckinResponse response for the combined check-in endpoint
type CheckinResponse struct {
	Identification IdentifyResponse       `json:"identification"`
	Analysis       *AnalysisResponse      `json:"analysis,omitempty"`
	AnalysisError  *AnalysisErrorResponse `json:"analysis_error,omitempty"`
}

// RecentLogsResponse response for the recent logs endpoint
type RecentLogsResponse struct {
	Logs  []domain.EmotionLog `json:"logs"`
	Total int                 `json:"total"`
}

func toIdentifyResponse(r *service.IdentifyResult) IdentifyResponse {
	resp := IdentifyResponse{
		Recognized: r.Recognized,
		Score:      r.Score,
		Quality:    r.Quality,
		Candidates: make([]CandidateResponse, 0, len(r.Candidates)),
	}
	if r.Employee != nil {
		employee := toEmployeeResponse(r.Employee)
		resp.Employee = &employee
	}
	for _, c := range r.Candidates {
		resp.Candidates = append(resp.Candidates, CandidateResponse{
			EmployeeID: c.EmployeeID.String(),
			Name:       c.Name,
			Score:      c.Score,
			Cosine:     c.Breakdown.Cosine,
			Euclidean:  c.Breakdown.Euclidean,
			Geometric:  c.Breakdown.Geometric,
		})
	}
	for _, id := range r.SkippedIDs {
		resp.SkippedIDs = append(resp.SkippedIDs, id.String())
	}
	return resp
}

func toAnalysisResponse(a *service.AnalysisResult) *AnalysisResponse {
	return &AnalysisResponse{
		LogID:              a.Log.ID.String(),
		EmployeeID:         a.Employee.ID.String(),
		EmployeeName:       a.Employee.Name,
		DominantEmotion:    a.Result.DominantEmotion,
		Confidence:         a.Result.AdjustedConfidence,
		BaseConfidence:     a.Result.BaseConfidence,
		ConsistencyRatio:   a.Result.ConsistencyRatio,
		ConsistencyBonus:   a.Result.ConsistencyBonus,
		StdDev:             a.Result.StdDev,
		StabilityBonus:     a.Result.StabilityBonus,
		Quality:            a.Result.Quality,
		EmotionScores:      a.Result.EmotionScores,
		Distribution:       a.Result.Distribution,
		SampleCount:        a.Result.SampleCount,
		AnalysisDurationMs: a.Log.AnalysisDurationMs,
		CreatedAt:          a.Log.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

// Identify POST /v1/identify - 1:N identification against the employee gallery
func (h *CheckinHandler) Identify(c *fiber.Ctx) error {
	imageBytes, err := h.images.read(c)
	if err != nil {
		return err
	}

	result, err := h.service.Identify(c.Context(), imageBytes)
	if err != nil {
		return err
	}

	return c.JSON(toIdentifyResponse(result))
}

// Analyze POST /v1/employees/:id/analysis - emotion analysis for a known employee
func (h *CheckinHandler) Analyze(c *fiber.Ctx) error {
	id, err := parseEmployeeID(c)
	if err != nil {
		return err
	}

	imageBytes, err := h.images.read(c)
	if err != nil {
		return err
	}

	result, err := h.service.Analyze(c.Context(), id, imageBytes)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(toAnalysisResponse(result))
}

// CheckIn POST /v1/checkin - identify, then analyse the emotion when recognised
func (h *CheckinHandler) CheckIn(c *fiber.Ctx) error {
	imageBytes, err := h.images.read(c)
	if err != nil {
		return err
	}

	result, err := h.service.CheckIn(c.Context(), imageBytes)
	if err != nil {
		return err
	}

	resp := CheckinResponse{
		Identification: toIdentifyResponse(result.Identification),
	}
	if result.Analysis != nil {
		resp.Analysis = toAnalysisResponse(result.Analysis)
		return c.Status(fiber.StatusCreated).JSON(resp)
	}
	if result.AnalysisErr != nil {
		resp.AnalysisError = toAnalysisErrorResponse(result.AnalysisErr)
	}

	return c.JSON(resp)
}

// RecentLogs GET /v1/emotions/recent?limit=
func (h *CheckinHandler) RecentLogs(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 0)
	if limit < 0 {
		return domain.ErrValidationFailed.WithError(errInvalidLimit)
	}

	logs, err := h.logs.RecentLogs(c.Context(), limit)
	if err != nil {
		return err
	}
	if logs == nil {
		logs = []domain.EmotionLog{}
	}

	return c.JSON(RecentLogsResponse{
		Logs:  logs,
		Total: len(logs),
	})
}

func toAnalysisErrorResponse(err error) *AnalysisErrorResponse {
	resp := &AnalysisErrorResponse{
		Code:    domain.ErrInternal.Code,
		Message: domain.ErrInternal.Message,
		Details: domain.DetailsOf(err),
	}
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		resp.Code = appErr.Code
		resp.Message = appErr.Message
	}
	return resp
}
