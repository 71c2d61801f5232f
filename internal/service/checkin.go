package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/empathia/internal/audit"
	"github.com/saturnino-fabrica-de-software/empathia/internal/domain"
	"github.com/saturnino-fabrica-de-software/empathia/internal/emotion"
	"github.com/saturnino-fabrica-de-software/empathia/internal/matching"
	"github.com/saturnino-fabrica-de-software/empathia/internal/metrics"
	"github.com/saturnino-fabrica-de-software/empathia/internal/provider"
	"github.com/saturnino-fabrica-de-software/empathia/internal/ws"
)

// GallerySnapshotter returns the current gallery in store order
type GallerySnapshotter interface {
	Snapshot(ctx context.Context) ([]domain.Employee, error)
}

// EmployeeGetter loads a single employee
type EmployeeGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Employee, error)
}

// EmotionLogWriter appends emotion logs
type EmotionLogWriter interface {
	Create(ctx context.Context, log *domain.EmotionLog) error
}

// IdentifyResult is the outcome of recognising a face.
// Recognized false is a normal outcome, not an error.
type IdentifyResult struct {
	Recognized bool                 `json:"recognized"`
	Employee   *domain.Employee     `json:"employee,omitempty"`
	Score      float64              `json:"score"`
	Quality    string               `json:"quality"`
	Candidates []matching.Candidate `json:"candidates"`
	SkippedIDs []uuid.UUID          `json:"skipped_ids,omitempty"`
}

// AnalysisResult is one completed and logged emotion analysis
type AnalysisResult struct {
	Employee *domain.Employee         `json:"employee"`
	Result   *domain.AggregatedResult `json:"result"`
	Log      *domain.EmotionLog       `json:"log"`
}

// CheckinResult carries the identification and, when recognised, the analysis.
// AnalysisErr is set instead of Analysis when the employee was recognised but
// the capture could not be analysed; a new capture may succeed.
type CheckinResult struct {
	Identification *IdentifyResult `json:"identification"`
	Analysis       *AnalysisResult `json:"analysis,omitempty"`
	AnalysisErr    error           `json:"-"`
}

// CheckinService runs the recognise-then-analyse pipeline
type CheckinService struct {
	embedder      provider.EmbeddingProvider
	gallery       GallerySnapshotter
	matcher       *matching.Matcher
	sampler       *emotion.Sampler
	aggregator    *emotion.Aggregator
	employees     EmployeeGetter
	logs          EmotionLogWriter
	locks         *EmployeeLocks
	audit         audit.Logger
	events        EventPublisher
	metrics       *metrics.Metrics
	targetSamples int
	topN          int
	logger        *slog.Logger
	now           func() time.Time
}

func NewCheckinService(
	embedder provider.EmbeddingProvider,
	gallery GallerySnapshotter,
	matcher *matching.Matcher,
	sampler *emotion.Sampler,
	aggregator *emotion.Aggregator,
	employees EmployeeGetter,
	logs EmotionLogWriter,
	locks *EmployeeLocks,
	logger *slog.Logger,
) *CheckinService {
	return &CheckinService{
		embedder:      embedder,
		gallery:       gallery,
		matcher:       matcher,
		sampler:       sampler,
		aggregator:    aggregator,
		employees:     employees,
		logs:          logs,
		locks:         locks,
		audit:         &audit.NoOpLogger{},
		events:        noopPublisher{},
		targetSamples: emotion.DefaultTargetSamples,
		topN:          matching.DefaultTopCandidates,
		logger:        logger.With("component", "checkin_service"),
		now:           time.Now,
	}
}

// WithTargetSamples sets how many accepted samples an analysis needs
func (s *CheckinService) WithTargetSamples(n int) *CheckinService {
	s.targetSamples = n
	return s
}

func (s *CheckinService) WithAudit(logger audit.Logger) *CheckinService {
	s.audit = logger
	return s
}

func (s *CheckinService) WithEvents(events EventPublisher) *CheckinService {
	s.events = events
	return s
}

func (s *CheckinService) WithMetrics(m *metrics.Metrics) *CheckinService {
	s.metrics = m
	return s
}

// Identify extracts the face in image and matches it against the gallery
func (s *CheckinService) Identify(ctx context.Context, image []byte) (*IdentifyResult, error) {
	if len(image) == 0 {
		return nil, domain.ErrInvalidImage
	}

	face, err := s.embedder.Extract(ctx, image)
	if err != nil {
		return nil, fmt.Errorf("extract face: %w", err)
	}

	gallery, err := s.gallery.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	match, err := s.matcher.Identify(face, gallery)
	if err != nil {
		return nil, err
	}

	result := &IdentifyResult{
		Recognized: match.Matched,
		Employee:   match.Employee,
		Score:      match.Score,
		Quality:    match.Quality,
		Candidates: match.TopCandidates(s.topN),
		SkippedIDs: match.SkippedIDs(),
	}

	event := audit.Event{
		EventType: audit.EventEmployeeIdentified,
		Success:   match.Matched,
		Metadata: map[string]string{
			"score":   strconv.FormatFloat(match.Score, 'f', 4, 64),
			"quality": match.Quality,
			"skipped": strconv.Itoa(len(match.Skipped)),
		},
	}
	if match.Employee != nil {
		event.EmployeeID = match.Employee.ID
	}
	_ = s.audit.Log(ctx, event)

	if result.Recognized {
		s.events.Publish(ws.EventCheckinIdentified, result.Employee.ID, map[string]any{
			"name":    result.Employee.Name,
			"score":   result.Score,
			"quality": result.Quality,
		})
	} else {
		s.events.Publish(ws.EventCheckinUnknown, uuid.Nil, map[string]any{
			"score":   result.Score,
			"quality": result.Quality,
		})
	}

	return result, nil
}

// Analyze samples the employee's emotion from image and appends the log
func (s *CheckinService) Analyze(ctx context.Context, employeeID uuid.UUID, image []byte) (*AnalysisResult, error) {
	if len(image) == 0 {
		return nil, domain.ErrInvalidImage
	}

	employee, err := s.employees.GetByID(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	return s.analyze(ctx, employee, image)
}

// CheckIn identifies the person in image and, when recognised, analyses
// the same frame for emotion.
func (s *CheckinService) CheckIn(ctx context.Context, image []byte) (*CheckinResult, error) {
	identification, err := s.Identify(ctx, image)
	if err != nil {
		return nil, err
	}

	result := &CheckinResult{Identification: identification}
	if !identification.Recognized {
		return result, nil
	}

	analysis, err := s.analyze(ctx, identification.Employee, image)
	if err != nil {
		var appErr *domain.AppError
		if ctx.Err() == nil && errors.As(err, &appErr) && appErr.StatusCode < 500 {
			result.AnalysisErr = err
			return result, nil
		}
		return nil, fmt.Errorf("analyze %s: %w", identification.Employee.Name, err)
	}

	result.Analysis = analysis
	return result, nil
}

func (s *CheckinService) analyze(ctx context.Context, employee *domain.Employee, image []byte) (*AnalysisResult, error) {
	start := s.now()

	samples, err := s.sampler.Collect(ctx, image, s.targetSamples)
	if err != nil {
		s.recordAnalysis(ctx, employee.ID, err)
		return nil, err
	}

	aggregated, err := s.aggregator.Aggregate(samples)
	if err != nil {
		s.recordAnalysis(ctx, employee.ID, err)
		return nil, err
	}

	duration := s.now().Sub(start)
	log := domain.NewEmotionLog(employee, aggregated, duration)

	if err := s.appendLog(ctx, employee.ID, log); err != nil {
		s.recordAnalysis(ctx, employee.ID, err)
		return nil, err
	}

	s.metrics.RecordAnalysisDuration(duration.Seconds())
	s.recordAnalysis(ctx, employee.ID, nil)
	s.events.Publish(ws.EventEmotionAnalyzed, employee.ID, log)
	s.logger.Info("emotion analysis logged",
		"employee_id", employee.ID,
		"emotion", aggregated.DominantEmotion,
		"confidence", aggregated.AdjustedConfidence,
		"quality", aggregated.Quality,
		"duration", duration,
	)

	return &AnalysisResult{
		Employee: employee,
		Result:   aggregated,
		Log:      log,
	}, nil
}

// appendLog writes under the employee lock so a concurrent delete can't
// leave a log behind for a removed employee.
func (s *CheckinService) appendLog(ctx context.Context, employeeID uuid.UUID, log *domain.EmotionLog) error {
	unlock := s.locks.Lock(employeeID)
	defer unlock()

	if _, err := s.employees.GetByID(ctx, employeeID); err != nil {
		return err
	}

	if err := s.logs.Create(ctx, log); err != nil {
		return fmt.Errorf("append emotion log: %w", err)
	}
	return nil
}

func (s *CheckinService) recordAnalysis(ctx context.Context, employeeID uuid.UUID, err error) {
	event := audit.Event{
		EventType:  audit.EventEmotionAnalyzed,
		EmployeeID: employeeID,
		Success:    err == nil,
	}
	if err != nil {
		event.Error = err.Error()
	}
	_ = s.audit.Log(ctx, event)
}
