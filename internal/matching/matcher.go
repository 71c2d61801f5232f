package matching

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/empathia/internal/domain"
	"github.com/saturnino-fabrica-de-software/empathia/internal/metrics"
)

// Quality labels of a recognition score
const (
	QualityExcellent  = "Excellent"
	QualityVeryGood   = "Very Good"
	QualityGood       = "Good"
	QualityAcceptable = "Acceptable, review manually"
	QualityRejected   = "Rejected"
)

// DefaultThreshold is the minimum combined score for a positive identification
const DefaultThreshold = 0.75

// DefaultTopCandidates is how many candidates are logged per identification
const DefaultTopCandidates = 3

// Bands are the lower bounds of each quality label.
// They only label a score; the match decision uses the threshold.
type Bands struct {
	Excellent  float64
	VeryGood   float64
	Good       float64
	Acceptable float64
}

// DefaultBands returns the standard quality bands
func DefaultBands() Bands {
	return Bands{
		Excellent:  0.90,
		VeryGood:   0.80,
		Good:       0.75,
		Acceptable: 0.70,
	}
}

// Label returns the quality label of a score
func (b Bands) Label(score float64) string {
	switch {
	case score >= b.Excellent:
		return QualityExcellent
	case score >= b.VeryGood:
		return QualityVeryGood
	case score >= b.Good:
		return QualityGood
	case score >= b.Acceptable:
		return QualityAcceptable
	default:
		return QualityRejected
	}
}

// Config holds the matcher settings
type Config struct {
	Threshold     float64
	Dimension     int
	Bands         Bands
	TopCandidates int
}

// DefaultConfig returns the standard matcher configuration
func DefaultConfig() Config {
	return Config{
		Threshold:     DefaultThreshold,
		Dimension:     domain.DefaultEmbeddingDimension,
		Bands:         DefaultBands(),
		TopCandidates: DefaultTopCandidates,
	}
}

// Candidate is one scored gallery entry
type Candidate struct {
	EmployeeID uuid.UUID `json:"employee_id"`
	Name       string    `json:"name"`
	Score      float64   `json:"score"`
	Breakdown  Breakdown `json:"breakdown"`
}

// SkippedRecord is a gallery entry that could not be scored
type SkippedRecord struct {
	EmployeeID uuid.UUID `json:"employee_id"`
	Name       string    `json:"name"`
	Reason     error     `json:"-"`
}

// MatchResult is the outcome of an identification.
// Matched false with a nil Employee is the no-match outcome; it is not an error.
type MatchResult struct {
	Matched  bool             `json:"matched"`
	Employee *domain.Employee `json:"employee,omitempty"`
	Score    float64          `json:"score"`
	Quality  string           `json:"quality"`
	// Best is the highest scoring candidate even when it is below the threshold
	Best       *Candidate      `json:"best,omitempty"`
	Candidates []Candidate     `json:"-"`
	Skipped    []SkippedRecord `json:"-"`
}

// TopCandidates returns the n best candidates, highest score first.
// Ties keep gallery order.
func (r *MatchResult) TopCandidates(n int) []Candidate {
	sorted := make([]Candidate, len(r.Candidates))
	copy(sorted, r.Candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})
	if n >= 0 && n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}

// SkippedIDs returns the ids of every skipped gallery entry
func (r *MatchResult) SkippedIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(r.Skipped))
	for _, s := range r.Skipped {
		ids = append(ids, s.EmployeeID)
	}
	return ids
}

// Matcher identifies an observed face among enrolled employees.
// It holds no mutable state and is safe for concurrent use.
type Matcher struct {
	scorer  *Scorer
	config  Config
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewMatcher creates a Matcher. m may be nil.
func NewMatcher(scorer *Scorer, config Config, logger *slog.Logger, m *metrics.Metrics) *Matcher {
	if config.Dimension <= 0 {
		config.Dimension = domain.DefaultEmbeddingDimension
	}
	if config.TopCandidates <= 0 {
		config.TopCandidates = DefaultTopCandidates
	}
	return &Matcher{
		scorer:  scorer,
		config:  config,
		logger:  logger.With("component", "matcher"),
		metrics: m,
	}
}

// Identify scores the observation against every gallery entry and returns
// the best one when it reaches the threshold.
//
// Entries without an embedding, or with an embedding of a different
// dimension, are skipped and reported in MatchResult.Skipped. The scan is
// exhaustive; on equal scores the earlier entry wins.
func (m *Matcher) Identify(observation *domain.FaceRecord, gallery []domain.Employee) (*MatchResult, error) {
	if len(gallery) == 0 {
		m.logger.Info("gallery empty, nothing to match")
		return &MatchResult{Quality: QualityRejected}, nil
	}

	if got := observation.Dimension(); got != m.config.Dimension {
		m.metrics.RecordIdentifyError()
		return nil, domain.ErrInvalidEmbeddingDimension.WithError(
			fmt.Errorf("observation has %d dimensions, expected %d", got, m.config.Dimension))
	}

	result := &MatchResult{
		Candidates: make([]Candidate, 0, len(gallery)),
	}

	var (
		best    Candidate
		bestIdx int
		hasBest bool
	)

	for i := range gallery {
		emp := &gallery[i]

		if reason := m.incompatibility(observation, emp); reason != nil {
			result.Skipped = append(result.Skipped, SkippedRecord{
				EmployeeID: emp.ID,
				Name:       emp.Name,
				Reason:     reason,
			})
			m.logger.Warn("skipping gallery entry, re-enrolment required",
				"employee_id", emp.ID,
				"name", emp.Name,
				"reason", reason,
			)
			continue
		}

		bd := m.scorer.Compare(observation, emp.Face)
		candidate := Candidate{
			EmployeeID: emp.ID,
			Name:       emp.Name,
			Score:      bd.Combined,
			Breakdown:  bd,
		}
		result.Candidates = append(result.Candidates, candidate)

		m.logger.Debug("scored candidate",
			"employee_id", emp.ID,
			"name", emp.Name,
			"score", bd.Combined,
			"cosine", bd.Cosine,
			"euclidean", bd.Euclidean,
			"geometric", bd.Geometric,
		)

		if !hasBest || candidate.Score > best.Score {
			best = candidate
			bestIdx = i
			hasBest = true
		}
	}

	if !hasBest {
		result.Quality = QualityRejected
		m.logger.Info("no comparable gallery entries", "skipped", len(result.Skipped))
		m.metrics.RecordIdentify(false, 0, len(result.Skipped))
		return result, nil
	}

	result.Best = &best
	result.Score = best.Score
	result.Quality = m.config.Bands.Label(best.Score)
	result.Matched = best.Score >= m.config.Threshold
	if result.Matched {
		result.Employee = &gallery[bestIdx]
	}

	top := make([]any, 0, m.config.TopCandidates)
	for i, c := range result.TopCandidates(m.config.TopCandidates) {
		top = append(top, slog.Group(strconv.Itoa(i+1), "name", c.Name, "score", c.Score))
	}

	if result.Matched {
		m.logger.Info("employee identified",
			"employee_id", best.EmployeeID,
			"name", best.Name,
			"score", best.Score,
			"quality", result.Quality,
			slog.Group("top", top...),
		)
	} else {
		m.logger.Info("no match",
			"best_name", best.Name,
			"best_score", best.Score,
			"threshold", m.config.Threshold,
			"quality", result.Quality,
			slog.Group("top", top...),
		)
	}

	m.metrics.RecordIdentify(result.Matched, best.Score, len(result.Skipped))
	return result, nil
}

func (m *Matcher) incompatibility(observation *domain.FaceRecord, emp *domain.Employee) error {
	if !emp.HasEmbedding() {
		return domain.ErrIncompatibleStoredRecord.WithError(errors.New("no stored embedding"))
	}
	if got, want := len(emp.Face.Embedding), len(observation.Embedding); got != want {
		return domain.ErrIncompatibleStoredRecord.WithError(
			fmt.Errorf("stored embedding has %d dimensions, expected %d", got, want))
	}
	return nil
}
