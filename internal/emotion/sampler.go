package emotion

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/saturnino-fabrica-de-software/empathia/internal/domain"
	"github.com/saturnino-fabrica-de-software/empathia/internal/metrics"
	"github.com/saturnino-fabrica-de-software/empathia/internal/provider"
)

// DefaultTargetSamples is the number of accepted readings an analysis needs
const DefaultTargetSamples = 8

// InsufficientSamplesError is returned when every phase ran out of budget
// before reaching the target.
type InsufficientSamplesError struct {
	Collected int
	Required  int
}

func (e *InsufficientSamplesError) Error() string {
	return fmt.Sprintf("insufficient emotion samples: collected %d of %d", e.Collected, e.Required)
}

func (e *InsufficientSamplesError) Details() map[string]any {
	return map[string]any{
		"collected": e.Collected,
		"required":  e.Required,
	}
}

func (e *InsufficientSamplesError) Unwrap() error {
	return domain.ErrInsufficientSamples
}

// Sampler repeatedly classifies one frame with varying detector settings
// until enough confident readings exist.
type Sampler struct {
	classifier provider.EmotionClassifier
	strategy   Strategy
	logger     *slog.Logger
	metrics    *metrics.Metrics
	now        func() time.Time
}

// NewSampler creates a Sampler. m may be nil.
func NewSampler(classifier provider.EmotionClassifier, strategy Strategy, logger *slog.Logger, m *metrics.Metrics) (*Sampler, error) {
	if err := strategy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid sampling strategy: %w", err)
	}
	return &Sampler{
		classifier: classifier,
		strategy:   strategy,
		logger:     logger.With("component", "emotion_sampler"),
		metrics:    m,
		now:        time.Now,
	}, nil
}

// Collect returns exactly target accepted samples, or an
// *InsufficientSamplesError when the budget runs out first.
//
// Attempts are sequential. Classifier failures consume budget and are
// otherwise ignored. A cancelled context aborts the run and discards what
// was collected.
func (s *Sampler) Collect(ctx context.Context, image []byte, target int) ([]domain.EmotionSample, error) {
	if target < 1 {
		return nil, domain.ErrValidationFailed.WithError(fmt.Errorf("target samples must be at least 1, got %d", target))
	}

	samples := make([]domain.EmotionSample, 0, target)

	for _, phase := range s.strategy.Phases {
		if len(samples) >= target {
			break
		}

		budget := target * phase.BudgetFactor
		s.logger.Debug("sampling phase started",
			"phase", phase.Name,
			"collected", len(samples),
			"target", target,
			"budget", budget,
		)

		for attempt := 0; attempt < budget && len(samples) < target; attempt++ {
			if err := ctx.Err(); err != nil {
				s.metrics.RecordSampling(err)
				return nil, err
			}

			backend := s.strategy.Backends[attempt%len(s.strategy.Backends)]
			strict := phase.Strict[attempt%len(phase.Strict)]

			sample, ok := s.attempt(ctx, image, phase, backend, strict)
			if ok {
				samples = append(samples, sample)
			}
		}
	}

	if len(samples) < target {
		if err := ctx.Err(); err != nil {
			s.metrics.RecordSampling(err)
			return nil, err
		}
		err := &InsufficientSamplesError{Collected: len(samples), Required: target}
		s.logger.Info("not enough emotion samples", "collected", len(samples), "target", target)
		s.metrics.RecordSampling(err)
		return nil, err
	}

	s.metrics.RecordSampling(nil)
	return samples, nil
}

func (s *Sampler) attempt(ctx context.Context, image []byte, phase Phase, backend string, strict bool) (domain.EmotionSample, bool) {
	scores, err := s.classifier.Classify(ctx, image, backend, strict)
	if err != nil {
		s.logger.Debug("classifier attempt failed",
			"phase", phase.Name,
			"backend", backend,
			"strict", strict,
			"error", err,
		)
		s.metrics.RecordClassifyAttempt(phase.Name, backend, "error")
		return domain.EmotionSample{}, false
	}

	if !s.acceptable(scores, phase) {
		s.logger.Debug("classifier reading rejected",
			"phase", phase.Name,
			"backend", backend,
			"strict", strict,
			"confidence", confidenceOf(scores),
		)
		s.metrics.RecordClassifyAttempt(phase.Name, backend, "rejected")
		return domain.EmotionSample{}, false
	}

	s.metrics.RecordClassifyAttempt(phase.Name, backend, "accepted")
	return domain.EmotionSample{
		DominantEmotion: scores.Dominant,
		Confidence:      scores.Confidence,
		Scores:          scores.Scores,
		Backend:         backend,
		Strict:          strict,
		Phase:           phase.Name,
		CapturedAt:      s.now(),
	}, true
}

func (s *Sampler) acceptable(scores *provider.EmotionScores, phase Phase) bool {
	if !scores.Valid() {
		return false
	}
	if phase.RequireRegion && scores.Region == nil {
		return false
	}
	return scores.Confidence >= phase.MinConfidence
}

func confidenceOf(scores *provider.EmotionScores) float64 {
	if scores == nil {
		return 0
	}
	return scores.Confidence
}
