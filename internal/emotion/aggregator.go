package emotion

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/saturnino-fabrica-de-software/empathia/internal/domain"
)

const (
	// maxConsistencyBonus is awarded when every sample agrees
	maxConsistencyBonus = 15.0
	// maxStabilityBonus is awarded when the dominant confidences do not vary
	maxStabilityBonus = 5.0
)

// QualityBand labels a result whose consistency and adjusted confidence
// both reach the minimums.
type QualityBand struct {
	MinRatio      float64
	MinConfidence float64
	Label         string
}

// DefaultQualityBands are checked in order; the first satisfied band wins.
func DefaultQualityBands() []QualityBand {
	return []QualityBand{
		{MinRatio: 0.75, MinConfidence: 85, Label: domain.AggregateQualityExcellent},
		{MinRatio: 0.60, MinConfidence: 70, Label: domain.AggregateQualityGood},
		{MinRatio: 0.50, MinConfidence: 60, Label: domain.AggregateQualityModerate},
	}
}

// Aggregator reduces emotion samples to a single result. It is a pure
// function over its input and safe for concurrent use.
type Aggregator struct {
	bands []QualityBand
}

// NewAggregator creates an Aggregator with the default quality bands
func NewAggregator() *Aggregator {
	return &Aggregator{bands: DefaultQualityBands()}
}

// Aggregate picks the most frequent dominant emotion (first seen wins ties)
// and adjusts its mean confidence with a consistency bonus and a stability bonus.
func (a *Aggregator) Aggregate(samples []domain.EmotionSample) (*domain.AggregatedResult, error) {
	if len(samples) == 0 {
		return nil, domain.ErrNoSamples
	}

	counts := make(map[string]int)
	confidences := make(map[string][]float64)
	var order []string

	for _, s := range samples {
		if _, seen := counts[s.DominantEmotion]; !seen {
			order = append(order, s.DominantEmotion)
		}
		counts[s.DominantEmotion]++
		confidences[s.DominantEmotion] = append(confidences[s.DominantEmotion], s.Confidence)
	}

	dominant := order[0]
	for _, label := range order[1:] {
		if counts[label] > counts[dominant] {
			dominant = label
		}
	}

	base, std := stat.PopMeanStdDev(confidences[dominant], nil)
	ratio := float64(counts[dominant]) / float64(len(samples))
	consistencyBonus := ratio * maxConsistencyBonus
	stabilityBonus := math.Max(0, maxStabilityBonus-std/10)
	adjusted := math.Min(100, base+consistencyBonus+stabilityBonus)

	return &domain.AggregatedResult{
		DominantEmotion:    dominant,
		BaseConfidence:     base,
		AdjustedConfidence: adjusted,
		ConsistencyRatio:   ratio,
		ConsistencyBonus:   consistencyBonus,
		StdDev:             std,
		StabilityBonus:     stabilityBonus,
		Quality:            a.quality(ratio, adjusted),
		EmotionScores:      averageScores(samples),
		Distribution:       counts,
		SampleCount:        len(samples),
	}, nil
}

func (a *Aggregator) quality(ratio, confidence float64) string {
	for _, b := range a.bands {
		if ratio >= b.MinRatio && confidence >= b.MinConfidence {
			return b.Label
		}
	}
	return domain.AggregateQualityLow
}

// averageScores averages each label over the samples that reported it.
func averageScores(samples []domain.EmotionSample) map[string]float64 {
	values := make(map[string][]float64)
	for _, s := range samples {
		for label, score := range s.Scores {
			values[label] = append(values[label], score)
		}
	}

	avg := make(map[string]float64, len(values))
	for label, v := range values {
		avg[label] = stat.Mean(v, nil)
	}
	return avg
}
