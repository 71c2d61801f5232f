// Package matching scores face records against each other and identifies
// an observed face within the enrolled gallery.
package matching

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/saturnino-fabrica-de-software/empathia/internal/domain"
)

// Weights of the combined similarity score. They sum to 1.
const (
	CosineWeight    = 0.70
	EuclideanWeight = 0.20
	GeometricWeight = 0.10
)

const (
	// euclideanScale is the distance at which euclidean similarity reaches zero
	euclideanScale = 150.0
	// neutralGeometric is used when either record lacks a facial area
	neutralGeometric = 0.5
)

// Breakdown exposes the sub-scores of a comparison for diagnostics
type Breakdown struct {
	Cosine    float64 `json:"cosine"`
	Euclidean float64 `json:"euclidean"`
	Geometric float64 `json:"geometric"`
	Combined  float64 `json:"combined"`
}

// Scorer computes the combined similarity of two face records.
// It is stateless and safe for concurrent use.
type Scorer struct{}

// NewScorer creates a Scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// Score returns the combined similarity of two records. Higher is more similar.
// The result is a weighted sum of cosine, euclidean and geometric similarity
// and is not clamped. Mismatched or empty embeddings score 0.
func (s *Scorer) Score(current, stored *domain.FaceRecord) float64 {
	return s.Compare(current, stored).Combined
}

// Compare returns the full breakdown of a comparison.
func (s *Scorer) Compare(current, stored *domain.FaceRecord) Breakdown {
	if current == nil || stored == nil {
		return Breakdown{}
	}
	a, b := current.Embedding, stored.Embedding
	if len(a) == 0 || len(a) != len(b) {
		return Breakdown{}
	}

	bd := Breakdown{
		Cosine:    CosineSimilarity(a, b),
		Euclidean: EuclideanSimilarity(a, b),
		Geometric: GeometricSimilarity(current.FacialArea, stored.FacialArea),
	}
	bd.Combined = bd.Cosine*CosineWeight + bd.Euclidean*EuclideanWeight + bd.Geometric*GeometricWeight
	return bd
}

// CosineSimilarity returns dot(a,b)/(|a||b|), or 0 when either vector has zero norm.
func CosineSimilarity(a, b []float64) float64 {
	normA := floats.Norm(a, 2)
	normB := floats.Norm(b, 2)
	if normA == 0 || normB == 0 {
		return 0
	}
	return floats.Dot(a, b) / (normA * normB)
}

// EuclideanSimilarity maps the L2 distance onto [0,1]: max(0, 1 - d/150).
func EuclideanSimilarity(a, b []float64) float64 {
	d := floats.Distance(a, b, 2)
	return math.Max(0, 1-d/euclideanScale)
}

// GeometricSimilarity compares the aspect ratios of two facial areas.
func GeometricSimilarity(a, b *domain.FacialArea) float64 {
	if a == nil || b == nil {
		return neutralGeometric
	}

	diff := math.Abs(a.AspectRatio() - b.AspectRatio())
	switch {
	case diff < 0.15:
		return 1.0
	case diff < 0.25:
		return 0.8
	case diff < 0.35:
		return 0.6
	default:
		return 0.4
	}
}
