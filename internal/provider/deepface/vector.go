package deepface

import (
	"gonum.org/v1/gonum/floats"
)

// NormalizeEmbedding returns a unit-length copy of the embedding.
// Zero vectors are returned unchanged.
func NormalizeEmbedding(embedding []float64) []float64 {
	if len(embedding) == 0 {
		return embedding
	}

	norm := floats.Norm(embedding, 2)
	if norm == 0 {
		return embedding
	}

	normalized := make([]float64, len(embedding))
	floats.ScaleTo(normalized, 1/norm, embedding)
	return normalized
}
