package provider

import (
	"context"

	"github.com/saturnino-fabrica-de-software/empathia/internal/domain"
)

// EmbeddingProvider extrai o registro biométrico de um rosto
type EmbeddingProvider interface {
	// Extract returns the L2-normalised embedding, facial area and detection
	// confidence of the single face in the image.
	// Fails with domain.ErrNoFaceDetected or domain.ErrMultipleFaces.
	Extract(ctx context.Context, image []byte) (*domain.FaceRecord, error)
}

// EmotionClassifier classifica a emoção de um rosto
type EmotionClassifier interface {
	// Classify runs one classification attempt using the given detector
	// backend. strict requires a confidently detected face.
	Classify(ctx context.Context, image []byte, backend string, strict bool) (*EmotionScores, error)
}

// EmotionScores é a resposta de uma tentativa de classificação.
// Scores are on a 0-100 scale keyed by emotion label.
type EmotionScores struct {
	Dominant   string             `json:"dominant"`
	Confidence float64            `json:"confidence"`
	Scores     map[string]float64 `json:"scores"`
	Region     *domain.FacialArea `json:"region,omitempty"`
}

// Valid reports whether the classifier produced a usable reading.
func (s *EmotionScores) Valid() bool {
	return s != nil && s.Dominant != "" && len(s.Scores) > 0
}
