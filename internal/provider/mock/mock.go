package mock

import (
	"context"
	"crypto/sha256"
	"math"

	"github.com/saturnino-fabrica-de-software/empathia/internal/domain"
	"github.com/saturnino-fabrica-de-software/empathia/internal/provider"
)

const (
	embeddingDimension = domain.DefaultEmbeddingDimension
	minImageSize       = 1000
)

var emotionLabels = []string{
	domain.EmotionAngry,
	domain.EmotionDisgust,
	domain.EmotionFear,
	domain.EmotionHappy,
	domain.EmotionSad,
	domain.EmotionSurprise,
	domain.EmotionNeutral,
}

// Provider implementa os provedores de embedding e emoção para testes e desenvolvimento
type Provider struct{}

// New cria uma nova instância do MockProvider
func New() *Provider {
	return &Provider{}
}

// Extract gera embedding determinístico baseado no hash da imagem
func (p *Provider) Extract(ctx context.Context, image []byte) (*domain.FaceRecord, error) {
	if len(image) < minImageSize {
		return nil, domain.ErrInvalidImage
	}

	return &domain.FaceRecord{
		Embedding:  generateEmbedding(image),
		FacialArea: &domain.FacialArea{X: 40, Y: 30, W: 160, H: 200},
		Confidence: 0.99,
	}, nil
}

// Classify devolve uma emoção determinística: o rótulo depende só da imagem,
// a confiança varia com o backend e o modo estrito.
func (p *Provider) Classify(ctx context.Context, image []byte, backend string, strict bool) (*provider.EmotionScores, error) {
	if len(image) < minImageSize {
		return nil, domain.ErrInvalidImage
	}

	imageHash := sha256.Sum256(image)
	dominant := emotionLabels[int(imageHash[0])%len(emotionLabels)]

	seed := append([]byte(backend), imageHash[:]...)
	if strict {
		seed = append(seed, 1)
	}
	attemptHash := sha256.Sum256(seed)
	confidence := 60 + float64(attemptHash[0]%35)

	rest := (100 - confidence) / float64(len(emotionLabels)-1)
	scores := make(map[string]float64, len(emotionLabels))
	for _, label := range emotionLabels {
		scores[label] = rest
	}
	scores[dominant] = confidence

	return &provider.EmotionScores{
		Dominant:   dominant,
		Confidence: confidence,
		Scores:     scores,
		Region:     &domain.FacialArea{X: 40, Y: 30, W: 160, H: 200},
	}, nil
}

// generateEmbedding gera embedding determinístico baseado no hash da imagem
func generateEmbedding(image []byte) []float64 {
	hash := sha256.Sum256(image)
	embedding := make([]float64, embeddingDimension)
	hashLen := len(hash)

	for i := 0; i < embeddingDimension; i++ {
		idx := i % hashLen
		//nolint:gosec // idx is always < hashLen due to modulo operation
		embedding[i] = (float64(hash[idx])/255.0)*2 - 1
	}

	norm := 0.0
	for _, v := range embedding {
		norm += v * v
	}
	norm = math.Sqrt(norm)

	for i := range embedding {
		embedding[i] /= norm
	}

	return embedding
}

var (
	_ provider.EmbeddingProvider = (*Provider)(nil)
	_ provider.EmotionClassifier = (*Provider)(nil)
)
