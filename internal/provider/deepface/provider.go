package deepface

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"

	"github.com/saturnino-fabrica-de-software/empathia/internal/domain"
	"github.com/saturnino-fabrica-de-software/empathia/internal/provider"
)

// Provider implements the embedding and emotion capabilities on top of the DeepFace API
type Provider struct {
	client *Client
}

// NewProvider creates a new DeepFace provider
func NewProvider(config Config) *Provider {
	return &Provider{
		client: NewClient(config),
	}
}

// Extract returns the normalised embedding of the single face in the image
func (p *Provider) Extract(ctx context.Context, image []byte) (*domain.FaceRecord, error) {
	if len(image) == 0 {
		return nil, domain.ErrInvalidImage
	}

	resp, err := p.client.Represent(ctx, encodeImage(image))
	if err != nil {
		return nil, fmt.Errorf("extract face: %w", translateError(err))
	}

	switch len(resp.Results) {
	case 0:
		return nil, domain.ErrNoFaceDetected
	case 1:
	default:
		return nil, domain.ErrMultipleFaces
	}

	result := resp.Results[0]
	if len(result.Embedding) == 0 {
		return nil, fmt.Errorf("extract face: %w", ErrNoFaceInResponse)
	}

	area := domain.FacialArea(result.FacialArea)
	return &domain.FaceRecord{
		Embedding:  NormalizeEmbedding(result.Embedding),
		FacialArea: &area,
		Confidence: result.FaceConfidence,
	}, nil
}

// Classify runs a single emotion analysis with the given detector backend
func (p *Provider) Classify(ctx context.Context, image []byte, backend string, strict bool) (*provider.EmotionScores, error) {
	if len(image) == 0 {
		return nil, domain.ErrInvalidImage
	}

	resp, err := p.client.Analyze(ctx, encodeImage(image), backend, strict)
	if err != nil {
		return nil, fmt.Errorf("classify emotion: %w", translateError(err))
	}

	if len(resp.Results) == 0 {
		return nil, ErrNoFaceInResponse
	}

	// first face only, as the kiosk frames a single person
	analysis := resp.Results[0]
	if analysis.DominantEmotion == "" || len(analysis.Emotion) == 0 {
		return nil, fmt.Errorf("%w: missing emotion data", ErrInvalidResponse)
	}

	confidence, ok := analysis.Emotion[analysis.DominantEmotion]
	if !ok {
		return nil, fmt.Errorf("%w: dominant emotion %q has no score", ErrInvalidResponse, analysis.DominantEmotion)
	}

	scores := &provider.EmotionScores{
		Dominant:   analysis.DominantEmotion,
		Confidence: confidence,
		Scores:     analysis.Emotion,
	}
	if analysis.Region != nil {
		region := domain.FacialArea(*analysis.Region)
		scores.Region = &region
	}

	return scores, nil
}

func encodeImage(image []byte) string {
	return "data:" + http.DetectContentType(image) + ";base64," + base64.StdEncoding.EncodeToString(image)
}

func translateError(err error) error {
	var statusErr *StatusError
	if errors.As(err, &statusErr) && statusErr.FaceNotDetected() {
		return domain.ErrNoFaceDetected.WithError(err)
	}
	if errors.Is(err, ErrDeepFaceUnavailable) {
		return domain.ErrProviderUnavailable.WithError(err)
	}
	return err
}

var (
	_ provider.EmbeddingProvider = (*Provider)(nil)
	_ provider.EmotionClassifier = (*Provider)(nil)
)
