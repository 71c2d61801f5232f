package face

import (
	"context"
	"fmt"

	"github.com/saturnino-fabrica-de-software/empathia/internal/config"
	"github.com/saturnino-fabrica-de-software/empathia/internal/provider"
	"github.com/saturnino-fabrica-de-software/empathia/internal/provider/deepface"
	"github.com/saturnino-fabrica-de-software/empathia/internal/provider/mock"
	"github.com/saturnino-fabrica-de-software/empathia/internal/provider/rekognition"
)

// ProviderType defines supported provider types
type ProviderType string

const (
	// ProviderTypeDeepFace is the DeepFace REST service
	ProviderTypeDeepFace ProviderType = "deepface"
	// ProviderTypeRekognition is AWS Rekognition (emotion classification only)
	ProviderTypeRekognition ProviderType = "rekognition"
	// ProviderTypeMock is the deterministic in-process provider for development
	ProviderTypeMock ProviderType = "mock"
)

// NewEmbeddingProvider creates the embedding provider selected by EMBEDDING_PROVIDER.
//
// Environment variables:
//   - EMBEDDING_PROVIDER: "deepface" or "mock" (default: "deepface")
//   - DEEPFACE_URL, DEEPFACE_MODEL, DEEPFACE_TIMEOUT
func NewEmbeddingProvider(cfg *config.Config) (provider.EmbeddingProvider, error) {
	switch ProviderType(cfg.EmbeddingProvider) {
	case ProviderTypeDeepFace, "":
		return createDeepFaceProvider(cfg), nil
	case ProviderTypeMock:
		return mock.New(), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s (supported: %s, %s)",
			cfg.EmbeddingProvider, ProviderTypeDeepFace, ProviderTypeMock)
	}
}

// NewEmotionClassifier creates the emotion classifier selected by EMOTION_PROVIDER.
//
// Environment variables:
//   - EMOTION_PROVIDER: "deepface", "rekognition" or "mock" (default: "deepface")
//   - AWS_REGION: AWS region for Rekognition (default: "us-east-1")
//   - AWS_ACCESS_KEY_ID / AWS_SECRET_ACCESS_KEY via the AWS SDK credential chain
func NewEmotionClassifier(ctx context.Context, cfg *config.Config) (provider.EmotionClassifier, error) {
	switch ProviderType(cfg.EmotionProvider) {
	case ProviderTypeDeepFace, "":
		return createDeepFaceProvider(cfg), nil
	case ProviderTypeRekognition:
		return createRekognitionProvider(ctx, cfg)
	case ProviderTypeMock:
		return mock.New(), nil
	default:
		return nil, fmt.Errorf("unknown emotion provider: %s (supported: %s, %s, %s)",
			cfg.EmotionProvider, ProviderTypeDeepFace, ProviderTypeRekognition, ProviderTypeMock)
	}
}

// createRekognitionProvider creates an AWS Rekognition classifier instance
func createRekognitionProvider(ctx context.Context, cfg *config.Config) (provider.EmotionClassifier, error) {
	rekogConfig := rekognition.DefaultConfig()
	if cfg.AWSRegion != "" {
		rekogConfig.Region = cfg.AWSRegion
	}

	prov, err := rekognition.NewProvider(ctx, rekogConfig)
	if err != nil {
		return nil, fmt.Errorf("create rekognition provider: %w", err)
	}

	return prov, nil
}

// createDeepFaceProvider creates a DeepFace provider instance
func createDeepFaceProvider(cfg *config.Config) *deepface.Provider {
	deepfaceConfig := deepface.DefaultConfig()

	if cfg.DeepFaceURL != "" {
		deepfaceConfig.BaseURL = cfg.DeepFaceURL
	}
	if cfg.DeepFaceModel != "" {
		deepfaceConfig.Model = cfg.DeepFaceModel
	}
	if cfg.DeepFaceTimeout > 0 {
		deepfaceConfig.Timeout = cfg.DeepFaceTimeout
	}

	return deepface.NewProvider(deepfaceConfig)
}
