package face

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/empathia/internal/config"
	"github.com/saturnino-fabrica-de-software/empathia/internal/provider/deepface"
	"github.com/saturnino-fabrica-de-software/empathia/internal/provider/mock"
	"github.com/saturnino-fabrica-de-software/empathia/internal/provider/rekognition"
)

func TestNewEmbeddingProvider(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		check    func(t *testing.T, p any)
		wantErr  bool
	}{
		{
			name:     "explicit deepface provider",
			provider: "deepface",
			check:    func(t *testing.T, p any) { assert.IsType(t, &deepface.Provider{}, p) },
		},
		{
			name:     "empty provider defaults to deepface",
			provider: "",
			check:    func(t *testing.T, p any) { assert.IsType(t, &deepface.Provider{}, p) },
		},
		{
			name:     "mock provider",
			provider: "mock",
			check:    func(t *testing.T, p any) { assert.IsType(t, &mock.Provider{}, p) },
		},
		{
			name:     "rekognition cannot extract embeddings",
			provider: "rekognition",
			wantErr:  true,
		},
		{
			name:     "unknown provider",
			provider: "facenet-local",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{
				EmbeddingProvider: tt.provider,
				DeepFaceURL:       "http://localhost:5000",
			}

			p, err := NewEmbeddingProvider(cfg)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "unknown embedding provider")
				return
			}

			require.NoError(t, err)
			tt.check(t, p)
		})
	}
}

func TestNewEmotionClassifier(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		check    func(t *testing.T, p any)
		wantErr  bool
	}{
		{
			name:     "deepface classifier",
			provider: "deepface",
			check:    func(t *testing.T, p any) { assert.IsType(t, &deepface.Provider{}, p) },
		},
		{
			name:     "empty provider defaults to deepface",
			provider: "",
			check:    func(t *testing.T, p any) { assert.IsType(t, &deepface.Provider{}, p) },
		},
		{
			name:     "mock classifier",
			provider: "mock",
			check:    func(t *testing.T, p any) { assert.IsType(t, &mock.Provider{}, p) },
		},
		{
			name:     "unknown classifier",
			provider: "opencv",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{EmotionProvider: tt.provider}

			p, err := NewEmotionClassifier(context.Background(), cfg)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "unknown emotion provider")
				return
			}

			require.NoError(t, err)
			tt.check(t, p)
		})
	}
}

func TestNewEmotionClassifier_Rekognition(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping Rekognition test in short mode (loads AWS configuration)")
	}

	cfg := &config.Config{
		EmotionProvider: "rekognition",
		AWSRegion:       "sa-east-1",
	}

	p, err := NewEmotionClassifier(context.Background(), cfg)
	if err != nil {
		t.Skipf("AWS configuration unavailable: %v", err)
	}

	assert.IsType(t, &rekognition.Provider{}, p)
}
