package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/saturnino-fabrica-de-software/empathia/internal/matching"
)

type Config struct {
	// Server
	Port         int    `envconfig:"PORT" default:"3000"`
	Environment  string `envconfig:"ENV" default:"development"`
	MaxImageSize int64  `envconfig:"MAX_IMAGE_SIZE" default:"10485760"`

	// Database
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	// Providers
	EmbeddingProvider string        `envconfig:"EMBEDDING_PROVIDER" default:"deepface"`
	EmotionProvider   string        `envconfig:"EMOTION_PROVIDER" default:"deepface"`
	DeepFaceURL       string        `envconfig:"DEEPFACE_URL" default:"http://localhost:5000"`
	DeepFaceModel     string        `envconfig:"DEEPFACE_MODEL" default:"Facenet512"`
	DeepFaceTimeout   time.Duration `envconfig:"DEEPFACE_TIMEOUT" default:"30s"`
	AWSRegion         string        `envconfig:"AWS_REGION" default:"us-east-1"`

	// Matching
	EmbeddingDimension int     `envconfig:"EMBEDDING_DIMENSION" default:"512"`
	MatchThreshold     float64 `envconfig:"MATCH_THRESHOLD" default:"0.75"`
	AcceptanceFloor    float64 `envconfig:"ACCEPTANCE_FLOOR" default:"0.70"`

	// Emotion sampling
	EmotionSamples  int      `envconfig:"EMOTION_SAMPLES" default:"8"`
	EmotionBackends []string `envconfig:"EMOTION_BACKENDS" default:"opencv,mtcnn"`

	// Cache
	GalleryCacheTTL time.Duration `envconfig:"GALLERY_CACHE_TTL" default:"30s"`

	// Outbound webhook, disabled when WEBHOOK_URL is empty
	WebhookURL         string   `envconfig:"WEBHOOK_URL"`
	WebhookSecret      string   `envconfig:"WEBHOOK_SECRET"`
	WebhookEvents      []string `envconfig:"WEBHOOK_EVENTS" default:"emotion.analyzed"`
	WebhookMaxAttempts int      `envconfig:"WEBHOOK_MAX_ATTEMPTS" default:"5"`
}

// Load reads .env (when present) and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.MatchThreshold < 0 || c.MatchThreshold > 1 {
		return errors.New("MATCH_THRESHOLD must be between 0 and 1")
	}
	if c.AcceptanceFloor < 0 || c.AcceptanceFloor > 1 {
		return errors.New("ACCEPTANCE_FLOOR must be between 0 and 1")
	}
	// The floor becomes the Acceptable band, which only exists below Good.
	if good := matching.DefaultBands().Good; c.AcceptanceFloor > good {
		return fmt.Errorf("ACCEPTANCE_FLOOR must not exceed the Good band (%.2f)", good)
	}
	if c.EmbeddingDimension < 1 {
		return errors.New("EMBEDDING_DIMENSION must be positive")
	}
	if c.EmotionSamples < 1 {
		return errors.New("EMOTION_SAMPLES must be at least 1")
	}
	if len(c.EmotionBackends) == 0 {
		return errors.New("EMOTION_BACKENDS must list at least one detector backend")
	}
	if c.MaxImageSize < 1 {
		return errors.New("MAX_IMAGE_SIZE must be positive")
	}
	if c.WebhookURL != "" && c.WebhookMaxAttempts < 1 {
		return errors.New("WEBHOOK_MAX_ATTEMPTS must be at least 1")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
