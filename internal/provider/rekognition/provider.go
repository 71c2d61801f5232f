package rekognition

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg" // register decoders for DecodeConfig
	_ "image/png"
	"math"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"

	"github.com/saturnino-fabrica-de-software/empathia/internal/domain"
	"github.com/saturnino-fabrica-de-software/empathia/internal/provider"
)

const (
	// maxImageSize is the maximum image size supported by AWS Rekognition (5MB)
	maxImageSize = 5 * 1024 * 1024
	// minImageSize is the minimum image size for valid processing
	minImageSize = 100
	// nominalFrame scales relative bounding boxes when the image header can't be decoded
	nominalFrame = 1000
)

// emotionLabels maps Rekognition emotion types to the classifier vocabulary
var emotionLabels = map[types.EmotionName]string{
	types.EmotionNameHappy:     domain.EmotionHappy,
	types.EmotionNameCalm:      domain.EmotionNeutral,
	types.EmotionNameSurprised: domain.EmotionSurprise,
	types.EmotionNameFear:      domain.EmotionFear,
	types.EmotionNameDisgusted: domain.EmotionDisgust,
	types.EmotionNameAngry:     domain.EmotionAngry,
	types.EmotionNameSad:       domain.EmotionSad,
	types.EmotionNameConfused:  domain.EmotionConfused,
}

// Provider classifies emotions using AWS Rekognition DetectFaces.
// Rekognition has a single detector, so the backend argument is ignored.
type Provider struct {
	client *Client
}

var _ provider.EmotionClassifier = (*Provider)(nil)

// NewProvider creates a new Rekognition emotion classifier
func NewProvider(ctx context.Context, cfg Config) (*Provider, error) {
	client, err := NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create rekognition client: %w", err)
	}

	return &Provider{client: client}, nil
}

// validateImage checks if image data is valid for Rekognition processing
func validateImage(image []byte) error {
	if len(image) < minImageSize {
		return domain.ErrInvalidImage.WithError(fmt.Errorf("image too small (%d bytes, minimum %d)", len(image), minImageSize))
	}
	if len(image) > maxImageSize {
		return domain.ErrInvalidImage.WithError(fmt.Errorf("image too large (%d bytes, maximum %d)", len(image), maxImageSize))
	}
	return nil
}

// Classify runs one DetectFaces call and converts the chosen face's emotions.
// Strict mode needs exactly one face detected with at least MinFaceConfidence;
// lenient mode takes the largest face.
func (p *Provider) Classify(ctx context.Context, img []byte, backend string, strict bool) (*provider.EmotionScores, error) {
	if err := validateImage(img); err != nil {
		return nil, err
	}

	faces, err := p.client.DetectFaces(ctx, img)
	if err != nil {
		return nil, err
	}

	face, err := p.selectFace(faces, strict)
	if err != nil {
		return nil, err
	}

	scores := make(map[string]float64, len(face.Emotions))
	dominant := ""
	best := -1.0
	for _, e := range face.Emotions {
		label, ok := emotionLabels[e.Type]
		if !ok {
			continue
		}
		conf := float64(aws.ToFloat32(e.Confidence))
		scores[label] = conf
		if conf > best {
			best = conf
			dominant = label
		}
	}

	if dominant == "" {
		return nil, ErrNoEmotions
	}

	return &provider.EmotionScores{
		Dominant:   dominant,
		Confidence: best,
		Scores:     scores,
		Region:     regionOf(face.BoundingBox, img),
	}, nil
}

func (p *Provider) selectFace(faces []types.FaceDetail, strict bool) (types.FaceDetail, error) {
	if len(faces) == 0 {
		return types.FaceDetail{}, domain.ErrNoFaceDetected
	}

	if strict {
		if len(faces) > 1 {
			return types.FaceDetail{}, domain.ErrMultipleFaces
		}
		if float64(aws.ToFloat32(faces[0].Confidence)) < p.client.config.MinFaceConfidence {
			return types.FaceDetail{}, ErrLowConfidenceFace
		}
		return faces[0], nil
	}

	largest := 0
	largestArea := -1.0
	for i, f := range faces {
		if area := boxArea(f.BoundingBox); area > largestArea {
			largest = i
			largestArea = area
		}
	}
	return faces[largest], nil
}

func boxArea(box *types.BoundingBox) float64 {
	if box == nil {
		return 0
	}
	return float64(aws.ToFloat32(box.Width)) * float64(aws.ToFloat32(box.Height))
}

// regionOf converts the relative bounding box into pixels when the image
// dimensions are known, otherwise into thousandths of the frame.
func regionOf(box *types.BoundingBox, img []byte) *domain.FacialArea {
	if box == nil {
		return nil
	}

	width, height := nominalFrame, nominalFrame
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(img)); err == nil {
		width, height = cfg.Width, cfg.Height
	}

	scale := func(v *float32, size int) int {
		return int(math.Round(float64(aws.ToFloat32(v)) * float64(size)))
	}

	return &domain.FacialArea{
		X: scale(box.Left, width),
		Y: scale(box.Top, height),
		W: scale(box.Width, width),
		H: scale(box.Height, height),
	}
}
