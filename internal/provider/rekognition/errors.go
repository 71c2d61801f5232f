package rekognition

import "errors"

var (
	// ErrInvalidCredentials indicates that AWS credentials are invalid or missing
	ErrInvalidCredentials = errors.New("invalid or missing AWS credentials")

	// ErrNoEmotions indicates that the detected face carried no emotion attributes
	ErrNoEmotions = errors.New("rekognition returned no emotions for the face")

	// ErrLowConfidenceFace indicates that strict mode rejected a weakly detected face
	ErrLowConfidenceFace = errors.New("face detection confidence below strict minimum")
)
