package rekognition

// Config holds configuration for the AWS Rekognition emotion classifier
type Config struct {
	// Region is the AWS region where Rekognition service will be used (e.g., "us-east-1")
	Region string

	// MinFaceConfidence is the detection confidence (0-100) a face needs
	// to be accepted in strict mode.
	MinFaceConfidence float64
}

// DefaultConfig returns a Config with default values
func DefaultConfig() Config {
	return Config{
		Region:            "us-east-1",
		MinFaceConfidence: 90,
	}
}
