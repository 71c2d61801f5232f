package deepface

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrDeepFaceUnavailable = errors.New("deepface service unavailable")
	ErrInvalidResponse     = errors.New("invalid response from deepface")
	ErrNoFaceInResponse    = errors.New("no face data in deepface response")
)

// StatusError is returned for any non-2xx answer from the DeepFace API.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("deepface returned status %d: %s", e.StatusCode, e.Body)
}

// Temporary reports whether a retry may succeed.
func (e *StatusError) Temporary() bool {
	return e.StatusCode >= 500 || e.StatusCode == 429
}

// FaceNotDetected reports whether DeepFace rejected the image for lack of a face.
// enforce_detection=true turns that into a 400 with this exception text.
func (e *StatusError) FaceNotDetected() bool {
	return e.StatusCode < 500 && strings.Contains(strings.ToLower(e.Body), "face could not be detected")
}
