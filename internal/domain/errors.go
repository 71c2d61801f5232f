package domain

import (
	"errors"
	"fmt"
)

type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Err        error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches another AppError by code, so wrapped copies still satisfy
// errors.Is against the predefined values.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Code:       e.Code,
		Message:    e.Message,
		StatusCode: e.StatusCode,
		Err:        err,
	}
}

// Detailer is implemented by errors that carry structured context for the
// caller, such as partial sample counts.
type Detailer interface {
	Details() map[string]any
}

// DetailsOf returns the details of the first Detailer in err's chain, or nil
func DetailsOf(err error) map[string]any {
	var d Detailer
	if errors.As(err, &d) {
		return d.Details()
	}
	return nil
}

// Pre-defined errors
var (
	ErrInternal = &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "An unexpected error occurred",
		StatusCode: 500,
	}

	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "Invalid request",
		StatusCode: 400,
	}

	ErrNotFound = &AppError{
		Code:       "NOT_FOUND",
		Message:    "Resource not found",
		StatusCode: 404,
	}

	ErrEmployeeNotFound = &AppError{
		Code:       "EMPLOYEE_NOT_FOUND",
		Message:    "Employee not found",
		StatusCode: 404,
	}

	ErrEmployeeExists = &AppError{
		Code:       "EMPLOYEE_EXISTS",
		Message:    "An employee with this email already exists",
		StatusCode: 409,
	}

	ErrInvalidImage = &AppError{
		Code:       "INVALID_IMAGE",
		Message:    "Invalid image format or corrupted file",
		StatusCode: 422,
	}

	ErrNoFaceDetected = &AppError{
		Code:       "NO_FACE_DETECTED",
		Message:    "No face detected in the image",
		StatusCode: 422,
	}

	ErrMultipleFaces = &AppError{
		Code:       "MULTIPLE_FACES",
		Message:    "Multiple faces detected, please provide image with single face",
		StatusCode: 422,
	}

	ErrValidationFailed = &AppError{
		Code:       "VALIDATION_FAILED",
		Message:    "Request validation failed",
		StatusCode: 422,
	}

	// Matching errors
	ErrInvalidEmbeddingDimension = &AppError{
		Code:       "INVALID_EMBEDDING_DIMENSION",
		Message:    "Face embedding has an unexpected dimension",
		StatusCode: 422,
	}

	ErrIncompatibleStoredRecord = &AppError{
		Code:       "INCOMPATIBLE_STORED_RECORD",
		Message:    "Stored face record is incompatible and must be re-enrolled",
		StatusCode: 409,
	}

	// Emotion errors
	ErrInsufficientSamples = &AppError{
		Code:       "INSUFFICIENT_SAMPLES",
		Message:    "Not enough valid emotion samples could be collected",
		StatusCode: 422,
	}

	ErrNoSamples = &AppError{
		Code:       "NO_SAMPLES",
		Message:    "No emotion samples to aggregate",
		StatusCode: 500,
	}

	ErrProviderUnavailable = &AppError{
		Code:       "PROVIDER_UNAVAILABLE",
		Message:    "Face analysis provider is unavailable",
		StatusCode: 503,
	}
)
