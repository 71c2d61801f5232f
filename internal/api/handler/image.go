package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/empathia/internal/domain"
)

// DefaultMaxImageSize is used when a handler is built without a limit
const DefaultMaxImageSize = 10 * 1024 * 1024 // 10MB

var errInvalidLimit = errors.New("limit must not be negative")

var validImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// imageReader extracts and validates the "image" form file
type imageReader struct {
	maxSize int64
}

func newImageReader(maxSize int64) imageReader {
	if maxSize <= 0 {
		maxSize = DefaultMaxImageSize
	}
	return imageReader{maxSize: maxSize}
}

func (r imageReader) read(c *fiber.Ctx) ([]byte, error) {
	// 1. Extract file
	file, err := c.FormFile("image")
	if err != nil {
		return nil, domain.ErrValidationFailed.WithError(errors.New("image is required"))
	}

	// 2. Validate size
	if file.Size == 0 {
		return nil, domain.ErrInvalidImage.WithError(errors.New("image is empty"))
	}
	if file.Size > r.maxSize {
		return nil, domain.ErrInvalidImage.WithError(
			fmt.Errorf("image too large (%d bytes, maximum %d)", file.Size, r.maxSize))
	}

	// 3. Read image bytes
	f, err := file.Open()
	if err != nil {
		return nil, domain.ErrInvalidImage.WithError(err)
	}
	defer func() {
		_ = f.Close()
	}()

	imageBytes, err := io.ReadAll(f)
	if err != nil {
		return nil, domain.ErrInvalidImage.WithError(err)
	}

	// 4. Validate Content-Type; kiosks often send octet-stream, so sniff as fallback
	contentType := file.Header.Get("Content-Type")
	if !validImageTypes[contentType] {
		sniffed := http.DetectContentType(imageBytes)
		if !validImageTypes[sniffed] {
			return nil, domain.ErrInvalidImage.WithError(fmt.Errorf("unsupported content type %q", contentType))
		}
	}

	return imageBytes, nil
}

func parseEmployeeID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return uuid.Nil, domain.ErrValidationFailed.WithError(fmt.Errorf("invalid employee id: %w", err))
	}
	return id, nil
}
