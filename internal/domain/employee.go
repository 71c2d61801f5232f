package domain

import (
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultEmbeddingDimension é a dimensão dos embeddings Facenet512
const DefaultEmbeddingDimension = 512

// FacialArea representa a região do rosto na imagem, em pixels
type FacialArea struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// AspectRatio returns width/height with the height floored at 1.
func (a FacialArea) AspectRatio() float64 {
	h := a.H
	if h < 1 {
		h = 1
	}
	return float64(a.W) / float64(h)
}

// FaceRecord é o registro biométrico de um rosto.
// Embedding is expected to be L2-normalised by the provider that produced it.
type FaceRecord struct {
	Embedding  []float64   `json:"-"`
	FacialArea *FacialArea `json:"facial_area,omitempty"`
	Confidence float64     `json:"confidence"`
}

// Dimension returns the embedding length, 0 for a nil record.
func (f *FaceRecord) Dimension() int {
	if f == nil {
		return 0
	}
	return len(f.Embedding)
}

// Employee representa um funcionário cadastrado
type Employee struct {
	ID         uuid.UUID   `json:"id"`
	Name       string      `json:"name"`
	Role       string      `json:"role,omitempty"`
	Department string      `json:"department,omitempty"`
	Email      string      `json:"email,omitempty"`
	Face       *FaceRecord `json:"face,omitempty"`
	Photo      []byte      `json:"-"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// HasEmbedding reports whether the employee can take part in matching at all.
func (e *Employee) HasEmbedding() bool {
	return e.Face != nil && len(e.Face.Embedding) > 0
}

// Validate verifica os campos de perfil do funcionário
func (e *Employee) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return errors.New("employee name cannot be empty")
	}

	if len(e.Name) > 255 {
		return errors.New("employee name must be at most 255 characters")
	}

	if e.Email != "" {
		if _, err := mail.ParseAddress(e.Email); err != nil {
			return errors.New("employee email is invalid")
		}
	}

	return nil
}

// EmployeeStats resume o histórico emocional de um funcionário
type EmployeeStats struct {
	EmployeeID        uuid.UUID `json:"employee_id"`
	TotalAnalyses     int       `json:"total_analyses"`
	AverageConfidence float64   `json:"average_confidence"`
	MostCommonEmotion string    `json:"most_common_emotion,omitempty"`
	MostCommonCount   int       `json:"most_common_count"`
}
