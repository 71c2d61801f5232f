package repository

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pgvector/pgvector-go"
)

const uniqueViolationCode = "23505"

// isUniqueViolation reports whether Postgres rejected the write with SQLSTATE 23505
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

// toVector converts an embedding to a pgvector value, nil when empty
func toVector(embedding []float64) *pgvector.Vector {
	if len(embedding) == 0 {
		return nil
	}

	floats := make([]float32, len(embedding))
	for i, v := range embedding {
		floats[i] = float32(v)
	}
	vec := pgvector.NewVector(floats)
	return &vec
}

// fromVector converts a stored vector back to float64, nil when absent
func fromVector(vec *pgvector.Vector) []float64 {
	if vec == nil || len(vec.Slice()) == 0 {
		return nil
	}

	embedding := make([]float64, len(vec.Slice()))
	for i, v := range vec.Slice() {
		embedding[i] = float64(v)
	}
	return embedding
}

// marshalJSON encodes v for a JSONB column; nil stays SQL NULL
func marshalJSON(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal json column: %w", err)
	}
	return data, nil
}

// clampLimit applies the default and maximum page size
func clampLimit(limit, def, maxLimit int) int {
	if limit <= 0 {
		return def
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}
