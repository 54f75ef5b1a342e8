package storage

import (
	"errors"

	"candle-sync/internal/domain"
)

// Storage errors shared by all backends.
var (
	// ErrNotFound is returned when a series has no persisted rows.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")

	// ErrBatchTooLarge is returned when a write exceeds MaxBatchSize records.
	ErrBatchTooLarge = errors.New("batch exceeds maximum size")
)

// ValidateBatch checks the size and shape of a write batch.
func ValidateBatch(records []domain.Measurement) error {
	if len(records) > MaxBatchSize {
		return ErrBatchTooLarge
	}
	for _, r := range records {
		if !r.Valid() {
			return ErrInvalidInput
		}
	}
	return nil
}
