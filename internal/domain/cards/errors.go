package cards

import (
	"errors"
	"strings"
)

var (
	ErrIDRequired   = errors.New("id required")
	ErrCardNotFound = errors.New("card not found")
	ErrInvalidRole  = errors.New("type must be sent or received")
	ErrNotSequence  = errors.New("collection must be a JSON array")
)

// ValidationError lists every rule a card failed.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Problems) == 0 {
		return "validation failed"
	}
	return "validation failed: " + strings.Join(e.Problems, "; ")
}
