package packer

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCapacity is returned when the requested block capacity is negative.
	ErrInvalidCapacity = errors.New("block capacity must be a non-negative integer")
	// ErrInvalidCandidate is the sentinel matched by errors.Is for any
	// candidate that fails validation.
	ErrInvalidCandidate = errors.New("invalid candidate")
)

// InvalidCandidateError reports the candidate that failed validation so
// callers can point at the offending entry.
type InvalidCandidateError struct {
	ID          string
	Size        int64
	NegativeFee bool
}

func (e *InvalidCandidateError) Error() string {
	if e.NegativeFee {
		return fmt.Sprintf("invalid candidate %q: fee must be non-negative", e.ID)
	}
	return fmt.Sprintf("invalid candidate %q: size must be positive, got %d", e.ID, e.Size)
}

func (e *InvalidCandidateError) Unwrap() error {
	return ErrInvalidCandidate
}
