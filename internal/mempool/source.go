// Package mempool provides the data-source collaborators that feed candidate
// transactions to the packer: a live mempool.space-style API client, a local
// JSON snapshot reader, and a synthetic generator for demos and tests.
//
// Sources never fall back to one another on failure; they return an error and
// leave the fallback decision to the caller.
package mempool

import (
	"context"

	"github.com/eugenenazirov/fee-simulator/internal/packer"
)

// Set is the outcome of a successful fetch: the validated candidates plus
// how many raw records were dropped for failing shape validation.
type Set struct {
	Candidates []packer.Candidate
	Skipped    int
}

// Source supplies a finished list of validated candidates.
type Source interface {
	// Name identifies the source in logs and rendered output.
	Name() string
	// Fetch returns the candidate set. Records missing required fields or
	// carrying a non-positive size are skipped and counted, not fatal.
	Fetch(ctx context.Context) (Set, error)
}
