package mempool

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/eugenenazirov/fee-simulator/internal/packer"
)

// DefaultSyntheticCount is how many fake transactions the synthetic source
// generates when no count is configured.
const DefaultSyntheticCount = 250

// Realistic ranges for a typical transaction: vsize in vbytes, fee rate in
// sat/vB.
const (
	minSyntheticSize = 140
	maxSyntheticSize = 800
	minSyntheticRate = 1.0
	maxSyntheticRate = 150.0
)

// SyntheticSource generates plausible-looking random candidates for demo
// runs and tests when no real mempool data is available.
type SyntheticSource struct {
	count int
	rng   *rand.Rand
}

// SyntheticOption configures a SyntheticSource.
type SyntheticOption func(*SyntheticSource)

// WithSeed makes generation deterministic (primarily for tests).
func WithSeed(seed uint64) SyntheticOption {
	return func(s *SyntheticSource) {
		s.rng = rand.New(rand.NewPCG(seed, seed))
	}
}

// NewSyntheticSource creates a generator producing count candidates per
// fetch. A non-positive count falls back to DefaultSyntheticCount.
func NewSyntheticSource(count int, opts ...SyntheticOption) *SyntheticSource {
	if count <= 0 {
		count = DefaultSyntheticCount
	}
	s := &SyntheticSource{
		count: count,
		rng:   rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name implements Source.
func (s *SyntheticSource) Name() string {
	return "synthetic"
}

// Fetch implements Source. It cannot fail and never skips: every generated
// record is valid by construction.
func (s *SyntheticSource) Fetch(ctx context.Context) (Set, error) {
	if err := ctx.Err(); err != nil {
		return Set{}, err
	}

	set := Set{Candidates: make([]packer.Candidate, 0, s.count)}
	for i := 0; i < s.count; i++ {
		size := int64(minSyntheticSize + s.rng.IntN(maxSyntheticSize-minSyntheticSize+1))
		fr := minSyntheticRate + s.rng.Float64()*(maxSyntheticRate-minSyntheticRate)
		candidate, err := packer.NewCandidate(
			fmt.Sprintf("synth_%016x", s.rng.Uint64()),
			int64(float64(size)*fr),
			size,
		)
		if err != nil {
			return Set{}, err
		}
		set.Candidates = append(set.Candidates, candidate)
	}

	return set, nil
}
