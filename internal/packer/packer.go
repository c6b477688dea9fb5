package packer

import (
	"sort"
)

type greedyPacker struct{}

// New creates a Packer implementing the greedy rate-descending strategy
// miners use to maximize fees: admit candidates in descending fee-rate order
// until the block is full, without backtracking. This is deliberately not an
// optimal knapsack solution.
func New() Packer {
	return &greedyPacker{}
}

func (p *greedyPacker) Pack(capacity int64, candidates []Candidate) (Result, error) {
	if capacity < 0 {
		return Result{}, ErrInvalidCapacity
	}
	for i := range candidates {
		if candidates[i].Size <= 0 {
			return Result{}, &InvalidCandidateError{ID: candidates[i].ID, Size: candidates[i].Size}
		}
	}

	// Stable sort so candidates with equal rates keep their input order.
	// The relative order of equal-rate transactions is observable in the
	// output table, so this is part of the contract, not a detail.
	sorted := make([]Candidate, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Rate > sorted[j].Rate
	})

	result := Result{
		Included: make([]Candidate, 0, len(sorted)),
		Excluded: []Candidate{},
	}

	var usedSize int64
	for _, c := range sorted {
		if usedSize+c.Size <= capacity {
			result.Included = append(result.Included, c)
			usedSize += c.Size
			result.TotalFee += c.Fee
		} else {
			// Never reconsidered: a smaller, lower-rate candidate that
			// would still fit the remaining gap stays excluded.
			result.Excluded = append(result.Excluded, c)
		}
	}

	result.TotalSize = usedSize
	if usedSize > 0 {
		result.AverageRate = float64(result.TotalFee) / float64(usedSize)
	}

	return result, nil
}
