package packer

// Priority is a coarse confirmation-time estimate for a candidate based on
// its rank relative to one block's worth of included transactions.
type Priority int

const (
	// PriorityHigh means the candidate fits in the next block.
	PriorityHigh Priority = iota
	// PriorityMedium projects confirmation within roughly the second or
	// third block of the same capacity.
	PriorityMedium
	// PriorityLow means the candidate is deep in the backlog.
	PriorityLow
)

func (p Priority) String() string {
	switch p {
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	default:
		return "low"
	}
}

// EstimatePriority classifies a zero-based rank against the number of
// transactions one block holds. Every included transaction is high priority
// by construction; the estimator earns its keep when applied to ranks beyond
// the first block, projecting how soon the excluded backlog would confirm if
// packed into subsequent blocks of the same capacity.
func EstimatePriority(index, totalIncluded int) Priority {
	switch {
	case index < totalIncluded:
		return PriorityHigh
	case index < totalIncluded*3:
		return PriorityMedium
	default:
		return PriorityLow
	}
}
