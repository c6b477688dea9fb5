package packer

// Candidate represents one pending transaction considered for block inclusion.
// Rate is derived from Fee and Size; construct candidates via NewCandidate so
// it is never trusted from an external source.
type Candidate struct {
	ID   string
	Fee  int64
	Size int64
	Rate float64
}

// Result is the outcome of one packing run. Included holds candidates in
// admission order (descending rate), Excluded holds the rejected remainder in
// the same scan order.
type Result struct {
	Included    []Candidate
	Excluded    []Candidate
	TotalFee    int64
	TotalSize   int64
	AverageRate float64
}

// Packer describes the behaviour required from a block packer.
type Packer interface {
	Pack(capacity int64, candidates []Candidate) (Result, error)
}

// NewCandidate builds a validated Candidate with its rate recomputed.
func NewCandidate(id string, fee, size int64) (Candidate, error) {
	if size <= 0 {
		return Candidate{}, &InvalidCandidateError{ID: id, Size: size}
	}
	if fee < 0 {
		return Candidate{}, &InvalidCandidateError{ID: id, Size: size, NegativeFee: true}
	}
	return Candidate{
		ID:   id,
		Fee:  fee,
		Size: size,
		Rate: float64(fee) / float64(size),
	}, nil
}
